//go:build windows

package collector

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// osDescription returns the Windows product release, e.g. "Windows 11".
// Windows 11 still reports major version 10; build 22000 is its first release.
func osDescription() (string, error) {
	v := windows.RtlGetVersion()
	if v == nil {
		return "", fmt.Errorf("RtlGetVersion returned no data")
	}
	switch {
	case v.MajorVersion == 10 && v.BuildNumber >= 22000:
		return "Windows 11", nil
	case v.MajorVersion == 10:
		return "Windows 10", nil
	default:
		return fmt.Sprintf("Windows %d.%d", v.MajorVersion, v.MinorVersion), nil
	}
}
