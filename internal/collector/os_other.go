//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !windows

package collector

import "runtime"

func osDescription() (string, error) {
	return runtime.GOOS, nil
}
