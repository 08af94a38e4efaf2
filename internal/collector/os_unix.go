//go:build linux || darwin || freebsd || netbsd || openbsd

package collector

import "golang.org/x/sys/unix"

// osDescription returns the kernel name and release, e.g. "Linux 6.8.0".
func osDescription() (string, error) {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return "", err
	}
	return unix.ByteSliceToString(u.Sysname[:]) + " " + unix.ByteSliceToString(u.Release[:]), nil
}
