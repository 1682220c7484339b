//go:build linux

package service

import (
	"golang.org/x/sys/unix"
)

// platformVersion returns "Linux <kernel release>".
func platformVersion() string {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return "Linux"
	}
	return "Linux " + unix.ByteSliceToString(u.Release[:])
}
