//go:build !linux

package service

import (
	"runtime"
)

func platformVersion() string {
	return runtime.GOOS + " " + runtime.GOARCH
}
