//go:build windows

package sysinfo

import (
	"fmt"

	"golang.org/x/sys/windows"
)

func kernelInfo() (*SysInfo, error) {
	v := windows.RtlGetVersion()

	return &SysInfo{
		Release: fmt.Sprintf("%d.%d", v.MajorVersion, v.MinorVersion),
		Version: fmt.Sprintf("%d.%d.%d", v.MajorVersion, v.MinorVersion, v.BuildNumber),
	}, nil
}
