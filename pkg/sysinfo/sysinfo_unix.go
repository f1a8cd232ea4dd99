//go:build unix

package sysinfo

import (
	"golang.org/x/sys/unix"
)

func kernelInfo() (*SysInfo, error) {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return nil, err
	}

	return &SysInfo{
		Release: unix.ByteSliceToString(uts.Release[:]),
		Version: unix.ByteSliceToString(uts.Version[:]),
	}, nil
}
