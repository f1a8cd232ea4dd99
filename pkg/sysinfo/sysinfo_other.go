//go:build !unix && !windows

package sysinfo

func kernelInfo() (*SysInfo, error) {
	info := SysUnknown
	return &info, nil
}
