// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
package sysinfo

import (
	"bufio"
	"os"
	"runtime"
	"strings"
)

// SysUnknown is a pre-defined SysInfo struct representing unknown system information.
var SysUnknown = SysInfo{
	Name:    runtime.GOOS,
	Release: "unknown",
	Version: "unknown",
}

// SysInfo holds the basic operating system details.
type SysInfo struct {
	Name    string // The name of the operating system (e.g., "linux", "darwin", "windows").
	Release string // The kernel release or product version (e.g., "6.8.0-45-generic", "10.0").
	Version string // The specific build or kernel version string of the OS.
	Distro  string // The distribution name, when the OS exposes one (e.g., "Ubuntu 24.04 LTS").
}

// Stat gathers and returns detailed operating system information.
// Release and Version come from the kernel (uname(2) on unix, RtlGetVersion on windows).
func Stat() (*SysInfo, error) {
	info, err := kernelInfo()
	if err != nil {
		return nil, err
	}
	info.Name = runtime.GOOS

	if runtime.GOOS == "linux" {
		info.Distro = readOSRelease("/etc/os-release")
	}
	return info, nil
}

// readOSRelease returns "NAME VERSION" from an os-release file, or "" if it cannot be read.
func readOSRelease(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	var name, version string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "NAME=") {
			// Trim "NAME=" prefix and quotes from the value.
			name = strings.Trim(line[5:], `"`)
		}
		if strings.HasPrefix(line, "VERSION=") {
			// Trim "VERSION=" prefix and quotes from the value.
			version = strings.Trim(line[8:], `"`)
		}
	}
	return strings.TrimSpace(name + " " + version)
}
