//go:build windows
// +build windows

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
package fs

import (
	"fmt"
	"io"
	"os"
	"syscall"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	volumeSectorSize = 512

	ioctlDiskGetLengthInfo = 0x7405C
)

// rawVolume reads a \\.\ device. Windows only accepts sector aligned reads
// on such handles, so every read goes through an aligned bounce buffer.
type rawVolume struct {
	path   string
	handle windows.Handle
	offset int64 // used for io.Reader
}

type volumeInfo struct {
	name string
	size int64
}

func (fi *volumeInfo) Name() string       { return fi.name }
func (fi *volumeInfo) Size() int64        { return fi.size }
func (fi *volumeInfo) Mode() os.FileMode  { return os.ModeDevice }
func (fi *volumeInfo) ModTime() time.Time { return time.Time{} }
func (fi *volumeInfo) IsDir() bool        { return false }
func (fi *volumeInfo) Sys() any           { return nil }

// Open opens an image file, or a raw disk/volume when path is in the \\.\ namespace.
func Open(path string) (File, error) {
	if !IsRawVolume(path) {
		return os.Open(path)
	}

	handle, err := windows.CreateFile(
		windows.StringToUTF16Ptr(path),
		windows.GENERIC_READ,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE,
		nil,
		windows.OPEN_EXISTING,
		0,
		0,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open %q: %w", path, err)
	}
	return &rawVolume{path: path, handle: handle}, nil
}

func (d *rawVolume) Read(p []byte) (int, error) {
	n, err := d.ReadAt(p, d.offset)
	d.offset += int64(n)
	return n, err
}

func (d *rawVolume) ReadAt(p []byte, off int64) (int, error) {
	alignedOffset := off / volumeSectorSize * volumeSectorSize
	alignmentDiff := int(off - alignedOffset)
	alignedSize := ((len(p) + alignmentDiff + volumeSectorSize - 1) / volumeSectorSize) * volumeSectorSize

	buf := make([]byte, alignedSize)

	var bytesRead uint32
	ov := new(windows.Overlapped)
	ov.Offset = uint32(alignedOffset)
	ov.OffsetHigh = uint32(alignedOffset >> 32)

	err := windows.ReadFile(d.handle, buf, &bytesRead, ov)
	if err == syscall.ERROR_IO_PENDING {
		err = windows.GetOverlappedResult(d.handle, ov, &bytesRead, true)
	}
	if err == windows.ERROR_HANDLE_EOF {
		return 0, io.EOF
	}
	if err != nil {
		return 0, fmt.Errorf("aligned read at offset %d failed: %w", alignedOffset, err)
	}

	if int(bytesRead) <= alignmentDiff {
		return 0, io.EOF
	}
	n := copy(p, buf[alignmentDiff:bytesRead])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (d *rawVolume) Stat() (os.FileInfo, error) {
	var length int64
	var bytesReturned uint32

	err := windows.DeviceIoControl(
		d.handle,
		ioctlDiskGetLengthInfo,
		nil,
		0,
		(*byte)(unsafe.Pointer(&length)),
		uint32(unsafe.Sizeof(length)),
		&bytesReturned,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("DeviceIoControl(IOCTL_DISK_GET_LENGTH_INFO) failed: %w", err)
	}
	return &volumeInfo{name: d.path, size: length}, nil
}

func (d *rawVolume) Close() error {
	return windows.CloseHandle(d.handle)
}
