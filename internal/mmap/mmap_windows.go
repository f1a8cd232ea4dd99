//go:build windows
// +build windows

package mmap

import (
	"errors"
	"os"
)

var errUnsupported = errors.New("mmap: not supported on windows")

type MmapFile struct {
	Data []byte
	File *os.File
}

func NewMmapFile(filePath string) (*MmapFile, error) {
	return nil, errUnsupported
}

func (mr *MmapFile) Size() int64 { return 0 }

func (mr *MmapFile) ReadAt(p []byte, off int64) (int, error) { return 0, errUnsupported }

func (mr *MmapFile) Close() error { return nil }
