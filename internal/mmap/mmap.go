//go:build !windows
// +build !windows

package mmap

import (
	"fmt"
	"io"
	"os"
	"syscall"
)

// MmapFile is a read-only memory mapping of a whole image file.
type MmapFile struct {
	Data []byte   // The memory-mapped byte slice
	File *os.File // The underlying opened file
}

// NewMmapFile maps filePath read-only. Empty files cannot be mapped.
func NewMmapFile(filePath string) (*MmapFile, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %q: %w", filePath, err)
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to get file info for %q: %w", filePath, err)
	}

	size := fi.Size()
	if size <= 0 {
		f.Close()
		return nil, fmt.Errorf("file %q is empty, cannot mmap", filePath)
	}
	if int64(int(size)) != size {
		f.Close()
		return nil, fmt.Errorf("file %q is too large to be mapped", filePath)
	}

	// MAP_SHARED with PROT_READ: the image is never written.
	data, err := syscall.Mmap(int(f.Fd()), 0, int(size), syscall.PROT_READ, syscall.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to mmap file %q: %w", filePath, err)
	}
	return &MmapFile{Data: data, File: f}, nil
}

func (mr *MmapFile) Size() int64 {
	return int64(len(mr.Data))
}

// ReadAt implements io.ReaderAt over the mapped region.
func (mr *MmapFile) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("mmap: negative offset %d", off)
	}
	if off >= int64(len(mr.Data)) {
		return 0, io.EOF
	}
	n := copy(p, mr.Data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Close unmaps the memory region and closes the underlying file.
func (mr *MmapFile) Close() error {
	if mr.Data != nil {
		if err := syscall.Munmap(mr.Data); err != nil {
			return fmt.Errorf("failed to munmap: %w", err)
		}
		mr.Data = nil
	}

	if mr.File != nil {
		if err := mr.File.Close(); err != nil {
			return fmt.Errorf("failed to close file: %w", err)
		}
		mr.File = nil
	}
	return nil
}
