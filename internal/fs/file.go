package fs

import (
	"io"
	"os"
)

type File interface {
	io.ReadCloser
	io.ReaderAt
	Stat() (os.FileInfo, error)
}

// Size returns the size in bytes of f. Block devices report a zero size
// through Stat, for them the end offset is used when f can seek.
func Size(f File) (int64, error) {
	finfo, err := f.Stat()
	if err != nil {
		return 0, err
	}
	if finfo.Size() > 0 || finfo.Mode().IsRegular() {
		return finfo.Size(), nil
	}

	seeker, ok := f.(io.Seeker)
	if !ok {
		return finfo.Size(), nil
	}

	size, err := seeker.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	_, err = seeker.Seek(0, io.SeekStart)
	return size, err
}
