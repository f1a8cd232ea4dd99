// Package source gives random-access views over a disk image, which may be a
// single file, a raw device or a set of split segments (image.001, image.002, ...).
package source

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/ostafen/bootinfo/internal/fs"
	"github.com/ostafen/bootinfo/internal/mmap"
	"github.com/ostafen/bootinfo/pkg/reader"
)

// DefaultBufferSize is the read buffer of each view.
const DefaultBufferSize = 64 * 1024

type Options struct {
	// Segmented joins image.001, image.002, ... when path has a numeric suffix.
	Segmented bool
	// Mmap maps regular image files into memory instead of reading them.
	Mmap bool
	// BufferSize of the views returned by NewReadSeeker.
	BufferSize int
}

type segment struct {
	r      io.ReaderAt
	size   int64
	closer io.Closer
}

// Source is an opened image. Views created with NewReadSeeker are independent
// and may be used from different goroutines.
type Source struct {
	path       string
	segments   []segment
	size       int64
	bufferSize int
}

var segmentSuffix = regexp.MustCompile(`\.(\d{3,})$`)

// Open opens the image at path.
func Open(path string, opts Options) (*Source, error) {
	paths := []string{path}
	if opts.Segmented {
		segPaths, err := segmentPaths(path)
		if err != nil {
			return nil, err
		}
		paths = segPaths
	}

	s := &Source{path: path, bufferSize: opts.BufferSize}
	if s.bufferSize <= 0 {
		s.bufferSize = DefaultBufferSize
	}

	for _, p := range paths {
		seg, err := openSegment(p, opts.Mmap)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.segments = append(s.segments, seg)
		s.size += seg.size
	}
	return s, nil
}

func openSegment(path string, useMmap bool) (segment, error) {
	if useMmap && !fs.IsRawVolume(path) {
		m, err := mmap.NewMmapFile(path)
		if err == nil {
			return segment{r: m, size: m.Size(), closer: m}, nil
		}
		// fall back to regular reads, e.g. for empty files or devices
	}

	f, err := fs.Open(path)
	if err != nil {
		return segment{}, err
	}

	size, err := fs.Size(f)
	if err != nil {
		f.Close()
		return segment{}, fmt.Errorf("failed to get size of %q: %w", path, err)
	}
	return segment{r: f, size: size, closer: f}, nil
}

// segmentPaths returns path followed by all consecutive segments that exist
// after it. Paths without a numeric suffix are returned alone.
func segmentPaths(path string) ([]string, error) {
	m := segmentSuffix.FindStringSubmatchIndex(path)
	if m == nil {
		return []string{path}, nil
	}

	digits := path[m[2]:m[3]]
	first, err := strconv.Atoi(digits)
	if err != nil {
		return []string{path}, nil
	}

	paths := []string{path}
	prefix := path[:m[2]]
	for n := first + 1; ; n++ {
		next := fmt.Sprintf("%s%0*d", prefix, len(digits), n)
		if _, err := os.Stat(next); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				break
			}
			return nil, err
		}
		paths = append(paths, next)
	}
	return paths, nil
}

func (s *Source) Path() string {
	return s.path
}

// Name is the base name of the image, used to name digest files.
func (s *Source) Name() string {
	return filepath.Base(s.path)
}

// Size is the total size of the image in bytes.
func (s *Source) Size() int64 {
	return s.size
}

// Segments returns the number of files backing the image.
func (s *Source) Segments() int {
	return len(s.segments)
}

// NewReadSeeker returns a new buffered view positioned at the start of the image.
func (s *Source) NewReadSeeker() io.ReadSeeker {
	var rs io.ReadSeeker
	if len(s.segments) == 1 {
		rs = io.NewSectionReader(s.segments[0].r, 0, s.segments[0].size)
	} else {
		parts := make([]io.ReaderAt, len(s.segments))
		sizes := make([]int64, len(s.segments))
		for i, seg := range s.segments {
			parts[i], sizes[i] = seg.r, seg.size
		}
		rs = reader.NewMultiReaderAt(parts, sizes)
	}
	return reader.NewBufferedReadSeeker(rs, s.bufferSize)
}

func (s *Source) Close() error {
	var errs []error
	for _, seg := range s.segments {
		if err := seg.closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.segments = nil
	return errors.Join(errs...)
}
