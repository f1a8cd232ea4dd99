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
package inspect

import (
	"context"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/ostafen/bootinfo/internal/digest"
	"github.com/ostafen/bootinfo/internal/disk"
	"github.com/ostafen/bootinfo/internal/logger"
	"github.com/ostafen/bootinfo/internal/report"
	"github.com/ostafen/bootinfo/internal/source"
	fmtutil "github.com/ostafen/bootinfo/pkg/util/format"
	"golang.org/x/sync/errgroup"
)

// Mode selects how the partition table is decoded.
type Mode int

const (
	// ModeAuto decodes an MBR when the first sector carries a valid
	// signature and a GPT otherwise.
	ModeAuto Mode = iota
	// ModeMBR requires an MBR, handing protective MBRs over to the GPT decoder.
	ModeMBR
	// ModeGPT decodes a GPT unconditionally.
	ModeGPT
	// ModeHash only computes the image digests.
	ModeHash
)

type Options struct {
	Path    string
	Mode    Mode
	Offsets []int64

	HashDir    string
	NoHash     bool
	ChunkSize  int
	Decompress string
	Progress   bool

	Parallel  bool
	Mmap      bool
	Segmented bool

	DFXMLPath string

	Logger *logger.Logger
	// Stderr receives the progress line. Defaults to os.Stderr.
	Stderr io.Writer
}

// readError marks failures to read the image, reported as "Error opening file".
type readError struct {
	err error
}

func (e *readError) Error() string { return e.err.Error() }
func (e *readError) Unwrap() error { return e.err }

func classify(err error) error {
	var pathErr *iofs.PathError
	if errors.As(err, &pathErr) || errors.Is(err, disk.ErrRead) {
		return &readError{err: err}
	}
	return err
}

// Run inspects the image at opts.Path, printing the text report on stdout.
// Failures to open or read the image are reported on stdout and are not
// returned; the returned error is set for malformed tables and output failures.
func Run(ctx context.Context, opts Options, stdout io.Writer) (*report.Report, error) {
	log := opts.Logger
	if log == nil {
		log = logger.New(io.Discard, logger.ErrorLevel)
	}

	rep := &report.Report{Path: opts.Path, Name: filepath.Base(opts.Path)}
	tw := report.NewTextWriter(stdout)

	src, err := source.Open(opts.Path, source.Options{
		Segmented: opts.Segmented,
		Mmap:      opts.Mmap,
	})
	if err != nil {
		log.Errorf("unable to open %s: %s", opts.Path, err)
		rep.Diagnostics = append(rep.Diagnostics, report.OpenError(opts.Path))
		return rep, tw.Write(rep)
	}
	defer src.Close()

	rep.Name = src.Name()
	rep.Size = src.Size()
	rep.Segments = src.Segments()

	log.Infof("Source: \t%s", absPath(opts.Path))
	log.Infof("Size: \t%s (%d segment(s))", fmtutil.FormatBytes(src.Size()), src.Segments())

	start := time.Now()

	err = runPasses(ctx, src, rep, &opts, log)

	var rerr *readError
	if errors.As(err, &rerr) {
		log.Errorf("unable to read %s: %s", opts.Path, rerr.err)
		rep.Diagnostics = append(rep.Diagnostics, report.OpenError(opts.Path))
		return rep, tw.Write(rep)
	}
	if err != nil {
		return rep, err
	}

	log.Debugf("Duration: \t%s", FormatDurationHMS(time.Since(start)))

	if opts.Mode == ModeHash {
		if rep.Digests != nil {
			err = tw.WriteDigests(rep.Digests)
		}
	} else {
		err = tw.Write(rep)
	}
	if err != nil {
		return rep, err
	}

	if opts.DFXMLPath != "" {
		if err := writeDFXML(opts.DFXMLPath, rep); err != nil {
			return rep, err
		}
		log.Infof("Report saved to: \t%s", absPath(opts.DFXMLPath))
	}
	return rep, nil
}

// runPasses runs the hash pass and the decode pass, one after the other or
// concurrently. Each pass reads through its own view of src.
func runPasses(ctx context.Context, src *source.Source, rep *report.Report, opts *Options, log *logger.Logger) error {
	doHash := !opts.NoHash || opts.Mode == ModeHash
	doDecode := opts.Mode != ModeHash

	hashPass := func(ctx context.Context) error {
		t, err := hashImage(ctx, src, opts, log)
		if err != nil {
			return err
		}
		rep.Digests = t
		return nil
	}

	var table *disk.Table
	decodePass := func() error {
		var err error
		table, err = decode(src.NewReadSeeker(), opts)
		return err
	}

	if !opts.Parallel || !doHash || !doDecode {
		if doHash {
			if err := hashPass(ctx); err != nil {
				return err
			}
		}
		if doDecode {
			if err := decodePass(); err != nil && !rep.Diagnose(err) {
				return err
			}
			rep.Table = table
		}
		return nil
	}

	var decodeErr error

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return hashPass(gctx)
	})
	// decode failures must not cancel the hash pass, they are classified
	// once both passes are done
	g.Go(func() error {
		decodeErr = decodePass()
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if decodeErr != nil && !rep.Diagnose(decodeErr) {
		return decodeErr
	}
	rep.Table = table
	return nil
}

func decode(r io.ReadSeeker, opts *Options) (*disk.Table, error) {
	var (
		t   *disk.Table
		err error
	)
	switch opts.Mode {
	case ModeMBR:
		t, err = disk.DecodeMBR(r, opts.Offsets)
	case ModeGPT:
		t, err = disk.DecodeGPT(r)
	default:
		t, err = disk.Decode(r, opts.Offsets)
	}
	if err != nil {
		return nil, classify(err)
	}
	return t, nil
}

func hashImage(ctx context.Context, src *source.Source, opts *Options, log *logger.Logger) (*digest.Triple, error) {
	var r io.Reader = src.NewReadSeeker()

	total := src.Size()
	if opts.Mode == ModeHash && opts.Decompress != "" && opts.Decompress != digest.CompressionNone {
		rc, err := digest.NewDecompressor(r, opts.Decompress, src.Path())
		if err != nil {
			return nil, classify(err)
		}
		defer rc.Close()

		r = rc
		total = 0
	}

	hopts := digest.Options{ChunkSize: opts.ChunkSize}
	if opts.Progress {
		stderr := opts.Stderr
		if stderr == nil {
			stderr = os.Stderr
		}
		progress := digest.NewProgress(stderr, total)
		hopts.Progress = progress.Add
		defer progress.Finish()
	}

	log.Infof("Hashing %s...", src.Name())

	t, err := digest.Compute(ctx, r, hopts)
	if err != nil {
		return nil, classify(err)
	}

	paths, err := digest.WriteFiles(opts.HashDir, src.Name(), t)
	if err != nil {
		return nil, err
	}
	for _, p := range paths {
		log.Infof("Digest saved to: \t%s", absPath(p))
	}
	return &t, nil
}

func writeDFXML(path string, rep *report.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file %q: %w", path, err)
	}
	defer f.Close()

	if err := report.WriteDFXML(f, rep); err != nil {
		return fmt.Errorf("failed to write report file %q: %w", path, err)
	}
	return f.Close()
}

func absPath(path string) string {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}

// FormatDurationHMS formats a time.Duration into HH:MM:SS string.
// It handles durations that might be less than an hour or greater than 24 hours.
func FormatDurationHMS(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	totalSeconds := int64(d.Seconds())

	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}
