// Package digest computes the MD5, SHA-256 and SHA-512 digests of an image in
// a single streaming pass and stores them next to each other as text files.
package digest

import (
	"context"
	"crypto/md5"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	osutil "github.com/ostafen/bootinfo/pkg/util/os"
)

const DefaultChunkSize = 4096

// Triple holds lowercase hex digests of the same byte stream.
type Triple struct {
	MD5    string
	SHA256 string
	SHA512 string
}

type Options struct {
	ChunkSize int
	// Progress is called with the number of bytes consumed by each chunk.
	Progress func(n int64)
}

// Compute streams r in fixed size chunks into the three hash functions.
// ctx is checked between chunks.
func Compute(ctx context.Context, r io.Reader, opts Options) (Triple, error) {
	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	hMD5, hSHA256, hSHA512 := md5.New(), sha256.New(), sha512.New()
	w := io.MultiWriter(hMD5, hSHA256, hSHA512)

	buf := make([]byte, chunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return Triple{}, err
		}

		n, err := io.ReadFull(r, buf)
		if n > 0 {
			w.Write(buf[:n])
			if opts.Progress != nil {
				opts.Progress(int64(n))
			}
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return Triple{}, fmt.Errorf("failed to read image: %w", err)
		}
	}

	return Triple{
		MD5:    hex.EncodeToString(hMD5.Sum(nil)),
		SHA256: hex.EncodeToString(hSHA256.Sum(nil)),
		SHA512: hex.EncodeToString(hSHA512.Sum(nil)),
	}, nil
}

// FileNames returns the digest file names for an image base name,
// in MD5, SHA-256, SHA-512 order.
func FileNames(base string) [3]string {
	return [3]string{
		"MD5-" + base + ".txt",
		"SHA-256-" + base + ".txt",
		"SHA-512-" + base + ".txt",
	}
}

// WriteFiles stores each digest of t in its own file inside dir, without a
// trailing newline. dir is created if missing; an empty dir means the working directory.
func WriteFiles(dir, base string, t Triple) ([]string, error) {
	if dir == "" {
		dir = "."
	}
	if _, err := osutil.EnsureDir(dir); err != nil {
		return nil, err
	}

	names := FileNames(base)
	values := [3]string{t.MD5, t.SHA256, t.SHA512}

	paths := make([]string, 0, len(names))
	for i, name := range names {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(values[i]), 0o644); err != nil {
			return paths, fmt.Errorf("failed to write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
