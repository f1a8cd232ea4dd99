package digest

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Compression formats accepted by NewDecompressor.
const (
	CompressionNone  = "none"
	CompressionAuto  = "auto"
	CompressionGzip  = "gzip"
	CompressionZstd  = "zstd"
	CompressionBzip2 = "bzip2"
)

// DetectCompression guesses the compression format from the file extension.
func DetectCompression(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".gzip":
		return CompressionGzip
	case ".zst", ".zstd":
		return CompressionZstd
	case ".bz2", ".bzip2":
		return CompressionBzip2
	}
	return CompressionNone
}

// NewDecompressor wraps r so that it yields the uncompressed stream.
// "auto" resolves the format from path.
func NewDecompressor(r io.Reader, format, path string) (io.ReadCloser, error) {
	if format == CompressionAuto {
		format = DetectCompression(path)
	}

	switch format {
	case "", CompressionNone:
		return io.NopCloser(r), nil
	case CompressionGzip:
		return gzip.NewReader(r)
	case CompressionZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return dec.IOReadCloser(), nil
	case CompressionBzip2:
		return bzip2.NewReader(r, &bzip2.ReaderConfig{})
	}
	return nil, fmt.Errorf("unsupported compression format: %s", format)
}
