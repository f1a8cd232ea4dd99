package disk

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// SectorSize is the logical sector size assumed for every image.
const SectorSize = 512

// Cursor gives named little-endian accessors over a fixed binary layout.
// Offsets are relative to the start of the slice; callers check the length
// before reading, out-of-range accesses panic like encoding/binary does.
type Cursor []byte

func (c Cursor) Len() int { return len(c) }

func (c Cursor) Uint8At(off int) uint8 {
	return c[off]
}

func (c Cursor) Uint16At(off int) uint16 {
	return binary.LittleEndian.Uint16(c[off : off+2])
}

func (c Cursor) Uint32At(off int) uint32 {
	return binary.LittleEndian.Uint32(c[off : off+4])
}

func (c Cursor) Uint64At(off int) uint64 {
	return binary.LittleEndian.Uint64(c[off : off+8])
}

// BytesAt returns up to n bytes starting at off, clamped to the cursor length.
func (c Cursor) BytesAt(off, n int) []byte {
	if off >= len(c) {
		return nil
	}
	return c[off:min(off+n, len(c))]
}

// Slice returns the sub-cursor [off, off+n).
func (c Cursor) Slice(off, n int) Cursor {
	return c[off : off+n]
}

// ErrRead marks failures to seek or read the image itself, as opposed to
// malformed partition tables.
var ErrRead = errors.New("unable to read image")

// readAt seeks to the absolute offset off and fills buf.
// It returns io.EOF when nothing could be read and io.ErrUnexpectedEOF
// on a partial read, together with the number of bytes read.
func readAt(r io.ReadSeeker, buf []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("%w: invalid read offset %d", ErrRead, off)
	}
	if _, err := r.Seek(off, io.SeekStart); err != nil {
		return 0, fmt.Errorf("%w: seek to offset %d: %w", ErrRead, off, err)
	}

	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return n, fmt.Errorf("%w: offset %d: %w", ErrRead, off, err)
	}
	return n, err
}

// ReadSector reads the sector at the given LBA. A sector truncated by the
// end of the image is returned together with io.ErrUnexpectedEOF.
func ReadSector(r io.ReadSeeker, lba uint64) (Cursor, error) {
	var buf [SectorSize]byte
	n, err := readAt(r, buf[:], int64(lba)*SectorSize)
	return Cursor(buf[:n]), err
}
