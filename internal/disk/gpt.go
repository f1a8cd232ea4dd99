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
package disk

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"unicode/utf16"

	"golang.org/x/text/encoding/unicode"
)

const (
	GPTSignature    = "EFI PART"
	GPTHeaderOffset = SectorSize
	GPTHeaderSize   = 92

	// header-relative offsets
	hdrSignature          = 0
	hdrPartitionEntryLBA  = 72
	hdrNumPartitionEntry  = 80
	hdrPartitionEntrySize = 84

	// entry-relative offsets
	gptEntryTypeGUID    = 0
	gptEntryStartLBA    = 32
	gptEntryEndLBA      = 40
	gptEntryName        = 56
	gptEntryNameEnd     = 128
	gptMinimumEntrySize = gptEntryEndLBA + 8
)

var (
	ErrInvalidGPT = errors.New("not a valid GPT")

	// ErrEntrySize is returned when the header declares entries too small
	// to hold the LBA fields.
	ErrEntrySize = errors.New("invalid GPT partition entry size")

	// ErrTruncatedEntries is returned when the image ends inside the entry array.
	ErrTruncatedEntries = errors.New("truncated GPT partition entry array")

	// ErrMalformedName is returned for partition names that are not valid UTF-16.
	ErrMalformedName = errors.New("malformed GPT partition name")
)

// GPTHeader holds the header fields needed to walk the partition entry array.
type GPTHeader struct {
	Signature           [8]byte
	PartitionEntryLBA   uint64
	NumPartitionEntries uint32
	PartitionEntrySize  uint32
}

// EntryArrayOffset returns the byte offset of the partition entry array.
func (h *GPTHeader) EntryArrayOffset() (int64, error) {
	if h.PartitionEntryLBA > math.MaxInt64/SectorSize {
		return 0, fmt.Errorf("partition entry LBA %d out of range", h.PartitionEntryLBA)
	}
	return int64(h.PartitionEntryLBA) * SectorSize, nil
}

// ParseGPTHeader parses the 92-byte header prefix.
func ParseGPTHeader(data Cursor) (*GPTHeader, error) {
	if data.Len() < GPTHeaderSize {
		return nil, fmt.Errorf("%w: header truncated to %d bytes", ErrInvalidGPT, data.Len())
	}

	var hdr GPTHeader
	copy(hdr.Signature[:], data.BytesAt(hdrSignature, len(hdr.Signature)))
	if string(hdr.Signature[:]) != GPTSignature {
		return nil, fmt.Errorf("%w: signature %q", ErrInvalidGPT, hdr.Signature[:])
	}

	hdr.PartitionEntryLBA = data.Uint64At(hdrPartitionEntryLBA)
	hdr.NumPartitionEntries = data.Uint32At(hdrNumPartitionEntry)
	hdr.PartitionEntrySize = data.Uint32At(hdrPartitionEntrySize)
	return &hdr, nil
}

// GPTEntry is a used slot of the partition entry array.
type GPTEntry struct {
	Number   int // 1-based slot ordinal, counting unused slots
	TypeGUID GUID
	StartLBA uint64
	EndLBA   uint64
	Name     string
}

// TypeGUIDString returns the type GUID in the report's canonical form.
func (e *GPTEntry) TypeGUIDString() string {
	return CanonicalGUID(e.TypeGUID)
}

// RFC4122 returns the type GUID in the standard mixed-endian form.
func (e *GPTEntry) RFC4122() string {
	return RFC4122GUID(e.TypeGUID).String()
}

// KnownType returns the name of well-known partition types, or "" otherwise.
func (e *GPTEntry) KnownType() string {
	name, _ := KnownPartitionType(e.TypeGUID)
	return name
}

// ParseGPTEntry decodes one entry of the array. The returned bool is false
// for unused entries (all-zero type GUID), which are not decoded further.
func ParseGPTEntry(data Cursor, number int) (GPTEntry, bool, error) {
	if data.Len() < gptMinimumEntrySize {
		return GPTEntry{}, false, fmt.Errorf("%w: %d bytes", ErrEntrySize, data.Len())
	}

	e := GPTEntry{Number: number}
	copy(e.TypeGUID[:], data.BytesAt(gptEntryTypeGUID, GUIDSize))
	if e.TypeGUID.IsZero() {
		return GPTEntry{}, false, nil
	}

	e.StartLBA = data.Uint64At(gptEntryStartLBA)
	e.EndLBA = data.Uint64At(gptEntryEndLBA)

	name, err := decodePartitionName(data.BytesAt(gptEntryName, gptEntryNameEnd-gptEntryName))
	if err != nil {
		return GPTEntry{}, false, fmt.Errorf("partition entry %d: %w", number, err)
	}
	e.Name = name
	return e, true, nil
}

// DecodeGPT reads the GPT header at sector 1 and walks its partition entry array.
// Any error inside the array aborts the whole decode: no entries are returned.
func DecodeGPT(r io.ReadSeeker) (*Table, error) {
	buf := make([]byte, GPTHeaderSize)
	n, err := readAt(r, buf, GPTHeaderOffset)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("read GPT header: %w", err)
	}

	hdr, err := ParseGPTHeader(Cursor(buf[:n]))
	if err != nil {
		return nil, err
	}

	entries, err := readGPTEntries(r, hdr)
	if err != nil {
		return nil, err
	}
	return &Table{Scheme: SchemeGPT, Header: hdr, Entries: entries}, nil
}

func readGPTEntries(r io.ReadSeeker, hdr *GPTHeader) ([]GPTEntry, error) {
	if hdr.NumPartitionEntries == 0 {
		return nil, nil
	}
	if hdr.PartitionEntrySize < gptMinimumEntrySize {
		return nil, fmt.Errorf("%w: header declares %d bytes per entry", ErrEntrySize, hdr.PartitionEntrySize)
	}

	off, err := hdr.EntryArrayOffset()
	if err != nil {
		return nil, err
	}

	// the declared array must fit in the image before any entry is allocated
	end, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("%w: seek to end of image: %w", ErrRead, err)
	}
	arraySize := uint64(hdr.NumPartitionEntries) * uint64(hdr.PartitionEntrySize)
	if off > end || arraySize > uint64(end-off) {
		return nil, fmt.Errorf("%w: %d entries of %d bytes at offset %d exceed image size %d",
			ErrTruncatedEntries, hdr.NumPartitionEntries, hdr.PartitionEntrySize, off, end)
	}

	if _, err := r.Seek(off, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: seek to partition entry array: %w", ErrRead, err)
	}

	var entries []GPTEntry

	buf := make([]byte, hdr.PartitionEntrySize)
	for i := range int(hdr.NumPartitionEntries) {
		if _, err := io.ReadFull(r, buf); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil, fmt.Errorf("%w: entry %d of %d", ErrTruncatedEntries, i+1, hdr.NumPartitionEntries)
			}
			return nil, fmt.Errorf("%w: partition entry %d: %w", ErrRead, i+1, err)
		}

		e, used, err := ParseGPTEntry(Cursor(buf), i+1)
		if err != nil {
			return nil, err
		}
		if used {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

var utf16Encoding = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)

// decodePartitionName decodes a UTF-16 name field. A leading BOM selects the
// byte order, little-endian otherwise. Trailing NUL padding is removed.
func decodePartitionName(raw []byte) (string, error) {
	if len(raw)%2 != 0 {
		return "", fmt.Errorf("%w: odd length %d", ErrMalformedName, len(raw))
	}
	if err := checkSurrogates(raw); err != nil {
		return "", err
	}

	name, err := utf16Encoding.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedName, err)
	}
	return strings.TrimRight(string(name), "\x00"), nil
}

// checkSurrogates rejects unpaired surrogates, which the decoder would
// otherwise silently replace with U+FFFD.
func checkSurrogates(raw []byte) error {
	bigEndian := false
	switch {
	case bytes.HasPrefix(raw, []byte{0xFE, 0xFF}):
		bigEndian = true
		raw = raw[2:]
	case bytes.HasPrefix(raw, []byte{0xFF, 0xFE}):
		raw = raw[2:]
	}

	unit := func(i int) rune {
		if bigEndian {
			return rune(raw[i])<<8 | rune(raw[i+1])
		}
		return rune(raw[i+1])<<8 | rune(raw[i])
	}

	for i := 0; i < len(raw); i += 2 {
		u := unit(i)
		if !utf16.IsSurrogate(u) {
			continue
		}
		if u >= 0xDC00 || i+2 >= len(raw) {
			return fmt.Errorf("%w: unpaired surrogate 0x%04X at byte %d", ErrMalformedName, u, i)
		}
		if next := unit(i + 2); next < 0xDC00 || next > 0xDFFF {
			return fmt.Errorf("%w: unpaired surrogate 0x%04X at byte %d", ErrMalformedName, u, i)
		}
		i += 2
	}
	return nil
}
