package disk

import (
	"bytes"
	"fmt"
	"io"
)

type Scheme int

const (
	SchemeInvalid Scheme = iota
	SchemeMBR
	SchemeProtectiveMBR
	SchemeGPT
)

func (s Scheme) String() string {
	switch s {
	case SchemeMBR:
		return "mbr"
	case SchemeProtectiveMBR:
		return "protective-mbr"
	case SchemeGPT:
		return "gpt"
	default:
		return "invalid"
	}
}

// Table is the decoded partition table of an image. Partitions and
// BootRecords are set for MBR images, Header and Entries for GPT images.
type Table struct {
	Scheme      Scheme
	Partitions  []MBRPartitionEntry
	BootRecords []BootRecord
	Header      *GPTHeader
	Entries     []GPTEntry
}

// DetectScheme inspects the first sector (and, without an MBR signature,
// the GPT header sector) to tell which partitioning scheme an image uses.
func DetectScheme(r io.ReadSeeker) (Scheme, error) {
	scheme, _, err := detect(r)
	return scheme, err
}

func detect(r io.ReadSeeker) (Scheme, *MBR, error) {
	sector, err := ReadSector(r, 0)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return SchemeInvalid, nil, fmt.Errorf("read first sector: %w", err)
	}

	mbr, err := ParseMBR(sector)
	if err == nil {
		if mbr.IsProtective() {
			return SchemeProtectiveMBR, mbr, nil
		}
		return SchemeMBR, mbr, nil
	}

	var sig [len(GPTSignature)]byte
	_, err = readAt(r, sig[:], GPTHeaderOffset)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return SchemeInvalid, nil, fmt.Errorf("read GPT signature: %w", err)
	}
	if bytes.Equal(sig[:], []byte(GPTSignature)) {
		return SchemeGPT, nil, nil
	}
	return SchemeInvalid, nil, nil
}

// Decode decodes whatever partition table the image carries: an MBR with
// a valid signature is decoded as such, anything else is handed to DecodeGPT.
func Decode(r io.ReadSeeker, offsets []int64) (*Table, error) {
	scheme, mbr, err := detect(r)
	if err != nil {
		return nil, err
	}
	if scheme == SchemeMBR {
		return decodeMBR(r, mbr, offsets)
	}
	return DecodeGPT(r)
}

// DecodeMBR decodes the MBR partition table, delegating to DecodeGPT when
// the first slot is a protective 0xEE entry. Boot record windows are read
// for every used slot i with i < len(offsets).
func DecodeMBR(r io.ReadSeeker, offsets []int64) (*Table, error) {
	scheme, mbr, err := detect(r)
	if err != nil {
		return nil, err
	}

	switch scheme {
	case SchemeMBR:
		return decodeMBR(r, mbr, offsets)
	case SchemeProtectiveMBR:
		return DecodeGPT(r)
	default:
		return nil, ErrInvalidMBR
	}
}
