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
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	MBRSignature = 0xAA55

	mbrTableOffset     = 0x1BE
	mbrEntrySize       = 16
	mbrEntryCount      = 4
	mbrSignatureOffset = 0x1FE

	// offsets relative to the start of a partition table slot
	entryBootIndicator = 0x00
	entryType          = 0x04
	entryStartLBA      = 0x08
	entryTotalSectors  = 0x0C
)

// BootRecordSize is the size of the window read for each boot record request.
const BootRecordSize = 16

var ErrInvalidMBR = errors.New("not a valid MBR")

type MBRPartition uint8

const (
	PartitionTypeEmpty    MBRPartition = 0x00
	PartitionTypeFAT16    MBRPartition = 0x06
	PartitionTypeNTFS     MBRPartition = 0x07
	PartitionTypeFAT32    MBRPartition = 0x0B
	PartitionTypeFAT32LBA MBRPartition = 0x0C
	PartitionTypeLinux    MBRPartition = 0x83
	PartitionTypeNetBSD   MBRPartition = 0xA9
	PartitionTypeGPT      MBRPartition = 0xEE
)

const unknownPartitionType = "Unknown"

var partitionTypeNames = map[MBRPartition]string{
	PartitionTypeNTFS:     "HPFS/NTFS/exFAT",
	PartitionTypeFAT16:    "FAT16",
	PartitionTypeFAT32:    "FAT32",
	PartitionTypeFAT32LBA: "FAT32 LBA",
	PartitionTypeLinux:    "Linux",
	PartitionTypeNetBSD:   "NetBSD",
}

// Label returns the human readable name of the partition type, or "Unknown".
func (t MBRPartition) Label() string {
	if name, ok := partitionTypeNames[t]; ok {
		return name
	}
	return unknownPartitionType
}

// MBRPartitionEntry represents a single 16-byte entry in the MBR's partition table.
type MBRPartitionEntry struct {
	Slot          int          // 0-based position in the partition table
	BootIndicator uint8        // 0x80 for bootable, 0x00 for inactive
	PartitionType MBRPartition // 0x04
	StartLBA      uint32       // 0x08
	TotalSectors  uint32       // 0x0C
}

// StartByte returns the byte offset of the partition within the image.
func (p *MBRPartitionEntry) StartByte() uint64 {
	return uint64(p.StartLBA) * SectorSize
}

// SizeBytes returns the size of the partition in bytes.
func (p *MBRPartitionEntry) SizeBytes() uint64 {
	return uint64(p.TotalSectors) * SectorSize
}

func (p *MBRPartitionEntry) IsEmpty() bool {
	return p.PartitionType == PartitionTypeEmpty
}

// MBR represents the partition table and signature of a Master Boot Record.
type MBR struct {
	PartitionEntries [mbrEntryCount]MBRPartitionEntry
	Signature        uint16
}

// IsProtective reports whether the first slot marks the disk as GPT backed.
func (m *MBR) IsProtective() bool {
	return m.PartitionEntries[0].PartitionType == PartitionTypeGPT
}

// ParseMBR parses the first sector of an image. Sectors shorter than
// SectorSize or without the 0xAA55 signature yield ErrInvalidMBR.
func ParseMBR(sector Cursor) (*MBR, error) {
	if sector.Len() < SectorSize {
		return nil, fmt.Errorf("%w: sector truncated to %d bytes", ErrInvalidMBR, sector.Len())
	}

	mbr := MBR{Signature: sector.Uint16At(mbrSignatureOffset)}
	if mbr.Signature != MBRSignature {
		return nil, fmt.Errorf("%w: signature 0x%04X", ErrInvalidMBR, mbr.Signature)
	}

	for i := range mbr.PartitionEntries {
		slot := sector.Slice(mbrTableOffset+i*mbrEntrySize, mbrEntrySize)

		mbr.PartitionEntries[i] = MBRPartitionEntry{
			Slot:          i,
			BootIndicator: slot.Uint8At(entryBootIndicator),
			PartitionType: MBRPartition(slot.Uint8At(entryType)),
			StartLBA:      slot.Uint32At(entryStartLBA),
			TotalSectors:  slot.Uint32At(entryTotalSectors),
		}
	}
	return &mbr, nil
}

// BootRecord is a small window of bytes read from inside a partition.
type BootRecord struct {
	Partition    int    // 1-based slot ordinal
	Offset       int64  // offset requested relative to the partition start
	SourceOffset int64  // absolute offset in the image
	Data         []byte // up to BootRecordSize bytes
}

// Hex renders the window as uppercase byte pairs separated by spaces.
func (b *BootRecord) Hex() string {
	pairs := make([]string, len(b.Data))
	for i, v := range b.Data {
		pairs[i] = fmt.Sprintf("%02X", v)
	}
	return strings.Join(pairs, " ")
}

// ASCII renders printable bytes as characters and everything else as '.',
// one space between characters.
func (b *BootRecord) ASCII() string {
	chars := make([]string, len(b.Data))
	for i, v := range b.Data {
		if v >= 32 && v <= 126 {
			chars[i] = string(rune(v))
		} else {
			chars[i] = "."
		}
	}
	return strings.Join(chars, " ")
}

// decodeMBR collects the used partitions of mbr and the boot record windows
// requested by offsets. offsets is indexed by slot, not by used partition.
func decodeMBR(r io.ReadSeeker, mbr *MBR, offsets []int64) (*Table, error) {
	t := &Table{Scheme: SchemeMBR}

	for i := range mbr.PartitionEntries {
		p := mbr.PartitionEntries[i]
		if p.IsEmpty() {
			continue
		}
		t.Partitions = append(t.Partitions, p)

		if i >= len(offsets) {
			continue
		}

		rec, err := readBootRecord(r, &p, offsets[i])
		if err != nil {
			return nil, err
		}
		t.BootRecords = append(t.BootRecords, rec)
	}
	return t, nil
}

func readBootRecord(r io.ReadSeeker, p *MBRPartitionEntry, offset int64) (BootRecord, error) {
	src := int64(p.StartByte()) + offset

	buf := make([]byte, BootRecordSize)
	n, err := readAt(r, buf, src)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return BootRecord{}, fmt.Errorf("read boot record of partition %d at offset %d: %w", p.Slot+1, src, err)
	}

	return BootRecord{
		Partition:    p.Slot + 1,
		Offset:       offset,
		SourceOffset: src,
		Data:         buf[:n],
	}, nil
}
