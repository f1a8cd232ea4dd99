// Package report renders decoded partition tables, in the plain text format
// printed on stdout and as a DFXML document.
package report

import (
	"errors"
	"fmt"
	"io"

	"github.com/ostafen/bootinfo/internal/digest"
	"github.com/ostafen/bootinfo/internal/disk"
)

// Diagnostic lines printed in place of a partition table.
const (
	NotValidMBR = "Not a valid MBR."
	NotValidGPT = "Not a valid GPT."
)

func OpenError(path string) string {
	return "Error opening file: " + path
}

// Report collects the outcome of inspecting one image.
type Report struct {
	Path     string
	Name     string
	Size     int64
	Segments int

	// Table is nil when the image could not be decoded.
	Table *disk.Table
	// Digests is nil when hashing was disabled or failed.
	Digests *digest.Triple

	Diagnostics []string
}

// Diagnose records the diagnostic matching a decode error. It returns false
// for errors that are not bad signatures.
func (r *Report) Diagnose(err error) bool {
	switch {
	case errors.Is(err, disk.ErrInvalidMBR):
		r.Diagnostics = append(r.Diagnostics, NotValidMBR)
	case errors.Is(err, disk.ErrInvalidGPT):
		r.Diagnostics = append(r.Diagnostics, NotValidGPT)
	default:
		return false
	}
	return true
}

// TextWriter prints reports in the line format of the command line tool.
type TextWriter struct {
	w io.Writer
}

func NewTextWriter(w io.Writer) *TextWriter {
	return &TextWriter{w: w}
}

// Write prints the partition table records of r followed by its diagnostics.
func (tw *TextWriter) Write(r *Report) error {
	if r.Table != nil {
		if err := tw.WriteTable(r.Table); err != nil {
			return err
		}
	}

	for _, d := range r.Diagnostics {
		if _, err := fmt.Fprintln(tw.w, d); err != nil {
			return err
		}
	}
	return nil
}

// WriteTable prints MBR partitions, then boot records, then GPT entries.
func (tw *TextWriter) WriteTable(t *disk.Table) error {
	for i := range t.Partitions {
		if err := tw.WriteMBRPartition(&t.Partitions[i]); err != nil {
			return err
		}
	}

	for i := range t.BootRecords {
		if err := tw.WriteBootRecord(&t.BootRecords[i]); err != nil {
			return err
		}
	}

	for i := range t.Entries {
		if err := tw.WriteGPTEntry(&t.Entries[i]); err != nil {
			return err
		}
	}
	return nil
}

// WriteDigests prints the image digests, one per line.
func (tw *TextWriter) WriteDigests(t *digest.Triple) error {
	_, err := fmt.Fprintf(tw.w, "MD5: %s\nSHA-256: %s\nSHA-512: %s\n", t.MD5, t.SHA256, t.SHA512)
	return err
}

func (tw *TextWriter) WriteMBRPartition(p *disk.MBRPartitionEntry) error {
	_, err := fmt.Fprintf(tw.w, "(%02x), %s, %d, %d\n",
		uint8(p.PartitionType),
		p.PartitionType.Label(),
		p.StartByte(),
		p.SizeBytes(),
	)
	return err
}

func (tw *TextWriter) WriteBootRecord(b *disk.BootRecord) error {
	_, err := fmt.Fprintf(tw.w, "Partition number: %d\n16 bytes of boot record from offset %d: %s\nASCII: %s\n",
		b.Partition,
		b.Offset,
		b.Hex(),
		b.ASCII(),
	)
	return err
}

func (tw *TextWriter) WriteGPTEntry(e *disk.GPTEntry) error {
	_, err := fmt.Fprintf(tw.w,
		"Partition number: %d\n"+
			"Partition Type GUID : %s\n"+
			"Starting LBA in hex: 0x%X\n"+
			"Ending LBA in hex: 0x%X\n"+
			"Starting LBA in Decimal: %d\n"+
			"Ending LBA in Decimal: %d\n"+
			"Partition name: %s\n\n",
		e.Number,
		e.TypeGUIDString(),
		e.StartLBA,
		e.EndLBA,
		e.StartLBA,
		e.EndLBA,
		e.Name,
	)
	return err
}
