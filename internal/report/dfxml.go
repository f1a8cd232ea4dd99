package report

import (
	"fmt"
	"io"

	"github.com/ostafen/bootinfo/internal/disk"
	"github.com/ostafen/bootinfo/internal/env"
	"github.com/ostafen/bootinfo/pkg/dfxml"
)

// WriteDFXML writes r as a DFXML document.
func WriteDFXML(w io.Writer, r *Report) error {
	dw := dfxml.NewDFXMLWriter(w)

	hdr := dfxml.DFXMLHeader{
		XmlOutput: dfxml.XmlOutputVersion,
		Metadata:  dfxml.DefaultMetadata,
		Creator: dfxml.Creator{
			Package:              env.AppName,
			Version:              env.Version,
			ExecutionEnvironment: dfxml.GetExecEnv(),
		},
		Source: dfxml.Source{
			ImageFilename: r.Name,
			SectorSize:    disk.SectorSize,
			ImageSize:     uint64(r.Size),
		},
	}
	if r.Segments > 1 {
		hdr.Source.Segments = r.Segments
	}
	if r.Digests != nil {
		hdr.Source.HashDigests = []dfxml.HashDigest{
			{Type: "md5", Value: r.Digests.MD5},
			{Type: "sha256", Value: r.Digests.SHA256},
			{Type: "sha512", Value: r.Digests.SHA512},
		}
	}

	if err := dw.WriteHeader(hdr); err != nil {
		return err
	}

	if r.Table != nil {
		if err := dw.WritePartitionSystem(PartitionSystem(r.Table)); err != nil {
			return err
		}
	}
	return dw.Close()
}

// PartitionSystem converts a decoded table to its DFXML representation.
func PartitionSystem(t *disk.Table) dfxml.PartitionSystem {
	var ps dfxml.PartitionSystem

	switch t.Scheme {
	case disk.SchemeMBR:
		ps.Type = "mbr"
	default:
		ps.Type = "gpt"
	}

	for _, p := range t.Partitions {
		ps.Partitions = append(ps.Partitions, dfxml.Partition{
			Index:    p.Slot + 1,
			TypeCode: fmt.Sprintf("%02x", uint8(p.PartitionType)),
			TypeStr:  p.PartitionType.Label(),
			StartLBA: uint64(p.StartLBA),
			ByteRuns: byteRuns(p.StartByte(), p.SizeBytes()),
		})
	}

	for _, b := range t.BootRecords {
		ps.BootRecords = append(ps.BootRecords, dfxml.BootRecord{
			Partition: b.Partition,
			Offset:    b.Offset,
			ImgOffset: b.SourceOffset,
			Hex:       b.Hex(),
		})
	}

	for _, e := range t.Entries {
		part := dfxml.Partition{
			Index:    e.Number,
			TypeStr:  e.KnownType(),
			TypeGUID: e.TypeGUIDString(),
			UUID:     e.RFC4122(),
			Name:     e.Name,
			StartLBA: e.StartLBA,
			EndLBA:   e.EndLBA,
		}
		if e.EndLBA >= e.StartLBA {
			part.ByteRuns = byteRuns(e.StartLBA*disk.SectorSize, (e.EndLBA-e.StartLBA+1)*disk.SectorSize)
		}
		ps.Partitions = append(ps.Partitions, part)
	}
	return ps
}

func byteRuns(start, length uint64) dfxml.ByteRuns {
	return dfxml.ByteRuns{
		Runs: []dfxml.ByteRun{{Offset: 0, ImgOffset: start, Length: length}},
	}
}
