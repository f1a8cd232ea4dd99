package disk_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/ostafen/bootinfo/internal/disk"
	"github.com/stretchr/testify/require"
)

func TestDecodeMBRSinglePartition(t *testing.T) {
	img := newMBRImage(disk.SectorSize, true, mbrSlot{typ: 0x07, start: 2048, sectors: 204800})

	table, err := disk.DecodeMBR(reader(img), nil)
	require.NoError(t, err)
	require.Equal(t, disk.SchemeMBR, table.Scheme)
	require.Len(t, table.Partitions, 1)
	require.Empty(t, table.BootRecords)

	p := table.Partitions[0]
	require.Equal(t, 0, p.Slot)
	require.Equal(t, disk.PartitionTypeNTFS, p.PartitionType)
	require.Equal(t, "HPFS/NTFS/exFAT", p.PartitionType.Label())
	require.Equal(t, uint64(1048576), p.StartByte())
	require.Equal(t, uint64(104857600), p.SizeBytes())
}

func TestMBRPartitionLabels(t *testing.T) {
	labels := map[disk.MBRPartition]string{
		0x07: "HPFS/NTFS/exFAT",
		0x06: "FAT16",
		0x0B: "FAT32",
		0x0C: "FAT32 LBA",
		0x83: "Linux",
		0xA9: "NetBSD",
		0x05: "Unknown",
		0x82: "Unknown",
		0xFF: "Unknown",
	}
	for typ, label := range labels {
		require.Equal(t, label, typ.Label(), "type 0x%02x", uint8(typ))
	}
}

func TestDecodeMBRSkipsEmptySlots(t *testing.T) {
	used := []mbrSlot{
		{typ: 0x83, start: 2048, sectors: 100},
		{typ: 0x0B, start: 4096, sectors: 200},
		{typ: 0x42, start: 8192, sectors: 300},
	}
	perms := [][]int{{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0}}

	for _, perm := range perms {
		for emptyAt := range 4 {
			var slots []mbrSlot
			next := 0
			for i := range 4 {
				if i == emptyAt {
					slots = append(slots, mbrSlot{typ: 0x00, start: 1, sectors: 1})
					continue
				}
				slots = append(slots, used[perm[next]])
				next++
			}

			table, err := disk.DecodeMBR(reader(newMBRImage(disk.SectorSize, true, slots...)), nil)
			require.NoError(t, err)
			require.Len(t, table.Partitions, 3)

			for _, p := range table.Partitions {
				require.NotEqual(t, emptyAt, p.Slot)
				require.False(t, p.IsEmpty())
			}
			for i := 1; i < len(table.Partitions); i++ {
				require.Less(t, table.Partitions[i-1].Slot, table.Partitions[i].Slot)
			}
		}
	}
}

func TestDecodeMBRInvalidSignature(t *testing.T) {
	img := newMBRImage(disk.SectorSize, false, mbrSlot{typ: 0x07, start: 2048, sectors: 1})

	_, err := disk.DecodeMBR(reader(img), nil)
	require.ErrorIs(t, err, disk.ErrInvalidMBR)

	_, err = disk.DecodeMBR(reader(make([]byte, 100)), nil)
	require.ErrorIs(t, err, disk.ErrInvalidMBR)
}

func TestDecodeMBRProtectiveDelegatesToGPT(t *testing.T) {
	img := newGPTImage(true, 2, 128,
		gptPart{typeGUID: disk.GUID{1, 2, 3}, start: 34, end: 99, name: "data"},
	)
	// further slots must not be interpreted as MBR partitions
	copy(img[446+16:], newMBRImage(disk.SectorSize, true, mbrSlot{typ: 0x07, start: 2048, sectors: 10})[446:446+16])

	table, err := disk.DecodeMBR(reader(img), []int64{0, 0})
	require.NoError(t, err)
	require.Equal(t, disk.SchemeGPT, table.Scheme)
	require.Empty(t, table.Partitions)
	require.Empty(t, table.BootRecords)
	require.Len(t, table.Entries, 1)
}

func TestDecodeMBRBootRecords(t *testing.T) {
	img := newMBRImage(4*disk.SectorSize, true,
		mbrSlot{typ: 0x07, start: 1, sectors: 2},
		mbrSlot{typ: 0x00},
		mbrSlot{typ: 0x83, start: 3, sectors: 1},
	)
	copy(img[disk.SectorSize+3:], append([]byte("NTFS    "), 0x00, 0x02, 0x08, 0x00, 0x00, 0x00, 0x00, 0xF8))
	copy(img[3*disk.SectorSize:], "LINUXBOOTRECORD!")

	// slot 1 is empty, its offset is never used
	table, err := disk.DecodeMBR(reader(img), []int64{3, 7, 0})
	require.NoError(t, err)
	require.Len(t, table.Partitions, 2)
	require.Len(t, table.BootRecords, 2)

	ntfs := table.BootRecords[0]
	require.Equal(t, 1, ntfs.Partition)
	require.Equal(t, int64(3), ntfs.Offset)
	require.Equal(t, int64(515), ntfs.SourceOffset)
	require.Equal(t, "4E 54 46 53 20 20 20 20 00 02 08 00 00 00 00 F8", ntfs.Hex())
	require.Equal(t, "N T F S"+strings.Repeat(" ", 9)+". . . . . . . .", ntfs.ASCII())

	linux := table.BootRecords[1]
	require.Equal(t, 3, linux.Partition)
	require.Equal(t, int64(0), linux.Offset)
	require.Equal(t, "L I N U X B O O T R E C O R D !", linux.ASCII())
}

func TestDecodeMBRBootRecordBounds(t *testing.T) {
	img := newMBRImage(2*disk.SectorSize, true,
		mbrSlot{typ: 0x0C, start: 1, sectors: 1},
	)

	// offsets beyond the used slots are ignored
	table, err := disk.DecodeMBR(reader(img), []int64{0, 10, 20, 30, 40})
	require.NoError(t, err)
	require.Len(t, table.BootRecords, 1)

	// a window crossing the end of the image keeps the bytes that exist
	table, err = disk.DecodeMBR(reader(img), []int64{disk.SectorSize - 4})
	require.NoError(t, err)
	require.Len(t, table.BootRecords, 1)
	require.Len(t, table.BootRecords[0].Data, 4)

	// entirely past the end of the image
	table, err = disk.DecodeMBR(reader(img), []int64{10 * disk.SectorSize})
	require.NoError(t, err)
	require.Empty(t, table.BootRecords[0].Data)

	_, err = disk.DecodeMBR(reader(img), []int64{-2 * disk.SectorSize})
	require.ErrorIs(t, err, disk.ErrRead)
	require.False(t, errors.Is(err, disk.ErrInvalidMBR))
}

func TestBootRecordRendering(t *testing.T) {
	rec := disk.BootRecord{Data: []byte{0x00, 0x1F, 0x20, 0x41, 0x7E, 0x7F, 0xFF, 0xEB}}
	require.Equal(t, "00 1F 20 41 7E 7F FF EB", rec.Hex())
	require.Equal(t, ". .   A ~ . . .", rec.ASCII())
}
