package disk_test

import (
	"encoding/binary"
	"testing"

	"github.com/google/uuid"
	"github.com/ostafen/bootinfo/internal/disk"
	"github.com/stretchr/testify/require"
)

var (
	efiSystem = disk.GUIDFromUUID(uuid.MustParse("c12a7328-f81f-11d2-ba4b-00a0c93ec93b"))
	linuxData = disk.GUIDFromUUID(uuid.MustParse("0fc63daf-8483-4772-8e79-3d69d8477de4"))
)

func TestDecodeGPT(t *testing.T) {
	img := newGPTImage(true, 2, 128,
		gptPart{typeGUID: efiSystem, start: 2048, end: 206847, name: "EFI System Partition"},
		gptPart{},
		gptPart{typeGUID: linuxData, start: 206848, end: 0x1FFFFDE, name: "rootfs"},
	)

	table, err := disk.DecodeGPT(reader(img))
	require.NoError(t, err)
	require.Equal(t, disk.SchemeGPT, table.Scheme)
	require.Equal(t, uint64(2), table.Header.PartitionEntryLBA)
	require.Equal(t, uint32(3), table.Header.NumPartitionEntries)
	require.Equal(t, uint32(128), table.Header.PartitionEntrySize)

	require.Len(t, table.Entries, 2)

	esp := table.Entries[0]
	require.Equal(t, 1, esp.Number)
	require.Equal(t, "3bc93ec9a0004bba11d2f81fc12a7328", esp.TypeGUIDString())
	require.Equal(t, uint64(2048), esp.StartLBA)
	require.Equal(t, uint64(206847), esp.EndLBA)
	require.Equal(t, "EFI System Partition", esp.Name)

	// the unused second slot still counts towards the ordinal
	root := table.Entries[1]
	require.Equal(t, 3, root.Number)
	require.Equal(t, "e47d47d8693d798e477284830fc63daf", root.TypeGUIDString())
	require.Equal(t, uint64(0x1FFFFDE), root.EndLBA)
	require.Equal(t, "rootfs", root.Name)
}

func TestDecodeGPTWithoutProtectiveMBR(t *testing.T) {
	img := newGPTImage(false, 2, 128, gptPart{typeGUID: linuxData, start: 34, end: 40, name: "x"})

	table, err := disk.DecodeGPT(reader(img))
	require.NoError(t, err)
	require.Len(t, table.Entries, 1)
}

func TestDecodeGPTInvalidSignature(t *testing.T) {
	img := newGPTImage(true, 2, 128, gptPart{typeGUID: linuxData, start: 34, end: 40})
	copy(img[disk.SectorSize:], "EFI FART")

	_, err := disk.DecodeGPT(reader(img))
	require.ErrorIs(t, err, disk.ErrInvalidGPT)

	// too short to hold a header
	_, err = disk.DecodeGPT(reader(make([]byte, disk.SectorSize+40)))
	require.ErrorIs(t, err, disk.ErrInvalidGPT)

	_, err = disk.DecodeGPT(reader(nil))
	require.ErrorIs(t, err, disk.ErrInvalidGPT)
}

func TestDecodeGPTSkipsZeroGUIDs(t *testing.T) {
	img := newGPTImage(true, 2, 128, gptPart{}, gptPart{}, gptPart{name: "ignored"})

	table, err := disk.DecodeGPT(reader(img))
	require.NoError(t, err)
	require.Empty(t, table.Entries)
}

func TestDecodeGPTUnusedEntryNameIsIgnored(t *testing.T) {
	img := newGPTImage(true, 2, 128,
		gptPart{typeGUID: efiSystem, start: 10, end: 20, name: "boot"},
		gptPart{},
		gptPart{typeGUID: linuxData, start: 21, end: 30, name: "root"},
	)
	// lone high surrogate in the name of the unused entry
	binary.LittleEndian.PutUint16(img[2*disk.SectorSize+128+56:], 0xD800)
	binary.LittleEndian.PutUint16(img[2*disk.SectorSize+128+58:], 0x0041)

	table, err := disk.DecodeGPT(reader(img))
	require.NoError(t, err)
	require.Len(t, table.Entries, 2)
	require.Equal(t, 1, table.Entries[0].Number)
	require.Equal(t, 3, table.Entries[1].Number)
	require.Equal(t, "root", table.Entries[1].Name)
}

func TestDecodeGPTEntrySizeIsDataDriven(t *testing.T) {
	for _, size := range []int{48, 64, 128, 256, 512} {
		img := newGPTImage(true, 4, size,
			gptPart{typeGUID: efiSystem, start: 10, end: 20, name: "boot"},
			gptPart{typeGUID: linuxData, start: 21, end: 30, name: "root"},
		)

		table, err := disk.DecodeGPT(reader(img))
		require.NoError(t, err, "entry size %d", size)
		require.Len(t, table.Entries, 2)
		require.Equal(t, uint64(21), table.Entries[1].StartLBA)

		if size >= 128 {
			require.Equal(t, "root", table.Entries[1].Name)
		}
	}
}

func TestDecodeGPTInvalidEntrySize(t *testing.T) {
	img := newGPTImage(true, 2, 128, gptPart{typeGUID: linuxData, start: 34, end: 40})
	binary.LittleEndian.PutUint32(img[disk.SectorSize+84:], 16)

	_, err := disk.DecodeGPT(reader(img))
	require.ErrorIs(t, err, disk.ErrEntrySize)
}

func TestDecodeGPTTruncatedEntries(t *testing.T) {
	img := newGPTImage(true, 2, 128, gptPart{typeGUID: linuxData, start: 34, end: 40, name: "a"})
	binary.LittleEndian.PutUint32(img[disk.SectorSize+80:], 128)

	table, err := disk.DecodeGPT(reader(img))
	require.ErrorIs(t, err, disk.ErrTruncatedEntries)
	require.Nil(t, table)
}

func TestDecodeGPTOversizedEntryArray(t *testing.T) {
	img := newGPTImage(true, 2, 128, gptPart{typeGUID: linuxData, start: 34, end: 40, name: "a"})
	binary.LittleEndian.PutUint32(img[disk.SectorSize+84:], 0xF0000000)

	table, err := disk.DecodeGPT(reader(img))
	require.ErrorIs(t, err, disk.ErrTruncatedEntries)
	require.Nil(t, table)

	// entry array placed past the end of the image
	img = newGPTImage(true, 2, 128, gptPart{typeGUID: linuxData, start: 34, end: 40, name: "a"})
	binary.LittleEndian.PutUint64(img[disk.SectorSize+72:], 1<<20)

	table, err = disk.DecodeGPT(reader(img))
	require.ErrorIs(t, err, disk.ErrTruncatedEntries)
	require.Nil(t, table)
}

func TestDecodeGPTMalformedNameAbortsDecode(t *testing.T) {
	img := newGPTImage(true, 2, 128,
		gptPart{typeGUID: efiSystem, start: 10, end: 20, name: "good"},
		gptPart{typeGUID: linuxData, start: 21, end: 30},
	)
	// lone high surrogate in the second entry's name
	binary.LittleEndian.PutUint16(img[2*disk.SectorSize+128+56:], 0xD800)
	binary.LittleEndian.PutUint16(img[2*disk.SectorSize+128+58:], 0x0041)

	table, err := disk.DecodeGPT(reader(img))
	require.ErrorIs(t, err, disk.ErrMalformedName)
	require.Nil(t, table)
}

func TestGPTNameDecoding(t *testing.T) {
	entry := func(name []byte) []byte {
		e := make([]byte, 128)
		copy(e, linuxData[:])
		copy(e[56:], name)
		return e
	}

	e, used, err := disk.ParseGPTEntry(entry(encodeUTF16LE("Basic data partition")), 1)
	require.NoError(t, err)
	require.True(t, used)
	require.Equal(t, "Basic data partition", e.Name)

	// surrogate pair
	e, _, err = disk.ParseGPTEntry(entry(encodeUTF16LE("disk \U0001F4BE")), 1)
	require.NoError(t, err)
	require.Equal(t, "disk \U0001F4BE", e.Name)

	// big-endian with a byte order mark
	e, _, err = disk.ParseGPTEntry(entry([]byte{0xFE, 0xFF, 0x00, 'o', 0x00, 'k'}), 1)
	require.NoError(t, err)
	require.Equal(t, "ok", e.Name)

	// unpaired low surrogate
	_, _, err = disk.ParseGPTEntry(entry([]byte{0x00, 0xDC, 'a', 0x00}), 1)
	require.ErrorIs(t, err, disk.ErrMalformedName)

	// odd-length name field
	odd := make([]byte, 67)
	copy(odd, linuxData[:])
	_, _, err = disk.ParseGPTEntry(odd, 1)
	require.ErrorIs(t, err, disk.ErrMalformedName)
}
