package disk_test

import (
	"bytes"
	"encoding/binary"
	"unicode/utf16"

	"github.com/ostafen/bootinfo/internal/disk"
)

type mbrSlot struct {
	typ     byte
	start   uint32
	sectors uint32
}

// newMBRImage returns an image of the given size whose first sector holds
// the slots and, if sign is set, the 0x55 0xAA signature.
func newMBRImage(size int, sign bool, slots ...mbrSlot) []byte {
	img := make([]byte, max(size, disk.SectorSize))
	for i, s := range slots {
		off := 446 + i*16
		img[off+4] = s.typ
		binary.LittleEndian.PutUint32(img[off+8:], s.start)
		binary.LittleEndian.PutUint32(img[off+12:], s.sectors)
	}
	if sign {
		img[510], img[511] = 0x55, 0xAA
	}
	return img
}

type gptPart struct {
	typeGUID disk.GUID
	start    uint64
	end      uint64
	name     string
}

// newGPTImage lays out a protective MBR (if protective is set), a GPT header
// at LBA 1 and an entry array at entryLBA with entries of entrySize bytes.
// Zero-valued parts produce unused slots.
func newGPTImage(protective bool, entryLBA uint64, entrySize int, parts ...gptPart) []byte {
	arrayOff := int(entryLBA) * disk.SectorSize
	img := make([]byte, arrayOff+len(parts)*entrySize+disk.SectorSize)

	if protective {
		copy(img, newMBRImage(disk.SectorSize, true, mbrSlot{typ: 0xEE, start: 1, sectors: 0xFFFFFFFF}))
	}

	hdr := img[disk.SectorSize:]
	copy(hdr, disk.GPTSignature)
	binary.LittleEndian.PutUint64(hdr[72:], entryLBA)
	binary.LittleEndian.PutUint32(hdr[80:], uint32(len(parts)))
	binary.LittleEndian.PutUint32(hdr[84:], uint32(entrySize))

	for i, p := range parts {
		e := img[arrayOff+i*entrySize:]
		copy(e, p.typeGUID[:])
		binary.LittleEndian.PutUint64(e[32:], p.start)
		binary.LittleEndian.PutUint64(e[40:], p.end)
		if entrySize > 56 {
			copy(e[56:min(128, entrySize)], encodeUTF16LE(p.name))
		}
	}
	return img
}

func encodeUTF16LE(s string) []byte {
	units := utf16.Encode([]rune(s))
	buf := make([]byte, len(units)*2)
	for i, u := range units {
		binary.LittleEndian.PutUint16(buf[i*2:], u)
	}
	return buf
}

func reader(img []byte) *bytes.Reader {
	return bytes.NewReader(img)
}
