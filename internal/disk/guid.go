package disk

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// GUIDSize is the on-disk size of a GPT GUID.
const GUIDSize = 16

type GUID [GUIDSize]byte

// ReverseGUID reverses the whole 16-byte buffer end to end.
func ReverseGUID(g GUID) GUID {
	var r GUID
	for i := range g {
		r[GUIDSize-1-i] = g[i]
	}
	return r
}

// CanonicalGUID renders g the way the partition report prints type GUIDs:
// the raw bytes reversed as a whole, in lowercase hex without separators.
//
// This is not the RFC 4122 form used by most GPT tools (which swaps only the
// first three fields). Reports compared against such tools must use RFC4122GUID.
func CanonicalGUID(g GUID) string {
	r := ReverseGUID(g)
	return hex.EncodeToString(r[:])
}

// RFC4122GUID converts the mixed-endian on-disk representation to a uuid.UUID.
func RFC4122GUID(g GUID) uuid.UUID {
	var u uuid.UUID
	u[0], u[1], u[2], u[3] = g[3], g[2], g[1], g[0]
	u[4], u[5] = g[5], g[4]
	u[6], u[7] = g[7], g[6]
	copy(u[8:], g[8:])
	return u
}

// GUIDFromUUID is the inverse of RFC4122GUID.
func GUIDFromUUID(u uuid.UUID) GUID {
	var g GUID
	g[0], g[1], g[2], g[3] = u[3], u[2], u[1], u[0]
	g[4], g[5] = u[5], u[4]
	g[6], g[7] = u[7], u[6]
	copy(g[8:], u[8:])
	return g
}

func (g GUID) IsZero() bool {
	return g == GUID{}
}

var knownPartitionTypes = map[uuid.UUID]string{
	uuid.MustParse("c12a7328-f81f-11d2-ba4b-00a0c93ec93b"): "EFI System Partition",
	uuid.MustParse("21686148-6449-6e6f-744e-656564454649"): "BIOS Boot Partition",
	uuid.MustParse("024dee41-33e7-11d3-9d69-0008c781f39f"): "MBR partition scheme",
	uuid.MustParse("e3c9e316-0b5c-4db8-817d-f92df00215ae"): "Microsoft Reserved Partition",
	uuid.MustParse("ebd0a0a2-b9e5-4433-87c0-68b6b72699c7"): "Microsoft Basic Data",
	uuid.MustParse("de94bba4-06d1-4d40-a16a-bfd50179d6ac"): "Windows Recovery Environment",
	uuid.MustParse("0fc63daf-8483-4772-8e79-3d69d8477de4"): "Linux filesystem data",
	uuid.MustParse("0657fd6d-a4ab-43c4-84e5-0933c84b4f4f"): "Linux swap",
	uuid.MustParse("e6d6d379-f507-44c2-a23c-238f2a3df928"): "Linux LVM",
	uuid.MustParse("a19d880f-05fc-4d3b-a006-743f0f84911e"): "Linux RAID",
	uuid.MustParse("48465300-0000-11aa-aa11-00306543ecac"): "Apple HFS+",
	uuid.MustParse("7c3457ef-0000-11aa-aa11-00306543ecac"): "Apple APFS",
	uuid.MustParse("516e7cb4-6ecf-11d6-8ff8-00022d09712b"): "FreeBSD data",
	uuid.MustParse("49f48d5a-b10e-11dc-b99b-0019d1879648"): "NetBSD FFS",
}

// KnownPartitionType returns a label for well-known GPT partition type GUIDs.
func KnownPartitionType(g GUID) (string, bool) {
	name, ok := knownPartitionTypes[RFC4122GUID(g)]
	return name, ok
}
