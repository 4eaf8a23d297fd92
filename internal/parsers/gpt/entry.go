package gpt

import (
	"encoding/binary"
	"fmt"
	"unicode/utf16"

	"github.com/deploymenttheory/go-gpt/internal/types"
)

// Byte layout of one partition entry.
const (
	entryOffTypeGUID   = 0  // 16 bytes, mixed-endian
	entryOffUniqueGUID = 16 // 16 bytes, mixed-endian
	entryOffFirstLBA   = 32 // uint64
	entryOffLastLBA    = 40 // uint64, inclusive
	entryOffAttributes = 48 // uint64 bitfield
	entryOffName       = 56 // 72 bytes UTF-16LE, zero-padded
)

// Entry is one slot of the partition array. A zero type GUID marks the
// slot unused; unused slots still occupy their position and their zero
// bytes participate in the array checksum.
type Entry struct {
	TypeGUID   types.Guid
	UniqueGUID types.Guid
	FirstLBA   uint64
	LastLBA    uint64 // inclusive
	Attributes uint64
	Name       string
}

// IsUnused reports whether the slot holds no partition.
func (e Entry) IsUnused() bool {
	return e.TypeGUID.IsZero()
}

// SizeSectors returns the partition length in sectors.
func (e Entry) SizeSectors() uint64 {
	if e.IsUnused() || e.LastLBA < e.FirstLBA {
		return 0
	}
	return e.LastLBA - e.FirstLBA + 1
}

// ReadEntry decodes one partition entry slot. The buffer must hold a full
// entry; entries larger than 128 bytes carry reserved bytes the codec
// ignores. An all-zero type GUID decodes to the unused sentinel.
func ReadEntry(b []byte) (Entry, error) {
	if uint64(len(b)) < uint64(types.PartitionEntrySize) {
		return Entry{}, fmt.Errorf("%w: partition entry is %d bytes, need %d", ErrFormat, len(b), types.PartitionEntrySize)
	}

	var typeGUID, uniqueGUID [16]byte
	copy(typeGUID[:], b[entryOffTypeGUID:entryOffTypeGUID+16])
	if types.GuidFromOnDisk(typeGUID).IsZero() {
		return Entry{}, nil
	}
	copy(uniqueGUID[:], b[entryOffUniqueGUID:entryOffUniqueGUID+16])

	return Entry{
		TypeGUID:   types.GuidFromOnDisk(typeGUID),
		UniqueGUID: types.GuidFromOnDisk(uniqueGUID),
		FirstLBA:   binary.LittleEndian.Uint64(b[entryOffFirstLBA : entryOffFirstLBA+8]),
		LastLBA:    binary.LittleEndian.Uint64(b[entryOffLastLBA : entryOffLastLBA+8]),
		Attributes: binary.LittleEndian.Uint64(b[entryOffAttributes : entryOffAttributes+8]),
		Name:       decodeName(b[entryOffName : entryOffName+2*types.PartitionNameMaxRunes]),
	}, nil
}

// Encode serializes the entry into entrySize bytes, zero-padding the name
// field and any reserved tail. Unused slots encode to all zeroes.
func (e Entry) Encode(entrySize uint32) ([]byte, error) {
	if entrySize < types.PartitionEntrySize {
		return nil, fmt.Errorf("%w: entry size %d below minimum %d", ErrFormat, entrySize, types.PartitionEntrySize)
	}
	b := make([]byte, entrySize)
	if e.IsUnused() {
		return b, nil
	}

	typeGUID := e.TypeGUID.OnDiskBytes()
	copy(b[entryOffTypeGUID:], typeGUID[:])
	uniqueGUID := e.UniqueGUID.OnDiskBytes()
	copy(b[entryOffUniqueGUID:], uniqueGUID[:])
	binary.LittleEndian.PutUint64(b[entryOffFirstLBA:], e.FirstLBA)
	binary.LittleEndian.PutUint64(b[entryOffLastLBA:], e.LastLBA)
	binary.LittleEndian.PutUint64(b[entryOffAttributes:], e.Attributes)

	units := utf16.Encode([]rune(e.Name))
	if len(units) > types.PartitionNameMaxRunes {
		return nil, fmt.Errorf("%w: partition name %q is %d UTF-16 code units, maximum is %d", ErrFormat, e.Name, len(units), types.PartitionNameMaxRunes)
	}
	for i, u := range units {
		binary.LittleEndian.PutUint16(b[entryOffName+2*i:], u)
	}
	return b, nil
}

// decodeName reads UTF-16LE code units up to the first zero unit.
func decodeName(b []byte) string {
	units := make([]uint16, 0, types.PartitionNameMaxRunes)
	for i := 0; i+1 < len(b); i += 2 {
		u := binary.LittleEndian.Uint16(b[i : i+2])
		if u == 0 {
			break
		}
		units = append(units, u)
	}
	return string(utf16.Decode(units))
}
