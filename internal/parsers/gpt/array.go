package gpt

import (
	"fmt"

	"github.com/deploymenttheory/go-gpt/internal/checksum"
	"github.com/deploymenttheory/go-gpt/internal/types"
)

// Array is the ordered partition-entry array. Slot order is addressing:
// index i here is slot i on disk, and unused slots keep their position so
// the array checksum covers exactly the bytes the header declares.
type Array struct {
	Entries   []Entry
	EntrySize uint32
}

// ReadArray decodes count slots of entrySize bytes each. The count and
// entry size come from a validated header; ReadArray re-checks them
// against the buffer rather than trusting the caller.
func ReadArray(b []byte, count, entrySize uint32) (*Array, error) {
	if entrySize < types.PartitionEntrySize {
		return nil, fmt.Errorf("%w: entry size %d below minimum %d", ErrFormat, entrySize, types.PartitionEntrySize)
	}
	need := uint64(count) * uint64(entrySize)
	if uint64(len(b)) < need {
		return nil, fmt.Errorf("%w: partition array buffer is %d bytes, need %d", ErrFormat, len(b), need)
	}

	entries := make([]Entry, count)
	for i := uint32(0); i < count; i++ {
		off := uint64(i) * uint64(entrySize)
		e, err := ReadEntry(b[off : off+uint64(entrySize)])
		if err != nil {
			return nil, fmt.Errorf("slot %d: %w", i, err)
		}
		entries[i] = e
	}
	return &Array{Entries: entries, EntrySize: entrySize}, nil
}

// Encode serializes every slot, used and unused, in order.
func (a *Array) Encode() ([]byte, error) {
	b := make([]byte, uint64(len(a.Entries))*uint64(a.EntrySize))
	for i, e := range a.Entries {
		eb, err := e.Encode(a.EntrySize)
		if err != nil {
			return nil, fmt.Errorf("slot %d: %w", i, err)
		}
		copy(b[uint64(i)*uint64(a.EntrySize):], eb)
	}
	return b, nil
}

// Checksum computes the CRC32 over the encoded bytes of all slots. The
// zero bytes of unused slots are part of the sum, so the result matches
// the header's stored array checksum exactly.
func (a *Array) Checksum() (uint32, error) {
	b, err := a.Encode()
	if err != nil {
		return 0, err
	}
	return checksum.Sum(b), nil
}

// Used returns the slot indexes holding partitions, in slot order.
func (a *Array) Used() []int {
	var used []int
	for i, e := range a.Entries {
		if !e.IsUnused() {
			used = append(used, i)
		}
	}
	return used
}

// UsedCount returns how many slots hold partitions.
func (a *Array) UsedCount() int {
	return len(a.Used())
}

// SizeBytes is the exact byte size of the encoded array.
func (a *Array) SizeBytes() uint64 {
	return uint64(len(a.Entries)) * uint64(a.EntrySize)
}

// SizeOnDisk is the array's on-disk footprint, rounded up to a whole
// number of sectors.
func (a *Array) SizeOnDisk(sectorSize types.SectorSize) uint64 {
	return sectorSize.ToBytes(sectorSize.SectorsFor(a.SizeBytes()))
}
