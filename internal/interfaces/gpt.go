// File: internal/interfaces/gpt.go
package interfaces

import (
	"github.com/deploymenttheory/go-gpt/internal/types"
)

// PartitionView is a read-only projection of one used partition slot,
// decoupled from the codec structures so presentation code does not reach
// into the parser layer.
type PartitionView struct {
	Slot       int
	TypeGUID   types.Guid
	UniqueGUID types.Guid
	FirstLBA   uint64
	LastLBA    uint64
	Attributes uint64
	Name       string
}

// HeaderView is a read-only projection of one GPT header copy.
type HeaderView struct {
	Role           string // "primary" or "backup"
	Revision       uint32
	CurrentLBA     uint64
	BackupLBA      uint64
	FirstUsableLBA uint64
	LastUsableLBA  uint64
	DiskGUID       types.Guid
	EntriesLBA     uint64
	EntryCount     uint32
	EntrySize      uint32
}

// PartitionTable is the reconciled view of one disk's partitioning that
// presentation and tooling layers consume.
type PartitionTable interface {
	// DiskGUID returns the disk identifier shared by both header copies
	DiskGUID() types.Guid

	// SectorSize returns the logical block size the table was decoded with
	SectorSize() types.SectorSize

	// Headers returns the primary and backup header views
	Headers() (primary, backup HeaderView)

	// UsedPartitions returns the occupied slots in slot order
	UsedPartitions() []PartitionView

	// NeedsRepair reports whether one copy was rebuilt in memory from its
	// counterpart and is pending a rewrite
	NeedsRepair() bool

	// HasProtectiveMBR reports whether sector 0 held a protective MBR
	HasProtectiveMBR() bool
}
