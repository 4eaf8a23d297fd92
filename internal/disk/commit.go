package disk

import (
	"encoding/binary"
	"fmt"

	"github.com/deploymenttheory/go-gpt/internal/checksum"
	"github.com/deploymenttheory/go-gpt/internal/interfaces"
	"github.com/deploymenttheory/go-gpt/internal/parsers/gpt"
)

// Region is one contiguous byte range for the I/O collaborator to
// persist. Regions carry fully stamped checksums and may be written in
// any order.
type Region struct {
	ByteOffset uint64
	Data       []byte
}

// CommitSet is the complete output of one commit: both header sectors and
// both copies of the partition array, plus the protective MBR when the
// table was freshly initialized in memory.
type CommitSet struct {
	ProtectiveMBR *Region
	PrimaryHeader Region
	BackupHeader  Region
	PrimaryArray  Region
	BackupArray   Region
}

// Regions returns the set as a flat slice, skipping the absent MBR.
func (c *CommitSet) Regions() []Region {
	r := make([]Region, 0, 5)
	if c.ProtectiveMBR != nil {
		r = append(r, *c.ProtectiveMBR)
	}
	return append(r, c.PrimaryHeader, c.BackupHeader, c.PrimaryArray, c.BackupArray)
}

// Commit recomputes the partition-array checksum, stamps it into both
// header copies, recomputes each header's own CRC32, and returns every
// byte region needed to persist the table. All buffers are computed
// before any are handed off; partial persistence across the copies is the
// I/O layer's failure domain, not this one's.
func (d *Disk) Commit() (*CommitSet, error) {
	if err := d.ensureWritable(); err != nil {
		return nil, err
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}

	arrayBytes, err := d.partitions.Encode()
	if err != nil {
		return nil, fmt.Errorf("encoding partition array: %w", err)
	}
	arraySum := checksum.Sum(arrayBytes)

	// The on-disk footprint is sector-aligned; the checksum covers only
	// the entry bytes themselves.
	padded := make([]byte, d.partitions.SizeOnDisk(d.sectorSize))
	copy(padded, arrayBytes)

	primary := *d.primary
	primary.ArrayChecksum = arraySum
	backup := *d.backup
	backup.ArrayChecksum = arraySum

	primaryBytes, err := primary.Encode(d.sectorSize)
	if err != nil {
		return nil, fmt.Errorf("encoding primary header: %w", err)
	}
	backupBytes, err := backup.Encode(d.sectorSize)
	if err != nil {
		return nil, fmt.Errorf("encoding backup header: %w", err)
	}

	// Keep the in-memory headers in step with what will be on disk,
	// including the freshly stamped CRCs.
	primary.Checksum = binary.LittleEndian.Uint32(primaryBytes[16:20])
	backup.Checksum = binary.LittleEndian.Uint32(backupBytes[16:20])
	d.primary = &primary
	d.backup = &backup

	set := &CommitSet{
		PrimaryHeader: Region{ByteOffset: d.sectorSize.ToBytes(primary.CurrentLBA), Data: primaryBytes},
		BackupHeader:  Region{ByteOffset: d.sectorSize.ToBytes(backup.CurrentLBA), Data: backupBytes},
		PrimaryArray:  Region{ByteOffset: d.sectorSize.ToBytes(primary.EntriesLBA), Data: padded},
		BackupArray:   Region{ByteOffset: d.sectorSize.ToBytes(backup.EntriesLBA), Data: append([]byte(nil), padded...)},
	}
	if d.freshTable {
		set.ProtectiveMBR = &Region{ByteOffset: 0, Data: gpt.EncodeProtectiveMBR(d.sectorSize, d.lastLBA)}
	}
	return set, nil
}

// WriteTo commits the table and hands every region to the writer. Write
// order is not significant; the repair flag clears only after the device
// confirms the flush.
func (d *Disk) WriteTo(dev interfaces.BlockDeviceWriter) error {
	set, err := d.Commit()
	if err != nil {
		return err
	}
	for _, r := range set.Regions() {
		if err := dev.WriteRange(r.ByteOffset, r.Data); err != nil {
			return fmt.Errorf("writing region at byte offset %d: %w", r.ByteOffset, err)
		}
	}
	if err := dev.Flush(); err != nil {
		return fmt.Errorf("flushing device: %w", err)
	}
	d.repair = RepairNone
	d.freshTable = false
	return nil
}
