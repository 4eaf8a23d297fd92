// Package disk combines the two GPT header copies and the partition array
// into a reconciled view of one disk's partitioning, and produces the byte
// regions to write back.
//
// A Disk is an exclusively-owned mutable value: it is not safe for
// concurrent mutation, and callers sharing one should guard the whole
// open-mutate-commit sequence with their own mutual exclusion. There is no
// caching beyond the in-memory snapshot; repeated opens re-read the device.
package disk

import (
	"errors"
	"fmt"

	"github.com/deploymenttheory/go-gpt/internal/checksum"
	"github.com/deploymenttheory/go-gpt/internal/interfaces"
	"github.com/deploymenttheory/go-gpt/internal/parsers/gpt"
	"github.com/deploymenttheory/go-gpt/internal/types"
)

// RepairState records which copy, if any, was rebuilt in memory at open
// time and is pending a rewrite.
type RepairState int

const (
	RepairNone    RepairState = iota
	RepairPrimary             // primary copy must be rewritten from backup
	RepairBackup              // backup copy must be rewritten from primary
)

func (r RepairState) String() string {
	switch r {
	case RepairPrimary:
		return "primary needs rewrite"
	case RepairBackup:
		return "backup needs rewrite"
	}
	return "none"
}

// Disk is the reconciled view of one device's GPT metadata. It owns its
// header and array copies exclusively; mutations touch only memory until
// Commit/WriteTo.
type Disk struct {
	sectorSize    types.SectorSize
	lastLBA       uint64
	primary       *gpt.Header
	backup        *gpt.Header
	partitions    *gpt.Array
	writable      bool
	protectiveMBR bool
	freshTable    bool // table was initialized in memory, emit MBR on commit
	repair        RepairState
	placement     PlacementPolicy
}

// Open reads and reconciles the GPT metadata of a device. Individual
// header corruption is recovered from the counterpart copy and reported
// through NeedsRepair; Open fails with ErrCorruptGpt only when neither
// header/array pair validates (unless opts.InitializeEmpty asks for a
// fresh table instead).
func Open(dev interfaces.BlockDeviceReader, opts Options) (*Disk, error) {
	sectorSize := opts.SectorSize
	if sectorSize == 0 {
		sectorSize = dev.SectorSize()
	}
	if sectorSize == 0 {
		sectorSize = types.DefaultSectorSize
	}

	size := dev.Size()
	if size < 3*sectorSize.Bytes() {
		return nil, fmt.Errorf("%w: device of %d bytes cannot hold a GPT at sector size %s", ErrCorruptGpt, size, sectorSize)
	}
	lastLBA := sectorSize.ToLBA(size) - 1

	mbrBytes, err := dev.ReadRange(0, sectorSize.Bytes())
	if err != nil {
		return nil, fmt.Errorf("reading sector 0: %w", err)
	}
	primaryBytes, err := dev.ReadRange(sectorSize.ToBytes(1), sectorSize.Bytes())
	if err != nil {
		return nil, fmt.Errorf("reading primary header sector: %w", err)
	}
	backupBytes, err := dev.ReadRange(sectorSize.ToBytes(lastLBA), sectorSize.Bytes())
	if err != nil {
		return nil, fmt.Errorf("reading backup header sector: %w", err)
	}

	primary, perr := gpt.ReadHeader(primaryBytes, sectorSize)
	backup, berr := gpt.ReadHeader(backupBytes, sectorSize)

	d := &Disk{
		sectorSize:    sectorSize,
		lastLBA:       lastLBA,
		writable:      opts.Writable,
		protectiveMBR: gpt.ReadProtectiveMBR(mbrBytes, lastLBA),
		placement:     opts.Placement,
	}
	if d.placement == nil {
		d.placement = SmallestFit
	}

	switch Reconcile(primary, backup, perr, berr, lastLBA) {
	case Consistent:
		d.primary, d.backup = primary, backup
	case RepairFromBackup:
		// Rebuild the primary from the backup. All fields carry over
		// except the location cross-references and the array position,
		// which moves to its conventional spot right after the header.
		d.primary = backup.Counterpart(2)
		d.backup = backup
		d.repair = RepairPrimary
	case RepairFromPrimary:
		d.primary = primary
		d.backup = primary.Counterpart(lastLBA - primary.ArraySectors(sectorSize))
		d.repair = RepairBackup
	case Unrecoverable:
		if opts.InitializeEmpty {
			if err := d.initializeEmpty(); err != nil {
				return nil, err
			}
			return d, nil
		}
		return nil, fmt.Errorf("%w: primary: %v; backup: %v", ErrCorruptGpt, perr, berr)
	}

	if err := d.loadArray(dev); err != nil {
		return nil, err
	}
	return d, nil
}

// loadArray reads and validates the partition array declared by the
// trusted header. An array checksum mismatch demotes that header's trust
// and retries with the counterpart's array location; if neither array
// validates the disk is unrecoverable.
func (d *Disk) loadArray(dev interfaces.BlockDeviceReader) error {
	trusted, fallback := d.primary, d.backup
	trustPrimary := d.repair != RepairPrimary
	if !trustPrimary {
		trusted, fallback = d.backup, d.primary
	}

	arr, err := readArrayAt(dev, trusted, d.sectorSize)
	if err == nil {
		d.partitions = arr
		return nil
	}
	if !errors.Is(err, gpt.ErrChecksumMismatch) && !errors.Is(err, gpt.ErrFormat) {
		return err
	}

	// The trusted header's array region is bad; fall back to the
	// counterpart's region. Both copies carry the same array checksum, so
	// the fallback read still proves integrity.
	arr, err2 := readArrayAt(dev, fallback, d.sectorSize)
	if err2 != nil {
		return fmt.Errorf("%w: both partition array copies invalid: %v; %v", ErrCorruptGpt, err, err2)
	}
	d.partitions = arr
	if d.repair == RepairNone {
		// Headers were consistent but the trusted array region is
		// damaged: that side now needs its array rewritten.
		if trustPrimary {
			d.repair = RepairPrimary
		} else {
			d.repair = RepairBackup
		}
	}
	return nil
}

// readArrayAt fetches the array region a header declares and checks it
// against the header's stored array checksum.
func readArrayAt(dev interfaces.BlockDeviceReader, h *gpt.Header, sectorSize types.SectorSize) (*gpt.Array, error) {
	length := sectorSize.ToBytes(h.ArraySectors(sectorSize))
	b, err := dev.ReadRange(sectorSize.ToBytes(h.EntriesLBA), length)
	if err != nil {
		return nil, fmt.Errorf("reading partition array at LBA %d: %w", h.EntriesLBA, err)
	}
	arr, err := gpt.ReadArray(b, h.EntryCount, h.EntrySize)
	if err != nil {
		return nil, err
	}
	sum := checksum.Sum(b[:uint64(h.EntryCount)*uint64(h.EntrySize)])
	if sum != h.ArrayChecksum {
		return nil, fmt.Errorf("%w: partition array CRC32 stored %#08x, computed %#08x", gpt.ErrChecksumMismatch, h.ArrayChecksum, sum)
	}
	return arr, nil
}

// initializeEmpty builds a fresh table in memory for a device with no
// valid GPT: random disk GUID, conventional 128x128 array, protective MBR
// emitted on commit.
func (d *Disk) initializeEmpty() error {
	arraySectors := d.sectorSize.SectorsFor(uint64(types.DefaultEntryCount) * uint64(types.PartitionEntrySize))
	firstUsable := 2 + arraySectors
	if d.lastLBA < firstUsable+1+arraySectors {
		return fmt.Errorf("%w: device too small for a %d-entry table", gpt.ErrFormat, types.DefaultEntryCount)
	}
	lastUsable := d.lastLBA - 1 - arraySectors

	d.primary = &gpt.Header{
		Revision:       types.Revision,
		Size:           types.HeaderSize,
		CurrentLBA:     1,
		BackupLBA:      d.lastLBA,
		FirstUsableLBA: firstUsable,
		LastUsableLBA:  lastUsable,
		DiskGUID:       types.NewRandomGuid(),
		EntriesLBA:     2,
		EntryCount:     types.DefaultEntryCount,
		EntrySize:      types.PartitionEntrySize,
	}
	d.backup = d.primary.Counterpart(d.lastLBA - arraySectors)
	d.partitions = &gpt.Array{
		Entries:   make([]gpt.Entry, types.DefaultEntryCount),
		EntrySize: types.PartitionEntrySize,
	}
	d.protectiveMBR = true
	d.freshTable = true
	return nil
}

// SectorSize returns the logical block size the disk was opened with.
func (d *Disk) SectorSize() types.SectorSize {
	return d.sectorSize
}

// DiskGUID returns the disk identifier from the trusted header.
func (d *Disk) DiskGUID() types.Guid {
	return d.primary.DiskGUID
}

// PrimaryHeader returns a copy of the (possibly repaired) primary header.
func (d *Disk) PrimaryHeader() gpt.Header {
	return *d.primary
}

// BackupHeader returns a copy of the (possibly repaired) backup header.
func (d *Disk) BackupHeader() gpt.Header {
	return *d.backup
}

// Partitions returns the full slot sequence, unused sentinels included.
func (d *Disk) Partitions() []gpt.Entry {
	return append([]gpt.Entry(nil), d.partitions.Entries...)
}

// Entry returns the slot at index i.
func (d *Disk) Entry(i int) (gpt.Entry, error) {
	if i < 0 || i >= len(d.partitions.Entries) {
		return gpt.Entry{}, fmt.Errorf("%w: slot %d outside array of %d entries", gpt.ErrFormat, i, len(d.partitions.Entries))
	}
	return d.partitions.Entries[i], nil
}

// Writable reports whether mutations are permitted.
func (d *Disk) Writable() bool {
	return d.writable
}

// RepairState reports which copy is pending a rewrite.
func (d *Disk) RepairState() RepairState {
	return d.repair
}

// NeedsRepair reports whether one copy was rebuilt from its counterpart.
func (d *Disk) NeedsRepair() bool {
	return d.repair != RepairNone
}

// HasProtectiveMBR reports whether sector 0 held a protective MBR.
func (d *Disk) HasProtectiveMBR() bool {
	return d.protectiveMBR
}

// Headers returns presentation views of both header copies.
func (d *Disk) Headers() (primary, backup interfaces.HeaderView) {
	return headerView("primary", d.primary), headerView("backup", d.backup)
}

// UsedPartitions returns presentation views of the occupied slots.
func (d *Disk) UsedPartitions() []interfaces.PartitionView {
	var views []interfaces.PartitionView
	for _, i := range d.partitions.Used() {
		e := d.partitions.Entries[i]
		views = append(views, interfaces.PartitionView{
			Slot:       i,
			TypeGUID:   e.TypeGUID,
			UniqueGUID: e.UniqueGUID,
			FirstLBA:   e.FirstLBA,
			LastLBA:    e.LastLBA,
			Attributes: e.Attributes,
			Name:       e.Name,
		})
	}
	return views
}

func headerView(role string, h *gpt.Header) interfaces.HeaderView {
	return interfaces.HeaderView{
		Role:           role,
		Revision:       h.Revision,
		CurrentLBA:     h.CurrentLBA,
		BackupLBA:      h.BackupLBA,
		FirstUsableLBA: h.FirstUsableLBA,
		LastUsableLBA:  h.LastUsableLBA,
		DiskGUID:       h.DiskGUID,
		EntriesLBA:     h.EntriesLBA,
		EntryCount:     h.EntryCount,
		EntrySize:      h.EntrySize,
	}
}
