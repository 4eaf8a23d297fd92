package disk

import (
	"fmt"
	"sort"
	"unicode/utf16"

	"github.com/deploymenttheory/go-gpt/internal/parsers/gpt"
	"github.com/deploymenttheory/go-gpt/internal/types"
)

// Mutations operate purely on the in-memory partition array and never
// touch storage; persistence happens through Commit/WriteTo. Every
// mutation fails with ErrReadOnly on a disk opened non-writable, and
// leaves the array unmodified on any failure.

func (d *Disk) ensureWritable() error {
	if !d.writable {
		return fmt.Errorf("%w", ErrReadOnly)
	}
	return nil
}

func (d *Disk) slotEntry(slot int) (gpt.Entry, error) {
	if slot < 0 || slot >= len(d.partitions.Entries) {
		return gpt.Entry{}, fmt.Errorf("%w: slot %d outside array of %d entries", gpt.ErrFormat, slot, len(d.partitions.Entries))
	}
	e := d.partitions.Entries[slot]
	if e.IsUnused() {
		return gpt.Entry{}, fmt.Errorf("%w: slot %d is unused", gpt.ErrFormat, slot)
	}
	return e, nil
}

func (d *Disk) freeSlot() (int, bool) {
	for i, e := range d.partitions.Entries {
		if e.IsUnused() {
			return i, true
		}
	}
	return 0, false
}

func validateName(name string) error {
	if n := len(utf16.Encode([]rune(name))); n > types.PartitionNameMaxRunes {
		return fmt.Errorf("%w: partition name %q is %d UTF-16 code units, maximum is %d", gpt.ErrFormat, name, n, types.PartitionNameMaxRunes)
	}
	return nil
}

// AddPartition places a new partition of sizeSectors using the configured
// placement policy and returns the slot it landed in. The partition gets
// a fresh random unique GUID.
func (d *Disk) AddPartition(typeGUID types.Guid, sizeSectors uint64, name string, attributes uint64) (int, error) {
	if err := d.ensureWritable(); err != nil {
		return 0, err
	}
	if typeGUID.IsZero() || sizeSectors == 0 {
		return 0, fmt.Errorf("%w: partition needs a non-zero type GUID and size", gpt.ErrFormat)
	}
	if err := validateName(name); err != nil {
		return 0, err
	}

	slot, ok := d.freeSlot()
	if !ok {
		return 0, fmt.Errorf("%w: all %d slots occupied", ErrNoSpace, len(d.partitions.Entries))
	}
	gap, ok := d.placement(d.FreeGaps(), sizeSectors)
	if !ok {
		return 0, fmt.Errorf("%w: no free gap of %d sectors", ErrNoSpace, sizeSectors)
	}

	d.partitions.Entries[slot] = gpt.Entry{
		TypeGUID:   typeGUID,
		UniqueGUID: types.NewRandomGuid(),
		FirstLBA:   gap.FirstLBA,
		LastLBA:    gap.FirstLBA + sizeSectors - 1,
		Attributes: attributes,
		Name:       name,
	}
	return slot, nil
}

// AddPartitionAt places a partition at an exact slot and LBA range chosen
// by the caller. Collisions with existing partitions fail with ErrOverlap
// rather than being resolved.
func (d *Disk) AddPartitionAt(slot int, e gpt.Entry) error {
	if err := d.ensureWritable(); err != nil {
		return err
	}
	if slot < 0 || slot >= len(d.partitions.Entries) {
		return fmt.Errorf("%w: slot %d outside array of %d entries", gpt.ErrFormat, slot, len(d.partitions.Entries))
	}
	if !d.partitions.Entries[slot].IsUnused() {
		return fmt.Errorf("%w: slot %d already holds a partition", ErrOverlap, slot)
	}
	if e.TypeGUID.IsZero() {
		return fmt.Errorf("%w: partition needs a non-zero type GUID", gpt.ErrFormat)
	}
	if err := validateName(e.Name); err != nil {
		return err
	}
	if err := d.checkRange(e.FirstLBA, e.LastLBA, slot); err != nil {
		return err
	}
	if e.UniqueGUID.IsZero() {
		e.UniqueGUID = types.NewRandomGuid()
	}
	d.partitions.Entries[slot] = e
	return nil
}

// RemovePartition clears a slot back to the unused sentinel.
func (d *Disk) RemovePartition(slot int) error {
	if err := d.ensureWritable(); err != nil {
		return err
	}
	if _, err := d.slotEntry(slot); err != nil {
		return err
	}
	d.partitions.Entries[slot] = gpt.Entry{}
	return nil
}

// ResizePartition grows or shrinks a partition in place, keeping its
// first LBA.
func (d *Disk) ResizePartition(slot int, newSizeSectors uint64) error {
	if err := d.ensureWritable(); err != nil {
		return err
	}
	e, err := d.slotEntry(slot)
	if err != nil {
		return err
	}
	if newSizeSectors == 0 {
		return fmt.Errorf("%w: partition size must be at least one sector", gpt.ErrFormat)
	}
	newLast := e.FirstLBA + newSizeSectors - 1
	if err := d.checkRange(e.FirstLBA, newLast, slot); err != nil {
		return err
	}
	e.LastLBA = newLast
	d.partitions.Entries[slot] = e
	return nil
}

// RenamePartition sets the display name of a partition.
func (d *Disk) RenamePartition(slot int, name string) error {
	if err := d.ensureWritable(); err != nil {
		return err
	}
	e, err := d.slotEntry(slot)
	if err != nil {
		return err
	}
	if err := validateName(name); err != nil {
		return err
	}
	e.Name = name
	d.partitions.Entries[slot] = e
	return nil
}

// SetAttributes replaces the attribute flag bitfield of a partition.
func (d *Disk) SetAttributes(slot int, attributes uint64) error {
	if err := d.ensureWritable(); err != nil {
		return err
	}
	e, err := d.slotEntry(slot)
	if err != nil {
		return err
	}
	e.Attributes = attributes
	d.partitions.Entries[slot] = e
	return nil
}

// checkRange validates a candidate LBA range against the usable window
// and every used slot except self.
func (d *Disk) checkRange(first, last uint64, self int) error {
	if first > last {
		return fmt.Errorf("%w: first LBA %d beyond last LBA %d", gpt.ErrFormat, first, last)
	}
	if first < d.primary.FirstUsableLBA || last > d.primary.LastUsableLBA {
		return fmt.Errorf("%w: range [%d, %d] outside usable window [%d, %d]",
			ErrOverlap, first, last, d.primary.FirstUsableLBA, d.primary.LastUsableLBA)
	}
	for i, e := range d.partitions.Entries {
		if i == self || e.IsUnused() {
			continue
		}
		if first <= e.LastLBA && e.FirstLBA <= last {
			return fmt.Errorf("%w: range [%d, %d] collides with slot %d [%d, %d]",
				ErrOverlap, first, last, i, e.FirstLBA, e.LastLBA)
		}
	}
	return nil
}

// Validate checks the invariants of every used entry: ordered range,
// containment in the usable window, and pairwise disjointness. Decode
// accepts what is on disk; Validate is the explicit integrity check.
func (d *Disk) Validate() error {
	type span struct {
		slot        int
		first, last uint64
	}
	var used []span
	for i, e := range d.partitions.Entries {
		if e.IsUnused() {
			continue
		}
		if e.FirstLBA > e.LastLBA {
			return fmt.Errorf("%w: slot %d first LBA %d beyond last LBA %d", gpt.ErrFormat, i, e.FirstLBA, e.LastLBA)
		}
		if e.FirstLBA < d.primary.FirstUsableLBA || e.LastLBA > d.primary.LastUsableLBA {
			return fmt.Errorf("%w: slot %d range [%d, %d] outside usable window [%d, %d]",
				ErrOverlap, i, e.FirstLBA, e.LastLBA, d.primary.FirstUsableLBA, d.primary.LastUsableLBA)
		}
		used = append(used, span{i, e.FirstLBA, e.LastLBA})
	}
	sort.Slice(used, func(i, j int) bool { return used[i].first < used[j].first })
	for i := 1; i < len(used); i++ {
		if used[i].first <= used[i-1].last {
			return fmt.Errorf("%w: slot %d [%d, %d] collides with slot %d [%d, %d]",
				ErrOverlap, used[i].slot, used[i].first, used[i].last,
				used[i-1].slot, used[i-1].first, used[i-1].last)
		}
	}
	return nil
}

// SetPlacementPolicy swaps the gap-selection policy for later
// AddPartition calls.
func (d *Disk) SetPlacementPolicy(p PlacementPolicy) {
	if p != nil {
		d.placement = p
	}
}
