package disk

import "sort"

// Gap is a free run of sectors within the usable LBA window, inclusive on
// both ends.
type Gap struct {
	FirstLBA uint64
	LastLBA  uint64
}

// Sectors returns the gap length.
func (g Gap) Sectors() uint64 {
	return g.LastLBA - g.FirstLBA + 1
}

// PlacementPolicy selects the gap a new partition of sizeSectors goes
// into. Gaps arrive sorted by FirstLBA. The policy is pluggable so
// callers with different fragmentation trade-offs can substitute their
// own; ok is false when no gap fits.
type PlacementPolicy func(gaps []Gap, sizeSectors uint64) (g Gap, ok bool)

// SmallestFit is the default policy: the smallest gap that is large
// enough, breaking ties toward the lowest starting LBA. Keeps layouts
// deterministic and reproducible across runs.
func SmallestFit(gaps []Gap, sizeSectors uint64) (Gap, bool) {
	var best Gap
	found := false
	for _, g := range gaps {
		if g.Sectors() < sizeSectors {
			continue
		}
		// strict < keeps the earliest gap on equal sizes
		if !found || g.Sectors() < best.Sectors() {
			best = g
			found = true
		}
	}
	return best, found
}

// FirstFit takes the lowest-LBA gap that is large enough.
func FirstFit(gaps []Gap, sizeSectors uint64) (Gap, bool) {
	for _, g := range gaps {
		if g.Sectors() >= sizeSectors {
			return g, true
		}
	}
	return Gap{}, false
}

// FreeGaps computes the free runs within the usable window, in LBA order.
func (d *Disk) FreeGaps() []Gap {
	type span struct{ first, last uint64 }
	var used []span
	for _, e := range d.partitions.Entries {
		if e.IsUnused() {
			continue
		}
		used = append(used, span{e.FirstLBA, e.LastLBA})
	}
	sort.Slice(used, func(i, j int) bool { return used[i].first < used[j].first })

	var gaps []Gap
	cursor := d.primary.FirstUsableLBA
	for _, s := range used {
		if s.first > cursor {
			gaps = append(gaps, Gap{FirstLBA: cursor, LastLBA: s.first - 1})
		}
		if s.last+1 > cursor {
			cursor = s.last + 1
		}
	}
	if cursor <= d.primary.LastUsableLBA {
		gaps = append(gaps, Gap{FirstLBA: cursor, LastLBA: d.primary.LastUsableLBA})
	}
	return gaps
}
