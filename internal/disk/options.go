package disk

import "github.com/deploymenttheory/go-gpt/internal/types"

// Options configures the open operation.
type Options struct {
	// Writable permits mutation operations on the opened disk. The
	// default is a read-only view.
	Writable bool

	// SectorSize overrides the logical block size reported by the device.
	// Zero means use the device's value, falling back to 512.
	SectorSize types.SectorSize

	// InitializeEmpty makes opening a device with no valid GPT yield a
	// fresh empty in-memory table ready to be populated, instead of
	// failing with ErrCorruptGpt.
	InitializeEmpty bool

	// Placement selects the gap-selection policy for AddPartition. Nil
	// means SmallestFit.
	Placement PlacementPolicy
}
