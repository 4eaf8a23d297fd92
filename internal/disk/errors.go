package disk

import "errors"

// Error kinds surfaced by the orchestration layer.
var (
	// ErrCorruptGpt means neither the primary nor the backup header/array
	// pair is trustworthy. Fatal for the open operation.
	ErrCorruptGpt = errors.New("no recoverable GPT found")

	// ErrReadOnly means a mutation was attempted on a disk opened
	// non-writable.
	ErrReadOnly = errors.New("disk opened read-only")

	// ErrNoSpace means the placement algorithm found no free gap or free
	// slot large enough for the requested partition.
	ErrNoSpace = errors.New("no space for partition")

	// ErrOverlap means an explicitly placed partition collides with an
	// existing one.
	ErrOverlap = errors.New("partition ranges overlap")
)
