package types

import (
	"errors"
	"fmt"
)

// ErrSectorSize reports a logical block size outside the range the GPT
// format permits.
var ErrSectorSize = errors.New("invalid sector size")

// SectorSize is the logical block size of a disk in bytes. Every LBA and
// buffer computation in the GPT engine is parameterized by it.
type SectorSize uint64

// Standard logical block sizes.
const (
	SectorSize512  SectorSize = 512
	SectorSize1024 SectorSize = 1024
	SectorSize2048 SectorSize = 2048
	SectorSize4096 SectorSize = 4096

	// DefaultSectorSize is assumed when the caller supplies nothing and the
	// platform cannot be queried.
	DefaultSectorSize = SectorSize512
)

// The GPT specification allows sector sizes up to 4 GiB. The lower bound
// guarantees room for the 92-byte header plus the protective MBR layout.
const (
	MinSectorSize uint64 = 512
	MaxSectorSize uint64 = 1 << 32
)

// NewSectorSize validates an arbitrary logical block size. Non-standard
// values (for example 16384) are accepted as long as they fall within the
// range the GPT specification permits.
func NewSectorSize(n uint64) (SectorSize, error) {
	if n < MinSectorSize || n > MaxSectorSize {
		return 0, fmt.Errorf("%w: %d is not in the range %d-%d", ErrSectorSize, n, MinSectorSize, MaxSectorSize)
	}
	return SectorSize(n), nil
}

// MustSectorSize is NewSectorSize for sizes known valid at compile time.
func MustSectorSize(n uint64) SectorSize {
	s, err := NewSectorSize(n)
	if err != nil {
		panic(err)
	}
	return s
}

// Bytes returns the sector size as a plain uint64.
func (s SectorSize) Bytes() uint64 {
	return uint64(s)
}

// ToBytes converts a logical block address to a byte offset.
func (s SectorSize) ToBytes(lba uint64) uint64 {
	return lba * uint64(s)
}

// ToLBA converts a byte offset to the logical block address containing it.
func (s SectorSize) ToLBA(byteOffset uint64) uint64 {
	return byteOffset / uint64(s)
}

// SectorsFor returns the number of sectors needed to hold n bytes, rounding
// up to a whole sector.
func (s SectorSize) SectorsFor(n uint64) uint64 {
	return (n + uint64(s) - 1) / uint64(s)
}

// IsStandard reports whether the size is one of the common values a caller
// would expect from a physical device.
func (s SectorSize) IsStandard() bool {
	switch s {
	case SectorSize512, SectorSize1024, SectorSize2048, SectorSize4096:
		return true
	}
	return false
}

func (s SectorSize) String() string {
	return fmt.Sprintf("%d", uint64(s))
}
