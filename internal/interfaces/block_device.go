// File: internal/interfaces/block_device.go
package interfaces

import (
	"io"

	"github.com/deploymenttheory/go-gpt/internal/types"
)

// BlockDeviceReader is the read half of the I/O collaborator. The GPT core
// computes which byte ranges it needs from the sector size and the reported
// device size; the collaborator supplies the bytes. Implementations live
// outside the core (image files, raw devices, in-memory fixtures).
type BlockDeviceReader interface {
	// ReadRange reads length bytes starting at the specified byte offset
	ReadRange(byteOffset, length uint64) ([]byte, error)

	// ReadSector reads the single sector at the specified LBA
	ReadSector(lba uint64) ([]byte, error)

	// SectorSize returns the logical block size of the device
	SectorSize() types.SectorSize

	// TotalSectors returns the number of logical blocks on the device
	TotalSectors() uint64

	// Size returns the total size of the device in bytes
	Size() uint64
}

// BlockDeviceWriter is the write half of the I/O collaborator. The core
// hands over fully checksummed buffers and assumes nothing about write
// ordering or atomicity across them.
type BlockDeviceWriter interface {
	// WriteRange writes data starting at the specified byte offset
	WriteRange(byteOffset uint64, data []byte) error

	// Flush ensures all pending writes are committed to storage
	Flush() error

	// IsReadOnly checks if the device rejects writes
	IsReadOnly() bool
}

// BlockDevice represents a complete block device
type BlockDevice interface {
	BlockDeviceReader
	BlockDeviceWriter
	io.Closer
}
