package device

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/deploymenttheory/go-gpt/internal/types"
)

// ImageDevice provides block-level access to a raw disk image file. It is
// the file-backed implementation of the I/O collaborator the GPT core
// requests byte ranges from.
type ImageDevice struct {
	file       *os.File
	size       int64
	sectorSize types.SectorSize
	readOnly   bool
}

// OpenImage opens a disk image using the supplied configuration. The
// image is opened read-only unless config asks for a writable handle.
func OpenImage(path string, config *Config) (*ImageDevice, error) {
	if config == nil {
		config = DefaultConfig()
	}
	sectorSize, err := types.NewSectorSize(config.LogicalBlockSize)
	if err != nil {
		return nil, fmt.Errorf("invalid configured block size: %w", err)
	}

	flags := os.O_RDONLY
	if config.Writable {
		flags = os.O_RDWR
	}
	file, err := os.OpenFile(path, flags, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat image file: %w", err)
	}

	return &ImageDevice{
		file:       file,
		size:       stat.Size(),
		sectorSize: sectorSize,
		readOnly:   !config.Writable,
	}, nil
}

// ReadRange reads length bytes starting at the given byte offset.
func (d *ImageDevice) ReadRange(byteOffset, length uint64) ([]byte, error) {
	if byteOffset+length > uint64(d.size) {
		return nil, fmt.Errorf("read of %d bytes at offset %d past end of %d-byte image", length, byteOffset, d.size)
	}
	buf := make([]byte, length)
	if _, err := d.file.ReadAt(buf, int64(byteOffset)); err != nil {
		return nil, fmt.Errorf("failed to read image at offset %d: %w", byteOffset, err)
	}
	return buf, nil
}

// ReadSector reads the single sector at the given LBA.
func (d *ImageDevice) ReadSector(lba uint64) ([]byte, error) {
	return d.ReadRange(d.sectorSize.ToBytes(lba), d.sectorSize.Bytes())
}

// WriteRange writes data starting at the given byte offset.
func (d *ImageDevice) WriteRange(byteOffset uint64, data []byte) error {
	if d.readOnly {
		return fmt.Errorf("image opened read-only")
	}
	if byteOffset+uint64(len(data)) > uint64(d.size) {
		return fmt.Errorf("write of %d bytes at offset %d past end of %d-byte image", len(data), byteOffset, d.size)
	}
	if _, err := d.file.WriteAt(data, int64(byteOffset)); err != nil {
		return fmt.Errorf("failed to write image at offset %d: %w", byteOffset, err)
	}
	return nil
}

// Flush syncs pending writes to storage.
func (d *ImageDevice) Flush() error {
	if d.readOnly {
		return nil
	}
	return d.file.Sync()
}

// IsReadOnly reports whether the image rejects writes.
func (d *ImageDevice) IsReadOnly() bool {
	return d.readOnly
}

// SectorSize returns the configured logical block size.
func (d *ImageDevice) SectorSize() types.SectorSize {
	return d.sectorSize
}

// Size returns the image size in bytes.
func (d *ImageDevice) Size() uint64 {
	return uint64(d.size)
}

// TotalSectors returns the number of whole logical blocks in the image.
func (d *ImageDevice) TotalSectors() uint64 {
	return d.sectorSize.ToLBA(uint64(d.size))
}

// Close closes the underlying file.
func (d *ImageDevice) Close() error {
	if d.file != nil {
		return d.file.Close()
	}
	return nil
}

// NativeSectorSize returns the logical block size to assume for a path.
// Querying the physical device's native size is a platform concern that
// lives outside this module; the configured value (default 512) is used
// instead.
func NativeSectorSize(config *Config) types.SectorSize {
	if config == nil {
		return types.DefaultSectorSize
	}
	if s, err := types.NewSectorSize(config.LogicalBlockSize); err == nil {
		return s
	}
	return types.DefaultSectorSize
}

// GetTestImagePath returns a path to test image files based on configuration
func GetTestImagePath(filename string, config *Config) string {
	return filepath.Join(config.TestDataPath, filename)
}
