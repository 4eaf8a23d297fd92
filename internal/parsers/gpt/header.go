// Package gpt implements the binary codec for GUID Partition Table
// metadata: the 92-byte header, the fixed-layout partition entries, the
// partition-entry array and the protective MBR probe. All multi-byte
// fields are little-endian per the UEFI specification. The codec is pure:
// it transforms byte buffers to structured values and back, and performs
// no device I/O.
package gpt

import (
	"encoding/binary"
	"fmt"

	"github.com/deploymenttheory/go-gpt/internal/checksum"
	"github.com/deploymenttheory/go-gpt/internal/types"
)

// Byte layout of the header within its sector.
const (
	headerOffSignature      = 0  // 8 bytes "EFI PART"
	headerOffRevision       = 8  // uint32
	headerOffSize           = 12 // uint32
	headerOffChecksum       = 16 // uint32, zeroed during CRC computation
	headerOffReserved       = 20 // uint32, must be zero
	headerOffCurrentLBA     = 24 // uint64
	headerOffBackupLBA      = 32 // uint64
	headerOffFirstUsableLBA = 40 // uint64
	headerOffLastUsableLBA  = 48 // uint64
	headerOffDiskGUID       = 56 // 16 bytes, mixed-endian
	headerOffEntriesLBA     = 72 // uint64
	headerOffEntryCount     = 80 // uint32
	headerOffEntrySize      = 84 // uint32
	headerOffArrayChecksum  = 88 // uint32
)

// Header is one copy of the GPT header, primary or backup. The two roles
// share the structure and differ only in where they live on disk and which
// way their current/backup LBA fields point. A decoded Header is treated
// as an immutable value and replaced wholesale on update.
type Header struct {
	Revision        uint32
	Size            uint32
	Checksum        uint32
	CurrentLBA      uint64
	BackupLBA       uint64
	FirstUsableLBA  uint64
	LastUsableLBA   uint64
	DiskGUID        types.Guid
	EntriesLBA      uint64
	EntryCount      uint32
	EntrySize       uint32
	ArrayChecksum   uint32

	// TrailingBytes preserves bytes [92, Size) for headers that declare a
	// size larger than the defined fields, so they round-trip with their
	// checksum intact.
	TrailingBytes []byte
}

// ReadHeader decodes and validates one header sector. The error reports
// why the header cannot be trusted: ErrFormat for size problems,
// ErrInvalidSignature for a missing magic, ErrChecksumMismatch when the
// stored CRC32 does not cover the header bytes.
func ReadHeader(b []byte, sectorSize types.SectorSize) (*Header, error) {
	if uint64(len(b)) < uint64(types.HeaderSize) {
		return nil, fmt.Errorf("%w: header buffer is %d bytes, need at least %d", ErrFormat, len(b), types.HeaderSize)
	}

	if string(b[headerOffSignature:headerOffSignature+8]) != types.Signature {
		return nil, fmt.Errorf("%w: got %q", ErrInvalidSignature, b[:8])
	}

	size := binary.LittleEndian.Uint32(b[headerOffSize : headerOffSize+4])
	if size < types.HeaderSize || uint64(size) > sectorSize.Bytes() || uint64(size) > uint64(len(b)) {
		return nil, fmt.Errorf("%w: header size field %d outside [%d, %d]", ErrFormat, size, types.HeaderSize, sectorSize.Bytes())
	}

	stored := binary.LittleEndian.Uint32(b[headerOffChecksum : headerOffChecksum+4])
	computed := checksum.SumWithZeroedField(b[:size], headerOffChecksum, 4)
	if stored != computed {
		return nil, fmt.Errorf("%w: header CRC32 stored %#08x, computed %#08x", ErrChecksumMismatch, stored, computed)
	}

	var diskGUID [16]byte
	copy(diskGUID[:], b[headerOffDiskGUID:headerOffDiskGUID+16])

	h := &Header{
		Revision:       binary.LittleEndian.Uint32(b[headerOffRevision : headerOffRevision+4]),
		Size:           size,
		Checksum:       stored,
		CurrentLBA:     binary.LittleEndian.Uint64(b[headerOffCurrentLBA : headerOffCurrentLBA+8]),
		BackupLBA:      binary.LittleEndian.Uint64(b[headerOffBackupLBA : headerOffBackupLBA+8]),
		FirstUsableLBA: binary.LittleEndian.Uint64(b[headerOffFirstUsableLBA : headerOffFirstUsableLBA+8]),
		LastUsableLBA:  binary.LittleEndian.Uint64(b[headerOffLastUsableLBA : headerOffLastUsableLBA+8]),
		DiskGUID:       types.GuidFromOnDisk(diskGUID),
		EntriesLBA:     binary.LittleEndian.Uint64(b[headerOffEntriesLBA : headerOffEntriesLBA+8]),
		EntryCount:     binary.LittleEndian.Uint32(b[headerOffEntryCount : headerOffEntryCount+4]),
		EntrySize:      binary.LittleEndian.Uint32(b[headerOffEntrySize : headerOffEntrySize+4]),
		ArrayChecksum:  binary.LittleEndian.Uint32(b[headerOffArrayChecksum : headerOffArrayChecksum+4]),
	}
	if size > types.HeaderSize {
		h.TrailingBytes = append([]byte(nil), b[types.HeaderSize:size]...)
	}
	return h, nil
}

// Encode serializes the header into one sector-sized, zero-padded buffer
// and stamps the header CRC32 as the last step. The ArrayChecksum field
// must already hold the partition-array checksum; callers on the write
// path stamp it before encoding.
func (h *Header) Encode(sectorSize types.SectorSize) ([]byte, error) {
	size := h.Size
	if size == 0 {
		size = types.HeaderSize
	}
	if size < types.HeaderSize || uint64(size) > sectorSize.Bytes() {
		return nil, fmt.Errorf("%w: header size %d outside [%d, %d]", ErrFormat, size, types.HeaderSize, sectorSize.Bytes())
	}
	if uint64(size) != uint64(types.HeaderSize)+uint64(len(h.TrailingBytes)) {
		return nil, fmt.Errorf("%w: header size %d does not match %d trailing bytes", ErrFormat, size, len(h.TrailingBytes))
	}

	b := make([]byte, sectorSize.Bytes())
	copy(b[headerOffSignature:], types.Signature)
	binary.LittleEndian.PutUint32(b[headerOffRevision:], h.Revision)
	binary.LittleEndian.PutUint32(b[headerOffSize:], size)
	// checksum field stays zero until the end
	binary.LittleEndian.PutUint64(b[headerOffCurrentLBA:], h.CurrentLBA)
	binary.LittleEndian.PutUint64(b[headerOffBackupLBA:], h.BackupLBA)
	binary.LittleEndian.PutUint64(b[headerOffFirstUsableLBA:], h.FirstUsableLBA)
	binary.LittleEndian.PutUint64(b[headerOffLastUsableLBA:], h.LastUsableLBA)
	guid := h.DiskGUID.OnDiskBytes()
	copy(b[headerOffDiskGUID:], guid[:])
	binary.LittleEndian.PutUint64(b[headerOffEntriesLBA:], h.EntriesLBA)
	binary.LittleEndian.PutUint32(b[headerOffEntryCount:], h.EntryCount)
	binary.LittleEndian.PutUint32(b[headerOffEntrySize:], h.EntrySize)
	binary.LittleEndian.PutUint32(b[headerOffArrayChecksum:], h.ArrayChecksum)
	copy(b[types.HeaderSize:size], h.TrailingBytes)

	binary.LittleEndian.PutUint32(b[headerOffChecksum:], checksum.Sum(b[:size]))
	return b, nil
}

// Counterpart derives the other copy of this header: current and backup
// LBAs swapped, partition array relocated to entriesLBA. Everything else,
// including the disk GUID and the usable window, carries over.
func (h *Header) Counterpart(entriesLBA uint64) *Header {
	c := *h
	c.CurrentLBA, c.BackupLBA = h.BackupLBA, h.CurrentLBA
	c.EntriesLBA = entriesLBA
	if h.TrailingBytes != nil {
		c.TrailingBytes = append([]byte(nil), h.TrailingBytes...)
	}
	return &c
}

// ArraySectors returns how many sectors the declared partition array
// occupies on disk.
func (h *Header) ArraySectors(sectorSize types.SectorSize) uint64 {
	return sectorSize.SectorsFor(uint64(h.EntryCount) * uint64(h.EntrySize))
}
