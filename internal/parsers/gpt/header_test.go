package gpt

import (
	"encoding/binary"
	"errors"
	"reflect"
	"testing"

	"github.com/deploymenttheory/go-gpt/internal/checksum"
	"github.com/deploymenttheory/go-gpt/internal/types"
)

const testDiskGUID = "01234567-89AB-CDEF-0123-456789ABCDEF"

// createTestHeaderData builds one raw header sector by hand, field by
// field, and stamps the CRC last. mutate, when non-nil, runs before the
// CRC is computed so tests can build intentionally odd but valid headers;
// corrupt runs after, for breaking the stored state.
func createTestHeaderData(t *testing.T, sectorSize types.SectorSize, mutate, corrupt func(b []byte)) []byte {
	t.Helper()

	b := make([]byte, sectorSize.Bytes())
	copy(b[0:8], types.Signature)
	binary.LittleEndian.PutUint32(b[8:12], types.Revision)
	binary.LittleEndian.PutUint32(b[12:16], types.HeaderSize)
	// checksum at 16:20 stays zero until the end
	binary.LittleEndian.PutUint64(b[24:32], 1)      // current LBA
	binary.LittleEndian.PutUint64(b[32:40], 8191)   // backup LBA
	binary.LittleEndian.PutUint64(b[40:48], 34)     // first usable
	binary.LittleEndian.PutUint64(b[48:56], 8158)   // last usable
	guid := types.MustParseGuid(testDiskGUID).OnDiskBytes()
	copy(b[56:72], guid[:])
	binary.LittleEndian.PutUint64(b[72:80], 2)    // entries LBA
	binary.LittleEndian.PutUint32(b[80:84], 128)  // entry count
	binary.LittleEndian.PutUint32(b[84:88], 128)  // entry size
	binary.LittleEndian.PutUint32(b[88:92], 0xDEADBEEF)

	if mutate != nil {
		mutate(b)
	}
	size := binary.LittleEndian.Uint32(b[12:16])
	if uint64(size) > uint64(len(b)) {
		size = uint32(len(b))
	}
	binary.LittleEndian.PutUint32(b[16:20], checksum.Sum(b[:size]))
	if corrupt != nil {
		corrupt(b)
	}
	return b
}

func TestReadHeader(t *testing.T) {
	b := createTestHeaderData(t, types.SectorSize512, nil, nil)

	h, err := ReadHeader(b, types.SectorSize512)
	if err != nil {
		t.Fatalf("ReadHeader() failed: %v", err)
	}

	if h.Revision != types.Revision {
		t.Errorf("Revision = %#x, want %#x", h.Revision, types.Revision)
	}
	if h.Size != types.HeaderSize {
		t.Errorf("Size = %d, want %d", h.Size, types.HeaderSize)
	}
	if h.CurrentLBA != 1 || h.BackupLBA != 8191 {
		t.Errorf("location = (%d, %d), want (1, 8191)", h.CurrentLBA, h.BackupLBA)
	}
	if h.FirstUsableLBA != 34 || h.LastUsableLBA != 8158 {
		t.Errorf("usable window = (%d, %d), want (34, 8158)", h.FirstUsableLBA, h.LastUsableLBA)
	}
	if h.DiskGUID.String() != testDiskGUID {
		t.Errorf("DiskGUID = %s, want %s", h.DiskGUID, testDiskGUID)
	}
	if h.EntriesLBA != 2 || h.EntryCount != 128 || h.EntrySize != 128 {
		t.Errorf("array fields = (%d, %d, %d), want (2, 128, 128)", h.EntriesLBA, h.EntryCount, h.EntrySize)
	}
	if h.ArrayChecksum != 0xDEADBEEF {
		t.Errorf("ArrayChecksum = %#08x, want 0xDEADBEEF", h.ArrayChecksum)
	}
}

func TestReadHeaderErrors(t *testing.T) {
	testCases := []struct {
		name     string
		data     func(t *testing.T) []byte
		expected error
	}{
		{
			name: "Buffer too short",
			data: func(t *testing.T) []byte {
				return make([]byte, 64)
			},
			expected: ErrFormat,
		},
		{
			name: "Missing signature",
			data: func(t *testing.T) []byte {
				return createTestHeaderData(t, types.SectorSize512, func(b []byte) {
					copy(b[0:8], "NOT GPT!")
				}, nil)
			},
			expected: ErrInvalidSignature,
		},
		{
			name: "Size field below minimum",
			data: func(t *testing.T) []byte {
				return createTestHeaderData(t, types.SectorSize512, func(b []byte) {
					binary.LittleEndian.PutUint32(b[12:16], 64)
				}, nil)
			},
			expected: ErrFormat,
		},
		{
			name: "Size field beyond sector",
			data: func(t *testing.T) []byte {
				return createTestHeaderData(t, types.SectorSize512, func(b []byte) {
					binary.LittleEndian.PutUint32(b[12:16], 600)
				}, nil)
			},
			expected: ErrFormat,
		},
		{
			name: "Stored checksum wrong",
			data: func(t *testing.T) []byte {
				return createTestHeaderData(t, types.SectorSize512, nil, func(b []byte) {
					binary.LittleEndian.PutUint32(b[16:20], 0x12345678)
				})
			},
			expected: ErrChecksumMismatch,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadHeader(tc.data(t), types.SectorSize512)
			if err == nil {
				t.Fatal("ReadHeader() succeeded, want error")
			}
			if !errors.Is(err, tc.expected) {
				t.Errorf("error = %v, want %v", err, tc.expected)
			}
		})
	}
}

func TestReadHeaderRejectsBitFlips(t *testing.T) {
	// Any single-bit corruption of the header body must surface as a
	// checksum mismatch (flips inside the crc field itself included).
	for off := 0; off < int(types.HeaderSize); off++ {
		for bit := 0; bit < 8; bit += 3 {
			b := createTestHeaderData(t, types.SectorSize512, nil, nil)
			b[off] ^= 1 << bit

			_, err := ReadHeader(b, types.SectorSize512)
			if err == nil {
				t.Fatalf("ReadHeader() accepted a flipped bit %d at offset %d", bit, off)
			}
		}
	}
}

func TestHeaderEncodeRoundTrip(t *testing.T) {
	h := &Header{
		Revision:       types.Revision,
		Size:           types.HeaderSize,
		CurrentLBA:     1,
		BackupLBA:      8191,
		FirstUsableLBA: 34,
		LastUsableLBA:  8158,
		DiskGUID:       types.MustParseGuid(testDiskGUID),
		EntriesLBA:     2,
		EntryCount:     128,
		EntrySize:      128,
		ArrayChecksum:  0xCAFEBABE,
	}

	b, err := h.Encode(types.SectorSize512)
	if err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}
	if uint64(len(b)) != types.SectorSize512.Bytes() {
		t.Fatalf("Encode() produced %d bytes, want one sector", len(b))
	}

	decoded, err := ReadHeader(b, types.SectorSize512)
	if err != nil {
		t.Fatalf("ReadHeader(Encode()) failed: %v", err)
	}

	// the decoded header carries the stamped checksum; compare the rest
	h.Checksum = decoded.Checksum
	if !reflect.DeepEqual(h, decoded) {
		t.Errorf("round-trip mismatch:\n got %+v\nwant %+v", decoded, h)
	}
}

func TestHeaderEncodeNonStandardSector(t *testing.T) {
	h := &Header{
		Revision:       types.Revision,
		Size:           types.HeaderSize,
		CurrentLBA:     1,
		BackupLBA:      1023,
		FirstUsableLBA: 3,
		LastUsableLBA:  1021,
		DiskGUID:       types.MustParseGuid(testDiskGUID),
		EntriesLBA:     2,
		EntryCount:     128,
		EntrySize:      128,
	}

	for _, ss := range []types.SectorSize{types.SectorSize4096, types.SectorSize(16384)} {
		b, err := h.Encode(ss)
		if err != nil {
			t.Fatalf("Encode(%s) failed: %v", ss, err)
		}
		if uint64(len(b)) != ss.Bytes() {
			t.Fatalf("Encode(%s) produced %d bytes", ss, len(b))
		}
		if _, err := ReadHeader(b, ss); err != nil {
			t.Errorf("ReadHeader at sector size %s failed: %v", ss, err)
		}
	}
}

func TestHeaderTrailingBytesRoundTrip(t *testing.T) {
	// Headers declaring a size beyond 92 keep their extra bytes and their
	// checksum across a decode/encode cycle.
	b := createTestHeaderData(t, types.SectorSize512, func(b []byte) {
		binary.LittleEndian.PutUint32(b[12:16], 100)
		copy(b[92:100], []byte{1, 2, 3, 4, 5, 6, 7, 8})
	}, nil)

	h, err := ReadHeader(b, types.SectorSize512)
	if err != nil {
		t.Fatalf("ReadHeader() failed: %v", err)
	}
	if len(h.TrailingBytes) != 8 {
		t.Fatalf("TrailingBytes length = %d, want 8", len(h.TrailingBytes))
	}

	out, err := h.Encode(types.SectorSize512)
	if err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}
	if !reflect.DeepEqual(out, b) {
		t.Error("oversized header did not round-trip byte-identically")
	}
}

func TestHeaderCounterpart(t *testing.T) {
	b := createTestHeaderData(t, types.SectorSize512, nil, nil)
	h, err := ReadHeader(b, types.SectorSize512)
	if err != nil {
		t.Fatalf("ReadHeader() failed: %v", err)
	}

	c := h.Counterpart(8159)
	if c.CurrentLBA != h.BackupLBA || c.BackupLBA != h.CurrentLBA {
		t.Errorf("Counterpart locations = (%d, %d), want swapped (%d, %d)",
			c.CurrentLBA, c.BackupLBA, h.BackupLBA, h.CurrentLBA)
	}
	if c.EntriesLBA != 8159 {
		t.Errorf("Counterpart EntriesLBA = %d, want 8159", c.EntriesLBA)
	}
	if c.DiskGUID != h.DiskGUID {
		t.Error("Counterpart changed the disk GUID")
	}
}

func TestHeaderArraySectors(t *testing.T) {
	h := &Header{EntryCount: 128, EntrySize: 128}
	testCases := []struct {
		ss       types.SectorSize
		expected uint64
	}{
		{types.SectorSize512, 32},
		{types.SectorSize4096, 4},
		{types.SectorSize(16384), 1},
	}
	for _, tc := range testCases {
		if got := h.ArraySectors(tc.ss); got != tc.expected {
			t.Errorf("ArraySectors(%s) = %d, want %d", tc.ss, got, tc.expected)
		}
	}
}
