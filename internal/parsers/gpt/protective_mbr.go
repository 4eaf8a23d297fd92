package gpt

import (
	"encoding/binary"

	"github.com/deploymenttheory/go-gpt/internal/types"
)

// Protective MBR layout within sector 0. Only enough of the legacy MBR is
// modeled to recognize and emit the single 0xEE partition that marks a
// disk as GPT-partitioned.
const (
	mbrPartitionEntriesStart = 446
	mbrPartitionEntryCount   = 4
	mbrPartitionEntrySize    = 16
	mbrTypeProtective        = 0xEE
)

var mbrSignature = []byte{0x55, 0xAA}

// ReadProtectiveMBR reports whether sector 0 holds a protective MBR: a
// valid boot signature, one non-bootable 0xEE partition starting at LBA 1
// and spanning the disk, and the remaining three slots zeroed.
func ReadProtectiveMBR(b []byte, lastLBA uint64) bool {
	if len(b) < 512 {
		return false
	}
	if b[510] != mbrSignature[0] || b[511] != mbrSignature[1] {
		return false
	}

	parts := b[mbrPartitionEntriesStart : mbrPartitionEntriesStart+mbrPartitionEntryCount*mbrPartitionEntrySize]
	for i := 1; i < mbrPartitionEntryCount; i++ {
		if !allZero(parts[i*mbrPartitionEntrySize : (i+1)*mbrPartitionEntrySize]) {
			return false
		}
	}

	if parts[0] != 0x00 {
		return false
	}
	// head/cylinder/sector values are ignored
	if parts[4] != mbrTypeProtective {
		return false
	}
	if binary.LittleEndian.Uint32(parts[8:12]) != 1 {
		return false
	}
	return binary.LittleEndian.Uint32(parts[12:16]) == clampLBA32(lastLBA)
}

// EncodeProtectiveMBR builds sector 0 for a freshly initialized GPT disk.
// The first 446 bytes (boot code area) stay zero.
func EncodeProtectiveMBR(sectorSize types.SectorSize, lastLBA uint64) []byte {
	b := make([]byte, sectorSize.Bytes())
	b[510] = mbrSignature[0]
	b[511] = mbrSignature[1]

	parts := b[mbrPartitionEntriesStart : mbrPartitionEntriesStart+mbrPartitionEntrySize]
	parts[0] = 0x00
	parts[4] = mbrTypeProtective
	binary.LittleEndian.PutUint32(parts[8:12], 1)
	binary.LittleEndian.PutUint32(parts[12:16], clampLBA32(lastLBA))
	return b
}

// clampLBA32 saturates a 64-bit LBA to the 32-bit field legacy MBR
// entries offer; disks past 2 TiB at 512-byte sectors store 0xFFFFFFFF.
func clampLBA32(lba uint64) uint32 {
	if lba > 0xFFFFFFFF {
		return 0xFFFFFFFF
	}
	return uint32(lba)
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}
