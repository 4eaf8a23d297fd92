// Package checksum provides the CRC32 engine used for GPT header and
// partition-array integrity. GPT uses the standard IEEE 802.3 polynomial,
// the same one used by zlib and common archive formats.
package checksum

import "hash/crc32"

// Sum computes the CRC32 (IEEE) of b.
func Sum(b []byte) uint32 {
	return crc32.ChecksumIEEE(b)
}

// SumWithZeroedField computes the CRC32 of b as if the n bytes starting at
// off were zero. The GPT header checksum is defined this way: the stored
// crc field is zeroed during computation. b itself is not modified.
func SumWithZeroedField(b []byte, off, n int) uint32 {
	work := make([]byte, len(b))
	copy(work, b)
	for i := off; i < off+n && i < len(work); i++ {
		work[i] = 0
	}
	return crc32.ChecksumIEEE(work)
}
