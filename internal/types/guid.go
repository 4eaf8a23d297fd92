package types

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrParse indicates malformed textual GUID input.
var ErrParse = errors.New("malformed GUID")

// Guid is the 16-byte identifier used throughout the GPT format, held in
// canonical RFC 4122 byte order. The on-disk representation is
// mixed-endian: the first three groups are stored little-endian, the last
// two big-endian. Guid is a comparable value type with no identity beyond
// its bytes.
type Guid [16]byte

// ZeroGuid marks an unused partition entry.
var ZeroGuid = Guid{}

// GuidFromOnDisk decodes the 16 mixed-endian bytes stored on disk.
func GuidFromOnDisk(b [16]byte) Guid {
	return Guid(swapGuidGroups(b))
}

// OnDiskBytes encodes the Guid in the mixed-endian order GPT stores.
func (g Guid) OnDiskBytes() [16]byte {
	return swapGuidGroups([16]byte(g))
}

// swapGuidGroups reverses the first three groups (4, 2 and 2 bytes). The
// transformation is its own inverse.
func swapGuidGroups(in [16]byte) [16]byte {
	return [16]byte{
		in[3], in[2], in[1], in[0],
		in[5], in[4],
		in[7], in[6],
		in[8], in[9],
		in[10], in[11], in[12], in[13], in[14], in[15],
	}
}

// ParseGuid parses the canonical hyphenated hex form.
func ParseGuid(s string) (Guid, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ZeroGuid, fmt.Errorf("%w: %q: %v", ErrParse, s, err)
	}
	return Guid(u), nil
}

// MustParseGuid is for package-level well-known constants.
func MustParseGuid(s string) Guid {
	g, err := ParseGuid(s)
	if err != nil {
		panic(err)
	}
	return g
}

// NewRandomGuid returns a version 4 random Guid.
func NewRandomGuid() Guid {
	return Guid(uuid.New())
}

// IsZero reports whether all 16 bytes are zero.
func (g Guid) IsZero() bool {
	return bytes.Equal(g[:], ZeroGuid[:])
}

// String returns the upper-case hyphenated form, matching how partitioning
// tools conventionally print GPT GUIDs.
func (g Guid) String() string {
	return strings.ToUpper(uuid.UUID(g).String())
}
