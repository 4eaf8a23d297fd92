package gpt

import "errors"

// Error kinds surfaced by the codec layer. Higher layers wrap these with
// context; callers match them with errors.Is.
var (
	// ErrFormat indicates a buffer too short or structurally inconsistent
	// size fields.
	ErrFormat = errors.New("malformed GPT structure")

	// ErrInvalidSignature indicates the 8-byte "EFI PART" magic is absent.
	ErrInvalidSignature = errors.New("invalid GPT signature")

	// ErrChecksumMismatch indicates a stored CRC32 does not match the
	// checksum computed over the covered bytes.
	ErrChecksumMismatch = errors.New("GPT checksum mismatch")
)
