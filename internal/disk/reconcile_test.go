package disk

import (
	"testing"

	"github.com/deploymenttheory/go-gpt/internal/parsers/gpt"
	"github.com/deploymenttheory/go-gpt/internal/types"
)

func testHeaderPair(lastLBA uint64) (*gpt.Header, *gpt.Header) {
	primary := &gpt.Header{
		Revision:       types.Revision,
		Size:           types.HeaderSize,
		CurrentLBA:     1,
		BackupLBA:      lastLBA,
		FirstUsableLBA: 34,
		LastUsableLBA:  lastLBA - 33,
		DiskGUID:       types.MustParseGuid(fixtureGUID),
		EntriesLBA:     2,
		EntryCount:     128,
		EntrySize:      128,
	}
	return primary, primary.Counterpart(lastLBA - 32)
}

func TestReconcile(t *testing.T) {
	const lastLBA = uint64(8191)
	decodeFailed := gpt.ErrChecksumMismatch

	testCases := []struct {
		name     string
		setup    func() (p, b *gpt.Header, perr, berr error)
		expected Outcome
	}{
		{
			name: "Both valid and consistent",
			setup: func() (*gpt.Header, *gpt.Header, error, error) {
				p, b := testHeaderPair(lastLBA)
				return p, b, nil, nil
			},
			expected: Consistent,
		},
		{
			name: "Primary failed decode",
			setup: func() (*gpt.Header, *gpt.Header, error, error) {
				_, b := testHeaderPair(lastLBA)
				return nil, b, decodeFailed, nil
			},
			expected: RepairFromBackup,
		},
		{
			name: "Backup failed decode",
			setup: func() (*gpt.Header, *gpt.Header, error, error) {
				p, _ := testHeaderPair(lastLBA)
				return p, nil, nil, decodeFailed
			},
			expected: RepairFromPrimary,
		},
		{
			name: "Both failed decode",
			setup: func() (*gpt.Header, *gpt.Header, error, error) {
				return nil, nil, decodeFailed, decodeFailed
			},
			expected: Unrecoverable,
		},
		{
			name: "Primary decoded but misplaced",
			setup: func() (*gpt.Header, *gpt.Header, error, error) {
				p, b := testHeaderPair(lastLBA)
				p.CurrentLBA = 5 // a primary must live at LBA 1
				return p, b, nil, nil
			},
			expected: RepairFromBackup,
		},
		{
			name: "Backup points at the wrong counterpart",
			setup: func() (*gpt.Header, *gpt.Header, error, error) {
				p, b := testHeaderPair(lastLBA)
				b.BackupLBA = 7
				return p, b, nil, nil
			},
			expected: RepairFromPrimary,
		},
		{
			name: "Valid headers naming different disks",
			setup: func() (*gpt.Header, *gpt.Header, error, error) {
				p, b := testHeaderPair(lastLBA)
				b.DiskGUID = types.MustParseGuid("11111111-1111-4111-8111-111111111111")
				return p, b, nil, nil
			},
			expected: RepairFromPrimary,
		},
		{
			name: "Both misplaced",
			setup: func() (*gpt.Header, *gpt.Header, error, error) {
				p, b := testHeaderPair(lastLBA)
				p.CurrentLBA = 9
				b.CurrentLBA = 10
				return p, b, nil, nil
			},
			expected: Unrecoverable,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, b, perr, berr := tc.setup()
			if got := Reconcile(p, b, perr, berr, lastLBA); got != tc.expected {
				t.Errorf("Reconcile() = %s, want %s", got, tc.expected)
			}
		})
	}
}
