package disk

import (
	"github.com/deploymenttheory/go-gpt/internal/parsers/gpt"
)

// Outcome is the result of comparing the two header copies at open time.
type Outcome int

const (
	// Consistent: both copies valid and mutually consistent; primary is
	// the source of truth.
	Consistent Outcome = iota

	// RepairFromBackup: primary invalid or inconsistent, backup valid;
	// the primary copy must be rebuilt from the backup.
	RepairFromBackup

	// RepairFromPrimary: backup invalid or inconsistent, primary valid;
	// the backup copy must be rebuilt from the primary.
	RepairFromPrimary

	// Unrecoverable: neither copy can be trusted.
	Unrecoverable
)

func (o Outcome) String() string {
	switch o {
	case Consistent:
		return "consistent"
	case RepairFromBackup:
		return "repair-from-backup"
	case RepairFromPrimary:
		return "repair-from-primary"
	case Unrecoverable:
		return "unrecoverable"
	}
	return "unknown"
}

// Reconcile decides which header copy to trust. perr and berr are the
// decode results for the primary and backup candidates; a decoded header
// is additionally checked against its expected on-disk location and its
// cross-reference to the counterpart. Pure function over its inputs.
func Reconcile(primary, backup *gpt.Header, perr, berr error, lastLBA uint64) Outcome {
	pOK := perr == nil && primaryInPlace(primary, lastLBA)
	bOK := berr == nil && backupInPlace(backup, lastLBA)

	switch {
	case pOK && bOK:
		if primary.DiskGUID == backup.DiskGUID {
			return Consistent
		}
		// Two individually valid headers naming different disks: the
		// backup is treated as stale and rebuilt from the primary.
		return RepairFromPrimary
	case bOK:
		return RepairFromBackup
	case pOK:
		return RepairFromPrimary
	default:
		return Unrecoverable
	}
}

// primaryInPlace checks the primary header's location cross-references:
// it must declare itself at LBA 1 and point its backup at the last LBA.
func primaryInPlace(h *gpt.Header, lastLBA uint64) bool {
	return h != nil && h.CurrentLBA == 1 && h.BackupLBA == lastLBA
}

// backupInPlace is the mirror check for the backup header.
func backupInPlace(h *gpt.Header, lastLBA uint64) bool {
	return h != nil && h.CurrentLBA == lastLBA && h.BackupLBA == 1
}
