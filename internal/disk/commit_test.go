package disk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-gpt/internal/checksum"
	"github.com/deploymenttheory/go-gpt/internal/parsers/gpt"
	"github.com/deploymenttheory/go-gpt/internal/types"
)

func TestCommitRegions(t *testing.T) {
	d, err := Open(fixtureDevice(t), Options{Writable: true})
	require.NoError(t, err)

	set, err := d.Commit()
	require.NoError(t, err)

	ss := types.SectorSize512
	assert.Nil(t, set.ProtectiveMBR, "an existing table does not rewrite sector 0")
	assert.Equal(t, ss.ToBytes(1), set.PrimaryHeader.ByteOffset)
	assert.Equal(t, ss.ToBytes(2047), set.BackupHeader.ByteOffset)
	assert.Equal(t, ss.ToBytes(2), set.PrimaryArray.ByteOffset)
	assert.Equal(t, ss.ToBytes(2047-32), set.BackupArray.ByteOffset)

	assert.Len(t, set.PrimaryHeader.Data, 512, "header regions span a full sector")
	assert.Len(t, set.BackupHeader.Data, 512)
	assert.Len(t, set.PrimaryArray.Data, 128*128)
	assert.Equal(t, set.PrimaryArray.Data, set.BackupArray.Data, "both array copies carry identical bytes")

	assert.Len(t, set.Regions(), 4)

	// both header regions must decode cleanly, CRCs included
	primary, err := gpt.ReadHeader(set.PrimaryHeader.Data, ss)
	require.NoError(t, err, "committed primary header must validate")
	backup, err := gpt.ReadHeader(set.BackupHeader.Data, ss)
	require.NoError(t, err, "committed backup header must validate")

	entryBytes := uint64(primary.EntryCount) * uint64(primary.EntrySize)
	arraySum := checksum.Sum(set.PrimaryArray.Data[:entryBytes])
	assert.Equal(t, arraySum, primary.ArrayChecksum)
	assert.Equal(t, arraySum, backup.ArrayChecksum)
}

func TestCommitStampsInMemoryHeaders(t *testing.T) {
	d, err := Open(fixtureDevice(t), Options{Writable: true})
	require.NoError(t, err)

	_, err = d.AddPartition(types.PartTypeLinuxSwap, 100, "swap", 0)
	require.NoError(t, err)

	set, err := d.Commit()
	require.NoError(t, err)

	// after a commit the in-memory headers match what went to disk
	onDisk, err := gpt.ReadHeader(set.PrimaryHeader.Data, types.SectorSize512)
	require.NoError(t, err)
	inMemory := d.PrimaryHeader()
	assert.Equal(t, onDisk.Checksum, inMemory.Checksum)
	assert.Equal(t, onDisk.ArrayChecksum, inMemory.ArrayChecksum)
	assert.Equal(t, d.BackupHeader().ArrayChecksum, inMemory.ArrayChecksum)
}

func TestCommitArrayPadding(t *testing.T) {
	// 3072-byte sectors leave the 16384-byte array mid-sector; the region
	// pads to a whole number of sectors while the checksum covers only the
	// entry bytes
	ss := types.SectorSize(3072)
	dev := &memDevice{
		data:       buildImage(t, ss, 2048, fixtureEntries()),
		sectorSize: ss,
	}
	d, err := Open(dev, Options{Writable: true})
	require.NoError(t, err)

	set, err := d.Commit()
	require.NoError(t, err)
	assert.Len(t, set.PrimaryArray.Data, 6*3072)

	primary, err := gpt.ReadHeader(set.PrimaryHeader.Data, ss)
	require.NoError(t, err)
	entryBytes := uint64(primary.EntryCount) * uint64(primary.EntrySize)
	assert.Equal(t, checksum.Sum(set.PrimaryArray.Data[:entryBytes]), primary.ArrayChecksum)
}

func TestWriteToRoundTrip(t *testing.T) {
	dev := fixtureDevice(t)
	d, err := Open(dev, Options{Writable: true})
	require.NoError(t, err)

	slot, err := d.AddPartition(types.PartTypeLinuxSwap, 200, "swap", types.AttrRequiredPartition)
	require.NoError(t, err)
	require.NoError(t, d.WriteTo(dev))

	reopened, err := Open(dev, Options{})
	require.NoError(t, err, "reopening after write")
	assert.False(t, reopened.NeedsRepair())
	assert.Equal(t, fixtureGUID, reopened.DiskGUID().String())

	parts := reopened.UsedPartitions()
	require.Len(t, parts, 3)

	e, err := reopened.Entry(slot)
	require.NoError(t, err)
	assert.Equal(t, "swap", e.Name)
	assert.Equal(t, types.PartTypeLinuxSwap, e.TypeGUID)
	assert.Equal(t, types.AttrRequiredPartition, e.Attributes)
}

func TestWriteToRepairsCorruptPrimary(t *testing.T) {
	dev := fixtureDevice(t)
	dev.data[types.SectorSize512.ToBytes(1)+40] ^= 0xFF

	d, err := Open(dev, Options{Writable: true})
	require.NoError(t, err)
	require.True(t, d.NeedsRepair())

	require.NoError(t, d.WriteTo(dev))
	assert.False(t, d.NeedsRepair(), "repair flag clears once the device confirms the flush")

	reopened, err := Open(dev, Options{})
	require.NoError(t, err)
	assert.False(t, reopened.NeedsRepair(), "rewritten image must be consistent")
	assert.Equal(t, fixtureGUID, reopened.DiskGUID().String(), "repair preserves the disk identity")
	assert.Len(t, reopened.UsedPartitions(), 2)
}

func TestWriteToFailureKeepsRepairPending(t *testing.T) {
	dev := fixtureDevice(t)
	dev.data[types.SectorSize512.ToBytes(1)+40] ^= 0xFF

	d, err := Open(dev, Options{Writable: true})
	require.NoError(t, err)
	require.True(t, d.NeedsRepair())

	dev.readOnly = true
	require.Error(t, d.WriteTo(dev))
	assert.True(t, d.NeedsRepair(), "a failed write must not clear the repair flag")
}

func TestWriteToInitializeEmpty(t *testing.T) {
	dev := &memDevice{
		data:       make([]byte, types.SectorSize512.ToBytes(2048)),
		sectorSize: types.SectorSize512,
	}
	d, err := Open(dev, Options{InitializeEmpty: true, Writable: true})
	require.NoError(t, err)

	set, err := d.Commit()
	require.NoError(t, err)
	require.NotNil(t, set.ProtectiveMBR, "a fresh table writes the protective MBR")
	assert.Equal(t, uint64(0), set.ProtectiveMBR.ByteOffset)
	assert.Len(t, set.Regions(), 5)

	require.NoError(t, d.WriteTo(dev))

	reopened, err := Open(dev, Options{})
	require.NoError(t, err, "a freshly initialized image must open without InitializeEmpty")
	assert.True(t, reopened.HasProtectiveMBR())
	assert.Empty(t, reopened.UsedPartitions())
	assert.Equal(t, d.DiskGUID(), reopened.DiskGUID())
	assert.False(t, reopened.NeedsRepair())
}
