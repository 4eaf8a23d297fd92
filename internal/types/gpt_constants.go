package types

// Fixed layout values from the GPT specification.
const (
	// Signature is the 8-byte magic at offset 0 of every GPT header.
	Signature = "EFI PART"

	// Revision 1.0, stored little-endian at offset 8.
	Revision uint32 = 0x00010000

	// HeaderSize is the size of the defined header fields. Headers may
	// declare a larger size up to one sector; the extra bytes still
	// participate in the header checksum.
	HeaderSize uint32 = 92

	// PartitionEntrySize is the conventional size of one partition entry.
	// The header may declare a larger entry size, never a smaller one.
	PartitionEntrySize uint32 = 128

	// DefaultEntryCount is the partition array size written by essentially
	// every partitioning tool: 128 slots of 128 bytes.
	DefaultEntryCount uint32 = 128

	// PartitionNameMaxRunes is the capacity of the name field in UTF-16
	// code units (72 bytes).
	PartitionNameMaxRunes = 36
)

// Partition attribute flag bits (offset 48 of a partition entry).
const (
	AttrRequiredPartition  uint64 = 1 << 0
	AttrNoBlockIOProtocol  uint64 = 1 << 1
	AttrLegacyBIOSBootable uint64 = 1 << 2
)

// Well-known partition type GUIDs. The zero GUID marks an unused slot.
var (
	PartTypeUnused             = ZeroGuid
	PartTypeEFISystem          = MustParseGuid("C12A7328-F81F-11D2-BA4B-00A0C93EC93B")
	PartTypeBIOSBoot           = MustParseGuid("21686148-6449-6E6F-744E-656564454649")
	PartTypeMicrosoftReserved  = MustParseGuid("E3C9E316-0B5C-4DB8-817D-F92DF00215AE")
	PartTypeMicrosoftBasicData = MustParseGuid("EBD0A0A2-B9E5-4433-87C0-68B6B72699C7")
	PartTypeLinuxFilesystem    = MustParseGuid("0FC63DAF-8483-4772-8E79-3D69D8477DE4")
	PartTypeLinuxSwap          = MustParseGuid("0657FD6D-A4AB-43C4-84E5-0933C84B4F4F")
	PartTypeLinuxLVM           = MustParseGuid("E6D6D379-F507-44C2-A23C-238F2A3DF928")
	PartTypeLinuxRaid          = MustParseGuid("A19D880F-05FC-4D3B-A006-743F0F84911E")
)
