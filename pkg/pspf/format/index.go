package format

import (
	"bytes"
	"encoding/binary"
	"fmt"

	psperrors "github.com/provide-io/pspf/pkg/pspf/errors"
)

// Header byte offsets. The record is HeaderSize bytes; field order and
// widths are fixed by the format.
const (
	headerOffMagic        = 0   // 8 bytes "PSPF2025"
	headerOffVersion      = 8   // u32
	headerOffChecksum     = 12  // u32, Adler-32 with these 4 bytes zeroed
	headerOffPackageSize  = 16  // u64
	headerOffLauncherSize = 24  // u64
	headerOffMetaOffset   = 32  // u64
	headerOffMetaSize     = 40  // u64
	headerOffMetaChecksum = 48  // 32 bytes, first 4 = LE Adler-32 of compressed metadata
	headerOffSlotTable    = 80  // u64
	headerOffSlotCount    = 88  // u32
	headerOffSignature    = 92  // 512 bytes, first 64 = Ed25519 signature
	headerOffPublicKey    = 604 // 32 bytes
	headerOffReserved     = 636
)

// Index is the PSPF/2025 header record describing bundle layout.
type Index struct {
	FormatVersion uint32 // 0x20250001
	IndexChecksum uint32 // Adler-32 of header block (with this field as 0)

	PackageSize     uint64 // Total file size
	LauncherSize    uint64 // Size of launcher prefix
	MetadataOffset  uint64 // Offset to compressed metadata
	MetadataSize    uint64 // Size of compressed metadata
	SlotTableOffset uint64 // Offset to slot descriptor table
	SlotCount       uint32 // Number of slots

	MetadataChecksum   [32]byte  // Adler-32 of compressed metadata (first 4 bytes, rest zeros)
	IntegritySignature [512]byte // Ed25519 signature of uncompressed JSON (first 64 bytes, rest zeros)
	PublicKey          [32]byte  // Ed25519 public key for signature verification

	Reserved [HeaderSize - headerOffReserved]byte // future expansion
}

// Pack serializes the index to a HeaderSize-byte record.
func (idx *Index) Pack() []byte {
	buf := make([]byte, HeaderSize)

	copy(buf[headerOffMagic:], HeaderMagic)
	binary.LittleEndian.PutUint32(buf[headerOffVersion:], idx.FormatVersion)
	binary.LittleEndian.PutUint32(buf[headerOffChecksum:], idx.IndexChecksum)
	binary.LittleEndian.PutUint64(buf[headerOffPackageSize:], idx.PackageSize)
	binary.LittleEndian.PutUint64(buf[headerOffLauncherSize:], idx.LauncherSize)
	binary.LittleEndian.PutUint64(buf[headerOffMetaOffset:], idx.MetadataOffset)
	binary.LittleEndian.PutUint64(buf[headerOffMetaSize:], idx.MetadataSize)
	copy(buf[headerOffMetaChecksum:headerOffSlotTable], idx.MetadataChecksum[:])
	binary.LittleEndian.PutUint64(buf[headerOffSlotTable:], idx.SlotTableOffset)
	binary.LittleEndian.PutUint32(buf[headerOffSlotCount:], idx.SlotCount)
	copy(buf[headerOffSignature:headerOffPublicKey], idx.IntegritySignature[:])
	copy(buf[headerOffPublicKey:headerOffReserved], idx.PublicKey[:])
	copy(buf[headerOffReserved:], idx.Reserved[:])

	return buf
}

// Unpack deserializes the index from a HeaderSize-byte record. It validates
// the magic field only; version and checksum verification belong to the
// reader, which knows about permissive mode.
func (idx *Index) Unpack(data []byte) error {
	if len(data) != HeaderSize {
		return fmt.Errorf("%w: expected %d, got %d", psperrors.ErrInvalidHeaderSize, HeaderSize, len(data))
	}

	if !bytes.Equal(data[headerOffMagic:headerOffMagic+HeaderMagicSize], HeaderMagic) {
		return fmt.Errorf("%w: %q", psperrors.ErrInvalidMagic, data[headerOffMagic:headerOffMagic+HeaderMagicSize])
	}

	idx.FormatVersion = binary.LittleEndian.Uint32(data[headerOffVersion:])
	idx.IndexChecksum = binary.LittleEndian.Uint32(data[headerOffChecksum:])
	idx.PackageSize = binary.LittleEndian.Uint64(data[headerOffPackageSize:])
	idx.LauncherSize = binary.LittleEndian.Uint64(data[headerOffLauncherSize:])
	idx.MetadataOffset = binary.LittleEndian.Uint64(data[headerOffMetaOffset:])
	idx.MetadataSize = binary.LittleEndian.Uint64(data[headerOffMetaSize:])
	copy(idx.MetadataChecksum[:], data[headerOffMetaChecksum:headerOffSlotTable])
	idx.SlotTableOffset = binary.LittleEndian.Uint64(data[headerOffSlotTable:])
	idx.SlotCount = binary.LittleEndian.Uint32(data[headerOffSlotCount:])
	copy(idx.IntegritySignature[:], data[headerOffSignature:headerOffPublicKey])
	copy(idx.PublicKey[:], data[headerOffPublicKey:headerOffReserved])
	copy(idx.Reserved[:], data[headerOffReserved:])

	return nil
}

// Seal recomputes and stores the self-checksum over the packed record.
func (idx *Index) Seal() {
	idx.IndexChecksum = 0
	idx.IndexChecksum = HeaderChecksum(idx.Pack())
}

// Signature returns the used prefix of the integrity signature field.
func (idx *Index) Signature() []byte {
	return idx.IntegritySignature[:SignatureSize]
}

// HasSignature reports whether the signature field is populated.
func (idx *Index) HasSignature() bool {
	for _, b := range idx.Signature() {
		if b != 0 {
			return true
		}
	}
	return false
}

// MetadataAdler32 returns the little-endian checksum stored in the first 4
// bytes of the metadata checksum field. Zero means "unset, skip verification".
func (idx *Index) MetadataAdler32() uint32 {
	return binary.LittleEndian.Uint32(idx.MetadataChecksum[:4])
}
