package format

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

// HashName generates a 64-bit hash of a slot name for fast lookup: the first
// 8 bytes of SHA-256 as a little-endian integer. Matches the writer side.
func HashName(name string) uint64 {
	hash := sha256.Sum256([]byte(name))
	return binary.LittleEndian.Uint64(hash[:8])
}

// SlotDescriptor is the 64-byte slot-table entry.
// Binary layout: 7 uint64 fields (56 bytes) + 8 uint8 fields (8 bytes).
type SlotDescriptor struct {
	// Core fields (56 bytes - 7x uint64)
	ID           uint64 // Unique slot identifier
	NameHash     uint64 // Hash of slot name for fast lookup
	Offset       uint64 // Byte offset in bundle
	Size         uint64 // Size as stored (possibly compressed)
	OriginalSize uint64 // Original uncompressed size
	Operations   uint64 // Packed operation chain (up to 8 ops)
	Checksum     uint64 // Adler-32 of stored bytes (32-bit value in 64-bit field)

	// Metadata fields (8 bytes - 8x uint8)
	Purpose         uint8 // 0=data, 1=code, 2=config, 3=media
	Lifecycle       uint8 // When to extract/use
	Priority        uint8 // Cache priority hint
	Platform        uint8 // Platform requirements
	Reserved1       uint8
	Reserved2       uint8
	Permissions     uint8 // Unix permissions (lower 8 bits)
	PermissionsHigh uint8 // Unix permissions (upper 8 bits)
}

// Pack serializes the descriptor to exactly SlotDescriptorSize bytes.
func (d *SlotDescriptor) Pack() []byte {
	buf := make([]byte, SlotDescriptorSize)

	binary.LittleEndian.PutUint64(buf[0:8], d.ID)
	binary.LittleEndian.PutUint64(buf[8:16], d.NameHash)
	binary.LittleEndian.PutUint64(buf[16:24], d.Offset)
	binary.LittleEndian.PutUint64(buf[24:32], d.Size)
	binary.LittleEndian.PutUint64(buf[32:40], d.OriginalSize)
	binary.LittleEndian.PutUint64(buf[40:48], d.Operations)
	binary.LittleEndian.PutUint64(buf[48:56], d.Checksum)

	buf[56] = d.Purpose
	buf[57] = d.Lifecycle
	buf[58] = d.Priority
	buf[59] = d.Platform
	buf[60] = d.Reserved1
	buf[61] = d.Reserved2
	buf[62] = d.Permissions
	buf[63] = d.PermissionsHigh

	return buf
}

// UnpackSlotDescriptor deserializes a descriptor from SlotDescriptorSize bytes.
func UnpackSlotDescriptor(data []byte) (*SlotDescriptor, error) {
	if len(data) != SlotDescriptorSize {
		return nil, fmt.Errorf("invalid descriptor size: expected %d, got %d", SlotDescriptorSize, len(data))
	}

	return &SlotDescriptor{
		ID:           binary.LittleEndian.Uint64(data[0:8]),
		NameHash:     binary.LittleEndian.Uint64(data[8:16]),
		Offset:       binary.LittleEndian.Uint64(data[16:24]),
		Size:         binary.LittleEndian.Uint64(data[24:32]),
		OriginalSize: binary.LittleEndian.Uint64(data[32:40]),
		Operations:   binary.LittleEndian.Uint64(data[40:48]),
		Checksum:     binary.LittleEndian.Uint64(data[48:56]),

		Purpose:         data[56],
		Lifecycle:       data[57],
		Priority:        data[58],
		Platform:        data[59],
		Reserved1:       data[60],
		Reserved2:       data[61],
		Permissions:     data[62],
		PermissionsHigh: data[63],
	}, nil
}

// Adler32 returns the stored-bytes checksum as its 32-bit value.
func (d *SlotDescriptor) Adler32() uint32 {
	return uint32(d.Checksum)
}

// GetPermissions returns the full 16-bit permissions value.
func (d *SlotDescriptor) GetPermissions() uint16 {
	return uint16(d.Permissions) | (uint16(d.PermissionsHigh) << 8)
}

// SetPermissions sets the 16-bit permissions value.
func (d *SlotDescriptor) SetPermissions(perms uint16) {
	d.Permissions = uint8(perms & 0xFF)
	d.PermissionsHigh = uint8(perms >> 8)
}
