// Package format implements reading of PSPF/2025 bundles: header discovery
// past an arbitrary launcher prefix, index/metadata/slot-table decoding,
// checksum and signature verification, and verified slot access.
package format

// Core format constants. These are part of the on-disk contract and must
// never be computed from struct layouts.

var (
	// HeaderMagic identifies the start of the PSPF header record.
	HeaderMagic = []byte("PSPF2025")

	// EmojiMagic trails the bundle: 📦🪄 as UTF-8 bytes. Kept as raw bytes to
	// avoid literal emoji in the binary.
	EmojiMagic = []byte{0xF0, 0x9F, 0x93, 0xA6, 0xF0, 0x9F, 0xAA, 0x84}
)

const (
	// Format version - immutable
	Version = 0x20250001

	// Fixed sizes - part of the format specification
	HeaderMagicSize    = 8    // "PSPF2025"
	EmojiMagicSize     = 8    // 📦🪄 trailing marker
	HeaderSize         = 8192 // full header record
	SlotDescriptorSize = 64   // one slot-table entry

	// Launcher scan parameters
	ScanChunkSize = 64 * 1024        // forward scan granularity
	ScanLimit     = 10 * 1024 * 1024 // give up past this offset

	// Streaming
	DefaultChunkSize = 64 * 1024

	// SignatureSize is the used prefix of the integrity signature field.
	SignatureSize = 64
)

// File permissions defaults (user-only access).
const (
	FilePerms       = 0o600
	ExecutablePerms = 0o700
	DirPerms        = 0o700
)

// Extraction lock defaults.
const (
	LockFileName       = ".pspf.lock"
	LockPollMillis     = 100
	DefaultLockTimeout = 30 // seconds
)
