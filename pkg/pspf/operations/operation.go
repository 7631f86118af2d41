// Package operations implements PSPF/2025 slot operation chains.
//
// A slot's on-disk encoding is a chain of up to 8 operations packed into a
// 64-bit field, 8 bits per operation, first operation in the LSB, 0x00
// terminating the chain. The tag values are fixed by the format and match the
// writer side; dispatch is a closed switch, not an open registry.
package operations

import "fmt"

const (
	// No operation - raw data
	OpNone = 0x00

	// Bundle operations (0x01-0x0F)
	OpTar = 0x01 // POSIX TAR archive

	// Compression operations (0x10-0x2F)
	OpGzip  = 0x10 // GZIP compression
	OpBzip2 = 0x13 // BZIP2 compression
	OpXz    = 0x16 // XZ/LZMA2 compression
	OpZstd  = 0x1B // Zstandard compression
)

// MaxChainLength is the number of operations a packed chain can hold.
const MaxChainLength = 8

// Name returns the human-readable name of an operation tag.
func Name(id uint8) string {
	switch id {
	case OpNone:
		return "NONE"
	case OpTar:
		return "TAR"
	case OpGzip:
		return "GZIP"
	case OpBzip2:
		return "BZIP2"
	case OpXz:
		return "XZ"
	case OpZstd:
		return "ZSTD"
	default:
		return fmt.Sprintf("UNKNOWN_%02x", id)
	}
}

// Known reports whether id is a tag this reader understands.
func Known(id uint8) bool {
	switch id {
	case OpNone, OpTar, OpGzip, OpBzip2, OpXz, OpZstd:
		return true
	default:
		return false
	}
}
