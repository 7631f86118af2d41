package operations

import (
	"fmt"
	"strings"
)

// Pack packs a list of operations into a 64-bit integer.
// Operations are packed in execution order (first operation in LSB).
func Pack(ops []uint8) (uint64, error) {
	if len(ops) > MaxChainLength {
		return 0, fmt.Errorf("maximum %d operations allowed, got %d", MaxChainLength, len(ops))
	}

	var packed uint64
	for i, op := range ops {
		packed |= uint64(op) << (i * 8)
	}

	return packed, nil
}

// Unpack unpacks a 64-bit integer into a list of operations.
// OpNone terminates the chain.
func Unpack(packed uint64) []uint8 {
	var ops []uint8

	for i := 0; i < MaxChainLength; i++ {
		op := uint8((packed >> (i * 8)) & 0xFF)
		if op == OpNone {
			break
		}
		ops = append(ops, op)
	}

	return ops
}

// String converts a packed chain to a human-readable form
// ("raw", "tar.gz", "gzip", or pipe-separated names).
func String(packed uint64) string {
	if packed == 0 {
		return "raw"
	}

	ops := Unpack(packed)

	key := chainKey(ops)
	if name, ok := commonChains[key]; ok {
		return name
	}

	names := make([]string, len(ops))
	for i, op := range ops {
		names[i] = strings.ToLower(Name(op))
	}
	return strings.Join(names, "|")
}

// Parse converts an operation string ("raw", "gzip", "tar.gz", "tar|gzip")
// to a packed chain.
func Parse(s string) (uint64, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "raw" {
		return 0, nil
	}

	if ops, ok := namedChains[s]; ok {
		return Pack(ops)
	}

	if strings.Contains(s, "|") {
		var ops []uint8
		for _, part := range strings.Split(s, "|") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			op, ok := namedOps[part]
			if !ok {
				return 0, fmt.Errorf("unsupported operation: %s", part)
			}
			ops = append(ops, op)
		}
		return Pack(ops)
	}

	return 0, fmt.Errorf("unknown operation string: %s", s)
}

func chainKey(ops []uint8) string {
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = fmt.Sprintf("%02x", op)
	}
	return strings.Join(parts, "-")
}

var commonChains = map[string]string{
	"01":    "tar",
	"10":    "gzip",
	"13":    "bzip2",
	"16":    "xz",
	"1b":    "zstd",
	"01-10": "tar.gz",
	"01-13": "tar.bz2",
	"01-16": "tar.xz",
	"01-1b": "tar.zst",
}

var namedChains = map[string][]uint8{
	"raw": {},

	"tar":   {OpTar},
	"gzip":  {OpGzip},
	"bzip2": {OpBzip2},
	"xz":    {OpXz},
	"zstd":  {OpZstd},

	"tar.gz":  {OpTar, OpGzip},
	"tar.bz2": {OpTar, OpBzip2},
	"tar.xz":  {OpTar, OpXz},
	"tar.zst": {OpTar, OpZstd},

	"tgz":  {OpTar, OpGzip},
	"tbz2": {OpTar, OpBzip2},
	"txz":  {OpTar, OpXz},
}

var namedOps = map[string]uint8{
	"tar":   OpTar,
	"gzip":  OpGzip,
	"bzip2": OpBzip2,
	"xz":    OpXz,
	"zstd":  OpZstd,
}
