package format

// Checksum utilities. The format uses Adler-32 throughout for corruption
// detection; metadata-level checksum strings use a prefixed
// "algorithm:hexvalue" form (e.g. "adler32:00f80384", "sha256:c0ffee...").

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash"
	"hash/adler32"
	"strings"
)

// Adler32 computes the Adler-32 checksum of data.
func Adler32(data []byte) uint32 {
	return adler32.Checksum(data)
}

// HeaderChecksum computes the index self-checksum: Adler-32 over the full
// header record with the 4 checksum bytes zeroed. raw must be HeaderSize long.
func HeaderChecksum(raw []byte) uint32 {
	h := adler32.New()
	h.Write(raw[:headerOffChecksum])
	h.Write([]byte{0, 0, 0, 0})
	h.Write(raw[headerOffChecksum+4:])
	return h.Sum32()
}

// MetadataChecksumField builds the 32-byte metadata checksum field: the
// little-endian Adler-32 of the compressed metadata blob in the first 4
// bytes, remainder zero.
func MetadataChecksumField(compressed []byte) [32]byte {
	var field [32]byte
	binary.LittleEndian.PutUint32(field[:4], adler32.Checksum(compressed))
	return field
}

// ChecksumAlgorithm represents supported checksum-string algorithms.
type ChecksumAlgorithm int

const (
	ChecksumSHA256 ChecksumAlgorithm = iota
	ChecksumSHA512
	ChecksumAdler32
)

func (c ChecksumAlgorithm) String() string {
	switch c {
	case ChecksumSHA256:
		return "sha256"
	case ChecksumSHA512:
		return "sha512"
	case ChecksumAdler32:
		return "adler32"
	default:
		return "unknown"
	}
}

// ParseChecksum parses a checksum string that may or may not carry an
// algorithm prefix. Unprefixed strings are classified by hex length.
func ParseChecksum(s string) (ChecksumAlgorithm, string, error) {
	if strings.Contains(s, ":") {
		parts := strings.SplitN(s, ":", 2)
		switch parts[0] {
		case "sha256":
			return ChecksumSHA256, parts[1], nil
		case "sha512":
			return ChecksumSHA512, parts[1], nil
		case "adler32":
			return ChecksumAdler32, parts[1], nil
		default:
			return ChecksumSHA256, "", fmt.Errorf("unknown checksum algorithm: %s", parts[0])
		}
	}

	switch len(s) {
	case 8:
		return ChecksumAdler32, s, nil
	case 128:
		return ChecksumSHA512, s, nil
	default:
		return ChecksumSHA256, s, nil
	}
}

// CalculateChecksum computes a prefixed checksum string for data.
func CalculateChecksum(data []byte, algo ChecksumAlgorithm) string {
	var h hash.Hash
	switch algo {
	case ChecksumSHA512:
		h = sha512.New()
	case ChecksumAdler32:
		h = adler32.New()
	default:
		h = sha256.New()
	}
	h.Write(data)
	return algo.String() + ":" + hex.EncodeToString(h.Sum(nil))
}

// VerifyChecksum checks data against a (possibly prefixed) checksum string.
func VerifyChecksum(data []byte, checksumStr string) (bool, error) {
	algo, expected, err := ParseChecksum(checksumStr)
	if err != nil {
		return false, err
	}

	actual := CalculateChecksum(data, algo)
	actualHex := actual[strings.IndexByte(actual, ':')+1:]
	return actualHex == expected, nil
}
