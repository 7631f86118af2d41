// Package permissions parses the octal permission strings carried in bundle
// metadata slot entries.
package permissions

import (
	"fmt"
	"strconv"
	"strings"
)

// Default permission constants (user-only access for security)
const (
	DefaultFilePerms       = 0o600 // Read/write for owner only
	DefaultExecutablePerms = 0o700 // Read/write/execute for owner only
	DefaultDirPerms        = 0o700 // Read/write/execute for owner only
)

// ParseOctalString parses an octal permission string into a uint16.
// Handles formats like "755", "0755", "0o755". Empty strings yield the
// secure file default.
func ParseOctalString(s string) (uint16, error) {
	if s == "" {
		return DefaultFilePerms, nil
	}

	s = strings.TrimPrefix(s, "0o")
	s = strings.TrimPrefix(s, "0")

	val, err := strconv.ParseUint(s, 8, 16)
	if err != nil {
		return DefaultFilePerms, fmt.Errorf("invalid permission string %q: %w", s, err)
	}

	return uint16(val), nil
}

// FormatOctal formats a permission value as an octal string.
func FormatOctal(perm uint16) string {
	return fmt.Sprintf("0%o", perm)
}

// IsExecutable checks if permissions include execute bit for owner.
func IsExecutable(perm uint16) bool {
	return perm&0o100 != 0
}
