package format

// Metadata is the bundle's JSON document, gzip-compressed at rest. Only the
// slots array is required; everything else is writer-provided context passed
// through for callers.
type Metadata struct {
	Format        string            `json:"format,omitempty"`
	FormatVersion string            `json:"format_version,omitempty"`
	Package       *PackageInfo      `json:"package,omitempty"`
	Slots         []SlotMetadata    `json:"slots"`
	Verification  *VerificationInfo `json:"verification,omitempty"`
	Build         *BuildInfo        `json:"build,omitempty"`
}

// SlotMetadata describes one slot's semantic purpose. Entries correspond
// positionally to the slot descriptor table.
type SlotMetadata struct {
	Slot        int    `json:"slot"`           // Position validator
	Name        string `json:"name"`           // Slot name, used for extracted content
	Source      string `json:"source,omitempty"`
	Target      string `json:"target,omitempty"`
	Size        int64  `json:"size,omitempty"`
	Checksum    string `json:"checksum,omitempty"`    // Prefixed checksum string
	Operations  string `json:"operations,omitempty"`  // e.g. "gzip", "tar|gzip"
	Purpose     string `json:"purpose,omitempty"`
	Lifecycle   string `json:"lifecycle,omitempty"`
	Permissions string `json:"permissions,omitempty"` // Octal string, e.g. "0755"
}

type PackageInfo struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
}

type VerificationInfo struct {
	Signed              bool   `json:"signed"`
	RequireVerification bool   `json:"require_verification"`
	Algorithm           string `json:"algorithm,omitempty"`
}

type BuildInfo struct {
	Tool        string `json:"tool,omitempty"`
	ToolVersion string `json:"tool_version,omitempty"`
	Timestamp   string `json:"timestamp,omitempty"`
}
