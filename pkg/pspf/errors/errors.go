// Package errors defines the error taxonomy for PSPF/2025 bundle reading.
//
// Sentinel errors classify failures; typed wrappers carry diagnostic detail
// (slot index, checksum values) and unwrap to the matching sentinel so callers
// can use errors.Is for classification and errors.As for detail.
package errors

import (
	"errors"
	"fmt"
)

var (
	// Format errors 📦
	ErrInvalidMagic      = errors.New("❌ invalid PSPF magic")
	ErrInvalidVersion    = errors.New("❌ unsupported PSPF version")
	ErrInvalidHeaderSize = errors.New("❌ invalid header size")
	ErrInvalidEmojiMagic = errors.New("❌ invalid emoji magic")
	ErrMetadataDecode    = errors.New("❌ metadata decode failed")
	ErrUnknownOperation  = errors.New("❌ unknown slot operation")

	// Slot errors 📂
	ErrInvalidSlotIndex     = errors.New("❌ invalid slot index")
	ErrSlotExtractionFailed = errors.New("❌ slot extraction failed")

	// Security errors 🔒
	ErrChecksumMismatch = errors.New("❌ checksum mismatch")
	ErrSignatureInvalid = errors.New("❌ invalid signature")
	ErrNoIntegritySeal  = errors.New("❌ no integrity seal found")

	// Locking errors 🔐
	ErrLockTimeout = errors.New("❌ extraction lock timed out")
)

// IntegrityError reports an Adler-32 mismatch for a specific section of the
// bundle. Slot is -1 for non-slot sections (index, metadata).
type IntegrityError struct {
	Section  string
	Slot     int
	Expected uint32
	Actual   uint32
}

func (e *IntegrityError) Error() string {
	if e.Slot >= 0 {
		return fmt.Sprintf("❌ checksum mismatch in slot %d: expected 0x%08x, got 0x%08x",
			e.Slot, e.Expected, e.Actual)
	}
	return fmt.Sprintf("❌ checksum mismatch in %s: expected 0x%08x, got 0x%08x",
		e.Section, e.Expected, e.Actual)
}

func (e *IntegrityError) Unwrap() error {
	return ErrChecksumMismatch
}

// NewIntegrityError reports a mismatch in a non-slot section.
func NewIntegrityError(section string, expected, actual uint32) *IntegrityError {
	return &IntegrityError{Section: section, Slot: -1, Expected: expected, Actual: actual}
}

// NewSlotIntegrityError reports a mismatch in a slot's stored bytes.
func NewSlotIntegrityError(slot int, expected, actual uint32) *IntegrityError {
	return &IntegrityError{Section: "slot", Slot: slot, Expected: expected, Actual: actual}
}

// RangeError reports an out-of-bounds slot index.
type RangeError struct {
	Index int
	Count int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("❌ invalid slot index %d: bundle has %d slots", e.Index, e.Count)
}

func (e *RangeError) Unwrap() error {
	return ErrInvalidSlotIndex
}

// FormatError reports malformed or unrecognized bundle structure.
type FormatError struct {
	Detail string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("❌ malformed bundle: %s: %v", e.Detail, e.Err)
	}
	return fmt.Sprintf("❌ malformed bundle: %s", e.Detail)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// NewFormatError wraps err with structural context. err may be nil.
func NewFormatError(detail string, err error) *FormatError {
	return &FormatError{Detail: detail, Err: err}
}
