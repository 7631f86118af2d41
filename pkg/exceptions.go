package pkg

import (
	psperrors "github.com/provide-io/pspf/pkg/pspf/errors"
)

// Re-exported sentinels so callers of the convenience API can classify
// failures without importing the errors package directly.
var (
	// Security errors 🔒
	ErrChecksumMismatch = psperrors.ErrChecksumMismatch
	ErrSignatureInvalid = psperrors.ErrSignatureInvalid
	ErrNoIntegritySeal  = psperrors.ErrNoIntegritySeal

	// Slot errors 📂
	ErrInvalidSlotIndex     = psperrors.ErrInvalidSlotIndex
	ErrSlotExtractionFailed = psperrors.ErrSlotExtractionFailed

	// Locking errors 🔐
	ErrLockTimeout = psperrors.ErrLockTimeout
)
