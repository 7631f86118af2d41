package format

import (
	"crypto/ed25519"
	"fmt"
)

// IntegrityReport is the structured verdict of VerifyIntegrity, suitable for
// direct display to the caller.
type IntegrityReport struct {
	Valid          bool   `json:"valid"`
	MagicValid     bool   `json:"magic_valid"`
	ChecksumsValid bool   `json:"checksums_valid"`
	SignatureValid bool   `json:"signature_valid"`
	TamperDetected bool   `json:"tamper_detected"`
	Error          string `json:"error,omitempty"`
}

// VerifyAllChecksums checks every slot's stored bytes against its descriptor
// checksum. This is a diagnostic scan: it reports rather than raises, and
// returns false at the first failing slot (which is logged). A zero-slot
// bundle is trivially valid.
func (r *Reader) VerifyAllChecksums() bool {
	descriptors, err := r.ReadSlotDescriptors()
	if err != nil {
		r.logger.Warn("⚠️ checksum scan could not read slot table", "error", err)
		return false
	}

	for i, desc := range descriptors {
		raw, err := ReadRange(r.backend, int64(desc.Offset), int(desc.Size))
		if err != nil {
			r.logger.Warn("⚠️ checksum scan could not read slot", "slot", i, "error", err)
			return false
		}
		if actual := Adler32(raw); actual != desc.Adler32() {
			r.logger.Warn("⚠️ slot checksum mismatch",
				"slot", i,
				"expected", fmt.Sprintf("0x%08x", desc.Adler32()),
				"actual", fmt.Sprintf("0x%08x", actual))
			return false
		}
	}

	return true
}

// VerifySignature verifies the Ed25519 integrity signature over the
// decompressed metadata JSON using the public key stored in the header.
// Missing or invalid signatures yield false, never an error.
func (r *Reader) VerifySignature() bool {
	index, err := r.ReadIndex()
	if err != nil {
		r.logger.Warn("⚠️ signature check could not read index", "error", err)
		return false
	}

	if !index.HasSignature() {
		r.logger.Debug("no integrity signature present")
		return false
	}

	compressed, err := r.ReadMetadataArchive()
	if err != nil {
		r.logger.Warn("⚠️ signature check could not read metadata", "error", err)
		return false
	}

	jsonData, err := decompressMetadata(compressed)
	if err != nil {
		r.logger.Warn("⚠️ signature check could not decompress metadata", "error", err)
		return false
	}

	if !ed25519.Verify(index.PublicKey[:], jsonData, index.Signature()) {
		r.logger.Warn("⚠️ integrity signature invalid")
		return false
	}

	return true
}

// VerifyIntegrity aggregates magic, slot checksums, and signature into one
// verdict. It fails closed: any unexpected error during the sequence yields
// valid=false, tamper_detected=true, all sub-checks false, and the error
// message. Callers rely on this as the tamper-detection contract, so a
// corrupt bundle can never escape with a partial report.
func (r *Reader) VerifyIntegrity() *IntegrityReport {
	magicValid, err := r.VerifyMagic()
	if err != nil {
		return failClosed(err)
	}

	// The boolean scans below convert their own failures to false.
	checksumsValid := r.VerifyAllChecksums()
	signatureValid := r.VerifySignature()

	valid := magicValid && checksumsValid && signatureValid
	report := &IntegrityReport{
		Valid:          valid,
		MagicValid:     magicValid,
		ChecksumsValid: checksumsValid,
		SignatureValid: signatureValid,
		TamperDetected: !valid,
	}
	if !valid {
		report.Error = describeFailure(report)
	}
	return report
}

func failClosed(err error) *IntegrityReport {
	return &IntegrityReport{
		Valid:          false,
		MagicValid:     false,
		ChecksumsValid: false,
		SignatureValid: false,
		TamperDetected: true,
		Error:          err.Error(),
	}
}

func describeFailure(report *IntegrityReport) string {
	switch {
	case !report.MagicValid:
		return "trailing magic marker invalid"
	case !report.ChecksumsValid:
		return "slot checksum verification failed"
	case !report.SignatureValid:
		return "integrity signature verification failed"
	default:
		return ""
	}
}
