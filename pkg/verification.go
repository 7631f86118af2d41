package pkg

import (
	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/pspf/pkg/logging"
	"github.com/provide-io/pspf/pkg/pspf/format"
)

// VerifyBundleWithLogger runs the full diagnostic verification of a bundle,
// logging each check, and returns the structured report. It never fails on a
// corrupt bundle; corruption is reported, not raised.
func VerifyBundleWithLogger(bundlePath string, logger hclog.Logger) *format.IntegrityReport {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	reader, err := format.NewReaderWithOptions(bundlePath, format.ReaderOptions{Logger: logger})
	if err != nil {
		logger.Error("Failed to create reader", "error", err)
		return &format.IntegrityReport{TamperDetected: true, Error: err.Error()}
	}
	defer func() {
		if err := reader.Close(); err != nil {
			logger.Debug("Failed to close reader", "error", err)
		}
	}()

	logger.Info("Verifying bundle integrity", "bundle", bundlePath)

	report := reader.VerifyIntegrity()

	logCheck(logger, "Magic trailer", report.MagicValid)
	logCheck(logger, "Slot checksums", report.ChecksumsValid)
	logCheck(logger, "Integrity signature", report.SignatureValid)

	if report.Valid {
		logger.Info("✓ Bundle verification passed")
	} else {
		logger.Error("✗ Bundle verification failed", "error", report.Error)
	}

	return report
}

func logCheck(logger hclog.Logger, name string, ok bool) {
	if ok {
		logger.Info("✓ "+name+" valid")
	} else {
		logger.Error("✗ "+name+" invalid")
	}
}

// VerifyBundle verifies a bundle using default logger settings.
func VerifyBundle(bundlePath string) *format.IntegrityReport {
	logger := logging.NewLogger("pspf-verify", logging.GetLogLevel(), nil)
	return VerifyBundleWithLogger(bundlePath, logger)
}
