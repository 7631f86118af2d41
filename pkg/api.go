// Package pkg is the caller-facing surface of the PSPF/2025 reader: bundle
// verification, metadata access, and slot extraction convenience functions
// over the format package.
package pkg

import (
	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/pspf/pkg/pspf/format"
)

// ReadBundleMetadata opens a bundle, parses its metadata, and closes it.
func ReadBundleMetadata(bundlePath string) (*format.Metadata, error) {
	reader, err := format.NewReader(bundlePath)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	return reader.ReadMetadata()
}

// ExtractBundle extracts every slot of a bundle into destDir and returns the
// resulting paths in slot order.
func ExtractBundle(bundlePath, destDir string, logger hclog.Logger) ([]string, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	reader, err := format.NewReaderWithOptions(bundlePath, format.ReaderOptions{Logger: logger})
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	descriptors, err := reader.ReadSlotDescriptors()
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(descriptors))
	for i := range descriptors {
		path, err := reader.ExtractSlot(i, destDir)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}

	return paths, nil
}

// ExtractSlot extracts a single slot of a bundle into destDir.
func ExtractSlot(bundlePath string, slotIndex int, destDir string, logger hclog.Logger) (string, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	reader, err := format.NewReaderWithOptions(bundlePath, format.ReaderOptions{Logger: logger})
	if err != nil {
		return "", err
	}
	defer reader.Close()

	return reader.ExtractSlot(slotIndex, destDir)
}
