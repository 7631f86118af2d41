package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/provide-io/pspf/pkg/pspf/format"
	"github.com/provide-io/pspf/pkg/pspf/operations"
)

var infoCmd = &cobra.Command{
	Use:   "info <bundle>",
	Short: "Print bundle layout and metadata summary",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger()

		reader, err := format.NewReaderWithOptions(args[0], format.ReaderOptions{Logger: logger})
		if err != nil {
			logger.Error("Failed to create reader", "error", err)
			os.Exit(1)
		}
		defer reader.Close()

		launcherSize, err := reader.DetectLauncherSize()
		if err != nil {
			logger.Error("Failed to scan bundle", "error", err)
			os.Exit(1)
		}

		index, err := reader.ReadIndex()
		if err != nil {
			logger.Error("Failed to read index", "error", err)
			os.Exit(1)
		}

		fmt.Printf("format version:    0x%08x\n", index.FormatVersion)
		fmt.Printf("package size:      %d\n", index.PackageSize)
		fmt.Printf("launcher size:     %d (detected at %d)\n", index.LauncherSize, launcherSize)
		fmt.Printf("metadata:          offset %d, %d bytes\n", index.MetadataOffset, index.MetadataSize)
		fmt.Printf("slot table:        offset %d, %d slots\n", index.SlotTableOffset, index.SlotCount)
		fmt.Printf("signed:            %v\n", index.HasSignature())

		metadata, err := reader.ReadMetadata()
		if err != nil {
			logger.Warn("Metadata unavailable", "error", err)
			return
		}

		if metadata.Package != nil {
			fmt.Printf("package:           %s %s\n", metadata.Package.Name, metadata.Package.Version)
		}

		descriptors, err := reader.ReadSlotDescriptors()
		if err != nil {
			logger.Error("Failed to read slot table", "error", err)
			os.Exit(1)
		}

		for i, desc := range descriptors {
			name := fmt.Sprintf("slot_%d", i)
			if i < len(metadata.Slots) && metadata.Slots[i].Name != "" {
				name = metadata.Slots[i].Name
			}
			fmt.Printf("  slot %d: %-24s %8d bytes  %-8s checksum 0x%08x\n",
				i, name, desc.Size, operations.String(desc.Operations), desc.Adler32())
		}
	},
}
