package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/provide-io/pspf/pkg"
)

var (
	extractDest string
	extractSlot int
)

var extractCmd = &cobra.Command{
	Use:   "extract <bundle>",
	Short: "Extract slot contents",
	Long: `Extract unpacks slot contents into a destination directory. Tar
slots are unpacked as directory trees; all other slots are written as
single files named from the bundle metadata.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger()

		if extractSlot >= 0 {
			path, err := pkg.ExtractSlot(args[0], extractSlot, extractDest, logger)
			if err != nil {
				logger.Error("Extraction failed", "slot", extractSlot, "error", err)
				os.Exit(1)
			}
			fmt.Println(path)
			return
		}

		paths, err := pkg.ExtractBundle(args[0], extractDest, logger)
		if err != nil {
			logger.Error("Extraction failed", "error", err)
			os.Exit(1)
		}
		for _, path := range paths {
			fmt.Println(path)
		}
	},
}

func init() {
	extractCmd.Flags().StringVarP(&extractDest, "dest", "d", ".", "Destination directory")
	extractCmd.Flags().IntVarP(&extractSlot, "slot", "s", -1, "Extract a single slot index (default: all)")
}
