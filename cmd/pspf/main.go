package main

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/provide-io/pspf/pkg/logging"
)

const version = "0.1.0"

var (
	logLevel    string
	versionFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "pspf",
	Short: "Inspect and verify PSPF/2025 bundles",
	Long: `pspf reads PSPF/2025 bundle files: it verifies their integrity
(trailing magic, index/metadata/slot checksums, Ed25519 signature),
dumps their layout and metadata, and extracts slot contents.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if versionFlag {
			fmt.Printf("pspf %s\n", version)
			os.Exit(0)
		}
	},
}

func newLogger() hclog.Logger {
	level := logLevel
	if level == "" {
		level = logging.GetLogLevel()
	}
	return logging.NewLogger("pspf", level, nil)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&versionFlag, "version", "V", false, "Show version information")

	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(infoCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
