package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/provide-io/pspf/pkg"
)

var verifyJSON bool

var verifyCmd = &cobra.Command{
	Use:   "verify <bundle>",
	Short: "Verify a bundle's integrity",
	Long: `Verify runs the full diagnostic scan: trailing magic marker, every
slot checksum, and the Ed25519 integrity signature over the metadata.
Exits non-zero when any check fails.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		report := pkg.VerifyBundleWithLogger(args[0], newLogger())

		if verifyJSON {
			out, err := json.MarshalIndent(report, "", "  ")
			if err == nil {
				fmt.Println(string(out))
			}
		}

		if !report.Valid {
			os.Exit(1)
		}
	},
}

func init() {
	verifyCmd.Flags().BoolVar(&verifyJSON, "json", false, "Print the report as JSON")
}
