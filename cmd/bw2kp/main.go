// Package main provides the entry point for the bw2kp CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nvinuesa/bw2kp/internal/config"
)

// Version information set at build time.
var (
	Version   = "0.1.0-edge"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var convertFlags config.Config

var rootCmd = &cobra.Command{
	Use:   "bw2kp",
	Short: "Convert a Bitwarden vault to a KeePass database",
	Long: `bw2kp converts a Bitwarden vault into a KeePass (.kdbx) database.

The vault is read through the Bitwarden CLI (bw) by default, or from an
unencrypted JSON export with --input or --stdin. Folders become groups,
and every login, secure note, card, identity and SSH key becomes an entry.
The master password unlocks the vault and protects the new database.

The password is read from BITWARDEN_PASS or prompted for.

Examples:
  # Convert the vault behind the bw CLI
  bw2kp -o vault.kdbx

  # Sync first and keep a plaintext copy of what was fetched
  bw2kp -s -o vault.kdbx -j vault.json

  # Convert an unencrypted export
  bw2kp -i bitwarden_export.json -o vault.kdbx

  # Also write a credential exchange format file
  bw2kp -i bitwarden_export.json -o vault.kdbx --cxf vault.cxf.json`,
	Args:          cobra.NoArgs,
	RunE:          runConvert,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Disable completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.Flags().StringVarP(&convertFlags.Input, "input", "i", "", "Bitwarden unencrypted JSON export")
	rootCmd.Flags().BoolVar(&convertFlags.UseStdin, "stdin", false, "read the JSON export from standard input")
	rootCmd.Flags().StringVarP(&convertFlags.Output, "output", "o", "", "output kdbx file path (required)")
	rootCmd.Flags().BoolVarP(&convertFlags.Sync, "sync", "s", false, "sync the vault with the bw CLI before fetching")
	rootCmd.Flags().StringVarP(&convertFlags.MirrorPath, "json", "j", "", "also write the fetched vault as an unencrypted JSON export")
	rootCmd.Flags().StringVar(&convertFlags.CXFPath, "cxf", "", "also write the entries in credential exchange format")
	rootCmd.Flags().BoolVarP(&convertFlags.Replace, "replace", "r", false, "replace the output file without asking")

	rootCmd.MarkFlagRequired("output")

	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
