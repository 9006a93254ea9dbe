package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/ssh"

	"github.com/nvinuesa/bw2kp/internal/config"
	"github.com/nvinuesa/bw2kp/internal/convert"
	"github.com/nvinuesa/bw2kp/internal/logger"
	"github.com/nvinuesa/bw2kp/internal/security"
	"github.com/nvinuesa/bw2kp/internal/vault"
)

var previewFlags config.Config

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Preview the vault without converting it",
	Long: `Preview a Bitwarden vault without writing anything.

The preview command shows item counts by kind, the folder hierarchy with
the number of items in each folder, and the algorithms of stored SSH keys.

Examples:
  # Preview the vault behind the bw CLI
  bw2kp preview

  # Preview an unencrypted export
  bw2kp preview -i bitwarden_export.json`,
	Args: cobra.NoArgs,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().StringVarP(&previewFlags.Input, "input", "i", "", "Bitwarden unencrypted JSON export")
	previewCmd.Flags().BoolVar(&previewFlags.UseStdin, "stdin", false, "read the JSON export from standard input")
	previewCmd.Flags().BoolVarP(&previewFlags.Sync, "sync", "s", false, "sync the vault with the bw CLI before fetching")
}

func runPreview(cmd *cobra.Command, args []string) error {
	cfg := previewFlags
	if err := config.ParseEnv(&cfg); err != nil {
		return err
	}

	return previewVault(cmd.Context(), &cfg, promptPassword, os.Stdin, cmd.OutOrStdout())
}

// previewVault fetches the vault selected by cfg and prints its summary to
// out. A password is only asked for when the bw CLI is used.
func previewVault(ctx context.Context, cfg *config.Config, prompt func() ([]byte, error), in io.Reader, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := cfg.ExpandPaths(); err != nil {
		return err
	}
	if err := cfg.ValidateSource(); err != nil {
		return err
	}

	log := logger.New(cfg.LogLevel, os.Stderr).Named("preview")

	var password *security.Secret
	if cfg.NeedsCLI() {
		var err error
		password, err = cfg.ResolvePassword(prompt)
		if err != nil {
			return err
		}
		defer password.Zero()
	}

	opts := cfg.SourceOptions(password)
	opts.Stdin = in
	src, err := vault.Open(opts)
	if err != nil {
		return fmt.Errorf("failed to open vault: %w", err)
	}

	var warnings []string
	if cfg.Sync {
		if err := src.Sync(ctx); err != nil {
			if errors.Is(err, vault.ErrSyncUnsupported) {
				return err
			}
			log.Warn().Err(err).Msg("Sync failed, continuing with local data")
			warnings = append(warnings, fmt.Sprintf("sync failed: %v", err))
		}
	}

	folders, err := src.Folders(ctx)
	if err != nil {
		return fmt.Errorf("fetching folders: %w", err)
	}
	items, err := src.Items(ctx)
	if err != nil {
		return fmt.Errorf("fetching items: %w", err)
	}

	printPreview(out, src.Name(), folders, items, warnings)
	return nil
}

// printPreview outputs the vault preview.
func printPreview(w io.Writer, sourceName string, folders []vault.Folder, items []vault.Item, warnings []string) {
	fmt.Fprintf(w, "Source: %s\n", sourceName)
	fmt.Fprintf(w, "Items: %d total\n", len(items))

	// Count by kind
	kindCounts := make(map[string]int)
	for _, item := range items {
		kindCounts[item.Type.String()]++
	}

	// Sort kinds for consistent output
	kindNames := make([]string, 0, len(kindCounts))
	for k := range kindCounts {
		kindNames = append(kindNames, k)
	}
	sort.Strings(kindNames)

	for _, name := range kindNames {
		fmt.Fprintf(w, "  - %d %s\n", kindCounts[name], name)
	}

	// Build and print folder tree
	tree := buildFolderTree(folders, items)
	if len(tree) > 0 {
		fmt.Fprintln(w, "\nGroups:")
		printFolderTree(w, tree, "  ")
	}

	algorithms := sshKeyAlgorithms(items)
	if len(algorithms) > 0 {
		fmt.Fprintln(w, "\nSSH keys:")
		names := make([]string, 0, len(algorithms))
		for name := range algorithms {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "  - %d %s\n", algorithms[name], name)
		}
	}

	// Print warnings
	if len(warnings) > 0 {
		fmt.Fprintln(w, "\nWarnings:")
		for _, warning := range warnings {
			fmt.Fprintf(w, "  - %s\n", warning)
		}
	}
}

// folderNode represents a node in the folder hierarchy tree.
type folderNode struct {
	name     string
	count    int
	children map[string]*folderNode
}

// buildFolderTree constructs the folder hierarchy and counts the items
// below each node. Items without a known folder stay in the root group and
// are not listed.
func buildFolderTree(folders []vault.Folder, items []vault.Item) map[string]*folderNode {
	root := make(map[string]*folderNode)

	paths := make(map[string][]string, len(folders))
	for _, f := range folders {
		if f.Name == vault.NoFolder {
			continue
		}

		var parts []string
		for _, part := range strings.Split(f.Name, convert.PathSeparator) {
			if part = strings.TrimSpace(part); part != "" {
				parts = append(parts, part)
			}
		}
		paths[f.ID] = parts

		current := root
		for _, part := range parts {
			if _, ok := current[part]; !ok {
				current[part] = &folderNode{
					name:     part,
					children: make(map[string]*folderNode),
				}
			}
			current = current[part].children
		}
	}

	for _, item := range items {
		parts, ok := paths[item.FolderID]
		if !ok {
			continue
		}

		current := root
		for _, part := range parts {
			current[part].count++
			current = current[part].children
		}
	}

	return root
}

// printFolderTree recursively prints the folder tree with indentation.
func printFolderTree(w io.Writer, nodes map[string]*folderNode, indent string) {
	// Sort folder names for consistent output
	names := make([]string, 0, len(nodes))
	for name := range nodes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		node := nodes[name]
		fmt.Fprintf(w, "%s- %s (%d items)\n", indent, node.name, node.count)
		if len(node.children) > 0 {
			printFolderTree(w, node.children, indent+"  ")
		}
	}
}

// sshKeyAlgorithms counts SSH key items by public key algorithm.
func sshKeyAlgorithms(items []vault.Item) map[string]int {
	counts := make(map[string]int)
	for _, item := range items {
		if item.Type != vault.KindSSHKey {
			continue
		}
		counts[sshKeyAlgorithm(item.SSHKey)]++
	}
	return counts
}

// sshKeyAlgorithm names the algorithm of key's public half.
func sshKeyAlgorithm(key *vault.SSHKey) string {
	if key == nil || key.PublicKey == "" {
		return "unknown"
	}

	pub, _, _, _, err := ssh.ParseAuthorizedKey([]byte(key.PublicKey))
	if err != nil {
		return "unknown"
	}
	return pub.Type()
}
