package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/nvinuesa/bw2kp/internal/config"
	"github.com/nvinuesa/bw2kp/internal/convert"
	"github.com/nvinuesa/bw2kp/internal/keepass"
	"github.com/nvinuesa/bw2kp/internal/logger"
	"github.com/nvinuesa/bw2kp/internal/vault"
)

func runConvert(cmd *cobra.Command, args []string) error {
	cfg := convertFlags
	if err := config.ParseEnv(&cfg); err != nil {
		return err
	}

	return runConversion(cmd.Context(), &cfg, promptPassword, os.Stdin, os.Stderr)
}

// runConversion performs one conversion. in feeds the overwrite prompt or
// the export on --stdin; out receives prompts, logs and the summary.
func runConversion(ctx context.Context, cfg *config.Config, prompt func() ([]byte, error), in io.Reader, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := cfg.ExpandPaths(); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if !cfg.Replace && fileExists(cfg.Output) {
		if cfg.UseStdin {
			return &config.ErrConflict{
				Options: []string{"--stdin", "--output"},
				Reason:  fmt.Sprintf("output file %s exists and standard input is taken; pass --replace", cfg.Output),
			}
		}
		if !confirmOverwrite(in, out, cfg.Output) {
			return nil
		}
	}

	log := logger.New(cfg.LogLevel, out)

	password, err := cfg.ResolvePassword(prompt)
	if err != nil {
		return err
	}
	defer password.Zero()

	opts := cfg.SourceOptions(password)
	opts.Stdin = in
	src, err := vault.Open(opts)
	if err != nil {
		return fmt.Errorf("failed to open vault: %w", err)
	}

	db := keepass.Create(cfg.Output, password)
	conv := convert.New(src, db, convert.Options{
		Sync:       cfg.Sync,
		MirrorPath: cfg.MirrorPath,
		CXFPath:    cfg.CXFPath,
	}, log.Named("convert"))

	report, err := conv.Run(ctx)
	if err != nil {
		return err
	}

	printSummary(out, cfg, report)
	return nil
}

// confirmOverwrite asks before replacing path. Only "y" or "Y" agrees.
func confirmOverwrite(in io.Reader, out io.Writer, path string) bool {
	fmt.Fprintf(out, "Output file %s exists. Replace? (n/Y)", path)

	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}

	answer = strings.TrimSpace(answer)
	return answer == "Y" || answer == "y"
}

// promptPassword reads the master password from the terminal. When
// standard input is a pipe the controlling terminal is used instead.
func promptPassword() ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		tty, err := os.Open("/dev/tty")
		if err != nil {
			return nil, fmt.Errorf("no terminal to read the password from, set BITWARDEN_PASS: %w", err)
		}
		defer tty.Close()
		fd = int(tty.Fd())
	}

	fmt.Fprint(os.Stderr, "Master Password: ")
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr) // newline after password
	return password, err
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// printSummary writes what a run produced.
func printSummary(w io.Writer, cfg *config.Config, report *convert.Report) {
	fmt.Fprintf(w, "\nSource: %s\n", report.Source)
	if cfg.Sync && !report.Synced {
		fmt.Fprintln(w, "Sync: failed, local data used")
	}
	fmt.Fprintf(w, "Groups: %d from %d folders\n", report.Groups, report.Folders)
	fmt.Fprintf(w, "Entries: %d total\n", len(report.Placed))

	kinds := make([]vault.Kind, 0, len(report.Kinds))
	for k := range report.Kinds {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	for _, k := range kinds {
		fmt.Fprintf(w, "  - %d %s\n", report.Kinds[k], k)
	}

	if report.Renamed > 0 {
		fmt.Fprintf(w, "Renamed duplicates: %d\n", report.Renamed)
		for _, p := range report.Placed {
			if !p.Renamed {
				continue
			}
			group := p.GroupPathString()
			if group == "" {
				group = keepass.RootName
			}
			fmt.Fprintf(w, "  - %s/%s\n", group, p.Entry.Title)
		}
	}

	fmt.Fprintf(w, "\nOutput written to: %s\n", cfg.Output)
	if cfg.MirrorPath != "" {
		fmt.Fprintf(w, "Plaintext export written to: %s\n", cfg.MirrorPath)
	}
	if cfg.CXFPath != "" {
		fmt.Fprintf(w, "CXF export written to: %s\n", cfg.CXFPath)
	}
}
