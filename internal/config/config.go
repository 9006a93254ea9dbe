// Package config collects the settings of one bw2kp invocation.
//
// Values come from two places: the environment, parsed with caarlos0/env
// into the tagged fields of [Config], and command-line flags, which the
// CLI writes into the untagged fields. [Config.Validate] must pass before
// anything is read or written.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nvinuesa/bw2kp/internal/security"
	"github.com/nvinuesa/bw2kp/internal/vault"
)

// Config holds the settings of one run.
type Config struct {
	// Password is the master password. It unlocks the bw CLI and becomes
	// the password of the written database. Takes precedence over the
	// interactive prompt.
	Password string `env:"BITWARDEN_PASS"`

	// Binary is the bw executable used by the live source.
	Binary string `env:"BW_BINARY" envDefault:"bw"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `env:"BW2KP_LOG_LEVEL" envDefault:"info"`

	// Input is an unencrypted export to read instead of the bw CLI.
	Input string

	// UseStdin reads the export from standard input.
	UseStdin bool

	// Output is the .kdbx file to write.
	Output string

	// Sync refreshes the vault before fetching.
	Sync bool

	// MirrorPath receives a plaintext copy of the fetched vault.
	MirrorPath string

	// CXFPath receives a credential exchange format export.
	CXFPath string

	// Replace overwrites Output without asking.
	Replace bool
}

// Load returns a Config populated from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := ParseEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ValidateSource checks the options that select the vault source.
func (c *Config) ValidateSource() error {
	if c.UseStdin && c.Input != "" {
		return &ErrConflict{
			Options: []string{"--stdin", "--input"},
			Reason:  "choose one input",
		}
	}
	if c.UseStdin && c.Sync {
		return &ErrConflict{
			Options: []string{"--stdin", "--sync"},
			Reason:  "sync needs the bw CLI, not an export on standard input",
		}
	}
	return nil
}

// Validate checks the whole configuration of a conversion.
func (c *Config) Validate() error {
	if err := c.ValidateSource(); err != nil {
		return err
	}
	if c.Output == "" {
		return ErrNoOutput
	}

	out := filepath.Clean(c.Output)
	for flag, path := range map[string]string{"--json": c.MirrorPath, "--cxf": c.CXFPath, "--input": c.Input} {
		if path != "" && filepath.Clean(path) == out {
			return &ErrConflict{
				Options: []string{"--output", flag},
				Reason:  "paths must differ",
			}
		}
	}
	return nil
}

// ExpandPaths resolves a leading "~" in every path setting.
func (c *Config) ExpandPaths() error {
	for _, p := range []*string{&c.Input, &c.Output, &c.MirrorPath, &c.CXFPath} {
		expanded, err := ExpandPath(*p)
		if err != nil {
			return err
		}
		*p = expanded
	}
	return nil
}

// NeedsCLI reports whether the vault is read through the bw CLI.
func (c *Config) NeedsCLI() bool {
	return !c.UseStdin && c.Input == ""
}

// ResolvePassword returns the master password. The environment value
// wins; otherwise prompt is called. The returned Secret must be zeroed by
// the caller.
func (c *Config) ResolvePassword(prompt func() ([]byte, error)) (*security.Secret, error) {
	if c.Password != "" {
		return security.FromString(c.Password), nil
	}
	if prompt == nil {
		return nil, ErrNoPassword
	}

	pw, err := prompt()
	if err != nil {
		return nil, fmt.Errorf("reading password: %w", err)
	}
	secret := security.FromBytes(pw)
	if secret.IsEmpty() {
		return nil, ErrNoPassword
	}
	return secret, nil
}

// SourceOptions returns the vault options selected by c.
func (c *Config) SourceOptions(password *security.Secret) vault.Options {
	return vault.Options{
		InputPath: c.Input,
		UseStdin:  c.UseStdin,
		Stdin:     os.Stdin,
		Runner:    vault.ExecRunner{Binary: c.Binary},
		Password:  password,
	}
}

// ExpandPath replaces a leading "~" with the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expanding %s: %w", path, err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
