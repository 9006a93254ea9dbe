package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nvinuesa/bw2kp/internal/vault"
)

func TestParseEnv(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		for _, name := range []string{"BITWARDEN_PASS", "BW_BINARY", "BW2KP_LOG_LEVEL"} {
			t.Setenv(name, "")
			os.Unsetenv(name)
		}

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Binary != "bw" || cfg.LogLevel != "info" || cfg.Password != "" {
			t.Errorf("cfg = %+v", cfg)
		}
	})

	t.Run("All variables", func(t *testing.T) {
		t.Setenv("BITWARDEN_PASS", "hunter2")
		t.Setenv("BW_BINARY", "/opt/bw")
		t.Setenv("BW2KP_LOG_LEVEL", "debug")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Password != "hunter2" || cfg.Binary != "/opt/bw" || cfg.LogLevel != "debug" {
			t.Errorf("cfg = %+v", cfg)
		}
	})

	t.Run("Flag fields untouched", func(t *testing.T) {
		cfg := &Config{Output: "out.kdbx", Sync: true}
		if err := ParseEnv(cfg); err != nil {
			t.Fatalf("ParseEnv() error = %v", err)
		}
		if cfg.Output != "out.kdbx" || !cfg.Sync {
			t.Errorf("cfg = %+v", cfg)
		}
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		conflict bool
		wantErr  error
	}{
		{name: "Live source", cfg: Config{Output: "out.kdbx", Sync: true}},
		{name: "File source", cfg: Config{Input: "export.json", Output: "out.kdbx", MirrorPath: "m.json", CXFPath: "c.json"}},
		{name: "Stdin source", cfg: Config{UseStdin: true, Output: "out.kdbx"}},
		{name: "Stdin with sync", cfg: Config{UseStdin: true, Sync: true, Output: "out.kdbx"}, conflict: true},
		{name: "Stdin with input", cfg: Config{UseStdin: true, Input: "export.json", Output: "out.kdbx"}, conflict: true},
		{name: "Mirror over output", cfg: Config{Output: "out.kdbx", MirrorPath: "./out.kdbx"}, conflict: true},
		{name: "CXF over output", cfg: Config{Output: "out.kdbx", CXFPath: "out.kdbx"}, conflict: true},
		{name: "Input over output", cfg: Config{Input: "out.kdbx", Output: "out.kdbx"}, conflict: true},
		{name: "Missing output", cfg: Config{}, wantErr: ErrNoOutput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()

			switch {
			case tt.conflict:
				if !IsConflict(err) {
					t.Errorf("Validate() error = %v, want conflict", err)
				}
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
				}
			default:
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
			}
		})
	}
}

func TestConfig_ValidateSourceIgnoresOutput(t *testing.T) {
	if err := (&Config{Input: "export.json"}).ValidateSource(); err != nil {
		t.Errorf("ValidateSource() error = %v", err)
	}
}

func TestConfig_ResolvePassword(t *testing.T) {
	t.Run("Environment wins", func(t *testing.T) {
		cfg := &Config{Password: "from-env"}
		called := false

		secret, err := cfg.ResolvePassword(func() ([]byte, error) {
			called = true
			return []byte("typed"), nil
		})
		if err != nil {
			t.Fatalf("ResolvePassword() error = %v", err)
		}
		if secret.String() != "from-env" || called {
			t.Errorf("secret = %q, prompt called = %v", secret.String(), called)
		}
	})

	t.Run("Prompt", func(t *testing.T) {
		typed := []byte("typed")

		secret, err := (&Config{}).ResolvePassword(func() ([]byte, error) { return typed, nil })
		if err != nil {
			t.Fatalf("ResolvePassword() error = %v", err)
		}
		if secret.String() != "typed" {
			t.Errorf("secret = %q", secret.String())
		}
		for _, b := range typed {
			if b != 0 {
				t.Fatal("prompt buffer should be cleared")
			}
		}
	})

	t.Run("Empty prompt", func(t *testing.T) {
		_, err := (&Config{}).ResolvePassword(func() ([]byte, error) { return nil, nil })
		if !errors.Is(err, ErrNoPassword) {
			t.Errorf("ResolvePassword() error = %v, want ErrNoPassword", err)
		}
	})

	t.Run("No prompt", func(t *testing.T) {
		_, err := (&Config{}).ResolvePassword(nil)
		if !errors.Is(err, ErrNoPassword) {
			t.Errorf("ResolvePassword() error = %v, want ErrNoPassword", err)
		}
	})

	t.Run("Prompt error", func(t *testing.T) {
		boom := errors.New("no tty")
		_, err := (&Config{}).ResolvePassword(func() ([]byte, error) { return nil, boom })
		if !errors.Is(err, boom) {
			t.Errorf("ResolvePassword() error = %v, want wrapped %v", err, boom)
		}
	})
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"out.kdbx", "out.kdbx"},
		{"/abs/out.kdbx", "/abs/out.kdbx"},
		{"~", home},
		{"~/vault/out.kdbx", filepath.Join(home, "vault", "out.kdbx")},
		{"~other/out.kdbx", "~other/out.kdbx"},
	}

	for _, tt := range tests {
		got, err := ExpandPath(tt.in)
		if err != nil {
			t.Fatalf("ExpandPath(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestConfig_ExpandPaths(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := &Config{Output: "~/out.kdbx", MirrorPath: "~/m.json", Input: "in.json"}
	if err := cfg.ExpandPaths(); err != nil {
		t.Fatalf("ExpandPaths() error = %v", err)
	}
	if cfg.Output != filepath.Join(home, "out.kdbx") || cfg.MirrorPath != filepath.Join(home, "m.json") || cfg.Input != "in.json" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestConfig_SourceOptions(t *testing.T) {
	cfg := &Config{Binary: "/opt/bw", Input: "export.json"}
	opts := cfg.SourceOptions(nil)

	if opts.InputPath != "export.json" || opts.UseStdin {
		t.Errorf("opts = %+v", opts)
	}
	if r, ok := opts.Runner.(vault.ExecRunner); !ok || r.Binary != "/opt/bw" {
		t.Errorf("Runner = %#v", opts.Runner)
	}
	if cfg.NeedsCLI() {
		t.Error("file input should not need the CLI")
	}
	if !(&Config{}).NeedsCLI() {
		t.Error("no input should need the CLI")
	}
}
