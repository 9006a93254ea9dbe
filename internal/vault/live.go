package vault

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"strings"

	"github.com/nvinuesa/bw2kp/internal/security"
)

// DefaultBinary is the bw CLI executable looked up in PATH.
const DefaultBinary = "bw"

// Runner invokes the bw CLI with args, writing stdin to the child's input
// and returning its standard output.
type Runner interface {
	Run(ctx context.Context, stdin []byte, args ...string) ([]byte, error)
}

// ExecRunner runs the real bw binary.
type ExecRunner struct {
	// Binary overrides the executable; DefaultBinary when empty.
	Binary string
}

// Run executes the binary and returns its standard output.
func (r ExecRunner) Run(ctx context.Context, stdin []byte, args ...string) ([]byte, error) {
	binary := r.Binary
	if binary == "" {
		binary = DefaultBinary
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdin = bytes.NewReader(stdin)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, &ErrToolFailed{
			Command: binary + " " + strings.Join(args, " "),
			Stderr:  strings.TrimSpace(stderr.String()),
			Err:     err,
		}
	}

	return stdout.Bytes(), nil
}

// LiveSource implements the Source interface on top of the bw CLI.
// Each fetch is a separate invocation with the master password on stdin.
type LiveSource struct {
	runner   Runner
	password *security.Secret
}

// NewLiveSource creates a source querying the bw CLI through runner.
func NewLiveSource(runner Runner, password *security.Secret) *LiveSource {
	return &LiveSource{runner: runner, password: password}
}

// Name returns the unique identifier for this source.
func (s *LiveSource) Name() string {
	return "bw"
}

// Sync runs "bw sync".
func (s *LiveSource) Sync(ctx context.Context) error {
	_, err := s.run(ctx, "sync")
	return err
}

// Folders runs "bw list folders".
func (s *LiveSource) Folders(ctx context.Context) ([]Folder, error) {
	var folders []Folder
	if err := s.list(ctx, "folders", &folders); err != nil {
		return nil, err
	}
	return folders, nil
}

// Items runs "bw list items".
func (s *LiveSource) Items(ctx context.Context) ([]Item, error) {
	var items []Item
	if err := s.list(ctx, "items", &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *LiveSource) list(ctx context.Context, object string, v any) error {
	out, err := s.run(ctx, "list", object)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(out, v); err != nil {
		return &ErrInvalidFormat{
			Source:  s.Name(),
			Path:    "bw list " + object,
			Details: "output is not a JSON " + object + " list",
			Err:     err,
		}
	}
	return nil
}

func (s *LiveSource) run(ctx context.Context, args ...string) ([]byte, error) {
	if s.password.IsEmpty() {
		return nil, ErrNoPassword
	}
	return s.runner.Run(ctx, s.password.Bytes(), args...)
}

// Ensure LiveSource implements Source interface
var _ Source = (*LiveSource)(nil)
