package vault

import (
	"context"
	"io"

	"github.com/nvinuesa/bw2kp/internal/security"
)

// Source defines the interface for vault providers.
// Every variant returns the same folder and item shapes; only the origin
// of the data differs.
type Source interface {
	// Name returns the unique identifier for this source (e.g., "bw", "file").
	Name() string

	// Sync asks the vault to refresh from the server before fetching.
	// Sources without a server connection treat it as a no-op.
	Sync(ctx context.Context) error

	// Folders returns all folders of the vault.
	Folders(ctx context.Context) ([]Folder, error)

	// Items returns all items of the vault.
	Items(ctx context.Context) ([]Item, error)
}

// Options selects and configures a source.
type Options struct {
	// InputPath selects the file variant when non-empty.
	InputPath string

	// UseStdin selects the stream variant, reading from Stdin.
	UseStdin bool

	// Stdin is the stream read by the stream variant.
	Stdin io.Reader

	// Runner invokes the bw CLI for the live variant.
	Runner Runner

	// Password is fed to the bw CLI by the live variant.
	Password *security.Secret
}

// Open returns the source selected by opts. The file and stream variants
// are read and validated immediately, so an encrypted or malformed export
// fails before anything is written.
func Open(opts Options) (Source, error) {
	switch {
	case opts.UseStdin:
		return ReadStream(opts.Stdin)
	case opts.InputPath != "":
		return OpenFile(opts.InputPath)
	default:
		runner := opts.Runner
		if runner == nil {
			runner = ExecRunner{}
		}
		return NewLiveSource(runner, opts.Password), nil
	}
}
