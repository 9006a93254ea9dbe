package vault

import (
	"context"
	"encoding/json"
	"io"
	"os"
)

// ParseDocument parses an unencrypted Bitwarden export.
// origin names the file or stream in errors.
func ParseDocument(data []byte, source, origin string) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ErrInvalidFormat{
			Source:  source,
			Path:    origin,
			Details: "invalid JSON",
			Err:     err,
		}
	}

	if doc.Encrypted {
		return nil, &ErrEncryptedExport{Source: source, Path: origin}
	}

	return &doc, nil
}

// document serves folders and items from an export parsed once.
type document struct {
	doc *Document
}

func (d *document) Folders(ctx context.Context) ([]Folder, error) {
	return d.doc.Folders, nil
}

func (d *document) Items(ctx context.Context) ([]Item, error) {
	return d.doc.Items, nil
}

// FileSource implements the Source interface for a Bitwarden JSON export on disk.
type FileSource struct {
	document
	path string
}

// OpenFile reads and parses the export at path.
func OpenFile(path string) (*FileSource, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ErrFileNotFound{Path: path}
		}
		return nil, err
	}

	if info.IsDir() {
		return nil, &ErrInvalidFormat{
			Source:  "file",
			Path:    path,
			Details: "path must be a file, not a directory",
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	doc, err := ParseDocument(data, "file", path)
	if err != nil {
		return nil, err
	}

	return &FileSource{document: document{doc: doc}, path: path}, nil
}

// Name returns the unique identifier for this source.
func (s *FileSource) Name() string {
	return "file"
}

// Sync is a no-op: an export on disk has no server to refresh from.
func (s *FileSource) Sync(ctx context.Context) error {
	return nil
}

// Path returns the file the export was read from.
func (s *FileSource) Path() string {
	return s.path
}

// StreamSource implements the Source interface for an export piped on standard input.
type StreamSource struct {
	document
}

// ReadStream buffers r completely and parses it. JSON is not line
// delimited, so nothing is parsed before EOF.
func ReadStream(r io.Reader) (*StreamSource, error) {
	if r == nil {
		r = os.Stdin
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	doc, err := ParseDocument(data, "stdin", "<stdin>")
	if err != nil {
		return nil, err
	}

	return &StreamSource{document: document{doc: doc}}, nil
}

// Name returns the unique identifier for this source.
func (s *StreamSource) Name() string {
	return "stdin"
}

// Sync always fails: the bw sync handshake would need the same input channel.
func (s *StreamSource) Sync(ctx context.Context) error {
	return ErrSyncUnsupported
}

// Ensure the document sources implement Source interface
var (
	_ Source = (*FileSource)(nil)
	_ Source = (*StreamSource)(nil)
)
