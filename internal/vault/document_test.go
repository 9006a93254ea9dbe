package vault

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseDocument(t *testing.T) {
	t.Run("Invalid JSON", func(t *testing.T) {
		_, err := ParseDocument([]byte("not valid json"), "file", "x.json")
		if err == nil {
			t.Fatal("Expected error for invalid JSON")
		}
		if !IsFormatError(err) {
			t.Errorf("Expected format error, got %v", err)
		}
	})

	t.Run("Encrypted export", func(t *testing.T) {
		_, err := ParseDocument([]byte(`{"encrypted": true}`), "file", "x.json")
		if err == nil {
			t.Fatal("Expected error for encrypted export")
		}
		if !IsEncrypted(err) {
			t.Errorf("Expected encrypted export error, got %v", err)
		}
		if !strings.Contains(err.Error(), "encrypted") {
			t.Errorf("Error should mention encryption: %v", err)
		}
	})

	t.Run("Wrong item type tag", func(t *testing.T) {
		_, err := ParseDocument([]byte(`{"items":[{"type":"login"}]}`), "file", "x.json")
		if !IsFormatError(err) {
			t.Errorf("Expected format error, got %v", err)
		}
	})

	t.Run("Empty export", func(t *testing.T) {
		doc, err := ParseDocument([]byte(`{"encrypted": false}`), "file", "x.json")
		if err != nil {
			t.Fatalf("ParseDocument() error = %v", err)
		}
		if len(doc.Folders) != 0 || len(doc.Items) != 0 {
			t.Errorf("Expected empty document, got %+v", doc)
		}
	})
}

func TestOpenFile(t *testing.T) {
	t.Run("Non-existent file", func(t *testing.T) {
		_, err := OpenFile("/nonexistent/export.json")
		if err == nil {
			t.Fatal("Expected error for non-existent file")
		}
		if !IsNotFound(err) {
			t.Errorf("Expected not found error, got %v", err)
		}
	})

	t.Run("Directory instead of file", func(t *testing.T) {
		_, err := OpenFile(t.TempDir())
		if err == nil {
			t.Error("Expected error when opening directory")
		}
	})

	t.Run("Encrypted export", func(t *testing.T) {
		jsonPath := filepath.Join(getTestdataPath(), "bitwarden", "encrypted.json")

		_, err := OpenFile(jsonPath)
		if !IsEncrypted(err) {
			t.Errorf("OpenFile() error = %v, want encrypted export error", err)
		}
	})

	t.Run("Valid export", func(t *testing.T) {
		jsonPath := filepath.Join(getTestdataPath(), "bitwarden", "test.json")

		s, err := OpenFile(jsonPath)
		if err != nil {
			t.Fatalf("OpenFile() error = %v", err)
		}
		if s.Name() != "file" {
			t.Errorf("Name() = %v, want file", s.Name())
		}
		if s.Path() != jsonPath {
			t.Errorf("Path() = %v, want %v", s.Path(), jsonPath)
		}
		if err := s.Sync(context.Background()); err != nil {
			t.Errorf("Sync() error = %v, want nil", err)
		}

		folders, err := s.Folders(context.Background())
		if err != nil {
			t.Fatalf("Folders() error = %v", err)
		}
		if len(folders) != 2 {
			t.Errorf("Folders() returned %d folders, want 2", len(folders))
		}

		items, err := s.Items(context.Background())
		if err != nil {
			t.Fatalf("Items() error = %v", err)
		}
		if len(items) != 3 {
			t.Fatalf("Items() returned %d items, want 3", len(items))
		}
		if items[0].Type != KindLogin || items[0].Login.Password != "123456" {
			t.Errorf("items[0] = %+v", items[0])
		}
	})
}

func TestReadStream(t *testing.T) {
	t.Run("Valid export", func(t *testing.T) {
		data, err := os.ReadFile(filepath.Join(getTestdataPath(), "bitwarden", "test.json"))
		if err != nil {
			t.Fatal(err)
		}

		s, err := ReadStream(strings.NewReader(string(data)))
		if err != nil {
			t.Fatalf("ReadStream() error = %v", err)
		}
		if s.Name() != "stdin" {
			t.Errorf("Name() = %v, want stdin", s.Name())
		}

		items, _ := s.Items(context.Background())
		if len(items) != 3 {
			t.Errorf("Items() returned %d items, want 3", len(items))
		}
	})

	t.Run("Sync is refused", func(t *testing.T) {
		s, err := ReadStream(strings.NewReader(`{"encrypted":false}`))
		if err != nil {
			t.Fatalf("ReadStream() error = %v", err)
		}
		if err := s.Sync(context.Background()); !errors.Is(err, ErrSyncUnsupported) {
			t.Errorf("Sync() error = %v, want ErrSyncUnsupported", err)
		}
	})

	t.Run("Truncated input", func(t *testing.T) {
		_, err := ReadStream(strings.NewReader(`{"encrypted":false,"items":[`))
		if !IsFormatError(err) {
			t.Errorf("ReadStream() error = %v, want format error", err)
		}
	})

	t.Run("Encrypted input", func(t *testing.T) {
		_, err := ReadStream(strings.NewReader(`{"encrypted":true,"data":"2.x|y|z"}`))
		if !IsEncrypted(err) {
			t.Errorf("ReadStream() error = %v, want encrypted export error", err)
		}
	})
}

func TestOpen(t *testing.T) {
	t.Run("Stdin selects stream", func(t *testing.T) {
		s, err := Open(Options{UseStdin: true, Stdin: strings.NewReader(`{"encrypted":false}`)})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		if s.Name() != "stdin" {
			t.Errorf("Name() = %v, want stdin", s.Name())
		}
	})

	t.Run("Input path selects file", func(t *testing.T) {
		s, err := Open(Options{InputPath: filepath.Join(getTestdataPath(), "bitwarden", "test.json")})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		if s.Name() != "file" {
			t.Errorf("Name() = %v, want file", s.Name())
		}
	})

	t.Run("Default is the bw CLI", func(t *testing.T) {
		s, err := Open(Options{})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		if s.Name() != "bw" {
			t.Errorf("Name() = %v, want bw", s.Name())
		}
	})
}
