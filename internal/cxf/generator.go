// Package cxf writes converted entries as an unencrypted FIDO Credential
// Exchange Format document, next to the KeePass database.
package cxf

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/nvinuesa/go-cxf"

	"github.com/nvinuesa/bw2kp/internal/model"
)

// Generator errors.
var (
	ErrMissingRpID     = errors.New("exporter RP ID is required")
	ErrMissingExporter = errors.New("exporter name is required")
	ErrNilHeader       = errors.New("header is nil")
	ErrNoOutputPath    = errors.New("output path is required")
)

// GeneratorOptions configures CXF generation.
type GeneratorOptions struct {
	// ExporterRpID is the FIDO RP ID of the exporting application.
	ExporterRpID string
	// ExporterName is the human-readable display name for the exporter.
	ExporterName string
	// AccountID is the unique identifier for the account (auto-generated if empty).
	AccountID string
	// AccountUsername is the username for the account.
	AccountUsername string
	// PreserveHierarchy maps group paths to Collections when true.
	PreserveHierarchy bool
}

// DefaultOptions returns GeneratorOptions with sensible defaults.
func DefaultOptions() GeneratorOptions {
	return GeneratorOptions{
		ExporterRpID:      "bw2kp.local",
		ExporterName:      "bw2kp",
		PreserveHierarchy: true,
	}
}

// Generate creates a CXF Header holding one item per placed entry.
// An empty vault yields an account without items.
func Generate(placements []model.Placement, opts GeneratorOptions) (*cxf.Header, error) {
	if opts.ExporterRpID == "" {
		return nil, ErrMissingRpID
	}
	if opts.ExporterName == "" {
		return nil, ErrMissingExporter
	}

	accountID := opts.AccountID
	if accountID == "" {
		accountID = generateBase64URLID()
	}

	ids := make([]string, len(placements))
	items := make([]cxf.Item, 0, len(placements))
	for i := range placements {
		ids[i] = itemID(placements[i].Entry.ID)

		item, err := mapPlacementToItem(&placements[i], ids[i])
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	var collections []cxf.Collection
	if opts.PreserveHierarchy {
		collections = BuildCollections(placements, ids)
	}

	account := cxf.Account{
		ID:          accountID,
		Username:    opts.AccountUsername,
		Collections: collections,
		Items:       items,
	}

	return &cxf.Header{
		Version: cxf.Version{
			Major: cxf.VersionMajor,
			Minor: cxf.VersionMinor,
		},
		ExporterRpId:        opts.ExporterRpID,
		ExporterDisplayName: opts.ExporterName,
		Timestamp:           uint64(time.Now().Unix()),
		Accounts:            []cxf.Account{account},
	}, nil
}

// WriteFile writes the header as indented JSON readable only by the owner.
func WriteFile(path string, header *cxf.Header) error {
	if header == nil {
		return ErrNilHeader
	}
	if path == "" {
		return ErrNoOutputPath
	}

	data, err := json.MarshalIndent(header, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// Export generates the header for placements, validates it and writes it
// to path.
func Export(path string, placements []model.Placement, opts GeneratorOptions) error {
	header, err := Generate(placements, opts)
	if err != nil {
		return err
	}
	if err := ValidateHeader(header); err != nil {
		return err
	}
	return WriteFile(path, header)
}

// itemID returns a base64url identifier for a vault item id. Vault ids are
// UUIDs and are encoded from their 16 raw bytes.
func itemID(id string) string {
	if id == "" {
		return generateBase64URLID()
	}
	if u, err := uuid.Parse(id); err == nil {
		return base64.RawURLEncoding.EncodeToString(u[:])
	}
	if isBase64URL(id) {
		return id
	}
	return base64.RawURLEncoding.EncodeToString([]byte(id))
}

// generateBase64URLID generates a base64url-encoded UUID.
func generateBase64URLID() string {
	id := uuid.New()
	return base64.RawURLEncoding.EncodeToString(id[:])
}
