package cxf

import (
	"errors"
	"testing"
	"time"

	"github.com/nvinuesa/go-cxf"

	"github.com/nvinuesa/bw2kp/internal/model"
)

func validHeader(t *testing.T) *cxf.Header {
	t.Helper()

	header, err := Generate([]model.Placement{
		{Entry: model.Entry{ID: "0b1f6c3a-2e4d-4f6a-8b9c-1d2e3f4a5b01", Title: "a"}, Kind: "login", GroupPath: []string{"Work", "Servers"}},
		{Entry: model.Entry{ID: "0b1f6c3a-2e4d-4f6a-8b9c-1d2e3f4a5b02", Title: "b"}, Kind: "login", GroupPath: []string{"Work"}},
		{Entry: model.Entry{Title: "c"}, Kind: "secure-note"},
	}, DefaultOptions())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	return header
}

func TestValidateHeader(t *testing.T) {
	t.Run("Generated header", func(t *testing.T) {
		if err := ValidateHeader(validHeader(t)); err != nil {
			t.Errorf("ValidateHeader() error = %v", err)
		}
	})

	t.Run("Nil header", func(t *testing.T) {
		if err := ValidateHeader(nil); !errors.Is(err, ErrNilHeader) {
			t.Errorf("ValidateHeader(nil) error = %v, want ErrNilHeader", err)
		}
	})

	tests := []struct {
		name   string
		mutate func(h *cxf.Header)
	}{
		{"Missing RP ID", func(h *cxf.Header) { h.ExporterRpId = "" }},
		{"Missing exporter name", func(h *cxf.Header) { h.ExporterDisplayName = "" }},
		{"Zero timestamp", func(h *cxf.Header) { h.Timestamp = 0 }},
		{"Future timestamp", func(h *cxf.Header) { h.Timestamp = uint64(time.Now().Add(48 * time.Hour).Unix()) }},
		{"Millisecond timestamp", func(h *cxf.Header) { h.Timestamp = uint64(time.Now().UnixMilli()) }},
		{"Invalid account ID", func(h *cxf.Header) { h.Accounts[0].ID = "not base64!" }},
		{"Empty item ID", func(h *cxf.Header) { h.Accounts[0].Items[0].ID = "" }},
		{"Duplicate item ID", func(h *cxf.Header) { h.Accounts[0].Items[1].ID = h.Accounts[0].Items[0].ID }},
		{"Duplicate nested collection ID", func(h *cxf.Header) {
			work := &h.Accounts[0].Collections[0]
			work.SubCollections[0].ID = work.ID
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := validHeader(t)
			tt.mutate(header)

			if err := ValidateHeader(header); !errors.Is(err, ErrInvalidHeader) {
				t.Errorf("ValidateHeader() error = %v, want ErrInvalidHeader", err)
			}
		})
	}
}
