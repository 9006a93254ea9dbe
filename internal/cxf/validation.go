package cxf

import (
	"errors"
	"fmt"
	"time"

	"github.com/nvinuesa/go-cxf"
)

// ErrInvalidHeader reports a generated header that importers would reject.
var ErrInvalidHeader = errors.New("invalid CXF header")

// ValidateHeader checks the parts of a header that importers rely on:
// exporter identity, a plausible timestamp and unique base64url ids.
func ValidateHeader(header *cxf.Header) error {
	if header == nil {
		return ErrNilHeader
	}

	if header.ExporterRpId == "" {
		return fmt.Errorf("%w: %w", ErrInvalidHeader, ErrMissingRpID)
	}
	if header.ExporterDisplayName == "" {
		return fmt.Errorf("%w: %w", ErrInvalidHeader, ErrMissingExporter)
	}

	// Seconds since the epoch, not in the future beyond clock skew.
	minTime := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).Unix()
	maxTime := time.Now().Add(24 * time.Hour).Unix()
	if int64(header.Timestamp) < minTime || int64(header.Timestamp) > maxTime {
		return fmt.Errorf("%w: timestamp %d is out of range", ErrInvalidHeader, header.Timestamp)
	}

	for i, account := range header.Accounts {
		if err := validateAccount(account); err != nil {
			return fmt.Errorf("%w: account %d: %w", ErrInvalidHeader, i, err)
		}
	}

	return nil
}

func validateAccount(account cxf.Account) error {
	if !isBase64URL(account.ID) {
		return fmt.Errorf("invalid account ID %q", account.ID)
	}

	collections := make(map[string]bool, len(account.Collections))
	for _, coll := range account.Collections {
		if err := validateCollection(coll, collections); err != nil {
			return err
		}
	}

	items := make(map[string]bool, len(account.Items))
	for i, item := range account.Items {
		if !isBase64URL(item.ID) {
			return fmt.Errorf("item %d: invalid ID %q", i, item.ID)
		}
		if items[item.ID] {
			return fmt.Errorf("item %d: duplicate ID %s", i, item.ID)
		}
		items[item.ID] = true
	}

	return nil
}

// validateCollection checks coll and its sub-collections, recording ids
// in seen.
func validateCollection(coll cxf.Collection, seen map[string]bool) error {
	if !isBase64URL(coll.ID) {
		return fmt.Errorf("invalid collection ID %q", coll.ID)
	}
	if seen[coll.ID] {
		return fmt.Errorf("duplicate collection ID: %s", coll.ID)
	}
	seen[coll.ID] = true

	for _, sub := range coll.SubCollections {
		if err := validateCollection(sub, seen); err != nil {
			return err
		}
	}
	return nil
}
