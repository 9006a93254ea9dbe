// Package convert turns vault folders and items into a populated group tree.
package convert

import (
	"errors"
	"fmt"

	"github.com/nvinuesa/bw2kp/internal/model"
	"github.com/nvinuesa/bw2kp/internal/vault"
)

// ErrUnknownItemKind is returned for an item whose type tag is not one of
// the recognized kinds. Such items are never skipped.
type ErrUnknownItemKind struct {
	ItemID string
	Name   string
	Kind   vault.Kind
}

func (e *ErrUnknownItemKind) Error() string {
	return fmt.Sprintf("unknown item kind %d for item %q (%s)", int(e.Kind), e.Name, e.ItemID)
}

// IsUnknownKind returns true if the error reports an unrecognized item kind.
func IsUnknownKind(err error) bool {
	var kindErr *ErrUnknownItemKind
	return errors.As(err, &kindErr)
}

// Card fields moved into username and secret rather than notes.
const (
	cardBrand  = "brand"
	cardNumber = "number"
)

// Normalize maps one vault item to the entry shape written to the store.
func Normalize(item vault.Item) (model.Entry, error) {
	var e model.Entry

	switch item.Type {
	case vault.KindLogin:
		e = normalizeLogin(item)
	case vault.KindSecureNote:
		e = normalizeNote(item)
	case vault.KindCard:
		e = normalizeCard(item)
	case vault.KindIdentity:
		e = normalizeIdentity(item)
	case vault.KindSSHKey:
		e = normalizeSSHKey(item)
	default:
		return model.Entry{}, &ErrUnknownItemKind{ItemID: item.ID, Name: item.Name, Kind: item.Type}
	}

	e.ID = item.ID
	return e, nil
}

func normalizeLogin(item vault.Item) model.Entry {
	e := model.Entry{
		Title: item.Name,
		Notes: item.Notes,
	}

	login := item.Login
	if login == nil {
		return e
	}

	e.Username = login.Username
	e.Secret = login.Password
	e.TOTP = login.TOTP

	if len(login.URIs) > 0 {
		e.URL = model.StringPtr(login.URIs[0].URI)

		extra := make([]string, 0, len(login.URIs)-1)
		for _, u := range login.URIs[1:] {
			extra = append(extra, u.URI)
		}
		e.Notes = model.AppendLines(e.Notes, extra...)
	}

	return e
}

func normalizeNote(item vault.Item) model.Entry {
	return model.Entry{
		Title: item.Name + " - Secure Note",
		Notes: item.Notes,
	}
}

func normalizeCard(item vault.Item) model.Entry {
	var lines []string
	for _, f := range item.Card {
		if f.Name == cardBrand || f.Name == cardNumber {
			continue
		}
		lines = append(lines, model.FieldLine(f.Name, f.Value))
	}

	return model.Entry{
		Title:    item.Name + " - Card",
		Username: item.Card.Get(cardBrand),
		Secret:   item.Card.Get(cardNumber),
		Notes:    model.AppendLines(item.Notes, lines...),
	}
}

func normalizeIdentity(item vault.Item) model.Entry {
	lines := make([]string, 0, len(item.Identity))
	for _, f := range item.Identity {
		lines = append(lines, model.FieldLine(f.Name, f.Value))
	}

	return model.Entry{
		Title: item.Name + " - Identity",
		Notes: model.AppendLines(item.Notes, lines...),
	}
}

func normalizeSSHKey(item vault.Item) model.Entry {
	e := model.Entry{
		Title: item.Name + " - SSH Key",
		Notes: item.Notes,
	}

	key := item.SSHKey
	if key == nil {
		return e
	}

	// The private key goes into the secret only.
	e.Secret = key.PrivateKey

	var lines []string
	if key.KeyFingerprint != "" {
		lines = append(lines, model.FieldLine("Fingerprint", key.KeyFingerprint))
	}
	if key.PublicKey != "" {
		lines = append(lines, model.FieldLine("Public Key", key.PublicKey))
	}
	e.Notes = model.AppendLines(e.Notes, lines...)

	return e
}
