// Package vault reads Bitwarden folders and items from the bw CLI, an
// unencrypted JSON export, or standard input.
package vault

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// NoFolder is the name Bitwarden gives to the pseudo folder holding
// unfiled items. It maps to the root group.
const NoFolder = "No Folder"

// Kind is the Bitwarden item type tag.
type Kind int

// Bitwarden item types.
const (
	KindLogin      Kind = 1
	KindSecureNote Kind = 2
	KindCard       Kind = 3
	KindIdentity   Kind = 4
	KindSSHKey     Kind = 5
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindLogin:
		return "login"
	case KindSecureNote:
		return "secure-note"
	case KindCard:
		return "card"
	case KindIdentity:
		return "identity"
	case KindSSHKey:
		return "ssh-key"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Document is the top-level structure of an unencrypted Bitwarden export.
// The same shape is used for the plaintext mirror.
type Document struct {
	Encrypted bool     `json:"encrypted"`
	Folders   []Folder `json:"folders"`
	Items     []Item   `json:"items"`
}

// Folder is a Bitwarden folder. Name may contain "/" as a hierarchy delimiter.
type Folder struct {
	ID   string
	Name string

	raw json.RawMessage
}

type folderJSON struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// UnmarshalJSON decodes a folder and keeps its original bytes.
func (f *Folder) UnmarshalJSON(data []byte) error {
	var v folderJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.ID = v.ID
	f.Name = v.Name
	f.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON writes the folder exactly as it was read.
func (f Folder) MarshalJSON() ([]byte, error) {
	if f.raw != nil {
		return f.raw, nil
	}
	return json.Marshal(folderJSON{ID: f.ID, Name: f.Name})
}

// Item is a single Bitwarden vault item. Only the payload matching Type is
// expected to be set.
type Item struct {
	ID       string
	Name     string
	Type     Kind
	FolderID string
	Notes    string
	Login    *Login
	Card     Fields
	Identity Fields
	SSHKey   *SSHKey

	raw json.RawMessage
}

type itemJSON struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Type     Kind    `json:"type"`
	FolderID string  `json:"folderId"`
	Notes    string  `json:"notes"`
	Login    *Login  `json:"login,omitempty"`
	Card     Fields  `json:"card,omitempty"`
	Identity Fields  `json:"identity,omitempty"`
	SSHKey   *SSHKey `json:"sshKey,omitempty"`
}

// UnmarshalJSON decodes an item and keeps its original bytes.
// JSON null and absent strings both decode to "".
func (it *Item) UnmarshalJSON(data []byte) error {
	var v itemJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*it = Item{
		ID:       v.ID,
		Name:     v.Name,
		Type:     v.Type,
		FolderID: v.FolderID,
		Notes:    v.Notes,
		Login:    v.Login,
		Card:     v.Card,
		Identity: v.Identity,
		SSHKey:   v.SSHKey,
		raw:      append(json.RawMessage(nil), data...),
	}
	return nil
}

// MarshalJSON writes the item exactly as it was read.
func (it Item) MarshalJSON() ([]byte, error) {
	if it.raw != nil {
		return it.raw, nil
	}
	return json.Marshal(itemJSON{
		ID:       it.ID,
		Name:     it.Name,
		Type:     it.Type,
		FolderID: it.FolderID,
		Notes:    it.Notes,
		Login:    it.Login,
		Card:     it.Card,
		Identity: it.Identity,
		SSHKey:   it.SSHKey,
	})
}

// Login is the payload of a login item.
type Login struct {
	Username string `json:"username"`
	Password string `json:"password"`
	URIs     []URI  `json:"uris"`
	TOTP     string `json:"totp"`
}

// URI is one entry of a login's URI list.
type URI struct {
	URI string `json:"uri"`
}

// SSHKey is the payload of an SSH key item.
type SSHKey struct {
	PrivateKey     string `json:"privateKey"`
	PublicKey      string `json:"publicKey"`
	KeyFingerprint string `json:"keyFingerprint"`
}

// Field is one name/value pair of a card or identity payload.
type Field struct {
	Name  string
	Value string
}

// Fields is a JSON object decoded in document order.
type Fields []Field

// Get returns the value of the named field, or "" if absent.
func (fs Fields) Get(name string) string {
	for _, f := range fs {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}

// UnmarshalJSON decodes an object keeping key order. Null values become "",
// strings are unquoted and any other value keeps its JSON text.
func (fs *Fields) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*fs = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}

	fields := Fields{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return err
		}
		fields = append(fields, Field{Name: name, Value: renderValue(value)})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*fs = fields
	return nil
}

// MarshalJSON writes the fields back as an object in the same order.
func (fs Fields) MarshalJSON() ([]byte, error) {
	if fs == nil {
		return []byte("null"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range fs {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// renderValue turns a raw JSON value into the text written to notes.
func renderValue(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, trimmed); err != nil {
		return string(trimmed)
	}
	return compact.String()
}
