package vault

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// WriteMirror writes the fetched folders and items as an unencrypted
// export that OpenFile can read back. Records are written verbatim.
func WriteMirror(path string, folders []Folder, items []Item) error {
	data, err := MarshalMirror(folders, items)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// MarshalMirror returns the mirror document as bytes.
func MarshalMirror(folders []Folder, items []Item) ([]byte, error) {
	if folders == nil {
		folders = []Folder{}
	}
	if items == nil {
		items = []Item{}
	}

	return json.Marshal(Document{
		Encrypted: false,
		Folders:   folders,
		Items:     items,
	})
}
