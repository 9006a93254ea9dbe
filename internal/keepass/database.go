// Package keepass is the target credential store: a KeePass 2.x database
// built in memory as a group tree and written to a .kdbx file on Save.
package keepass

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tobischo/gokeepasslib/v3"
	"github.com/tobischo/gokeepasslib/v3/wrappers"

	"github.com/nvinuesa/bw2kp/internal/model"
	"github.com/nvinuesa/bw2kp/internal/security"
)

// RootName is the name given to the root group of created databases.
const RootName = "Root"

// Standard KeePass entry field keys.
const (
	FieldTitle    = "Title"
	FieldUserName = "UserName"
	FieldPassword = "Password"
	FieldURL      = "URL"
	FieldNotes    = "Notes"
	// FieldOTP holds the TOTP seed or otpauth:// URI, as KeePassXC does.
	FieldOTP = "otp"
)

// Database is a KeePass database under construction. Nothing touches the
// filesystem until Save.
type Database struct {
	path     string
	password *security.Secret
	root     *Group
}

// Create returns an empty database that Save will write to path.
func Create(path string, password *security.Secret) *Database {
	return &Database{
		path:     path,
		password: password,
		root:     &Group{name: RootName},
	}
}

// Path returns the destination file.
func (d *Database) Path() string {
	return d.path
}

// Root returns the root group.
func (d *Database) Root() *Group {
	return d.root
}

// AddGroup creates a new child group under parent. A nil parent means the root.
func (d *Database) AddGroup(parent *Group, name string) *Group {
	if parent == nil {
		parent = d.root
	}
	return parent.addChild(name)
}

// AddEntry places entry into group. It fails with ErrDuplicateEntry when
// the group already holds an entry with the same title and username.
func (d *Database) AddEntry(group *Group, entry model.Entry) error {
	if group == nil {
		group = d.root
	}
	if _, ok := group.Entry(entry.Title, entry.Username); ok {
		return &ErrDuplicateEntry{
			Group:    group.PathString(),
			Title:    entry.Title,
			Username: entry.Username,
		}
	}
	group.entries = append(group.entries, entry)
	return nil
}

// Save encodes the database and writes it to its path. The file is
// written next to the destination and renamed into place, so a failed
// save leaves any existing file untouched.
func (d *Database) Save() error {
	if d.password.IsEmpty() {
		return ErrNoPassword
	}

	db := d.encode()
	if err := db.LockProtectedEntries(); err != nil {
		return &ErrInvalidDatabase{Path: d.path, Details: "failed to lock protected entries", Err: err}
	}

	dir := filepath.Dir(d.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(d.path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if err := gokeepasslib.NewEncoder(tmp).Encode(db); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return &ErrInvalidDatabase{Path: d.path, Details: "failed to encode database", Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, 0600); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, d.path); err != nil {
		os.Remove(tmpPath)
		return err
	}

	return nil
}

// encode materializes the group tree as a gokeepasslib database.
func (d *Database) encode() *gokeepasslib.Database {
	db := gokeepasslib.NewDatabase()
	db.Credentials = gokeepasslib.NewPasswordCredentials(d.password.String())

	now := time.Now()
	db.Content.Meta.DatabaseName = strings.TrimSuffix(filepath.Base(d.path), filepath.Ext(d.path))
	db.Content.Meta.DatabaseNameChanged = &wrappers.TimeWrapper{Time: now}

	used := make(map[gokeepasslib.UUID]bool)
	db.Content.Root.Groups = []gokeepasslib.Group{encodeGroup(d.root, used)}

	return db
}

func encodeGroup(g *Group, used map[gokeepasslib.UUID]bool) gokeepasslib.Group {
	kg := gokeepasslib.NewGroup()
	kg.Name = g.name

	for _, e := range g.entries {
		kg.Entries = append(kg.Entries, encodeEntry(e, used))
	}
	for _, c := range g.groups {
		kg.Groups = append(kg.Groups, encodeGroup(c, used))
	}

	return kg
}

func encodeEntry(e model.Entry, used map[gokeepasslib.UUID]bool) gokeepasslib.Entry {
	ke := gokeepasslib.NewEntry()

	// Vault item ids are UUIDs; reuse them so entries are traceable.
	if id, err := uuid.Parse(e.ID); err == nil && !used[gokeepasslib.UUID(id)] {
		ke.UUID = gokeepasslib.UUID(id)
	}
	used[ke.UUID] = true

	ke.Values = append(ke.Values,
		mkValue(FieldTitle, e.Title),
		mkValue(FieldUserName, e.Username),
		mkProtectedValue(FieldPassword, e.Secret),
	)
	if e.URL != nil {
		ke.Values = append(ke.Values, mkValue(FieldURL, *e.URL))
	}
	ke.Values = append(ke.Values, mkValue(FieldNotes, e.Notes))
	if e.TOTP != "" {
		ke.Values = append(ke.Values, mkProtectedValue(FieldOTP, e.TOTP))
	}

	return ke
}

func mkValue(key, value string) gokeepasslib.ValueData {
	return gokeepasslib.ValueData{
		Key:   key,
		Value: gokeepasslib.V{Content: value},
	}
}

func mkProtectedValue(key, value string) gokeepasslib.ValueData {
	return gokeepasslib.ValueData{
		Key: key,
		Value: gokeepasslib.V{
			Content:   value,
			Protected: wrappers.NewBoolWrapper(true),
		},
	}
}
