package keepass

import (
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/tobischo/gokeepasslib/v3"

	"github.com/nvinuesa/bw2kp/internal/model"
	"github.com/nvinuesa/bw2kp/internal/security"
)

// Open decodes an existing .kdbx file into a Database. Saving the result
// writes back to the same path.
func Open(path string, password *security.Secret) (*Database, error) {
	if password.IsEmpty() {
		return nil, ErrNoPassword
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	db := gokeepasslib.NewDatabase()
	db.Credentials = gokeepasslib.NewPasswordCredentials(password.String())

	if err := gokeepasslib.NewDecoder(f).Decode(db); err != nil {
		errStr := strings.ToLower(err.Error())
		if strings.Contains(errStr, "password") ||
			strings.Contains(errStr, "credential") ||
			strings.Contains(errStr, "hmac") {
			return nil, &ErrAuthenticationFailed{Path: path, Err: err}
		}
		return nil, &ErrInvalidDatabase{Path: path, Details: "failed to decode database", Err: err}
	}

	if err := db.UnlockProtectedEntries(); err != nil {
		return nil, &ErrInvalidDatabase{Path: path, Details: "failed to unlock protected entries", Err: err}
	}

	if db.Content == nil || db.Content.Root == nil || len(db.Content.Root.Groups) == 0 {
		return nil, &ErrInvalidDatabase{Path: path, Details: "database has no root group"}
	}

	return &Database{
		path:     path,
		password: password,
		root:     decodeGroup(db.Content.Root.Groups[0], nil),
	}, nil
}

func decodeGroup(kg gokeepasslib.Group, parent *Group) *Group {
	g := &Group{name: kg.Name, parent: parent}

	for _, ke := range kg.Entries {
		g.entries = append(g.entries, decodeEntry(ke))
	}
	for _, kc := range kg.Groups {
		g.groups = append(g.groups, decodeGroup(kc, g))
	}

	return g
}

func decodeEntry(ke gokeepasslib.Entry) model.Entry {
	e := model.Entry{
		ID:       uuid.UUID(ke.UUID).String(),
		Title:    ke.GetTitle(),
		Username: ke.GetContent(FieldUserName),
		Secret:   ke.GetPassword(),
		Notes:    ke.GetContent(FieldNotes),
		TOTP:     ke.GetContent(FieldOTP),
	}
	if v := ke.Get(FieldURL); v != nil {
		e.URL = model.StringPtr(v.Value.Content)
	}
	return e
}
