package keepass

import (
	"errors"
	"fmt"
)

// ErrNoPassword is returned when a database would be written or read without a master password.
var ErrNoPassword = errors.New("keepass: master password is required")

// ErrDuplicateEntry indicates that an entry with the same title and username
// already exists in the group.
type ErrDuplicateEntry struct {
	Group    string // Slash-separated group path
	Title    string
	Username string
}

func (e *ErrDuplicateEntry) Error() string {
	return fmt.Sprintf("keepass: entry %q with username %q already exists in group %q", e.Title, e.Username, e.Group)
}

// ErrAuthenticationFailed indicates the database could not be decrypted with the given password.
type ErrAuthenticationFailed struct {
	Path string
	Err  error
}

func (e *ErrAuthenticationFailed) Error() string {
	msg := fmt.Sprintf("keepass: authentication failed for %q: incorrect password", e.Path)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ErrAuthenticationFailed) Unwrap() error {
	return e.Err
}

// ErrInvalidDatabase indicates the file is not a readable KeePass database.
type ErrInvalidDatabase struct {
	Path    string
	Details string
	Err     error
}

func (e *ErrInvalidDatabase) Error() string {
	msg := fmt.Sprintf("keepass: invalid database %q", e.Path)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ErrInvalidDatabase) Unwrap() error {
	return e.Err
}

// IsDuplicate returns true if the error reports a title and username collision.
func IsDuplicate(err error) bool {
	var dupErr *ErrDuplicateEntry
	return errors.As(err, &dupErr)
}

// IsAuthError returns true if the error is an authentication error.
func IsAuthError(err error) bool {
	var authErr *ErrAuthenticationFailed
	return errors.As(err, &authErr)
}
