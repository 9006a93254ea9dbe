// Package model defines the normalized entry shape every vault item kind
// is converted to before it is placed into a group.
package model

import "strings"

// Entry is a normalized credential record.
type Entry struct {
	// ID is the identifier of the vault item the entry was built from.
	// It may be empty for entries built in code.
	ID string

	// Title is the display name of the entry.
	Title string

	// Username defaults to the empty string.
	Username string

	// Secret is the password, card number or private key.
	Secret string

	// URL is nil when the item carries no URL at all.
	URL *string

	// Notes holds the original notes followed by the appended field lines.
	Notes string

	// TOTP is the one-time-password seed or otpauth:// URI, empty if none.
	TOTP string
}

// URLString returns the URL or the empty string when there is none.
func (e *Entry) URLString() string {
	if e == nil || e.URL == nil {
		return ""
	}
	return *e.URL
}

// HasURL reports whether the entry carries a URL, even an empty one.
func (e *Entry) HasURL() bool {
	return e != nil && e.URL != nil
}

// Equal reports whether two entries carry the same values.
func (e *Entry) Equal(other *Entry) bool {
	if e == nil || other == nil {
		return e == other
	}
	if e.HasURL() != other.HasURL() || e.URLString() != other.URLString() {
		return false
	}
	return e.ID == other.ID &&
		e.Title == other.Title &&
		e.Username == other.Username &&
		e.Secret == other.Secret &&
		e.Notes == other.Notes &&
		e.TOTP == other.TOTP
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

// AppendLines appends lines to notes, one per line, after the existing text.
// Notes without text get no leading newline.
func AppendLines(notes string, lines ...string) string {
	if len(lines) == 0 {
		return notes
	}

	var b strings.Builder
	b.WriteString(notes)
	for i, line := range lines {
		if i > 0 || notes != "" {
			b.WriteByte('\n')
		}
		b.WriteString(line)
	}
	return b.String()
}

// FieldLine formats a structured field as a notes line.
func FieldLine(name, value string) string {
	return name + ": " + value
}
