// Package security holds the master password for the lifetime of one conversion.
package security

import (
	"crypto/subtle"
)

// Secret wraps the master password bytes and ensures they are zeroed when no
// longer needed.
type Secret struct {
	data []byte
}

// FromBytes creates a Secret from existing bytes and clears the source.
func FromBytes(data []byte) *Secret {
	s := &Secret{
		data: make([]byte, len(data)),
	}
	copy(s.data, data)
	for i := range data {
		data[i] = 0
	}
	return s
}

// FromString creates a Secret from a string, e.g. an environment variable.
// The string itself cannot be cleared.
func FromString(value string) *Secret {
	return &Secret{data: []byte(value)}
}

// Bytes returns the underlying byte slice. Caller must not retain this reference.
func (s *Secret) Bytes() []byte {
	if s == nil {
		return nil
	}
	return s.data
}

// String returns the secret as a string. The string will not be secured.
// Use only for APIs that require strings, such as KeePass credentials.
func (s *Secret) String() string {
	if s == nil {
		return ""
	}
	return string(s.data)
}

// Len returns the length of the secret.
func (s *Secret) Len() int {
	if s == nil {
		return 0
	}
	return len(s.data)
}

// IsEmpty reports whether no password was supplied.
func (s *Secret) IsEmpty() bool {
	return s.Len() == 0
}

// Zero clears the bytes.
func (s *Secret) Zero() {
	if s == nil || s.data == nil {
		return
	}
	for i := range s.data {
		s.data[i] = 0
	}
	// Double-check using subtle to prevent compiler optimization
	if len(s.data) > 0 {
		subtle.ConstantTimeCopy(1, s.data, make([]byte, len(s.data)))
	}
	s.data = nil
}

// Equal compares two secrets in constant time.
func (s *Secret) Equal(other *Secret) bool {
	if s == nil || other == nil {
		return s == other
	}
	if len(s.data) != len(other.data) {
		return false
	}
	return subtle.ConstantTimeCompare(s.data, other.data) == 1
}
