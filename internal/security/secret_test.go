package security

import (
	"testing"
)

func TestSecret_FromBytes(t *testing.T) {
	data := []byte("master password")
	s := FromBytes(data)

	if s.String() != "master password" {
		t.Errorf("String() = %q, want %q", s.String(), "master password")
	}

	for _, b := range data {
		if b != 0 {
			t.Error("Source bytes not cleared")
			break
		}
	}

	s.Zero()
	if s.data != nil {
		t.Error("Secret data not nil after Zero()")
	}
	if !s.IsEmpty() {
		t.Error("Secret should be empty after Zero()")
	}
}

func TestSecret_FromString(t *testing.T) {
	s := FromString("123456")
	if s.Len() != 6 {
		t.Errorf("Len() = %d, want 6", s.Len())
	}
	if string(s.Bytes()) != "123456" {
		t.Errorf("Bytes() = %q, want %q", s.Bytes(), "123456")
	}
	s.Zero()
}

func TestSecret_Equal(t *testing.T) {
	s1 := FromString("password")
	s2 := FromString("password")
	s3 := FromString("different")

	if !s1.Equal(s2) {
		t.Error("Equal secrets not detected as equal")
	}
	if s1.Equal(s3) {
		t.Error("Different secrets detected as equal")
	}

	var nilSecret *Secret
	if s1.Equal(nilSecret) {
		t.Error("Secret should not equal nil")
	}
	if !nilSecret.Equal(nil) {
		t.Error("nil should equal nil")
	}
}

func TestSecret_Nil(t *testing.T) {
	var s *Secret

	// These should not panic
	s.Zero()
	if s.Len() != 0 {
		t.Error("Nil Secret should have length 0")
	}
	if s.String() != "" {
		t.Error("Nil Secret should have empty string")
	}
	if s.Bytes() != nil {
		t.Error("Nil Secret should have nil bytes")
	}
	if !s.IsEmpty() {
		t.Error("Nil Secret should be empty")
	}
}
