package vault

import (
	"errors"
	"fmt"
)

// Common errors that can be returned by vault sources.
var (
	// ErrSyncUnsupported is returned when a sync is requested from a source
	// whose input channel is already the data stream.
	ErrSyncUnsupported = errors.New("sync is not possible while reading the vault from standard input")

	// ErrNoPassword is returned when the live source has no master password to feed the bw CLI.
	ErrNoPassword = errors.New("master password is required to query the bw CLI")
)

// ErrInvalidFormat indicates that fetched or read bytes are not the expected JSON shape.
type ErrInvalidFormat struct {
	Source  string // Source name
	Path    string // File path or command
	Details string // What was wrong
	Err     error  // Underlying error, if any
}

func (e *ErrInvalidFormat) Error() string {
	msg := fmt.Sprintf("%s: invalid format for %q", e.Source, e.Path)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ErrInvalidFormat) Unwrap() error {
	return e.Err
}

// ErrEncryptedExport indicates that the export declares itself encrypted.
type ErrEncryptedExport struct {
	Source string
	Path   string
}

func (e *ErrEncryptedExport) Error() string {
	return fmt.Sprintf("%s: unsupported: exported json %q is encrypted; export the vault without encryption", e.Source, e.Path)
}

// ErrToolFailed indicates the bw CLI exited with an error.
type ErrToolFailed struct {
	Command string
	Stderr  string
	Err     error
}

func (e *ErrToolFailed) Error() string {
	msg := fmt.Sprintf("%s failed", e.Command)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *ErrToolFailed) Unwrap() error {
	return e.Err
}

// ErrFileNotFound indicates the specified file does not exist.
type ErrFileNotFound struct {
	Path string
}

func (e *ErrFileNotFound) Error() string {
	return fmt.Sprintf("file not found: %q", e.Path)
}

// IsFormatError returns true if the error is a format error.
func IsFormatError(err error) bool {
	var formatErr *ErrInvalidFormat
	return errors.As(err, &formatErr)
}

// IsEncrypted returns true if the error reports an encrypted export.
func IsEncrypted(err error) bool {
	var encErr *ErrEncryptedExport
	return errors.As(err, &encErr)
}

// IsToolError returns true if the error comes from a failed bw invocation.
func IsToolError(err error) bool {
	var toolErr *ErrToolFailed
	return errors.As(err, &toolErr)
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	var notFoundErr *ErrFileNotFound
	return errors.As(err, &notFoundErr)
}
