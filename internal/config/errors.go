package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoOutput indicates that no output database was given.
	ErrNoOutput = errors.New("an output file is required (--output)")

	// ErrNoPassword indicates that neither the environment nor the prompt
	// provided a master password.
	ErrNoPassword = errors.New("master password is required")
)

// ErrConflict indicates options that cannot be used together.
type ErrConflict struct {
	Options []string
	Reason  string
}

func (e *ErrConflict) Error() string {
	return fmt.Sprintf("conflicting options %s: %s", strings.Join(e.Options, " and "), e.Reason)
}

// IsConflict checks if an error is a configuration conflict.
func IsConflict(err error) bool {
	var e *ErrConflict
	return errors.As(err, &e)
}
