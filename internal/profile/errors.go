package profile

import (
	"errors"
	"fmt"
)

// Errors returned by the registry. Callers match them with errors.Is; a
// malformed registry file is reported as *ini.ParseError instead.
var (
	ErrValidation         = errors.New("invalid profile name")
	ErrNotFound           = errors.New("profile not found")
	ErrExecutableNotFound = errors.New("executable not found")
	ErrIO                 = errors.New("filesystem error")
	ErrDefaultProfile     = errors.New("the default profile is protected")
)

// ioError wraps a filesystem failure so that it matches both ErrIO and the
// underlying error.
func ioError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrIO, op, err)
}

func notFound(name string) error {
	return fmt.Errorf("%w: %q", ErrNotFound, name)
}
