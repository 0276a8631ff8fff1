package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a path does not exist on the collection branch.
var ErrNotFound = errors.New("not found")

// ErrBranchMissing is returned when the collection branch has no commit yet.
var ErrBranchMissing = errors.New("branch does not exist")

// ErrConflict is returned when the branch moved while a commit was being prepared.
var ErrConflict = errors.New("branch head changed concurrently")

// ErrInvalidOptions is returned by Options.Validate.
var ErrInvalidOptions = errors.New("invalid options")

// WrapError wraps err with a message, keeping it matchable with errors.Is.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// WrapErrorf is WrapError with a format string.
func WrapErrorf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
