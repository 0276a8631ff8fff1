package glyphcat

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidImage is returned when the input bytes cannot be decoded as a PNG image.
	ErrInvalidImage = errors.New("invalid image")

	// ErrFetch marks a source file which could not be retrieved.
	ErrFetch = errors.New("fetch failed")

	// ErrStorage marks any failure of the collection store. A publish failing
	// with it has not changed the collection.
	ErrStorage = errors.New("storage error")

	// ErrNoGlyphs is returned when a publish has no record to commit.
	ErrNoGlyphs = errors.New("no valid glyphs to publish")

	// ErrDuplicateGlyph marks a record whose id or file name is already taken.
	ErrDuplicateGlyph = errors.New("duplicate glyph")
)

// StorageError reports the store operation that failed during a publish.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

// Unwrap exposes both ErrStorage and the underlying cause to errors.Is.
func (e *StorageError) Unwrap() []error {
	return []error{ErrStorage, e.Err}
}

// DuplicateError reports a record colliding with a published one or with
// another record of the same batch. Seeded runs hit it when the same input
// is published twice.
type DuplicateError struct {
	ID       string
	Filename string
	Source   string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("glyph %s (%s) is already in the %s", e.ID, e.Filename, e.Source)
}

func (e *DuplicateError) Unwrap() error { return ErrDuplicateGlyph }

// SkipReason classifies why an input produced no record.
type SkipReason string

const (
	SkipInvalidImage      SkipReason = "INVALID_IMAGE"
	SkipFetchError        SkipReason = "FETCH_ERROR"
	SkipUnsupportedFormat SkipReason = "UNSUPPORTED_FORMAT"
)

// Skip is the diagnostic left by an input that produced no record.
type Skip struct {
	Reason   SkipReason
	Filename string
}

func (s Skip) String() string {
	return fmt.Sprintf("SKIP.%s :: %s", s.Reason, s.Filename)
}

// skipFor maps an extraction error to its skip reason.
func skipFor(name string, err error) Skip {
	if errors.Is(err, ErrFetch) {
		return Skip{Reason: SkipFetchError, Filename: name}
	}
	return Skip{Reason: SkipInvalidImage, Filename: name}
}
