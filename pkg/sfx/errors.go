// SPDX-License-Identifier: MPL-2.0

package sfx

import (
	"errors"
	"fmt"
)

var (
	// ErrArchiveNotFound is returned by Locate when no valid trailer record
	// exists anywhere in the searched portion of the image.
	ErrArchiveNotFound = errors.New("no embedded archive found")

	// ErrDuplicateEntry is the sentinel error wrapped by DuplicateEntryError.
	ErrDuplicateEntry = errors.New("duplicate archive entry")

	// ErrUnsafePath is the sentinel error wrapped by UnsafePathError.
	ErrUnsafePath = errors.New("unsafe archive path")

	// ErrExtraction is the sentinel error wrapped by ExtractionError.
	ErrExtraction = errors.New("archive extraction failed")
)

// DuplicateEntryError is returned when an archive is built from two entries
// with the same relative path.
type DuplicateEntryError struct {
	Path string
}

// Error implements the error interface.
func (e *DuplicateEntryError) Error() string {
	return fmt.Sprintf("duplicate archive entry %q", e.Path)
}

// Unwrap returns ErrDuplicateEntry so callers can use errors.Is for
// programmatic detection.
func (e *DuplicateEntryError) Unwrap() error { return ErrDuplicateEntry }

// UnsafePathError is returned when an entry path would resolve outside the
// extraction root (path traversal) or is not a clean relative path.
type UnsafePathError struct {
	Path string
}

// Error implements the error interface.
func (e *UnsafePathError) Error() string {
	return fmt.Sprintf("unsafe archive path %q", e.Path)
}

// Unwrap returns ErrUnsafePath.
func (e *UnsafePathError) Unwrap() error { return ErrUnsafePath }

// ExtractionError is returned when reading or writing an entry fails midway
// through extraction. The destination directory may be partially populated
// when this is returned; callers own its cleanup.
type ExtractionError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extracting %q: %v", e.Path, e.Err)
}

// Unwrap returns both ErrExtraction and the underlying cause, so errors.Is
// works for either.
func (e *ExtractionError) Unwrap() []error { return []error{ErrExtraction, e.Err} }
