// SPDX-License-Identifier: MPL-2.0

package launcher

import (
	"errors"
	"fmt"
)

var (
	// ErrTempDir is the sentinel error wrapped by TempDirError.
	ErrTempDir = errors.New("temp directory setup failed")

	// ErrLaunch is the sentinel error wrapped by LaunchError.
	ErrLaunch = errors.New("runtime launch failed")
)

// TempDirError is returned when the extraction directory cannot be created.
type TempDirError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *TempDirError) Error() string {
	return fmt.Sprintf("creating temp directory %q: %v", e.Path, e.Err)
}

// Unwrap returns both ErrTempDir and the underlying cause.
func (e *TempDirError) Unwrap() []error { return []error{ErrTempDir, e.Err} }

// LaunchError is returned when the bundled runtime cannot be resolved or
// spawned from the extracted tree.
type LaunchError struct {
	Runtime string
	Err     error
}

// Error implements the error interface.
func (e *LaunchError) Error() string {
	return fmt.Sprintf("launching runtime %q: %v", e.Runtime, e.Err)
}

// Unwrap returns both ErrLaunch and the underlying cause.
func (e *LaunchError) Unwrap() []error { return []error{ErrLaunch, e.Err} }
