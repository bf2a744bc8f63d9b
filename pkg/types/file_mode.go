// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
)

// DefaultFileMode is the mode given to decoded output files: readable by
// everyone, writable by the owner, never executable.
const DefaultFileMode FileMode = 0o644

var (
	// ErrInvalidFileMode is the sentinel error wrapped by InvalidFileModeError.
	ErrInvalidFileMode = errors.New("invalid file mode")

	errExecutableMode = errors.New("executable bits are not allowed")
	errModeRange      = errors.New("mode must be within 0000-0777")
)

type (
	// FileMode is the permission set applied to output files.
	FileMode fs.FileMode

	// InvalidFileModeError is returned when a FileMode has bits outside the
	// permission range or carries an executable bit.
	InvalidFileModeError struct {
		Value  FileMode
		Reason error
	}
)

// ParseFileMode parses an octal string such as "0644" or "644".
func ParseFileMode(s string) (FileMode, error) {
	v, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("%w %q: %w", ErrInvalidFileMode, s, err)
	}
	m := FileMode(v)
	if err := m.Validate(); err != nil {
		return 0, err
	}
	return m, nil
}

// Validate rejects modes outside 0777 and modes with any executable bit.
func (m FileMode) Validate() error {
	if m&^0o777 != 0 {
		return &InvalidFileModeError{Value: m, Reason: errModeRange}
	}
	if m&0o111 != 0 {
		return &InvalidFileModeError{Value: m, Reason: errExecutableMode}
	}
	return nil
}

// Perm returns the mode as an fs.FileMode.
func (m FileMode) Perm() fs.FileMode { return fs.FileMode(m).Perm() }

// String returns the mode as a four-digit octal string ("0644").
func (m FileMode) String() string { return fmt.Sprintf("%04o", uint32(m)) }

// Error implements the error interface.
func (e *InvalidFileModeError) Error() string {
	return fmt.Sprintf("invalid file mode %s: %v", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidFileMode for errors.Is() compatibility.
func (e *InvalidFileModeError) Unwrap() error { return ErrInvalidFileMode }
