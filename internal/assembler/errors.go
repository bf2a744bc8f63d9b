// SPDX-License-Identifier: MPL-2.0

package assembler

import (
	"encoding/base64"
	"errors"
	"fmt"
)

var (
	// ErrDecode is the sentinel wrapped by DecodeError.
	ErrDecode = errors.New("buffer is not valid base64")
	// ErrFilesystem is the sentinel wrapped by FilesystemError.
	ErrFilesystem = errors.New("filesystem operation failed")
	// ErrClosed is returned by operations on a closed Buffer.
	ErrClosed = errors.New("buffer is closed")
)

type (
	// DecodeError reports that the buffered text could not be base64-decoded.
	// Offset is the byte position in the buffer reported by the decoder, or -1
	// when the decoder did not report one.
	DecodeError struct {
		Offset int64
		Err    error
	}

	// FilesystemError reports a failed filesystem step: creating the output
	// directory, writing the artifact, changing its mode or touching the spool.
	FilesystemError struct {
		Op   string
		Path string
		Err  error
	}
)

func newDecodeError(err error) *DecodeError {
	de := &DecodeError{Offset: -1, Err: err}
	var corrupt base64.CorruptInputError
	if errors.As(err, &corrupt) {
		de.Offset = int64(corrupt)
	}
	return de
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("decode buffer: illegal base64 data at byte %d", e.Offset)
	}
	return fmt.Sprintf("decode buffer: %v", e.Err)
}

// Unwrap exposes both ErrDecode and the decoder error.
func (e *DecodeError) Unwrap() []error { return []error{ErrDecode, e.Err} }

// Error implements the error interface.
func (e *FilesystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap exposes both ErrFilesystem and the underlying cause.
func (e *FilesystemError) Unwrap() []error { return []error{ErrFilesystem, e.Err} }
