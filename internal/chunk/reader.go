// SPDX-License-Identifier: MPL-2.0

// Package chunk reads pasted base64 chunks from a line-oriented stream.
package chunk

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// DefaultSentinel terminates a chunk, like the delimiter of a shell heredoc.
const DefaultSentinel = "EOF"

var (
	// ErrUnterminatedChunk is returned when the input ends before the sentinel line.
	// The partial chunk is discarded.
	ErrUnterminatedChunk = errors.New("input ended before the chunk sentinel")
	// ErrEmptySentinel is returned by NewReader for a blank sentinel.
	ErrEmptySentinel = errors.New("chunk sentinel must not be empty")
)

type (
	// Reader splits a stream into command lines and sentinel-terminated chunks.
	//
	// Lines are read by a background goroutine so a blocked terminal read can
	// be abandoned when the context is canceled. A Reader must not be used
	// from more than one goroutine.
	Reader struct {
		r        *bufio.Reader
		sentinel string

		start sync.Once
		lines chan line
		err   error
	}

	line struct {
		text string
		err  error
	}
)

// NewReader wraps r. The sentinel is compared against each line after
// trimming surrounding whitespace.
func NewReader(r io.Reader, sentinel string) (*Reader, error) {
	sentinel = strings.TrimSpace(sentinel)
	if sentinel == "" {
		return nil, ErrEmptySentinel
	}
	return &Reader{
		r:        bufio.NewReader(r),
		sentinel: sentinel,
		lines:    make(chan line),
	}, nil
}

// Sentinel returns the line that ends a chunk.
func (r *Reader) Sentinel() string { return r.sentinel }

func (r *Reader) pump() {
	defer close(r.lines)
	for {
		text, err := r.r.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) && text != "" {
				r.lines <- line{text: text}
			}
			r.lines <- line{err: err}
			return
		}
		r.lines <- line{text: text}
	}
}

// ReadLine returns the next line with surrounding whitespace removed. It
// returns io.EOF only when no more data is available, and ctx.Err() when ctx
// is done before a line arrives.
func (r *Reader) ReadLine(ctx context.Context) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r.start.Do(func() { go r.pump() })

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case l, ok := <-r.lines:
		if !ok {
			r.err = io.EOF
			return "", r.err
		}
		if l.err != nil {
			r.err = l.err
			return "", l.err
		}
		return strings.TrimSpace(l.text), nil
	}
}

// ReadChunk reads lines up to the sentinel and joins them with "\n".
// Leading and trailing whitespace, carriage returns included, is stripped
// from each line so text pasted from other terminals decodes cleanly.
// Reading the sentinel straight away yields an empty chunk. When ctx is
// done mid-chunk the partial chunk is discarded and ctx.Err() returned.
func (r *Reader) ReadChunk(ctx context.Context) (string, error) {
	var lines []string
	for {
		l, err := r.ReadLine(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", ErrUnterminatedChunk
			}
			return "", err
		}
		if l == r.sentinel {
			return strings.Join(lines, "\n"), nil
		}
		lines = append(lines, l)
	}
}

// ReadAll reads every remaining line as a single chunk, ignoring the sentinel.
// It is used when the payload is piped in rather than pasted.
func (r *Reader) ReadAll(ctx context.Context) (string, error) {
	var lines []string
	for {
		l, err := r.ReadLine(ctx)
		if errors.Is(err, io.EOF) {
			return strings.Join(lines, "\n"), nil
		}
		if err != nil {
			return "", err
		}
		lines = append(lines, l)
	}
}
