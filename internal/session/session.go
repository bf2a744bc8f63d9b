// SPDX-License-Identifier: MPL-2.0

// Package session runs the interactive paste loop: the operator types
// commands, pastes chunks terminated by a sentinel line and finalizes the
// buffer into the output file.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/b64drop/b64drop/internal/assembler"
	"github.com/b64drop/b64drop/internal/chunk"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
)

type (
	// Theme styles session output. The zero value renders plain text.
	Theme struct {
		Prompt  lipgloss.Style
		Label   lipgloss.Style
		Muted   lipgloss.Style
		Warning lipgloss.Style
	}

	// Options configures a Session.
	Options struct {
		In     io.Reader
		Out    io.Writer
		Buffer *assembler.Buffer
		// Sentinel terminates each pasted chunk. Empty means chunk.DefaultSentinel.
		Sentinel string
		// Prompt enables the command prompt, paste hints and the help banner.
		Prompt bool
		Theme  Theme
		Logger *log.Logger
	}

	// Session is one interactive paste conversation.
	Session struct {
		in     *chunk.Reader
		out    io.Writer
		buf    *assembler.Buffer
		prompt bool
		theme  Theme
		logger *log.Logger
	}
)

// New validates opts and returns a Session ready to Run.
func New(opts Options) (*Session, error) {
	if opts.Buffer == nil {
		return nil, errors.New("session requires a buffer")
	}
	if opts.In == nil || opts.Out == nil {
		return nil, errors.New("session requires input and output streams")
	}
	sentinel := opts.Sentinel
	if sentinel == "" {
		sentinel = chunk.DefaultSentinel
	}
	r, err := chunk.NewReader(opts.In, sentinel)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Session{
		in:     r,
		out:    opts.Out,
		buf:    opts.Buffer,
		prompt: opts.Prompt,
		theme:  opts.Theme,
		logger: logger,
	}, nil
}

// Run reads commands until quit or end of input. A failed append or
// finalize ends the session with that error; nothing is retried. Canceling
// ctx interrupts a pending read, including a half-pasted chunk, which is
// then discarded.
func (s *Session) Run(ctx context.Context) error {
	if s.prompt {
		s.printHelp()
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.prompt {
			fmt.Fprint(s.out, s.theme.Prompt.Render("b64drop> "))
		}

		line, err := s.in.ReadLine(ctx)
		if errors.Is(err, io.EOF) {
			s.logger.Debug("input closed, leaving session")
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			return fmt.Errorf("read command: %w", err)
		}
		if line == "" {
			continue
		}

		switch parseCommand(line) {
		case cmdAppend:
			if err := s.appendChunk(ctx); err != nil {
				return err
			}
		case cmdFinalize:
			if _, err := s.Finalize(ctx); err != nil {
				return err
			}
		case cmdStatus:
			s.printStatus()
		case cmdReset:
			if err := s.buf.Reset(); err != nil {
				return err
			}
			fmt.Fprintln(s.out, s.theme.Muted.Render("buffer emptied"))
		case cmdHelp:
			s.printHelp()
		case cmdQuit:
			return nil
		default:
			fmt.Fprintln(s.out, s.theme.Warning.Render(fmt.Sprintf("unknown command %q, type 'help' for the list", line)))
		}
	}
}

func (s *Session) appendChunk(ctx context.Context) error {
	if s.prompt {
		fmt.Fprintln(s.out, s.theme.Muted.Render(fmt.Sprintf("paste base64, finish with a line containing only %s", s.in.Sentinel())))
	}
	c, err := s.in.ReadChunk(ctx)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.buf.AppendChunk(c); err != nil {
		return err
	}
	st := s.buf.Status()
	fmt.Fprintf(s.out, "%s chunk %d, %s buffered\n",
		s.theme.Label.Render("appended"), st.Chunks, humanize.Bytes(uint64(st.Bytes)))
	return nil
}

// Finalize commits the buffer and prints the destination followed by a
// sha256sum-style checksum line.
func (s *Session) Finalize(ctx context.Context) (assembler.Result, error) {
	res, err := s.buf.Finalize(ctx)
	if err != nil {
		return res, err
	}
	PrintResult(s.out, res, s.theme)
	return res, nil
}

// PrintResult writes the confirmation and checksum lines for res. The
// checksum line is left unstyled so it can be fed to sha256sum -c.
func PrintResult(w io.Writer, res assembler.Result, theme Theme) {
	fmt.Fprintf(w, "%s %s\n", theme.Label.Render("Wrote"), res.Path)
	fmt.Fprintln(w, res.Digest.ChecksumLine(res.Path))
}

func (s *Session) printStatus() {
	st := s.buf.Status()
	fmt.Fprintf(s.out, "%s %s\n", s.theme.Label.Render("state:   "), st.State)
	fmt.Fprintf(s.out, "%s %d\n", s.theme.Label.Render("chunks:  "), st.Chunks)
	fmt.Fprintf(s.out, "%s %s (%d bytes)\n", s.theme.Label.Render("buffered:"), humanize.Bytes(uint64(st.Bytes)), st.Bytes)
	fmt.Fprintf(s.out, "%s %s\n", s.theme.Label.Render("output:  "), st.Output)
}

func (s *Session) printHelp() {
	fmt.Fprint(s.out, s.theme.Muted.Render(fmt.Sprintf(helpText, s.in.Sentinel(), s.buf.Output())))
}
