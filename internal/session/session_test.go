// SPDX-License-Identifier: MPL-2.0

package session

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/b64drop/b64drop/internal/assembler"
	"github.com/b64drop/b64drop/internal/chunk"

	"github.com/spf13/afero"
)

const helloDigest = "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"

func newTestSession(t *testing.T, fs afero.Fs, input string, prompt bool) (*Session, *assembler.Buffer, *bytes.Buffer) {
	t.Helper()

	buf, err := assembler.NewSession(assembler.Options{Fs: fs, SpoolDir: "/spool", Output: "/out/payload.bin"})
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	t.Cleanup(func() { _ = buf.Close() })

	var out bytes.Buffer
	s, err := New(Options{In: strings.NewReader(input), Out: &out, Buffer: buf, Prompt: prompt})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s, buf, &out
}

func TestRun_AppendAndFinalize(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	input := "append\naGVsbG8g\nEOF\nA\nd29ybGQ=\nEOF\nfinalize\nquit\n"
	s, _, out := newTestSession(t, fs, input, false)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	got, err := afero.ReadFile(fs, "/out/payload.bin")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(got) != "hello world" {
		t.Errorf("artifact = %q, want %q", got, "hello world")
	}

	text := out.String()
	if !strings.Contains(text, "Wrote /out/payload.bin\n") {
		t.Errorf("output missing confirmation line:\n%s", text)
	}
	if !strings.Contains(text, helloDigest+"  /out/payload.bin\n") {
		t.Errorf("output missing checksum line:\n%s", text)
	}
}

func TestRun_DecodeErrorEndsSession(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	input := "append_chunk\n!!!not base64!!!\nEOF\nfinalize\nstatus\n"
	s, _, out := newTestSession(t, fs, input, false)

	err := s.Run(context.Background())
	if !errors.Is(err, assembler.ErrDecode) {
		t.Fatalf("Run() error = %v, want ErrDecode", err)
	}
	if ok, _ := afero.Exists(fs, "/out/payload.bin"); ok {
		t.Error("artifact was written for invalid input")
	}
	if strings.Contains(out.String(), "state:") {
		t.Error("commands after a failed finalize were executed")
	}
}

func TestRun_UnterminatedChunk(t *testing.T) {
	t.Parallel()

	s, buf, _ := newTestSession(t, afero.NewMemMapFs(), "append\naGVsbG8g\n", false)

	if err := s.Run(context.Background()); !errors.Is(err, chunk.ErrUnterminatedChunk) {
		t.Fatalf("Run() error = %v, want ErrUnterminatedChunk", err)
	}
	if got := buf.Status().Chunks; got != 0 {
		t.Errorf("chunks = %d, want 0 (partial chunk must be discarded)", got)
	}
}

func TestRun_EndOfInputIsQuit(t *testing.T) {
	t.Parallel()

	s, buf, _ := newTestSession(t, afero.NewMemMapFs(), "a\nAAAA\nEOF\n\n", false)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := buf.Status().Chunks; got != 1 {
		t.Errorf("chunks = %d, want 1", got)
	}
}

func TestRun_StatusResetAndUnknown(t *testing.T) {
	t.Parallel()

	input := "a\nAAAA\nEOF\nSTATUS\nreset\ns\nfrobnicate\nq\nappend\n"
	s, buf, out := newTestSession(t, afero.NewMemMapFs(), input, false)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	text := out.String()
	for _, want := range []string{
		"chunks:   1",
		"buffer emptied",
		"chunks:   0",
		`unknown command "frobnicate"`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
	if got := buf.Status().Bytes; got != 0 {
		t.Errorf("bytes = %d, want 0 after reset", got)
	}
}

func TestRun_PromptShowsHelpAndHints(t *testing.T) {
	t.Parallel()

	s, _, out := newTestSession(t, afero.NewMemMapFs(), "help\na\nAAAA\nEOF\n", true)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	text := out.String()
	if got := strings.Count(text, "Commands:"); got != 2 {
		t.Errorf("help printed %d times, want 2 (banner + help)", got)
	}
	if !strings.Contains(text, "b64drop> ") {
		t.Error("prompt not printed")
	}
	if !strings.Contains(text, "line containing only EOF") {
		t.Error("paste hint not printed")
	}
}

func TestRun_NoPromptIsQuiet(t *testing.T) {
	t.Parallel()

	s, _, out := newTestSession(t, afero.NewMemMapFs(), "a\nAAAA\nEOF\n", false)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if strings.Contains(out.String(), "b64drop> ") || strings.Contains(out.String(), "Commands:") {
		t.Errorf("unexpected prompt output:\n%s", out.String())
	}
}

func TestRun_CustomSentinel(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	buf, err := assembler.NewSession(assembler.Options{Fs: fs, Output: "/payload.bin"})
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	defer buf.Close()

	var out bytes.Buffer
	s, err := New(Options{
		In:       strings.NewReader("a\naGVsbG8g\nEOF\nd29ybGQ=\nDONE\nf\n"),
		Out:      &out,
		Buffer:   buf,
		Sentinel: "DONE",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	// "EOF" is plain data here and makes the buffer invalid base64.
	if err := s.Run(context.Background()); !errors.Is(err, assembler.ErrDecode) {
		t.Fatalf("Run() error = %v, want ErrDecode", err)
	}
}

func TestRun_Canceled(t *testing.T) {
	t.Parallel()

	s, _, _ := newTestSession(t, afero.NewMemMapFs(), "status\n", false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
}

func TestNew_RequiresBufferAndStreams(t *testing.T) {
	t.Parallel()

	if _, err := New(Options{In: strings.NewReader(""), Out: &bytes.Buffer{}}); err == nil {
		t.Error("New() without buffer should fail")
	}

	buf, err := assembler.NewSession(assembler.Options{Fs: afero.NewMemMapFs(), Output: "/p"})
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	defer buf.Close()
	if _, err := New(Options{Buffer: buf}); err == nil {
		t.Error("New() without streams should fail")
	}
}

func TestParseCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line string
		want command
	}{
		{"append", cmdAppend},
		{"APPEND_CHUNK", cmdAppend},
		{" a ", cmdAppend},
		{"finalize", cmdFinalize},
		{"F", cmdFinalize},
		{"status", cmdStatus},
		{"reset", cmdReset},
		{"?", cmdHelp},
		{"exit", cmdQuit},
		{"q", cmdQuit},
		{"aGVsbG8g", cmdUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			t.Parallel()
			if got := parseCommand(tt.line); got != tt.want {
				t.Errorf("parseCommand(%q) = %d, want %d", tt.line, got, tt.want)
			}
		})
	}
}

func TestRun_CancelDuringPaste(t *testing.T) {
	t.Parallel()

	buf, err := assembler.NewSession(assembler.Options{Fs: afero.NewMemMapFs(), Output: "/payload.bin"})
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	defer buf.Close()

	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })

	s, err := New(Options{In: pr, Out: &bytes.Buffer{}, Buffer: buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	// Half a paste: the sentinel never arrives.
	if _, err := io.WriteString(pw, "append\naGVsbG8g\n"); err != nil {
		t.Fatalf("write: %v", err)
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() still blocked after cancellation")
	}
	if got := buf.Status().Chunks; got != 0 {
		t.Errorf("chunks = %d, want 0 (interrupted chunk must be discarded)", got)
	}
}
