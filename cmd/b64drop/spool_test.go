// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/b64drop/b64drop/internal/assembler"
	"github.com/b64drop/b64drop/internal/chunk"
	"github.com/b64drop/b64drop/pkg/types"

	"github.com/spf13/afero"
)

const helloDigest = "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"

func requireExitCode(t *testing.T, err error, want types.ExitCode) *ExitError {
	t.Helper()
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("error = %v, want *ExitError", err)
	}
	if exitErr.Code != want {
		t.Fatalf("exit code = %d, want %d (err: %v)", exitErr.Code, want, err)
	}
	return exitErr
}

func TestAppendThenFinalize(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "aGVsbG8g\nEOF\n")
	if err := env.run("append"); err != nil {
		t.Fatalf("append error = %v", err)
	}
	if err := env.withStdin("d29ybGQ=\nEOF\n").run("append_chunk"); err != nil {
		t.Fatalf("append_chunk error = %v", err)
	}
	if !strings.Contains(env.stdout.String(), "chunk 2") {
		t.Errorf("second append did not report chunk 2:\n%s", env.stdout.String())
	}

	env.stdout.Reset()
	if err := env.run("finalize"); err != nil {
		t.Fatalf("finalize error = %v", err)
	}

	got, err := afero.ReadFile(env.fs, "/out/payload.bin")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(got) != "hello world" {
		t.Errorf("artifact = %q, want %q", got, "hello world")
	}

	want := "Wrote /out/payload.bin\n" + helloDigest + "  /out/payload.bin\n"
	if env.stdout.String() != want {
		t.Errorf("finalize output = %q, want %q", env.stdout.String(), want)
	}
}

func TestAppendThenFinalize_MultiLineChunks(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "aGVs\nbG8g\nEOF\n")
	if err := env.run("append"); err != nil {
		t.Fatalf("append error = %v", err)
	}
	if err := env.withStdin("d29y\nbGQ=\nEOF\n").run("append"); err != nil {
		t.Fatalf("append error = %v", err)
	}
	if !strings.Contains(env.stdout.String(), "chunk 2") {
		t.Errorf("second append did not report chunk 2:\n%s", env.stdout.String())
	}

	env.stdout.Reset()
	if err := env.run("status"); err != nil {
		t.Fatalf("status error = %v", err)
	}
	if !strings.Contains(env.stdout.String(), "chunks: 2") {
		t.Errorf("status miscounted multi-line chunks:\n%s", env.stdout.String())
	}

	env.stdout.Reset()
	if err := env.run("finalize"); err != nil {
		t.Fatalf("finalize error = %v", err)
	}
	got, err := afero.ReadFile(env.fs, "/out/payload.bin")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(got) != "hello world" {
		t.Errorf("artifact = %q, want %q", got, "hello world")
	}
}

func TestFinalize_KeepsBufferUnlessReset(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "aGVsbG8g\nEOF\n")
	if err := env.run("append"); err != nil {
		t.Fatalf("append error = %v", err)
	}
	if err := env.run("finalize"); err != nil {
		t.Fatalf("finalize error = %v", err)
	}

	if err := env.withStdin("d29ybGQ=\nEOF\n").run("append"); err != nil {
		t.Fatalf("append error = %v", err)
	}
	if err := env.run("finalize", "--reset"); err != nil {
		t.Fatalf("finalize --reset error = %v", err)
	}
	got, _ := afero.ReadFile(env.fs, "/out/payload.bin")
	if string(got) != "hello world" {
		t.Errorf("artifact after second finalize = %q, want %q", got, "hello world")
	}

	spool, _ := afero.ReadFile(env.fs, "/spool/buffer.b64")
	if len(spool) != 0 {
		t.Errorf("spool after --reset = %q, want empty", spool)
	}
}

func TestAppend_Raw(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "aGVsbG8g\nd29ybGQ=\n")
	if err := env.run("append", "--raw"); err != nil {
		t.Fatalf("append --raw error = %v", err)
	}
	if err := env.run("finalize"); err != nil {
		t.Fatalf("finalize error = %v", err)
	}
	got, _ := afero.ReadFile(env.fs, "/out/payload.bin")
	if string(got) != "hello world" {
		t.Errorf("artifact = %q, want %q", got, "hello world")
	}
}

func TestAppend_CustomSentinel(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "aGVsbG8g\nEND\n")
	if err := env.run("append", "--sentinel", "END"); err != nil {
		t.Fatalf("append error = %v", err)
	}
	spool, _ := afero.ReadFile(env.fs, "/spool/buffer.b64")
	if string(spool) != "aGVsbG8g\n" {
		t.Errorf("spool = %q, want %q", spool, "aGVsbG8g\n")
	}
}

func TestAppend_Unterminated(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "aGVsbG8g\n")
	err := env.run("append")
	requireExitCode(t, err, types.ExitFailure)
	if !errors.Is(err, chunk.ErrUnterminatedChunk) {
		t.Errorf("error = %v, want ErrUnterminatedChunk", err)
	}

	spool, _ := afero.ReadFile(env.fs, "/spool/buffer.b64")
	if len(spool) != 0 {
		t.Errorf("partial chunk reached the spool: %q", spool)
	}
}

func TestFinalize_DecodeError(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "not*base64\nEOF\n")
	if err := env.run("append"); err != nil {
		t.Fatalf("append error = %v", err)
	}

	err := env.run("finalize")
	requireExitCode(t, err, types.ExitDataErr)
	if !errors.Is(err, assembler.ErrDecode) {
		t.Errorf("error = %v, want ErrDecode", err)
	}
	if ok, _ := afero.Exists(env.fs, "/out/payload.bin"); ok {
		t.Error("artifact written for invalid base64")
	}
	if strings.Contains(env.stdout.String(), "Wrote") {
		t.Errorf("confirmation printed for a failed finalize:\n%s", env.stdout.String())
	}
}

func TestFinalize_FilesystemError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := testConfig()
	cfg.Spool.Dir = types.FilesystemPath(filepath.Join(dir, "spool"))
	cfg.Output.Path = types.FilesystemPath(filepath.Join(blocker, "sub", "payload.bin"))
	env := newTestEnvWithFs(t, "aGVsbG8g\nEOF\n", afero.NewOsFs(), cfg)

	if err := env.run("append"); err != nil {
		t.Fatalf("append error = %v", err)
	}
	err := env.run("finalize")
	requireExitCode(t, err, types.ExitCantCreate)
	if !errors.Is(err, assembler.ErrFilesystem) {
		t.Errorf("error = %v, want ErrFilesystem", err)
	}
}

func TestStatusAndReset(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "AAAA\nEOF\n")
	if err := env.run("append"); err != nil {
		t.Fatalf("append error = %v", err)
	}

	env.stdout.Reset()
	if err := env.run("status"); err != nil {
		t.Fatalf("status error = %v", err)
	}
	for _, want := range []string{"spool: /spool/buffer.b64", "chunks: 1", "(5 bytes)", "output: /out/payload.bin"} {
		if !strings.Contains(env.stdout.String(), want) {
			t.Errorf("status output missing %q:\n%s", want, env.stdout.String())
		}
	}

	if err := env.run("reset"); err != nil {
		t.Fatalf("reset error = %v", err)
	}
	env.stdout.Reset()
	if err := env.run("status"); err != nil {
		t.Fatalf("status error = %v", err)
	}
	if !strings.Contains(env.stdout.String(), "chunks: 0") {
		t.Errorf("status after reset:\n%s", env.stdout.String())
	}
}
