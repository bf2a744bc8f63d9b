// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"strings"
	"testing"

	"github.com/b64drop/b64drop/internal/config"
	"github.com/b64drop/b64drop/pkg/types"

	"github.com/spf13/afero"
)

func TestSession_DefaultCommand(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "append\naGVsbG8g\nEOF\nappend\nd29ybGQ=\nEOF\nfinalize\nquit\n")
	if err := env.run(); err != nil {
		t.Fatalf("root command error = %v", err)
	}

	got, err := afero.ReadFile(env.fs, "/out/payload.bin")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(got) != "hello world" {
		t.Errorf("artifact = %q, want %q", got, "hello world")
	}
	if !strings.Contains(env.stdout.String(), helloDigest+"  /out/payload.bin") {
		t.Errorf("checksum line missing:\n%s", env.stdout.String())
	}

	// The session spool is private and removed on exit.
	entries, _ := afero.ReadDir(env.fs, "/spool")
	if len(entries) != 0 {
		t.Errorf("session spool left behind: %d entries", len(entries))
	}
}

func TestSession_DecodeErrorExitCode(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "a\n%%%%\nEOF\nf\n")
	requireExitCode(t, env.run("session"), types.ExitDataErr)

	if ok, _ := afero.Exists(env.fs, "/out/payload.bin"); ok {
		t.Error("artifact written for invalid base64")
	}
}

func TestSession_PromptAlways(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.UI.Prompt = config.PromptAlways
	env := newTestEnvWithFs(t, "q\n", afero.NewMemMapFs(), cfg)

	if err := env.run("session"); err != nil {
		t.Fatalf("session error = %v", err)
	}
	if !strings.Contains(env.stdout.String(), "b64drop> ") {
		t.Errorf("prompt missing:\n%s", env.stdout.String())
	}
}

func TestSession_PromptAutoOffWhenPiped(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.UI.Prompt = config.PromptAuto
	env := newTestEnvWithFs(t, "q\n", afero.NewMemMapFs(), cfg)

	if err := env.run("session"); err != nil {
		t.Fatalf("session error = %v", err)
	}
	if env.stdout.Len() != 0 {
		t.Errorf("piped session printed %q, want nothing", env.stdout.String())
	}
}
