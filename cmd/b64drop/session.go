// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"

	"github.com/b64drop/b64drop/internal/assembler"
	"github.com/b64drop/b64drop/internal/session"

	"github.com/spf13/cobra"
)

func newSessionCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Start an interactive paste session (default)",
		Long: `Start an interactive paste session.

The session buffers chunks in a private spool file that is removed when the
session ends. Type 'help' inside the session for the list of commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd.Context(), app)
		},
	}
}

func runSession(ctx context.Context, app *App) error {
	inv, err := app.load(ctx)
	if err != nil {
		return err
	}

	opts, err := app.bufferOptions(inv)
	if err != nil {
		return fail("start session", inv.cfg.Output.Path.String(), err)
	}
	buf, err := assembler.NewSession(opts)
	if err != nil {
		return fail("start session", inv.cfg.Spool.Dir.String(), err)
	}
	defer func() {
		if cerr := buf.Close(); cerr != nil {
			inv.logger.Warn("failed to remove session spool", "error", cerr)
		}
	}()

	s, err := session.New(session.Options{
		In:       app.stdin,
		Out:      app.stdout,
		Buffer:   buf,
		Sentinel: inv.cfg.Chunk.Sentinel,
		Prompt:   app.promptEnabled(inv.cfg.UI.Prompt),
		Theme:    sessionTheme(),
		Logger:   inv.logger,
	})
	if err != nil {
		return fail("start session", "", err)
	}

	if err := s.Run(ctx); err != nil {
		return fail("run session", inv.cfg.Output.Path.String(), err)
	}
	return nil
}
