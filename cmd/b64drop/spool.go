// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/b64drop/b64drop/internal/chunk"
	"github.com/b64drop/b64drop/internal/session"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// The commands in this file share a persistent spool under spool.dir, so a
// payload can be pasted across several shell invocations.

func newAppendCommand(app *App) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:     "append",
		Aliases: []string{"append_chunk"},
		Short:   "Append one chunk from stdin to the persistent buffer",
		Long: `Append one chunk read from stdin to the persistent buffer.

Input is read up to a line containing only the sentinel (default EOF). With
--raw the whole of stdin is appended, which suits piped input:

  b64drop append <<'EOF'
  aGVsbG8g
  EOF

  b64drop append --raw < part1.b64`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, buf, err := app.openSpool(cmd.Context())
			if err != nil {
				return err
			}
			defer buf.Close()

			r, err := chunk.NewReader(app.stdin, inv.cfg.Chunk.Sentinel)
			if err != nil {
				return fail("read chunk", "stdin", err)
			}
			var c string
			if raw {
				c, err = r.ReadAll(cmd.Context())
			} else {
				c, err = r.ReadChunk(cmd.Context())
			}
			if err != nil {
				return fail("read chunk", "stdin", err)
			}

			if err := buf.AppendChunk(c); err != nil {
				return fail("append chunk", inv.cfg.SpoolPath(), err)
			}
			st := buf.Status()
			fmt.Fprintf(app.stdout, "%s chunk %d, %s buffered\n",
				SuccessStyle.Render("appended"), st.Chunks, humanize.Bytes(uint64(st.Bytes)))
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "append all of stdin instead of stopping at the sentinel")
	return cmd
}

func newFinalizeCommand(app *App) *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "finalize",
		Short: "Decode the persistent buffer into the output file",
		Long: `Decode the persistent buffer into the output file and print its SHA-256.

The buffer is kept after a successful finalize, so more chunks can be
appended and finalize run again; the output is then overwritten with the
decoding of the whole buffer. Use --reset to empty the buffer afterwards.

Exit status is 65 when the buffer is not valid base64 and 73 when the
output cannot be written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, buf, err := app.openSpool(cmd.Context())
			if err != nil {
				return err
			}
			defer buf.Close()

			res, err := buf.Finalize(cmd.Context())
			if err != nil {
				return fail("finalize payload", inv.cfg.Output.Path.String(), err)
			}
			session.PrintResult(app.stdout, res, sessionTheme())
			inv.logger.Debug("payload written", "bytes", humanize.Bytes(uint64(res.Size)), "mode", res.Mode)

			if reset {
				if err := buf.Reset(); err != nil {
					return fail("reset buffer", inv.cfg.SpoolPath(), err)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "empty the buffer after a successful finalize")
	return cmd
}

func newStatusCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the persistent buffer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, buf, err := app.openSpool(cmd.Context())
			if err != nil {
				return err
			}
			defer buf.Close()

			st := buf.Status()
			fmt.Fprintf(app.stdout, "%s: %s\n", CmdStyle.Render("spool"), st.SpoolPath)
			fmt.Fprintf(app.stdout, "%s: %d\n", CmdStyle.Render("chunks"), st.Chunks)
			fmt.Fprintf(app.stdout, "%s: %s (%d bytes)\n", CmdStyle.Render("buffered"), humanize.Bytes(uint64(st.Bytes)), st.Bytes)
			fmt.Fprintf(app.stdout, "%s: %s\n", CmdStyle.Render("output"), st.Output)
			return nil
		},
	}
}

func newResetCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Empty the persistent buffer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, buf, err := app.openSpool(cmd.Context())
			if err != nil {
				return err
			}
			defer buf.Close()

			if err := buf.Reset(); err != nil {
				return fail("reset buffer", inv.cfg.SpoolPath(), err)
			}
			fmt.Fprintf(app.stdout, "%s %s\n", SuccessStyle.Render("✓"), "buffer emptied")
			return nil
		},
	}
}
