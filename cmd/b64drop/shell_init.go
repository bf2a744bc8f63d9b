// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/b64drop/b64drop/internal/shellinit"

	"github.com/spf13/cobra"
)

func newShellInitCommand(app *App) *cobra.Command {
	var binary string

	cmd := &cobra.Command{
		Use:   "shell-init",
		Short: "Print shell functions for append_chunk and finalize",
		Long: `Print POSIX shell functions that forward to b64drop:

  append_chunk   b64drop append
  finalize       b64drop finalize
  chunk_status   b64drop status
  reset_chunks   b64drop reset

Load them into the current shell with:

  eval "$(b64drop shell-init)"

The --config and --output flags given to shell-init are baked into the
functions.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snippet, err := shellinit.Render(shellinit.Options{
				Binary:     binary,
				ConfigPath: app.flags.configPath,
				Output:     app.flags.output,
			})
			if err != nil {
				return fail("render shell functions", binary, err)
			}
			fmt.Fprint(app.stdout, snippet)
			return nil
		},
	}
	cmd.Flags().StringVar(&binary, "binary", shellinit.DefaultBinary, "command the functions invoke")
	return cmd
}
