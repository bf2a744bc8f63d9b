// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/b64drop/b64drop/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the b64drop command tree around app. Running the
// root command without a subcommand starts an interactive session.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "b64drop",
		Short: "Reassemble a file from pasted base64 chunks",
		Long: TitleStyle.Render("b64drop") + SubtitleStyle.Render(" - reassemble a file from pasted base64 chunks") + `

b64drop moves a binary into a machine you can only reach through a
terminal. Encode the file locally, paste it in chunks, and b64drop
decodes the buffer into the destination file and prints its SHA-256
so you can compare it with the source.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Locally:  base64 -w 76 payload.bin | split -l 500
  2. Remotely: b64drop -o payload.bin
  3. Type 'append', paste a chunk, finish with a line containing EOF
  4. Type 'finalize' and compare the printed digest

` + SubtitleStyle.Render("Examples:") + `
  b64drop                         Start an interactive session
  b64drop append < part1.b64      Append a chunk to the persistent buffer
  b64drop finalize -o tool.bin    Decode the persistent buffer
  eval "$(b64drop shell-init)"    Define append_chunk and finalize functions`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd.Context(), app)
		},
	}

	rootCmd.SetIn(app.stdin)
	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.flags.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/b64drop/config.cue)")
	flags.BoolVarP(&app.flags.verbose, "verbose", "v", false, "enable debug logging and detailed errors")
	flags.StringVarP(&app.flags.output, "output", "o", "", "destination file for the decoded payload")
	flags.StringVar(&app.flags.sentinel, "sentinel", "", "line that terminates a pasted chunk (default EOF)")
	flags.StringArrayVar(&app.flags.envFiles, "env-file", nil, "dotenv file with B64DROP_* settings (repeatable)")

	rootCmd.AddCommand(newSessionCommand(app))
	rootCmd.AddCommand(newAppendCommand(app))
	rootCmd.AddCommand(newFinalizeCommand(app))
	rootCmd.AddCommand(newStatusCommand(app))
	rootCmd.AddCommand(newResetCommand(app))
	rootCmd.AddCommand(newShellInitCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute builds the production App and runs the command tree.
// This is called by main.main().
func Execute() {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		os.Exit(1)
	}

	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(app.handleError),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(1)
	}
}

// handleError prints actionable errors with their suggestions and, in
// verbose mode, the matching issue guide rendered as Markdown.
func (a *App) handleError(w io.Writer, styles fang.Styles, err error) {
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		fang.DefaultErrorHandler(w, styles, err)
		return
	}

	fmt.Fprintln(w, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, a.verbose))
	if !a.verbose {
		return
	}
	if id := issueFor(err); id != 0 {
		if guide := issue.Get(id); guide != nil {
			if rendered, rerr := guide.Render("dark"); rerr == nil {
				fmt.Fprint(w, rendered)
			}
		}
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
