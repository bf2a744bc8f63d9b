// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/b64drop/b64drop/internal/config"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `b64drop config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage b64drop configuration",
		Long: `Manage b64drop configuration.

Configuration is stored in:
  - Linux: ~/.config/b64drop/config.cue
  - macOS: ~/Library/Application Support/b64drop/config.cue
  - Windows: %APPDATA%\b64drop\config.cue

A config.cue in the working directory is used when none exists there.
Every key can be overridden with a B64DROP_* environment variable, for
example B64DROP_OUTPUT_PATH or B64DROP_CHUNK_SENTINEL.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.CreateDefaultConfig()
			if err != nil {
				return fail("create configuration", "", err)
			}
			fmt.Fprintf(app.stdout, "%s Configuration at %s\n", SuccessStyle.Render("✓"), path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := config.ConfigDir()
			if err != nil {
				return fail("locate configuration", "", err)
			}
			path, err := config.DefaultConfigPath()
			if err != nil {
				return fail("locate configuration", dir, err)
			}
			fmt.Fprintf(app.stdout, "Config directory: %s\n", dir)
			fmt.Fprintf(app.stdout, "Config file: %s\n", path)
			return nil
		},
	})

	var format string
	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := app.load(cmd.Context())
			if err != nil {
				return err
			}
			out, err := config.Encode(inv.cfg, format)
			if err != nil {
				return fail("encode configuration", format, err)
			}
			_, err = app.stdout.Write(out)
			return err
		},
	}
	dumpCmd.Flags().StringVar(&format, "format", "cue", "output format: cue, toml or yaml")
	cfgCmd.AddCommand(dumpCmd)

	return cfgCmd
}

func showConfig(ctx context.Context, app *App) error {
	inv, err := app.load(ctx)
	if err != nil {
		return err
	}
	cfg := inv.cfg

	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(app.stdout, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(app.stdout)

	if cfg.Source != "" {
		fmt.Fprintf(app.stdout, "%s: %s\n", keyStyle.Render("Config file"), cfg.Source)
	} else {
		fmt.Fprintf(app.stdout, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(app.stdout)

	fmt.Fprintf(app.stdout, "%s:\n", keyStyle.Render("output"))
	fmt.Fprintf(app.stdout, "  path: %s\n", valueStyle.Render(cfg.Output.Path.String()))
	fmt.Fprintf(app.stdout, "  mode: %s\n", valueStyle.Render(cfg.Output.Mode))

	fmt.Fprintln(app.stdout)
	fmt.Fprintf(app.stdout, "%s:\n", keyStyle.Render("chunk"))
	fmt.Fprintf(app.stdout, "  sentinel: %s\n", valueStyle.Render(cfg.Chunk.Sentinel))
	fmt.Fprintf(app.stdout, "  separator: %s\n", valueStyle.Render(fmt.Sprintf("%q", cfg.Chunk.Separator)))

	fmt.Fprintln(app.stdout)
	fmt.Fprintf(app.stdout, "%s:\n", keyStyle.Render("spool"))
	fmt.Fprintf(app.stdout, "  dir: %s\n", valueStyle.Render(cfg.Spool.Dir.String()))

	fmt.Fprintln(app.stdout)
	fmt.Fprintf(app.stdout, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(app.stdout, "  verbose: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.UI.Verbose)))
	fmt.Fprintf(app.stdout, "  prompt: %s\n", valueStyle.Render(string(cfg.UI.Prompt)))

	return nil
}
