// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/b64drop/b64drop/internal/assembler"
	"github.com/b64drop/b64drop/internal/config"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"golang.org/x/term"
)

type (
	// App wires CLI services and shared dependencies. It is the composition root for
	// the CLI layer: every Cobra handler receives an App and reaches configuration,
	// the filesystem and the standard streams through it.
	App struct {
		Config     ConfigProvider
		Fs         afero.Fs
		stdin      io.Reader
		stdout     io.Writer
		stderr     io.Writer
		isTerminal func() bool

		flags   globalFlags
		verbose bool
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp.
	Dependencies struct {
		Config ConfigProvider
		Fs     afero.Fs
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
		// IsTerminal reports whether Stdin is an interactive terminal.
		IsTerminal func() bool
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// globalFlags holds the persistent flags of the root command.
	globalFlags struct {
		configPath string
		verbose    bool
		output     string
		sentinel   string
		envFiles   []string
	}

	// invocation is the resolved configuration and logger of one command run.
	invocation struct {
		cfg    *config.Config
		logger *log.Logger
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdin == nil {
		deps.Stdin = os.Stdin
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Fs == nil {
		deps.Fs = afero.NewOsFs()
	}
	if deps.IsTerminal == nil {
		deps.IsTerminal = fileIsTerminal(deps.Stdin)
	}

	return &App{
		Config:     deps.Config,
		Fs:         deps.Fs,
		stdin:      deps.Stdin,
		stdout:     deps.Stdout,
		stderr:     deps.Stderr,
		isTerminal: deps.IsTerminal,
	}, nil
}

func fileIsTerminal(r io.Reader) func() bool {
	return func() bool {
		f, ok := r.(*os.File)
		return ok && term.IsTerminal(int(f.Fd()))
	}
}

// load resolves configuration for the current command, applying flag
// overrides on top of the file and environment layers.
func (a *App) load(ctx context.Context) (*invocation, error) {
	overrides := make(map[string]any)
	if a.flags.output != "" {
		overrides["output.path"] = a.flags.output
	}
	if a.flags.sentinel != "" {
		overrides["chunk.sentinel"] = a.flags.sentinel
	}
	if a.flags.verbose {
		overrides["ui.verbose"] = true
	}

	a.verbose = a.flags.verbose
	cfg, err := a.Config.Load(ctx, config.LoadOptions{
		ConfigFilePath: a.flags.configPath,
		EnvFiles:       a.flags.envFiles,
		Overrides:      overrides,
	})
	if err != nil {
		return nil, fail("load configuration", a.flags.configPath, err)
	}
	a.verbose = cfg.UI.Verbose

	logger := log.NewWithOptions(a.stderr, log.Options{
		Prefix:          config.AppName,
		Level:           log.InfoLevel,
		ReportTimestamp: false,
	})
	if cfg.UI.Verbose {
		logger.SetLevel(log.DebugLevel)
	}
	logger.Debug("configuration loaded", "source", cfg.Source, "output", cfg.Output.Path, "spool_dir", cfg.Spool.Dir)

	return &invocation{cfg: cfg, logger: logger}, nil
}

// bufferOptions translates configuration into assembler options.
func (a *App) bufferOptions(inv *invocation) (assembler.Options, error) {
	mode, err := inv.cfg.FileMode()
	if err != nil {
		return assembler.Options{}, err
	}
	sep := inv.cfg.Chunk.Separator
	return assembler.Options{
		Fs:        a.Fs,
		SpoolPath: inv.cfg.SpoolPath(),
		SpoolDir:  inv.cfg.Spool.Dir.String(),
		Output:    inv.cfg.Output.Path,
		Mode:      mode,
		Separator: &sep,
		Logger:    inv.logger,
	}, nil
}

// openSpool attaches to the persistent spool shared by append, finalize,
// status and reset.
func (a *App) openSpool(ctx context.Context) (*invocation, *assembler.Buffer, error) {
	inv, err := a.load(ctx)
	if err != nil {
		return nil, nil, err
	}
	opts, err := a.bufferOptions(inv)
	if err != nil {
		return nil, nil, fail("open spool", inv.cfg.SpoolPath(), err)
	}
	buf, err := assembler.Open(opts)
	if err != nil {
		return nil, nil, fail("open spool", inv.cfg.SpoolPath(), err)
	}
	return inv, buf, nil
}

// promptEnabled applies ui.prompt: auto prompts only on a terminal.
func (a *App) promptEnabled(mode config.PromptMode) bool {
	switch mode {
	case config.PromptAlways:
		return true
	case config.PromptNever:
		return false
	default:
		return a.isTerminal()
	}
}
