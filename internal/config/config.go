// SPDX-License-Identifier: MPL-2.0

package config

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/b64drop/b64drop/internal/cueutil"
	"github.com/b64drop/b64drop/internal/issue"
	"github.com/b64drop/b64drop/pkg/types"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// AppName is the application name.
	AppName = "b64drop"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment overrides, e.g. B64DROP_OUTPUT_PATH.
	EnvPrefix = "B64DROP"

	// DefaultOutputPath is written relative to the working directory.
	DefaultOutputPath = "payload.bin"

	maxConfigFileSize = 1 << 20
)

//go:embed config_schema.cue
var configSchema string

// Keys lists every configuration key in dotted form. Each one gets a viper
// default, and LoadOptions.Overrides may only name these keys.
var Keys = []string{
	"output.path",
	"output.mode",
	"chunk.sentinel",
	"chunk.separator",
	"spool.dir",
	"ui.verbose",
	"ui.prompt",
}

// defaultValues flattens cfg into the dotted keys listed in Keys.
func defaultValues(cfg *Config) map[string]any {
	return map[string]any{
		"output.path":     cfg.Output.Path.String(),
		"output.mode":     cfg.Output.Mode,
		"chunk.sentinel":  cfg.Chunk.Sentinel,
		"chunk.separator": cfg.Chunk.Separator,
		"spool.dir":       cfg.Spool.Dir.String(),
		"ui.verbose":      cfg.UI.Verbose,
		"ui.prompt":       string(cfg.UI.Prompt),
	}
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Path: DefaultOutputPath,
			Mode: types.DefaultFileMode.String(),
		},
		Chunk: ChunkConfig{
			Sentinel:  "EOF",
			Separator: "\n",
		},
		Spool: SpoolConfig{
			Dir: types.FilesystemPath(defaultSpoolDir()),
		},
		UI: UIConfig{
			Prompt: PromptAuto,
		},
	}
}

func defaultSpoolDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, AppName)
	}
	return filepath.Join(os.TempDir(), AppName)
}

// ConfigDir returns the b64drop configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// DefaultConfigPath returns the config file path inside ConfigDir.
func DefaultConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName+"."+ConfigFileExt), nil
}

// loadWithOptions layers defaults, the CUE file, the environment and the
// explicit overrides, then validates the result.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	if len(opts.EnvFiles) > 0 {
		if err := godotenv.Load(opts.EnvFiles...); err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("load environment file").
				WithResource(strings.Join(opts.EnvFiles, ", ")).
				WithSuggestion("Check that every --env-file path exists and uses KEY=VALUE lines").
				Wrap(err).
				BuildError()
		}
	}

	v := viper.New()

	values := defaultValues(DefaultConfig())
	for _, key := range Keys {
		v.SetDefault(key, values[key])
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	resolvedPath, err := resolveConfigPath(opts)
	if err != nil {
		return nil, err
	}
	if resolvedPath != "" {
		if err := loadCUEIntoViper(v, resolvedPath); err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Run 'b64drop config dump' to see a valid configuration").
				Wrap(err).
				BuildError()
		}
	}

	for key, value := range opts.Overrides {
		if !slices.Contains(Keys, key) {
			return nil, fmt.Errorf("unknown configuration key %q", key)
		}
		v.Set(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Source = resolvedPath

	if err := cfg.Validate(); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion("Output modes are octal strings without executable bits, e.g. \"0644\"").
			WithSuggestion("The chunk sentinel must be a single word such as EOF").
			Wrap(err).
			BuildError()
	}

	return &cfg, nil
}

// resolveConfigPath returns the config file to load, or "" when only
// defaults apply. An explicit path that does not exist is an error.
func resolveConfigPath(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Use 'b64drop config init' to create a default configuration").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		return opts.ConfigFilePath, nil
	}

	cfgDir := opts.ConfigDirPath
	if cfgDir == "" {
		dir, err := ConfigDir()
		if err != nil {
			return "", err
		}
		cfgDir = dir
	}

	name := ConfigFileName + "." + ConfigFileExt
	if p := filepath.Join(cfgDir, name); fileExists(p) {
		return p, nil
	}
	if fileExists(name) {
		return name, nil
	}
	return "", nil
}

// loadCUEIntoViper validates a CUE file against the #Config schema and merges
// its contents into Viper.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	configMap, err := cueutil.DecodeMap(configSchema, data, "#Config",
		cueutil.WithFilename(path),
		cueutil.WithMaxFileSize(maxConfigFileSize),
	)
	if err != nil {
		return err
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes the default config file unless one exists and
// returns its path.
func CreateDefaultConfig() (string, error) {
	cfgPath, err := DefaultConfigPath()
	if err != nil {
		return "", err
	}
	if fileExists(cfgPath) {
		return cfgPath, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(cfgPath, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return cfgPath, nil
}

// GenerateCUE generates a CUE representation of the configuration.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// b64drop configuration file\n\n")

	sb.WriteString("output: {\n")
	fmt.Fprintf(&sb, "\tpath: %q\n", cfg.Output.Path)
	fmt.Fprintf(&sb, "\tmode: %q\n", cfg.Output.Mode)
	sb.WriteString("}\n")

	sb.WriteString("\nchunk: {\n")
	fmt.Fprintf(&sb, "\tsentinel:  %q\n", cfg.Chunk.Sentinel)
	fmt.Fprintf(&sb, "\tseparator: %q\n", cfg.Chunk.Separator)
	sb.WriteString("}\n")

	sb.WriteString("\nspool: {\n")
	fmt.Fprintf(&sb, "\tdir: %q\n", cfg.Spool.Dir)
	sb.WriteString("}\n")

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	fmt.Fprintf(&sb, "\tprompt:  %q\n", cfg.UI.Prompt)
	sb.WriteString("}\n")

	return sb.String()
}

// Encode renders the configuration as "cue", "toml" or "yaml".
func Encode(cfg *Config, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", "cue":
		return []byte(GenerateCUE(cfg)), nil
	case "toml":
		return toml.Marshal(cfg)
	case "yaml", "yml":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported format %q (valid: cue, toml, yaml)", format)
	}
}
