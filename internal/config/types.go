// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/b64drop/b64drop/pkg/types"
)

const (
	// PromptAuto prints prompts only when stdin is a terminal.
	PromptAuto PromptMode = "auto"
	// PromptAlways prints prompts even when input is piped.
	PromptAlways PromptMode = "always"
	// PromptNever never prints prompts.
	PromptNever PromptMode = "never"

	// SpoolFileName is the persistent buffer used by the append and finalize commands.
	SpoolFileName = "buffer.b64"
)

var (
	// ErrInvalidPromptMode is returned when a PromptMode value is not recognized.
	ErrInvalidPromptMode = errors.New("invalid prompt mode")
	// ErrInvalidSentinel is returned for an empty or whitespace-containing sentinel.
	ErrInvalidSentinel = errors.New("invalid chunk sentinel")
	// ErrInvalidSeparator is returned for a separator the decoder would not skip.
	ErrInvalidSeparator = errors.New("invalid chunk separator")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// PromptMode controls when interactive prompts are printed.
	PromptMode string

	// InvalidPromptModeError is returned when a PromptMode value is not recognized.
	InvalidPromptModeError struct {
		Value PromptMode
	}

	// InvalidConfigError collects field-level validation errors.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config is the effective b64drop configuration.
	Config struct {
		Output OutputConfig `json:"output" mapstructure:"output" toml:"output" yaml:"output"`
		Chunk  ChunkConfig  `json:"chunk" mapstructure:"chunk" toml:"chunk" yaml:"chunk"`
		Spool  SpoolConfig  `json:"spool" mapstructure:"spool" toml:"spool" yaml:"spool"`
		UI     UIConfig     `json:"ui" mapstructure:"ui" toml:"ui" yaml:"ui"`

		// Source is the config file the values came from; empty when only defaults apply.
		Source string `json:"-" mapstructure:"-" toml:"-" yaml:"-"`
	}

	// OutputConfig describes the decoded artifact.
	OutputConfig struct {
		Path types.FilesystemPath `json:"path" mapstructure:"path" toml:"path" yaml:"path"`
		Mode string               `json:"mode" mapstructure:"mode" toml:"mode" yaml:"mode"`
	}

	// ChunkConfig describes how chunks are read and joined.
	ChunkConfig struct {
		Sentinel  string `json:"sentinel" mapstructure:"sentinel" toml:"sentinel" yaml:"sentinel"`
		Separator string `json:"separator" mapstructure:"separator" toml:"separator" yaml:"separator"`
	}

	// SpoolConfig locates the chunk buffer.
	SpoolConfig struct {
		Dir types.FilesystemPath `json:"dir" mapstructure:"dir" toml:"dir" yaml:"dir"`
	}

	// UIConfig holds terminal output preferences.
	UIConfig struct {
		Verbose bool       `json:"verbose" mapstructure:"verbose" toml:"verbose" yaml:"verbose"`
		Prompt  PromptMode `json:"prompt" mapstructure:"prompt" toml:"prompt" yaml:"prompt"`
	}
)

// Validate returns an error if the PromptMode is not recognized.
// The zero value is treated as PromptAuto.
func (m PromptMode) Validate() error {
	switch m {
	case "", PromptAuto, PromptAlways, PromptNever:
		return nil
	default:
		return &InvalidPromptModeError{Value: m}
	}
}

// Error implements the error interface.
func (e *InvalidPromptModeError) Error() string {
	return fmt.Sprintf("invalid prompt mode %q (valid: auto, always, never)", e.Value)
}

// Unwrap returns ErrInvalidPromptMode for errors.Is() compatibility.
func (e *InvalidPromptModeError) Unwrap() error { return ErrInvalidPromptMode }

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig plus every field error.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// FileMode parses Output.Mode; an empty mode means types.DefaultFileMode.
func (c *Config) FileMode() (types.FileMode, error) {
	if c.Output.Mode == "" {
		return types.DefaultFileMode, nil
	}
	return types.ParseFileMode(c.Output.Mode)
}

// SpoolPath returns the persistent spool file inside Spool.Dir.
func (c *Config) SpoolPath() string {
	return filepath.Join(c.Spool.Dir.String(), SpoolFileName)
}

// Validate checks every field and returns an InvalidConfigError listing all problems.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Output.Path.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("output.path: %w", err))
	}
	if _, err := c.FileMode(); err != nil {
		errs = append(errs, fmt.Errorf("output.mode: %w", err))
	}
	if c.Chunk.Sentinel == "" || strings.ContainsAny(c.Chunk.Sentinel, " \t\r\n") {
		errs = append(errs, fmt.Errorf("chunk.sentinel %q: %w", c.Chunk.Sentinel, ErrInvalidSentinel))
	}
	switch c.Chunk.Separator {
	case "", "\n", "\r\n":
	default:
		errs = append(errs, fmt.Errorf("chunk.separator %q: %w", c.Chunk.Separator, ErrInvalidSeparator))
	}
	if err := c.Spool.Dir.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("spool.dir: %w", err))
	}
	if err := c.UI.Prompt.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("ui.prompt: %w", err))
	}

	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}
