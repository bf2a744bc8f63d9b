// SPDX-License-Identifier: MPL-2.0

// Package shellinit renders the shell functions that expose the paste
// workflow as plain shell commands: append_chunk and finalize.
package shellinit

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

const (
	// DefaultBinary is the command the generated functions invoke.
	DefaultBinary = "b64drop"

	appendFunc   = "append_chunk"
	finalizeFunc = "finalize"
	statusFunc   = "chunk_status"
	resetFunc    = "reset_chunks"
)

// ErrEmptyBinary is returned when Options.Binary is blank.
var ErrEmptyBinary = errors.New("shell-init binary must not be empty")

// Options controls the generated snippet.
type Options struct {
	// Binary is the b64drop executable; empty means DefaultBinary.
	Binary string
	// ConfigPath, when set, is passed as --config to every call.
	ConfigPath string
	// Output, when set, is passed as --output to every call.
	Output string
}

// FunctionNames lists the functions Render defines, in order.
func FunctionNames() []string {
	return []string{appendFunc, finalizeFunc, statusFunc, resetFunc}
}

// Render returns a POSIX shell snippet suitable for eval. Every argument
// is shell-quoted and the result is parsed and reprinted, so the snippet is
// always valid POSIX shell.
func Render(opts Options) (string, error) {
	binary := opts.Binary
	if binary == "" {
		binary = DefaultBinary
	}
	if strings.TrimSpace(binary) == "" {
		return "", ErrEmptyBinary
	}

	prefix, err := quoteAll(binary)
	if err != nil {
		return "", err
	}
	if opts.ConfigPath != "" {
		q, err := quoteAll("--config", opts.ConfigPath)
		if err != nil {
			return "", err
		}
		prefix += " " + q
	}
	if opts.Output != "" {
		q, err := quoteAll("--output", opts.Output)
		if err != nil {
			return "", err
		}
		prefix += " " + q
	}

	var sb strings.Builder
	sb.WriteString("# b64drop shell integration\n")
	sb.WriteString("# usage: eval \"$(b64drop shell-init)\"\n")
	writeFunc(&sb, appendFunc, prefix, "append")
	writeFunc(&sb, finalizeFunc, prefix, "finalize")
	writeFunc(&sb, statusFunc, prefix, "status")
	writeFunc(&sb, resetFunc, prefix, "reset")

	file, err := syntax.NewParser(syntax.KeepComments(true), syntax.Variant(syntax.LangPOSIX)).
		Parse(strings.NewReader(sb.String()), "shell-init")
	if err != nil {
		return "", fmt.Errorf("generated shell snippet is invalid: %w", err)
	}

	var out bytes.Buffer
	if err := syntax.NewPrinter().Print(&out, file); err != nil {
		return "", fmt.Errorf("print shell snippet: %w", err)
	}
	return out.String(), nil
}

func writeFunc(sb *strings.Builder, name, prefix, subcommand string) {
	fmt.Fprintf(sb, "\n%s() {\n\t%s %s \"$@\"\n}\n", name, prefix, subcommand)
}

func quoteAll(words ...string) (string, error) {
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		q, err := syntax.Quote(w, syntax.LangPOSIX)
		if err != nil {
			return "", fmt.Errorf("cannot quote %q for POSIX shell: %w", w, err)
		}
		quoted = append(quoted, q)
	}
	return strings.Join(quoted, " "), nil
}
