// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/b64drop/b64drop/internal/assembler"
	"github.com/b64drop/b64drop/internal/chunk"
	"github.com/b64drop/b64drop/internal/issue"
	"github.com/b64drop/b64drop/pkg/types"
)

// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
type ExitError struct {
	Code types.ExitCode
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// exitCodeFor maps decode failures to EX_DATAERR and filesystem failures to
// EX_CANTCREAT. An interrupted run exits 130; everything else exits 1.
func exitCodeFor(err error) types.ExitCode {
	switch {
	case err == nil:
		return types.ExitSuccess
	case errors.Is(err, assembler.ErrDecode):
		return types.ExitDataErr
	case errors.Is(err, assembler.ErrFilesystem):
		return types.ExitCantCreate
	case errors.Is(err, context.Canceled):
		return types.ExitInterrupted
	default:
		return types.ExitFailure
	}
}

// issueFor returns the catalog entry explaining err, or 0 when there is none.
func issueFor(err error) issue.Id {
	var (
		fsErr *assembler.FilesystemError
		ae    *issue.ActionableError
	)
	switch {
	case errors.Is(err, assembler.ErrDecode):
		return issue.DecodeFailedId
	case errors.Is(err, chunk.ErrUnterminatedChunk):
		return issue.UnterminatedChunkId
	case errors.As(err, &fsErr):
		if strings.Contains(fsErr.Op, "spool") {
			return issue.SpoolUnavailableId
		}
		return issue.OutputNotWritableId
	case errors.As(err, &ae) && strings.HasSuffix(ae.Operation, "configuration"),
		errors.As(err, &ae) && ae.Operation == "load environment file":
		return issue.ConfigLoadFailedId
	default:
		return 0
	}
}

// fail attaches operation context and suggestions to err and wraps it in an
// ExitError with the matching exit code.
func fail(operation, resource string, err error) error {
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}

	code := exitCodeFor(err)
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		ctx := issue.NewErrorContext().
			WithOperation(operation).
			WithResource(resource).
			Wrap(err)
		for _, s := range suggestionsFor(err) {
			ctx.WithSuggestion(s)
		}
		err = ctx.BuildError()
	}
	return &ExitError{Code: code, Err: err}
}

func suggestionsFor(err error) []string {
	switch issueFor(err) {
	case issue.DecodeFailedId:
		return []string{
			"Check that every chunk was pasted completely and in order",
			"Run 'b64drop reset' and paste the chunks again",
		}
	case issue.UnterminatedChunkId:
		return []string{"End each chunk with a line containing only the sentinel (default EOF)"}
	case issue.SpoolUnavailableId:
		return []string{"Check that spool.dir exists and is writable, or set B64DROP_SPOOL_DIR"}
	case issue.OutputNotWritableId:
		return []string{
			"Check that the destination directory is writable",
			"Choose another destination with --output",
		}
	default:
		return nil
	}
}
