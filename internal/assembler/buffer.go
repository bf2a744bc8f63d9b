// SPDX-License-Identifier: MPL-2.0

package assembler

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/b64drop/b64drop/pkg/types"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

const (
	// DefaultSeparator is appended after every chunk.
	DefaultSeparator = "\n"

	spoolFileMode   = 0o600
	spoolDirMode    = 0o700
	outputDirMode   = 0o755
	sessionSpoolPat = "b64drop-*.spool"
	countSuffix     = ".count"
)

type (
	// Options configures a Buffer.
	Options struct {
		// Fs is the filesystem holding both the spool and the output. Defaults to the OS filesystem.
		Fs afero.Fs
		// SpoolPath is the spool file used by Open. Ignored by NewSession.
		SpoolPath string
		// SpoolDir is the directory NewSession creates its temporary spool in.
		// Empty means the system temp directory.
		SpoolDir string
		// Output is the destination of the decoded payload.
		Output types.FilesystemPath
		// Mode is applied to the output after it is written. Zero means types.DefaultFileMode.
		Mode types.FileMode
		// Separator is appended after each chunk. Must be empty, "\n" or "\r\n".
		Separator *string
		// Logger receives debug events. Nil disables logging.
		Logger *log.Logger
	}

	// Buffer is an append-only base64 accumulator backed by a spool file.
	Buffer struct {
		fs        afero.Fs
		spool     string
		countPath string
		owned     bool
		closed    bool
		output    types.FilesystemPath
		mode      types.FileMode
		sep       string
		logger    *log.Logger
		chunks    int
		size      int64
		finalizes int
		state     State
	}

	// Result describes a committed artifact.
	Result struct {
		Path   string
		Digest Digest
		Size   int64
		Mode   types.FileMode
	}
)

// Open attaches to the spool at opts.SpoolPath, creating it when missing.
// The chunk count is kept in a sidecar file next to the spool, so a spool
// filled by earlier processes reports the same count and can be finalized
// later. Chunks may themselves contain the separator.
func Open(opts Options) (*Buffer, error) {
	if strings.TrimSpace(opts.SpoolPath) == "" {
		return nil, errors.New("spool path is required")
	}
	b, err := newBuffer(opts)
	if err != nil {
		return nil, err
	}
	b.spool = filepath.Clean(opts.SpoolPath)
	b.countPath = b.spool + countSuffix

	if err := b.fs.MkdirAll(filepath.Dir(b.spool), spoolDirMode); err != nil {
		return nil, &FilesystemError{Op: "create spool directory", Path: filepath.Dir(b.spool), Err: err}
	}
	f, err := b.fs.OpenFile(b.spool, os.O_RDWR|os.O_CREATE, spoolFileMode)
	if err != nil {
		return nil, &FilesystemError{Op: "open spool", Path: b.spool, Err: err}
	}
	content, err := io.ReadAll(f)
	_ = f.Close()
	if err != nil {
		return nil, &FilesystemError{Op: "read spool", Path: b.spool, Err: err}
	}

	b.size = int64(len(content))
	b.chunks = b.loadCount()
	b.logger.Debug("spool opened", "path", b.spool, "bytes", b.size, "chunks", b.chunks)
	return b, nil
}

// NewSession creates a Buffer on a fresh temporary spool owned by the Buffer.
// Close removes the spool.
func NewSession(opts Options) (*Buffer, error) {
	b, err := newBuffer(opts)
	if err != nil {
		return nil, err
	}
	if opts.SpoolDir != "" {
		if err := b.fs.MkdirAll(opts.SpoolDir, spoolDirMode); err != nil {
			return nil, &FilesystemError{Op: "create spool directory", Path: opts.SpoolDir, Err: err}
		}
	}
	f, err := afero.TempFile(b.fs, opts.SpoolDir, sessionSpoolPat)
	if err != nil {
		return nil, &FilesystemError{Op: "create spool", Path: opts.SpoolDir, Err: err}
	}
	b.spool = f.Name()
	b.owned = true
	if err := f.Close(); err != nil {
		return nil, &FilesystemError{Op: "create spool", Path: b.spool, Err: err}
	}
	b.logger.Debug("session spool created", "path", b.spool)
	return b, nil
}

func newBuffer(opts Options) (*Buffer, error) {
	if err := opts.Output.Validate(); err != nil {
		return nil, fmt.Errorf("output: %w", err)
	}
	mode := opts.Mode
	if mode == 0 {
		mode = types.DefaultFileMode
	}
	if err := mode.Validate(); err != nil {
		return nil, err
	}
	sep := DefaultSeparator
	if opts.Separator != nil {
		sep = *opts.Separator
	}
	if err := ValidateSeparator(sep); err != nil {
		return nil, err
	}
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Buffer{
		fs:     fs,
		output: opts.Output.Clean(),
		mode:   mode,
		sep:    sep,
		logger: logger,
		state:  StateAccepting,
	}, nil
}

// loadCount reads the persisted chunk count. A missing or unreadable sidecar
// on a non-empty spool counts as a single chunk.
func (b *Buffer) loadCount() int {
	if b.size == 0 {
		return 0
	}
	raw, err := afero.ReadFile(b.fs, b.countPath)
	if err == nil {
		if n, convErr := strconv.Atoi(strings.TrimSpace(string(raw))); convErr == nil && n > 0 {
			return n
		}
	}
	b.logger.Debug("chunk count unavailable, assuming one chunk", "path", b.countPath, "err", err)
	return 1
}

// storeCount persists n for later Open calls. Session buffers keep no sidecar.
func (b *Buffer) storeCount(n int) error {
	if b.countPath == "" {
		return nil
	}
	if err := afero.WriteFile(b.fs, b.countPath, []byte(strconv.Itoa(n)+"\n"), spoolFileMode); err != nil {
		return &FilesystemError{Op: "record chunk count", Path: b.countPath, Err: err}
	}
	return nil
}

// ValidateSeparator accepts only separators the base64 decoder skips.
func ValidateSeparator(sep string) error {
	switch sep {
	case "", "\n", "\r\n":
		return nil
	default:
		return fmt.Errorf("unsupported chunk separator %q: must be empty, \\n or \\r\\n", sep)
	}
}

// AppendChunk appends chunk and the separator to the spool. The chunk is not
// validated; bad base64 surfaces at Finalize.
func (b *Buffer) AppendChunk(chunk string) error {
	if b.closed {
		return ErrClosed
	}
	f, err := b.fs.OpenFile(b.spool, os.O_WRONLY|os.O_APPEND|os.O_CREATE, spoolFileMode)
	if err != nil {
		return &FilesystemError{Op: "open spool", Path: b.spool, Err: err}
	}
	n, err := io.WriteString(f, chunk+b.sep)
	closeErr := f.Close()
	b.size += int64(n)
	if err == nil {
		err = closeErr
	}
	if err != nil {
		return &FilesystemError{Op: "append to spool", Path: b.spool, Err: err}
	}

	b.chunks++
	b.state = StateAccepting
	if err := b.storeCount(b.chunks); err != nil {
		return err
	}
	b.logger.Debug("chunk appended", "chunk", b.chunks, "chunk_bytes", len(chunk), "buffer_bytes", b.size)
	return nil
}

// Finalize decodes the whole buffer and commits it to the output path.
// On a DecodeError nothing is written. The buffer is kept, so more chunks can
// be appended and Finalize called again.
func (b *Buffer) Finalize(ctx context.Context) (Result, error) {
	if b.closed {
		return Result{}, ErrClosed
	}
	out := b.output.String()
	b.logger.Debug("finalize started", "output", out, "buffer_bytes", b.size)

	src, err := afero.ReadFile(b.fs, b.spool)
	if err != nil {
		return Result{}, &FilesystemError{Op: "read spool", Path: b.spool, Err: err}
	}
	decoded := make([]byte, base64.StdEncoding.DecodedLen(len(src)))
	n, err := base64.StdEncoding.Decode(decoded, src)
	if err != nil {
		return Result{}, newDecodeError(err)
	}
	decoded = decoded[:n]

	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("finalize canceled: %w", err)
	}

	digest, err := b.commit(ctx, decoded)
	if err != nil {
		return Result{}, err
	}

	b.finalizes++
	b.state = StateFinalized
	res := Result{Path: out, Digest: digest, Size: int64(len(decoded)), Mode: b.mode}
	b.logger.Debug("finalize finished", "output", out, "bytes", res.Size, "sha256", digest.String())
	return res, nil
}

// commit writes data to a temporary sibling of the output, applies the mode
// and renames it over the destination.
func (b *Buffer) commit(ctx context.Context, data []byte) (digest Digest, err error) {
	out := b.output.String()
	dir := b.output.Dir().String()

	if err := b.fs.MkdirAll(dir, outputDirMode); err != nil {
		return digest, &FilesystemError{Op: "create directory", Path: dir, Err: err}
	}

	tmp, err := afero.TempFile(b.fs, dir, "."+filepath.Base(out)+".*.tmp")
	if err != nil {
		return digest, &FilesystemError{Op: "create", Path: out, Err: err}
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = b.fs.Remove(tmpName)
		}
	}()

	h := sha256.New()
	if _, err = io.MultiWriter(tmp, h).Write(data); err != nil {
		_ = tmp.Close()
		return digest, &FilesystemError{Op: "write", Path: out, Err: err}
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return digest, &FilesystemError{Op: "sync", Path: out, Err: err}
	}
	if err = tmp.Close(); err != nil {
		return digest, &FilesystemError{Op: "write", Path: out, Err: err}
	}
	if err = b.fs.Chmod(tmpName, b.mode.Perm()); err != nil {
		return digest, &FilesystemError{Op: "chmod", Path: out, Err: err}
	}
	if err = ctx.Err(); err != nil {
		return digest, fmt.Errorf("finalize canceled: %w", err)
	}
	if err = b.fs.Rename(tmpName, out); err != nil {
		return digest, &FilesystemError{Op: "rename", Path: out, Err: err}
	}

	copy(digest[:], h.Sum(nil))
	return digest, nil
}

// Reset empties the buffer. The output artifact, if any, is left alone.
func (b *Buffer) Reset() error {
	if b.closed {
		return ErrClosed
	}
	f, err := b.fs.OpenFile(b.spool, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, spoolFileMode)
	if err != nil {
		return &FilesystemError{Op: "truncate spool", Path: b.spool, Err: err}
	}
	if err := f.Close(); err != nil {
		return &FilesystemError{Op: "truncate spool", Path: b.spool, Err: err}
	}
	b.chunks = 0
	b.size = 0
	b.state = StateAccepting
	if err := b.storeCount(0); err != nil {
		return err
	}
	b.logger.Debug("buffer reset", "path", b.spool)
	return nil
}

// Status returns a snapshot of the buffer.
func (b *Buffer) Status() Status {
	return Status{
		State:     b.state,
		Chunks:    b.chunks,
		Bytes:     b.size,
		Finalizes: b.finalizes,
		SpoolPath: b.spool,
		Output:    b.output.String(),
	}
}

// Output returns the destination path.
func (b *Buffer) Output() string { return b.output.String() }

// Close releases the buffer. A spool created by NewSession is removed; a
// spool attached with Open is kept. Close is idempotent.
func (b *Buffer) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	if !b.owned {
		return nil
	}
	if err := b.fs.Remove(b.spool); err != nil && !os.IsNotExist(err) {
		return &FilesystemError{Op: "remove spool", Path: b.spool, Err: err}
	}
	b.logger.Debug("session spool removed", "path", b.spool)
	return nil
}

