// SPDX-License-Identifier: MPL-2.0

// Package assembler accumulates base64 chunks in a spool file and commits the
// decoded payload to an output file.
//
// A Buffer moves between two states. While accepting, AppendChunk writes each
// chunk followed by a separator to the spool; nothing is validated. Finalize
// decodes the whole spool, writes the result next to the destination through
// a temporary file, applies the configured mode and renames it into place, so
// a failed decode never creates or truncates the destination. Finalize can be
// called again after more chunks are appended; each call overwrites the
// artifact with the decoding of the complete buffer.
package assembler
