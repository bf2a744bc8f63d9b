// SPDX-License-Identifier: MPL-2.0

package assembler

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest is the SHA-256 fingerprint of an output artifact.
type Digest [sha256.Size]byte

// SumBytes returns the digest of b.
func SumBytes(b []byte) Digest {
	return Digest(sha256.Sum256(b))
}

// String returns the lowercase hex encoding of the digest.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// ChecksumLine formats the digest the way sha256sum does: "<hex>  <path>".
func (d Digest) ChecksumLine(path string) string {
	return d.String() + "  " + path
}
