// SPDX-License-Identifier: MPL-2.0

// Package types holds small validated value types shared between the CLI and
// the internal packages: process exit codes, filesystem paths and file modes.
package types
