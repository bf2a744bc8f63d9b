// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for b64drop.
//
// Command handlers never call os.Exit. Failures are returned as *ExitError
// carrying the process exit code, and Execute maps them to os.Exit once
// fang has printed the error.
package cmd
