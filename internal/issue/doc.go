// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved and
// remediation hints. The issue catalog holds longer Markdown guidance for the
// failures an operator is most likely to hit while pasting a payload; it is
// rendered with glamour in verbose mode.
package issue
