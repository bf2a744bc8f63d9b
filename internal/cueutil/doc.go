// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates user CUE documents against an embedded schema
// definition and reports failures as "<file>: <field.path>: <message>".
package cueutil
