// SPDX-License-Identifier: MPL-2.0

// Package config handles b64drop configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/b64drop/config.cue (or the XDG/platform
// equivalent), falling back to ./config.cue. Values are layered in this order,
// later layers winning: built-in defaults, the CUE file (validated against the
// embedded #Config schema), B64DROP_* environment variables (optionally seeded
// from dotenv files) and explicit overrides supplied by CLI flags.
package config
