// SPDX-License-Identifier: MPL-2.0

package session

import "strings"

const (
	cmdUnknown command = iota
	cmdAppend
	cmdFinalize
	cmdStatus
	cmdReset
	cmdHelp
	cmdQuit
)

type command int

var commandNames = map[string]command{
	"append":       cmdAppend,
	"append_chunk": cmdAppend,
	"a":            cmdAppend,
	"finalize":     cmdFinalize,
	"f":            cmdFinalize,
	"status":       cmdStatus,
	"s":            cmdStatus,
	"reset":        cmdReset,
	"help":         cmdHelp,
	"?":            cmdHelp,
	"quit":         cmdQuit,
	"exit":         cmdQuit,
	"q":            cmdQuit,
}

func parseCommand(line string) command {
	if c, ok := commandNames[strings.ToLower(strings.TrimSpace(line))]; ok {
		return c
	}
	return cmdUnknown
}

const helpText = `Commands:
  append    (a)   paste one chunk, then a line containing only %[1]s
  finalize  (f)   decode the buffer into %[2]s and print its sha256
  status    (s)   show buffered chunks and bytes
  reset           empty the buffer
  help      (?)   show this help
  quit      (q)   leave the session (the buffer is discarded)
`
