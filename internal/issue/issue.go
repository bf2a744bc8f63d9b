// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
)

const (
	DecodeFailedId Id = iota + 1
	OutputNotWritableId
	UnterminatedChunkId
	SpoolUnavailableId
	ConfigLoadFailedId
)

type (
	// Id identifies a catalog entry. The zero value means no entry.
	Id int

	// MarkdownMsg is guidance text rendered with glamour.
	MarkdownMsg string

	// Issue is a catalog entry with Markdown guidance for one failure class.
	Issue struct {
		id    Id
		mdMsg MarkdownMsg
	}
)

// Id returns the entry identifier.
func (i *Issue) Id() Id {
	return i.id
}

// MarkdownMsg returns the unrendered guidance.
func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

// Render renders the Markdown with the given glamour style ("dark", "light", "notty", ...).
func (i *Issue) Render(stylePath string) (string, error) {
	return render(strings.TrimSpace(string(i.mdMsg))+"\n", stylePath)
}

var (
	render = glamour.Render

	decodeFailedIssue = &Issue{
		id: DecodeFailedId,
		mdMsg: `
# The pasted payload is not valid base64

Nothing was written. The buffer is kept until you reset it or leave the session.

## Common causes
- A chunk was cut mid-line or pasted twice
- The sender wrapped the text with a prompt, quotes or a shell heredoc marker
- Padding (` + "`=`" + `) appears before the last chunk

## Things you can try
- Check the byte position in the error, it points at the first bad character
- Start over with a fresh buffer:
~~~
$ b64drop reset
~~~
- On the sending side, encode without line noise:
~~~
$ base64 -w 0 payload.bin
~~~`,
	}

	outputNotWritableIssue = &Issue{
		id: OutputNotWritableId,
		mdMsg: `
# The output file could not be written

The decoded payload is fine, but the destination could not be created.

## Things you can try
- Check that every parent of the destination is a directory you can write to
- Check free disk space
- Pick another destination:
~~~
$ b64drop finalize --output /tmp/payload.bin
~~~`,
	}

	unterminatedChunkIssue = &Issue{
		id: UnterminatedChunkId,
		mdMsg: `
# The chunk was never terminated

Input ended before the sentinel line, so the partial chunk was discarded.

## Things you can try
- End every chunk with the sentinel on its own line (default ` + "`EOF`" + `)
- Use ` + "`--raw`" + ` to append piped input without a sentinel:
~~~
$ base64 payload.bin | b64drop append --raw
~~~`,
	}

	spoolUnavailableIssue = &Issue{
		id: SpoolUnavailableId,
		mdMsg: `
# The chunk buffer is unavailable

The spool file that holds pasted chunks could not be opened or written.

## Things you can try
- Check the ` + "`spool.dir`" + ` setting:
~~~
$ b64drop config show
~~~
- Point the spool at a writable directory:
~~~
$ B64DROP_SPOOL_DIR=/tmp/b64drop b64drop append
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration

The configuration file contains syntax errors or invalid values.

## Things you can try
- Print the file location and the effective values:
~~~
$ b64drop config path
$ b64drop config show
~~~
- Compare with a freshly generated default:
~~~
$ b64drop config dump
~~~`,
	}

	issues = map[Id]*Issue{
		decodeFailedIssue.Id():      decodeFailedIssue,
		outputNotWritableIssue.Id(): outputNotWritableIssue,
		unterminatedChunkIssue.Id(): unterminatedChunkIssue,
		spoolUnavailableIssue.Id():  spoolUnavailableIssue,
		configLoadFailedIssue.Id():  configLoadFailedIssue,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	values := maps.Values(issues)
	slices.SortFunc(values, func(a, b *Issue) int { return cmp.Compare(a.id, b.id) })
	return values
}

// Get returns the catalog entry for id, or nil when the catalog has none.
func Get(id Id) *Issue {
	return issues[id]
}
