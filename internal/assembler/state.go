// SPDX-License-Identifier: MPL-2.0

package assembler

const (
	// StateAccepting means chunks have been appended since the last finalize.
	StateAccepting State = iota
	// StateFinalized means the buffer was committed and nothing was appended since.
	StateFinalized
)

type (
	// State is the lifecycle position of a Buffer.
	State int

	// Status is a point-in-time snapshot of a Buffer.
	Status struct {
		State     State
		Chunks    int
		Bytes     int64
		Finalizes int
		SpoolPath string
		Output    string
	}
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateAccepting:
		return "accepting"
	case StateFinalized:
		return "finalized"
	default:
		return "unknown"
	}
}
