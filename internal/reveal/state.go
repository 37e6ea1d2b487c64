// Package reveal reconciles a random draw with the belt animation that reveals it.
//
// A Sequencer fixes the authoritative Pick before any layout is known, plans a
// cubic ease-out motion that lands the drawn item on the viewport centre, and
// after the motion ends validates that the slot measured at the centre maps
// back to the drawn index. Measurement never decides the outcome.
package reveal

import (
	"errors"
	"fmt"
)

// State is the phase of the current spin.
type State int

const (
	Idle State = iota
	Spinning
	Settling
	Revealed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Spinning:
		return "spinning"
	case Settling:
		return "settling"
	case Revealed:
		return "revealed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// MarshalText renders the state by name in JSON payloads.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a state name.
func (s *State) UnmarshalText(text []byte) error {
	for _, candidate := range []State{Idle, Spinning, Settling, Revealed} {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown spin state %q", text)
}

// BeltCopies is how many times the pool is repeated on the belt. The drawn item
// is always landed on in the middle copy.
const BeltCopies = 3

var (
	// ErrInvalidState is returned when an operation does not apply to the state
	// the spin is in, e.g. settling a spin that is still moving.
	ErrInvalidState = errors.New("operation not valid in the current spin state")

	// ErrInvalidLayout is returned for non-positive item or viewport widths.
	ErrInvalidLayout = errors.New("item and viewport widths must be positive")
)
