// Package agent defines the conversational turn-taking state that drives the
// bar visualizer.
package agent

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownState is returned when a state name cannot be parsed.
var ErrUnknownState = errors.New("unknown agent state")

// State says whose turn it is in a conversation.
type State int

// Agent states, in the order the conversational subsystem usually moves through them.
const (
	Idle State = iota
	Initializing
	Listening
	Thinking
	Speaking
)

// States lists every State.
var States = []State{Idle, Initializing, Listening, Thinking, Speaking}

// String returns the lower-case name of the state. Out of range values report
// as idle, which is also how the rest of the package treats them.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Initializing:
		return "initializing"
	case Listening:
		return "listening"
	case Thinking:
		return "thinking"
	case Speaking:
		return "speaking"
	default:
		return "idle"
	}
}

// Valid reports whether s is one of the defined states.
func (s State) Valid() bool {
	return s >= Idle && s <= Speaking
}

// ParseState is the inverse of String. Matching ignores case and surrounding space.
func ParseState(name string) (State, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, s := range States {
		if s.String() == n {
			return s, nil
		}
	}
	return Idle, fmt.Errorf("%w: %q", ErrUnknownState, name)
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(text []byte) error {
	st, err := ParseState(string(text))
	if err != nil {
		return err
	}
	*s = st
	return nil
}
