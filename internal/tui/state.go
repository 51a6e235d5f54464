package tui

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned by Transition for an event the state does
// not accept.
var ErrInvalidTransition = errors.New("invalid state transition")

// State is the controller state. Every enabled/disabled affordance is derived
// from it.
type State int

const (
	StateIdle State = iota
	StateFetching
	StateReady
	StateDownloading
	StatePlaying
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateReady:
		return "ready"
	case StateDownloading:
		return "downloading"
	case StatePlaying:
		return "playing"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Event drives state transitions.
type Event int

const (
	EventStart Event = iota
	EventFetched
	EventFetchFailed
	EventDownload
	EventDownloaded
	EventPlay
	EventStop
)

func (e Event) String() string {
	switch e {
	case EventStart:
		return "start"
	case EventFetched:
		return "fetched"
	case EventFetchFailed:
		return "fetch failed"
	case EventDownload:
		return "download"
	case EventDownloaded:
		return "downloaded"
	case EventPlay:
		return "play"
	case EventStop:
		return "stop"
	}
	return fmt.Sprintf("Event(%d)", int(e))
}

var transitions = map[State]map[Event]State{
	StateIdle: {
		EventStart: StateFetching,
	},
	StateFetching: {
		EventFetched:     StateReady,
		EventFetchFailed: StateIdle,
	},
	StateReady: {
		EventStart:    StateFetching,
		EventDownload: StateDownloading,
		EventPlay:     StatePlaying,
	},
	StateDownloading: {
		EventDownloaded: StateReady,
	},
	StatePlaying: {
		EventDownload: StateDownloading,
		EventPlay:     StatePlaying,
		EventStop:     StateReady,
	},
}

// Transition returns the state reached from s on e.
func Transition(s State, e Event) (State, error) {
	next, ok := transitions[s][e]
	if !ok {
		return s, fmt.Errorf("%w: %s while %s", ErrInvalidTransition, e, s)
	}
	return next, nil
}

// Action is a user affordance that may be enabled or disabled.
type Action int

const (
	// ActionSubmit starts a catalog fetch.
	ActionSubmit Action = iota
	// ActionEditFields covers the login form and the search field.
	ActionEditFields
	// ActionSave exports the track list.
	ActionSave
	// ActionDownload covers both download actions.
	ActionDownload
	// ActionPlay starts playback of a track.
	ActionPlay
	// ActionBrowse is moving through and marking the track tree.
	ActionBrowse
)

var allowed = map[State][]Action{
	StateIdle:        {ActionSubmit, ActionEditFields},
	StateFetching:    {},
	StateReady:       {ActionSubmit, ActionEditFields, ActionSave, ActionDownload, ActionPlay, ActionBrowse},
	StateDownloading: {ActionEditFields, ActionBrowse},
	StatePlaying:     {ActionDownload, ActionPlay},
}

// Allows reports whether action is enabled in state s.
func (s State) Allows(action Action) bool {
	for _, a := range allowed[s] {
		if a == action {
			return true
		}
	}
	return false
}
