package tui

import (
	"errors"
	"testing"
)

func TestTransition(t *testing.T) {
	states := []State{StateIdle, StateFetching, StateReady, StateDownloading, StatePlaying}
	events := []Event{EventStart, EventFetched, EventFetchFailed, EventDownload, EventDownloaded, EventPlay, EventStop}

	valid := map[State]map[Event]State{
		StateIdle:        {EventStart: StateFetching},
		StateFetching:    {EventFetched: StateReady, EventFetchFailed: StateIdle},
		StateReady:       {EventStart: StateFetching, EventDownload: StateDownloading, EventPlay: StatePlaying},
		StateDownloading: {EventDownloaded: StateReady},
		StatePlaying:     {EventDownload: StateDownloading, EventPlay: StatePlaying, EventStop: StateReady},
	}

	for _, s := range states {
		for _, e := range events {
			t.Run(s.String()+"/"+e.String(), func(t *testing.T) {
				got, err := Transition(s, e)
				want, ok := valid[s][e]
				if !ok {
					if !errors.Is(err, ErrInvalidTransition) {
						t.Fatalf("Transition() error = %v, want ErrInvalidTransition", err)
					}
					if got != s {
						t.Errorf("Transition() = %s, want state unchanged %s", got, s)
					}
					return
				}
				if err != nil {
					t.Fatalf("Transition() error = %v", err)
				}
				if got != want {
					t.Errorf("Transition() = %s, want %s", got, want)
				}
			})
		}
	}
}

func TestState_Allows(t *testing.T) {
	tests := []struct {
		state State
		want  []Action
	}{
		{StateIdle, []Action{ActionSubmit, ActionEditFields}},
		{StateFetching, nil},
		{StateReady, []Action{ActionSubmit, ActionEditFields, ActionSave, ActionDownload, ActionPlay, ActionBrowse}},
		{StateDownloading, []Action{ActionEditFields, ActionBrowse}},
		{StatePlaying, []Action{ActionDownload, ActionPlay}},
	}

	all := []Action{ActionSubmit, ActionEditFields, ActionSave, ActionDownload, ActionPlay, ActionBrowse}
	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			enabled := make(map[Action]bool)
			for _, a := range tt.want {
				enabled[a] = true
			}
			for _, a := range all {
				if got := tt.state.Allows(a); got != enabled[a] {
					t.Errorf("Allows(%d) = %v, want %v", a, got, enabled[a])
				}
			}
		})
	}
}

func TestState_String(t *testing.T) {
	if StateDownloading.String() != "downloading" {
		t.Errorf("String() = %q", StateDownloading.String())
	}
	if State(42).String() != "State(42)" {
		t.Errorf("String() = %q", State(42).String())
	}
}
