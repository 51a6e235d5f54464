package player

import "time"

// State is the playback state reported by an Engine.
type State int

const (
	Stopped State = iota
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "stopped"
	}
}

// Engine is a media backend playing one URI at a time.
type Engine interface {
	// Load replaces the current media with uri and starts playing it.
	Load(uri string) error
	Play() error
	Pause() error
	Stop() error

	// SetVolume takes a value in [0, 100].
	SetVolume(volume int) error
	Position() (time.Duration, error)
	Duration() (time.Duration, error)

	// Seek moves to an absolute position.
	Seek(pos time.Duration) error
	State() State
	Close() error
}
