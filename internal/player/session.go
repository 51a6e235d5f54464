package player

import (
	"errors"
	"time"

	"github.com/handiism/vkmusic-downloader/internal/model"
)

// ErrNoTrack is returned by Play for a nil track or one without a link.
var ErrNoTrack = errors.New("track has no playable link")

// Session is the application's single playback session.
//
// Session is not safe for concurrent use; the UI loop owns it.
type Session struct {
	engine Engine
	track  *model.Track
	volume int
	step   int
}

// NewSession creates a session with an initial volume in [0, 100] and the
// volume change applied by VolumeUp and VolumeDown.
func NewSession(engine Engine, volume, step int) *Session {
	if step <= 0 {
		step = 2
	}
	return &Session{engine: engine, volume: clamp(volume), step: step}
}

// Play replaces whatever is playing with track.
func (s *Session) Play(track *model.Track) error {
	if track == nil || track.Link == "" {
		return ErrNoTrack
	}
	if err := s.engine.Load(track.Link); err != nil {
		return err
	}
	s.track = track
	return s.engine.SetVolume(s.volume)
}

// Stop ends playback and reports whether anything was playing or paused.
func (s *Session) Stop() (bool, error) {
	wasActive := s.Active()
	err := s.engine.Stop()
	s.track = nil
	return wasActive, err
}

// TogglePause pauses a playing track and resumes a paused one. It returns
// the resulting state.
func (s *Session) TogglePause() (State, error) {
	switch s.engine.State() {
	case Playing:
		if err := s.engine.Pause(); err != nil {
			return Playing, err
		}
		return Paused, nil
	case Paused:
		if err := s.engine.Play(); err != nil {
			return Paused, err
		}
		return Playing, nil
	default:
		return Stopped, nil
	}
}

// VolumeUp raises the volume by one step, up to 100.
func (s *Session) VolumeUp() (int, error) {
	return s.setVolume(s.volume + s.step)
}

// VolumeDown lowers the volume by one step, down to 0.
func (s *Session) VolumeDown() (int, error) {
	return s.setVolume(s.volume - s.step)
}

func (s *Session) setVolume(volume int) (int, error) {
	s.volume = clamp(volume)
	return s.volume, s.engine.SetVolume(s.volume)
}

// Seek moves the playback position by offset, never before the start.
func (s *Session) Seek(offset time.Duration) error {
	pos, err := s.engine.Position()
	if err != nil {
		return err
	}
	target := max(pos+offset, 0)
	if dur, err := s.engine.Duration(); err == nil && dur > 0 && target > dur {
		target = dur
	}
	return s.engine.Seek(target)
}

// Active reports whether a track is loaded and not stopped.
func (s *Session) Active() bool {
	return s.track != nil && s.engine.State() != Stopped
}

// State returns the engine's playback state.
func (s *Session) State() State {
	return s.engine.State()
}

// Track returns the current track, nil after Stop.
func (s *Session) Track() *model.Track {
	return s.track
}

// Volume returns the current volume.
func (s *Session) Volume() int {
	return s.volume
}

// Progress returns the position and length of the current track. Values the
// engine cannot report are zero.
func (s *Session) Progress() (pos, dur time.Duration) {
	pos, _ = s.engine.Position()
	dur, _ = s.engine.Duration()
	return pos, dur
}

// Close stops playback and releases the engine.
func (s *Session) Close() error {
	s.track = nil
	return s.engine.Close()
}

func clamp(volume int) int {
	return min(max(volume, 0), 100)
}
