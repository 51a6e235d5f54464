package catalog

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/handiism/vkmusic-downloader/internal/model"
)

// Event is a message from a running Worker: ProgressEvent, *Challenge or
// DoneEvent.
type Event interface {
	event()
}

// ProgressEvent is a human-readable status update.
type ProgressEvent struct {
	Message string
}

// DoneEvent is the last event of a run. Exactly one of Catalog and Err is set.
type DoneEvent struct {
	Catalog *model.Catalog
	Err     error
}

// Challenge asks for a two-factor code. The worker goroutine waits until
// Answer is called or the run's context is cancelled.
type Challenge struct {
	Message string

	reply chan answer
	once  sync.Once
}

type answer struct {
	code string
	ok   bool
}

func (ProgressEvent) event() {}
func (DoneEvent) event()     {}
func (*Challenge) event()    {}

// Answer delivers the user's reply. Only the first call has an effect.
func (c *Challenge) Answer(code string, ok bool) {
	c.once.Do(func() {
		c.reply <- answer{code: code, ok: ok}
	})
}

// Worker runs a Source in the background.
type Worker struct {
	source Source
}

// NewWorker creates a Worker for source.
func NewWorker(source Source) *Worker {
	return &Worker{source: source}
}

// Start launches a fetch and returns its event stream. Progress and
// challenge events precede the single DoneEvent, after which the channel is
// closed.
func (w *Worker) Start(ctx context.Context, creds Credentials) <-chan Event {
	events := make(chan Event, 8)

	send := func(ev Event) bool {
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	challenge := func(ctx context.Context, message string) (string, bool) {
		ch := &Challenge{Message: message, reply: make(chan answer, 1)}
		if !send(ch) {
			return "", false
		}
		select {
		case a := <-ch.reply:
			return a.code, a.ok
		case <-ctx.Done():
			return "", false
		}
	}

	progress := func(message string) {
		send(ProgressEvent{Message: message})
	}

	go func() {
		defer close(events)

		log.Info().Str("link", creds.ProfileLink).Msg("fetching catalog")

		var c *model.Catalog
		err := creds.Validate()
		if err == nil {
			c, err = w.source.Fetch(ctx, creds, challenge, progress)
		}
		if err != nil {
			log.Error().Err(err).Str("link", creds.ProfileLink).Msg("catalog fetch failed")
			send(DoneEvent{Err: err})
			return
		}

		c.AssignIDs()
		log.Info().Int("tracks", len(c.Tracks)).Int("albums", len(c.Albums)).Msg("catalog fetched")
		send(DoneEvent{Catalog: c})
	}()

	return events
}
