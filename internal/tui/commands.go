package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/handiism/vkmusic-downloader/internal/catalog"
	"github.com/handiism/vkmusic-downloader/internal/download"
	"github.com/handiism/vkmusic-downloader/internal/model"
)

// Message types
type (
	// FetchProgressMsg carries a status line from the catalog worker.
	FetchProgressMsg struct {
		Message string
	}

	// ChallengeMsg is sent when the catalog worker needs a two-factor code.
	ChallengeMsg struct {
		Challenge *catalog.Challenge
	}

	// FetchDoneMsg is the catalog worker's result.
	FetchDoneMsg struct {
		Catalog *model.Catalog
		Err     error
	}

	// DownloadDoneMsg is the download worker's result.
	DownloadDoneMsg struct {
		Message string
		Err     error
	}

	// TickMsg is for periodic download progress updates.
	TickMsg struct{}

	// playTickMsg refreshes the playback line. gen ties it to one Play call.
	playTickMsg struct {
		gen int
	}
)

// Downloader is the download worker used by the controller.
type Downloader interface {
	Download(ctx context.Context, req download.Request) (string, error)
	GetProgress() (done, total int32)
}

// listenCatalog waits for the next event of a running fetch.
func listenCatalog(events <-chan catalog.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		switch ev := ev.(type) {
		case catalog.ProgressEvent:
			return FetchProgressMsg{Message: ev.Message}
		case *catalog.Challenge:
			return ChallengeMsg{Challenge: ev}
		case catalog.DoneEvent:
			return FetchDoneMsg{Catalog: ev.Catalog, Err: ev.Err}
		}
		return nil
	}
}

// startDownload runs req in the background.
func startDownload(ctx context.Context, d Downloader, req download.Request) tea.Cmd {
	return func() tea.Msg {
		message, err := d.Download(ctx, req)
		return DownloadDoneMsg{Message: message, Err: err}
	}
}

// tickProgress returns a command to tick progress updates.
func tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

func tickPlayback(gen int) tea.Cmd {
	return tea.Tick(time.Second, func(_ time.Time) tea.Msg {
		return playTickMsg{gen: gen}
	})
}
