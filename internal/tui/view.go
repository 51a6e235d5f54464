package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/handiism/vkmusic-downloader/internal/download"
	"github.com/handiism/vkmusic-downloader/internal/player"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(0, 1)

	albumStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))

	cursorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#4ECDC4"))
)

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("♫ VK Music Downloader"))
	b.WriteString("\n")

	b.WriteString(m.viewForm())
	b.WriteString("\n")

	if m.prompt != nil {
		b.WriteString(m.viewPrompt())
		b.WriteString("\n")
	}

	if m.catalog != nil {
		b.WriteString(m.viewTree())
		b.WriteString("\n")
	}

	if m.state == StateFetching {
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
	}
	if m.status != "" {
		if m.statusErr {
			b.WriteString(errorStyle.Render(m.status))
		} else {
			b.WriteString(infoStyle.Render(m.status))
		}
		b.WriteString("\n")
	}

	if m.progressTotal > 0 {
		b.WriteString(m.progress.ViewAs(m.percent()))
		b.WriteString("\n")
		b.WriteString(infoStyle.Render(fmt.Sprintf("Tracks: %d/%d", m.progressDone, m.progressTotal)))
		b.WriteString("\n")
		b.WriteString(m.renderLogs())
	}

	if m.statusBar != "" {
		b.WriteString(subtitleStyle.Render(m.statusBar))
		b.WriteString("\n")
	}

	keys := m.keys
	keys.updateEnabled(m.state, m.focus, m.session.Active())
	b.WriteString("\n")
	b.WriteString(m.help.View(keys))

	return b.String()
}

func (m Model) viewForm() string {
	var b strings.Builder

	editable := m.state.Allows(ActionEditFields)
	label := func(s string) string {
		if editable {
			return subtitleStyle.Render(fmt.Sprintf("%-10s", s))
		}
		return dimStyle.Render(fmt.Sprintf("%-10s", s))
	}

	b.WriteString(label("Login:") + m.login.View() + "\n")
	b.WriteString(label("Password:") + m.password.View() + "\n")
	b.WriteString(label("Profile:") + m.link.View() + "\n")

	check := "[ ]"
	if m.remember {
		check = "[x]"
	}
	line := fmt.Sprintf("%s Save login and password", check)
	switch {
	case m.focus == focusRemember && editable:
		b.WriteString(cursorStyle.Render("› " + line))
	case editable:
		b.WriteString("  " + line)
	default:
		b.WriteString(dimStyle.Render("  " + line))
	}
	b.WriteString("\n")

	if m.state.Allows(ActionSubmit) {
		b.WriteString(successStyle.Render("  [ Get tracks ]"))
	} else {
		b.WriteString(dimStyle.Render("  [ Get tracks ]"))
	}
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewPrompt() string {
	p := m.prompt
	var b strings.Builder
	b.WriteString(subtitleStyle.Render(p.title))
	b.WriteString("\n")
	if p.message != "" {
		b.WriteString(p.message)
		b.WriteString("\n")
	}
	b.WriteString(p.input.View())
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("enter: confirm • esc: cancel"))
	return boxStyle.Render(b.String()) + "\n"
}

func (m Model) viewTree() string {
	var b strings.Builder

	b.WriteString(searchLabel(m.search.Focused(), "Search: ") + m.search.View() + "\n")

	browsable := m.state.Allows(ActionBrowse)
	rows := m.tree.rows()
	if len(rows) == 0 {
		b.WriteString(dimStyle.Render("  nothing found"))
		b.WriteString("\n")
		return b.String()
	}

	visible := 12
	if m.height > 0 {
		visible = max(5, m.height-24)
	}
	start := max(0, m.tree.cursor-visible/2)
	end := min(len(rows), start+visible)
	start = max(0, end-visible)

	for i := start; i < end; i++ {
		n := rows[i]
		var line string
		if n.isAlbum() {
			arrow := "▸"
			if n.expanded {
				arrow = "▾"
			}
			line = albumStyle.Render(fmt.Sprintf("%s %s (%d)", arrow, n.album.Title, n.album.Len()))
		} else {
			mark := "[ ]"
			if m.tree.marked[n.id] {
				mark = "[x]"
			}
			indent := ""
			if n.parent != nil {
				indent = "    "
			}
			line = fmt.Sprintf("%s%s %s", indent, mark, n.track.DisplayName())
		}

		switch {
		case !browsable:
			line = dimStyle.Render("  " + line)
		case i == m.tree.cursor && m.focus == focusTree:
			line = cursorStyle.Render("› ") + line
		default:
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if end < len(rows) {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  … %d more", len(rows)-end)))
		b.WriteString("\n")
	}

	return b.String()
}

func searchLabel(focused bool, s string) string {
	if focused {
		return cursorStyle.Render(s)
	}
	return subtitleStyle.Render(s)
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case download.LevelError:
			style = errorStyle
			prefix = "✗"
		case download.LevelWarning:
			style = warningStyle
			prefix = "!"
		case download.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case download.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

// playbackLine is the status bar text while a track is loaded.
func (m Model) playbackLine() string {
	track := m.session.Track()
	if track == nil {
		return ""
	}
	verb := "Playing"
	if m.session.State() == player.Paused {
		verb = "Paused"
	}
	pos, dur := m.session.Progress()
	return fmt.Sprintf("%s %s: %s / %s Volume: %d",
		verb, track.DisplayName(), formatDuration(pos), formatDuration(dur), m.session.Volume())
}

// formatDuration renders d as H:MM:SS.
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	h := int(d.Hours())
	mnt := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d:%02d", h, mnt, s)
}
