// Package tui is the interactive controller of vkmusic-downloader: a login
// form, the track/album tree, playback transport and download triggers,
// wired to the catalog and download workers.
package tui

import (
	"context"
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/handiism/vkmusic-downloader/internal/audio"
	"github.com/handiism/vkmusic-downloader/internal/catalog"
	"github.com/handiism/vkmusic-downloader/internal/config"
	"github.com/handiism/vkmusic-downloader/internal/credstore"
	"github.com/handiism/vkmusic-downloader/internal/download"
	vkhttp "github.com/handiism/vkmusic-downloader/internal/http"
	ioutils "github.com/handiism/vkmusic-downloader/internal/io"
	"github.com/handiism/vkmusic-downloader/internal/model"
	"github.com/handiism/vkmusic-downloader/internal/player"
)

const noSelectionMessage = "Nothing selected for download or the folder prompt was cancelled"

// focus is the widget receiving keys.
type focus int

const (
	focusLogin focus = iota
	focusPassword
	focusLink
	focusRemember
	focusSearch
	focusTree
)

type promptKind int

const (
	promptSave promptKind = iota
	promptDownload
	promptTwoFactor
)

// prompt is a modal single-line question: a file name, a folder or a
// two-factor code.
type prompt struct {
	kind    promptKind
	title   string
	message string
	input   textinput.Model

	withLinks bool

	request  download.Request
	selected bool

	challenge *catalog.Challenge
}

// Options configure a new Model. Zero values get working defaults.
type Options struct {
	Settings *config.Settings

	// Credentials prefill the login form.
	Credentials     *credstore.Credentials
	CredentialsPath string
	Cookie          string

	Source     catalog.Source
	Downloader Downloader
	Engine     player.Engine
}

// Model is the Bubble Tea model of the controller.
type Model struct {
	state    State
	settings *config.Settings
	keys     keyMap
	help     help.Model

	login    textinput.Model
	password textinput.Model
	link     textinput.Model
	search   textinput.Model
	remember bool
	focus    focus

	// Session state, replaced on every successful fetch.
	catalog *model.Catalog
	tree    *tree

	prompt *prompt

	spinner       spinner.Model
	progress      progress.Model
	logs          []download.ProgressEvent
	progressDone  int32
	progressTotal int32

	status    string
	statusErr bool
	statusBar string

	credentialsPath string
	cookie          string
	worker          *catalog.Worker
	events          <-chan catalog.Event
	downloader      Downloader
	progressEvents  chan download.ProgressEvent
	session         *player.Session
	playGen         int
	pick            func(n int) int

	ctx    context.Context
	cancel context.CancelFunc

	width  int
	height int
}

func newInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 500
	ti.Width = 50
	return ti
}

// New creates the controller.
func New(opts Options) Model {
	settings := opts.Settings
	if settings == nil {
		settings = config.DefaultSettings()
	}

	progressEvents := make(chan download.ProgressEvent, 64)
	downloader := opts.Downloader
	if downloader == nil {
		downloader = download.NewManager(settings, func(e download.ProgressEvent) {
			select {
			case progressEvents <- e:
			default:
			}
		})
	}

	source := opts.Source
	if source == nil {
		source = catalog.NewAutoSource(vkhttp.NewClient(settings.Timeout()))
	}

	engine := opts.Engine
	if engine == nil {
		engine = player.NewMPV(settings.PlayerPath)
	}

	login := newInput("login")
	password := newInput("password")
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	link := newInput("https://vk.com/audios0")
	search := newInput("filter tracks")

	remember := false
	if c := opts.Credentials; c != nil {
		login.SetValue(c.Login)
		password.SetValue(c.Password)
		link.SetValue(c.ProfileLink)
		remember = true
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	m := Model{
		state:           StateIdle,
		settings:        settings,
		keys:            newKeyMap(),
		help:            help.New(),
		login:           login,
		password:        password,
		link:            link,
		search:          search,
		remember:        remember,
		tree:            newTree(),
		spinner:         sp,
		progress:        prog,
		credentialsPath: opts.CredentialsPath,
		cookie:          opts.Cookie,
		worker:          catalog.NewWorker(source),
		downloader:      downloader,
		progressEvents:  progressEvents,
		session:         player.NewSession(engine, settings.InitialVolume, settings.VolumeStep),
		pick:            rand.IntN,
		ctx:             ctx,
		cancel:          cancel,
	}
	m.setFocus(focusLogin)
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.progress.Width = min(max(msg.Width-20, 20), 80)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if m.state == StateFetching {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case FetchProgressMsg:
		m.setStatus("Fetching the track list...\n"+msg.Message, false)
		cmds = append(cmds, listenCatalog(m.events))

	case ChallengeMsg:
		cmds = append(cmds, m.authHandler(msg), listenCatalog(m.events))

	case FetchDoneMsg:
		m.finished(msg)

	case DownloadDoneMsg:
		cmds = append(cmds, m.done(msg))

	case TickMsg:
		if m.state == StateDownloading {
			m.progressDone, _ = m.downloader.GetProgress()
			m.drainProgress()
			cmds = append(cmds, m.progress.SetPercent(m.percent()), tickProgress())
		}

	case playTickMsg:
		if msg.gen == m.playGen {
			cmds = append(cmds, m.refreshPlayback())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cmd := m.dispatchKey(msg)
	return m, cmd
}

// dispatchKey routes a key to the prompt, the global actions, the transport
// controls or the focused widget.
func (m *Model) dispatchKey(msg tea.KeyMsg) tea.Cmd {
	m.keys.updateEnabled(m.state, m.focus, m.session.Active())

	if key.Matches(msg, m.keys.Quit) {
		m.cancel()
		if m.prompt != nil && m.prompt.challenge != nil {
			m.prompt.challenge.Answer("", false)
		}
		return tea.Quit
	}

	if m.prompt != nil {
		return m.handlePromptKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Stop):
		m.stopPlayback()
		return nil
	case key.Matches(msg, m.keys.SaveAll):
		return m.saveList(true)
	case key.Matches(msg, m.keys.SaveNoLinks):
		return m.saveList(false)
	case key.Matches(msg, m.keys.DownloadAll):
		return m.downloadAll()
	case key.Matches(msg, m.keys.DownloadSelected):
		return m.downloadSelected()
	case key.Matches(msg, m.keys.Lucky):
		return m.playTrack(nil)
	case key.Matches(msg, m.keys.Next):
		m.cycleFocus(1)
		return nil
	case key.Matches(msg, m.keys.Prev):
		m.cycleFocus(-1)
		return nil
	}

	if m.state == StatePlaying || m.session.Active() {
		m.handleTransportKey(msg)
		return nil
	}

	switch m.focus {
	case focusTree:
		return m.handleTreeKey(msg)
	case focusRemember:
		switch msg.String() {
		case " ":
			if m.state.Allows(ActionEditFields) {
				m.remember = !m.remember
			}
		case "enter":
			return m.start()
		}
		return nil
	}

	if key.Matches(msg, m.keys.Submit) && m.focus != focusSearch {
		return m.start()
	}
	if !m.state.Allows(ActionEditFields) {
		return nil
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusLogin:
		m.login, cmd = m.login.Update(msg)
	case focusPassword:
		m.password, cmd = m.password.Update(msg)
	case focusLink:
		m.link, cmd = m.link.Update(msg)
	case focusSearch:
		if msg.String() == "enter" {
			m.setFocus(focusTree)
			return nil
		}
		before := m.search.Value()
		m.search, cmd = m.search.Update(msg)
		if m.search.Value() != before {
			m.searchTracks(m.search.Value())
		}
	}
	return cmd
}

func (m *Model) handleTransportKey(msg tea.KeyMsg) {
	var err error
	switch {
	case key.Matches(msg, m.keys.VolumeUp):
		var volume int
		volume, err = m.session.VolumeUp()
		m.statusBar = fmt.Sprintf("Current volume: %d", volume)
	case key.Matches(msg, m.keys.VolumeDown):
		var volume int
		volume, err = m.session.VolumeDown()
		m.statusBar = fmt.Sprintf("Current volume: %d", volume)
	case key.Matches(msg, m.keys.Pause):
		_, err = m.session.TogglePause()
		m.statusBar = m.playbackLine()
	case key.Matches(msg, m.keys.SeekBack):
		err = m.session.Seek(-m.settings.SeekStep())
	case key.Matches(msg, m.keys.SeekFwd):
		err = m.session.Seek(m.settings.SeekStep())
	}
	if err != nil {
		log.Error().Err(err).Msg("playback control failed")
	}
}

func (m *Model) handleTreeKey(msg tea.KeyMsg) tea.Cmd {
	if !m.state.Allows(ActionBrowse) {
		return nil
	}

	n := m.tree.current()
	switch {
	case key.Matches(msg, m.keys.Up):
		m.tree.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.tree.moveCursor(1)
	case key.Matches(msg, m.keys.Expand):
		m.tree.expand(n)
	case key.Matches(msg, m.keys.Collapse):
		if n != nil && n.parent != nil {
			m.tree.collapse(n.parent)
		} else {
			m.tree.collapse(n)
		}
	case key.Matches(msg, m.keys.Search):
		m.setFocus(focusSearch)
		return textinput.Blink
	case key.Matches(msg, m.keys.Mark):
		if n != nil && n.isAlbum() {
			m.tree.toggle(n)
		} else {
			m.tree.toggleMark(n)
			m.tree.moveCursor(1)
		}
	case key.Matches(msg, m.keys.Play):
		if n != nil && n.isAlbum() {
			m.tree.toggle(n)
		} else if n != nil {
			if track, ok := m.catalog.FindTrack(n.id); ok {
				return m.playTrack(track)
			}
		}
	}
	return nil
}

func (m *Model) handlePromptKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		return m.submitPrompt()
	case "esc":
		m.cancelPrompt()
		return nil
	}

	var cmd tea.Cmd
	m.prompt.input, cmd = m.prompt.input.Update(msg)
	return cmd
}

// fire applies e to the state machine and re-derives focus.
func (m *Model) fire(e Event) bool {
	next, err := Transition(m.state, e)
	if err != nil {
		log.Debug().Err(err).Msg("event ignored")
		return false
	}
	m.state = next
	m.setFocus(m.focus)
	return true
}

// focusable lists the widgets that can take focus in the current state.
func (m *Model) focusable() []focus {
	var out []focus
	if m.state.Allows(ActionEditFields) {
		out = append(out, focusLogin, focusPassword, focusLink, focusRemember)
		if m.catalog != nil {
			out = append(out, focusSearch)
		}
	}
	if m.state.Allows(ActionBrowse) && m.catalog != nil {
		out = append(out, focusTree)
	}
	return out
}

func (m *Model) cycleFocus(delta int) {
	order := m.focusable()
	if len(order) == 0 {
		return
	}
	idx := 0
	for i, f := range order {
		if f == m.focus {
			idx = i
		}
	}
	idx = (idx + delta + len(order)) % len(order)
	m.setFocus(order[idx])
}

// setFocus moves focus to f, or to the first focusable widget when f is not
// available, and focuses the matching text input.
func (m *Model) setFocus(f focus) {
	order := m.focusable()
	available := false
	for _, o := range order {
		if o == f {
			available = true
		}
	}
	if !available && len(order) > 0 {
		f = order[0]
		available = true
	}
	m.focus = f

	inputs := map[focus]*textinput.Model{
		focusLogin:    &m.login,
		focusPassword: &m.password,
		focusLink:     &m.link,
		focusSearch:   &m.search,
	}
	for id, input := range inputs {
		if id == f && available {
			input.Focus()
		} else {
			input.Blur()
		}
	}
}

func (m *Model) openPrompt(p *prompt, value string) tea.Cmd {
	p.input = newInput("")
	p.input.Width = 60
	p.input.SetValue(value)
	p.input.CursorEnd()
	p.input.Focus()
	m.prompt = p
	return textinput.Blink
}

func (m *Model) submitPrompt() tea.Cmd {
	p := m.prompt
	m.prompt = nil
	value := strings.TrimSpace(p.input.Value())

	switch p.kind {
	case promptSave:
		if value != "" {
			m.writeList(value, p.withLinks)
		}
	case promptDownload:
		if value == "" {
			m.cancelDownloadPrompt(p)
			return nil
		}
		req := p.request
		req.Directory = value
		return m.beginDownload(req)
	case promptTwoFactor:
		p.challenge.Answer(value, true)
	}
	return nil
}

func (m *Model) cancelPrompt() {
	p := m.prompt
	m.prompt = nil

	switch p.kind {
	case promptDownload:
		m.cancelDownloadPrompt(p)
	case promptTwoFactor:
		p.challenge.Answer("", false)
	}
}

func (m *Model) cancelDownloadPrompt(p *prompt) {
	if p.selected {
		m.setError(noSelectionMessage)
	}
}

// start launches a catalog fetch with the form's credentials.
func (m *Model) start() tea.Cmd {
	if !m.state.Allows(ActionSubmit) {
		return nil
	}

	m.search.SetValue("")
	m.tree.restore()

	creds := catalog.Credentials{
		Login:       strings.TrimSpace(m.login.Value()),
		Password:    m.password.Value(),
		ProfileLink: strings.TrimSpace(m.link.Value()),
		Cookie:      m.cookie,
	}
	if m.remember && m.credentialsPath != "" {
		saved := credstore.Credentials{Login: creds.Login, Password: creds.Password, ProfileLink: creds.ProfileLink}
		if err := credstore.Save(m.credentialsPath, saved); err != nil {
			log.Error().Err(err).Str("path", m.credentialsPath).Msg("could not save credentials")
		}
	}

	if !m.fire(EventStart) {
		return nil
	}
	m.tree.clear()
	m.catalog = nil
	m.setStatus("Fetching the track list...", false)

	m.events = m.worker.Start(m.ctx, creds)
	return tea.Batch(listenCatalog(m.events), m.spinner.Tick)
}

// finished applies the catalog worker's result.
func (m *Model) finished(msg FetchDoneMsg) {
	if msg.Err == nil && msg.Catalog == nil {
		msg.Err = fmt.Errorf("empty result")
	}
	if msg.Err != nil {
		if m.fire(EventFetchFailed) {
			m.setError("Error: " + msg.Err.Error())
		}
		return
	}
	if !m.fire(EventFetched) {
		return
	}

	msg.Catalog.AssignIDs()
	m.catalog = msg.Catalog
	m.tree.populate(m.catalog)
	m.setStatus("Track list received. Space marks tracks for download\n"+m.catalog.Header(), false)
	m.setFocus(focusTree)
}

// authHandler asks the user for a two-factor code. Only the worker waits for
// the answer.
func (m *Model) authHandler(msg ChallengeMsg) tea.Cmd {
	value := ""
	if secret := m.settings.TOTPSecret; secret != "" {
		code, err := catalog.TOTPCode(secret)
		if err != nil {
			log.Error().Err(err).Msg("invalid TOTP secret")
		} else {
			value = code
		}
	}

	return m.openPrompt(&prompt{
		kind:      promptTwoFactor,
		title:     "Two-factor authentication",
		message:   msg.Challenge.Message,
		challenge: msg.Challenge,
	}, value)
}

// saveList asks where to export the track list.
func (m *Model) saveList(withLinks bool) tea.Cmd {
	if !m.state.Allows(ActionSave) || m.catalog == nil || m.catalog.Summary == "" || len(m.catalog.Tracks) == 0 {
		return nil
	}
	return m.openPrompt(&prompt{
		kind:      promptSave,
		title:     "Save as",
		message:   "Text file for the track list",
		withLinks: withLinks,
	}, filepath.Join(m.settings.DownloadsPath, "tracklist.txt"))
}

func (m *Model) writeList(path string, withLinks bool) {
	if m.catalog == nil {
		return
	}
	path = ioutils.WithExt(ioutils.ExpandHome(path), ".txt")
	content := audio.CreateTrackList(m.catalog, withLinks)
	if err := ioutils.WriteFile(path, []byte(content)); err != nil {
		m.setError("Error: " + err.Error())
		return
	}

	if withLinks {
		m.setStatus("Track list saved to "+path, false)
	} else {
		m.setStatus("Track list (without download links) saved to "+path, false)
	}
}

// downloadAll asks for a folder and downloads the whole catalog.
func (m *Model) downloadAll() tea.Cmd {
	if !m.state.Allows(ActionDownload) || m.catalog == nil {
		return nil
	}
	return m.openPrompt(&prompt{
		kind:    promptDownload,
		title:   "Choose folder",
		message: fmt.Sprintf("Download all %d tracks to", m.catalog.TotalTracks()),
		request: download.Request{Tracks: m.catalog.Tracks, Albums: m.catalog.Albums},
	}, m.settings.DownloadsPath)
}

// downloadSelected asks for a folder and downloads the marked tracks.
func (m *Model) downloadSelected() tea.Cmd {
	if !m.state.Allows(ActionDownload) || m.catalog == nil {
		return nil
	}

	tracks := m.tree.selectedTracks(m.catalog)
	if len(tracks) == 0 {
		m.setError(noSelectionMessage)
		return nil
	}

	return m.openPrompt(&prompt{
		kind:     promptDownload,
		title:    "Choose folder",
		message:  fmt.Sprintf("Download %d marked tracks to", len(tracks)),
		request:  download.Request{Tracks: tracks},
		selected: true,
	}, m.settings.DownloadsPath)
}

func (m *Model) beginDownload(req download.Request) tea.Cmd {
	if !m.fire(EventDownload) {
		return nil
	}

	m.progressDone = 0
	m.progressTotal = int32(req.Total())
	m.logs = nil
	m.setStatus(fmt.Sprintf("Downloading %d tracks to %s...", req.Total(), req.Directory), false)

	return tea.Batch(
		startDownload(m.ctx, m.downloader, req),
		tickProgress(),
		m.progress.SetPercent(0),
	)
}

// done applies the download worker's result.
func (m *Model) done(msg DownloadDoneMsg) tea.Cmd {
	if !m.fire(EventDownloaded) {
		return nil
	}
	if m.session.Active() {
		m.fire(EventPlay)
	}

	m.progressDone, _ = m.downloader.GetProgress()
	m.drainProgress()

	if msg.Err != nil {
		m.setError("Download failed: " + msg.Err.Error())
	} else {
		m.setStatus(msg.Message, false)
	}
	return m.progress.SetPercent(m.percent())
}

// playTrack plays track, or with a nil track the first marked one, or a
// random flat track when nothing is marked.
func (m *Model) playTrack(track *model.Track) tea.Cmd {
	if !m.state.Allows(ActionPlay) || m.catalog == nil {
		return nil
	}

	if track == nil {
		if marked := m.tree.selectedTracks(m.catalog); len(marked) > 0 {
			track = marked[0]
		} else if len(m.catalog.Tracks) > 0 {
			track = m.catalog.Tracks[m.pick(len(m.catalog.Tracks))]
			m.tree.focusTrack(track.ID)
		} else {
			return nil
		}
	}

	if err := m.session.Play(track); err != nil {
		m.setError("Error: " + err.Error())
		return nil
	}
	log.Info().Str("track", track.DisplayName()).Msg("playing")

	m.fire(EventPlay)
	m.tree.clearMarks()
	m.playGen++
	m.statusBar = m.playbackLine()
	return tickPlayback(m.playGen)
}

func (m *Model) stopPlayback() {
	if _, err := m.session.Stop(); err != nil {
		log.Error().Err(err).Msg("stop playback")
	}
	m.playGen++
	m.statusBar = ""
	if m.state == StatePlaying {
		m.fire(EventStop)
	}
}

// refreshPlayback updates the playback line and notices the end of a track.
func (m *Model) refreshPlayback() tea.Cmd {
	if !m.session.Active() {
		m.statusBar = ""
		if m.state == StatePlaying {
			m.fire(EventStop)
		}
		return nil
	}
	m.statusBar = m.playbackLine()
	return tickPlayback(m.playGen)
}

// searchTracks hides the roots that do not match query.
func (m *Model) searchTracks(query string) {
	m.tree.search(query)
}

func (m *Model) drainProgress() {
	for {
		select {
		case e := <-m.progressEvents:
			if e.Level == download.LevelVerbose {
				continue
			}
			m.logs = append(m.logs, e)
			if len(m.logs) > 5 {
				m.logs = m.logs[len(m.logs)-5:]
			}
		default:
			return
		}
	}
}

func (m *Model) percent() float64 {
	if m.progressTotal <= 0 {
		return 0
	}
	return float64(m.progressDone) / float64(m.progressTotal)
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

func (m *Model) setError(s string) {
	m.setStatus(s, true)
}

// Run starts the TUI application.
func Run(opts Options) error {
	m := New(opts)
	defer m.session.Close()

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
