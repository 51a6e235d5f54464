package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds every binding of the controller. Bindings are enabled from
// the current State so the help line only lists what works right now.
type keyMap struct {
	Submit   key.Binding
	Next     key.Binding
	Prev     key.Binding
	Search   key.Binding
	Up       key.Binding
	Down     key.Binding
	Expand   key.Binding
	Collapse key.Binding
	Mark     key.Binding
	Play     key.Binding

	SaveAll          key.Binding
	SaveNoLinks      key.Binding
	DownloadAll      key.Binding
	DownloadSelected key.Binding
	Lucky            key.Binding

	Stop       key.Binding
	VolumeUp   key.Binding
	VolumeDown key.Binding
	Pause      key.Binding
	SeekBack   key.Binding
	SeekFwd    key.Binding

	Quit key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Submit:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "get tracks")),
		Next:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		Prev:     key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev field")),
		Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Expand:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "open album")),
		Collapse: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "close album")),
		Mark:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "mark")),
		Play:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play")),

		SaveAll:          key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save list")),
		SaveNoLinks:      key.NewBinding(key.WithKeys("ctrl+w"), key.WithHelp("ctrl+w", "save without links")),
		DownloadAll:      key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "download all")),
		DownloadSelected: key.NewBinding(key.WithKeys("ctrl+e"), key.WithHelp("ctrl+e", "download marked")),
		Lucky:            key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "lucky me")),

		Stop:       key.NewBinding(key.WithKeys("esc", "alt+x"), key.WithHelp("esc", "stop")),
		VolumeUp:   key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "volume up")),
		VolumeDown: key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "volume down")),
		Pause:      key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pause")),
		SeekBack:   key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "rewind")),
		SeekFwd:    key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "forward")),

		Quit: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// updateEnabled toggles bindings for the state and the focused widget.
func (k *keyMap) updateEnabled(s State, f focus, playing bool) {
	inForm := f != focusTree
	browsing := s.Allows(ActionBrowse) && f == focusTree

	k.Submit.SetEnabled(s.Allows(ActionSubmit) && inForm)
	k.Next.SetEnabled(s.Allows(ActionEditFields) || s.Allows(ActionBrowse))
	k.Prev.SetEnabled(k.Next.Enabled())
	k.Search.SetEnabled(browsing)
	k.Up.SetEnabled(browsing)
	k.Down.SetEnabled(browsing)
	k.Expand.SetEnabled(browsing)
	k.Collapse.SetEnabled(browsing)
	k.Mark.SetEnabled(browsing)
	k.Play.SetEnabled(browsing && s.Allows(ActionPlay))

	k.SaveAll.SetEnabled(s.Allows(ActionSave))
	k.SaveNoLinks.SetEnabled(s.Allows(ActionSave))
	k.DownloadAll.SetEnabled(s.Allows(ActionDownload))
	k.DownloadSelected.SetEnabled(s.Allows(ActionDownload))
	k.Lucky.SetEnabled(s.Allows(ActionPlay))

	transport := s == StatePlaying || playing
	k.Stop.SetEnabled(playing)
	k.VolumeUp.SetEnabled(transport)
	k.VolumeDown.SetEnabled(transport)
	k.Pause.SetEnabled(transport)
	k.SeekBack.SetEnabled(transport)
	k.SeekFwd.SetEnabled(transport)
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Submit, k.Play, k.Mark, k.Pause, k.Stop,
		k.DownloadSelected, k.Lucky, k.Next, k.Quit,
	}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.Next, k.Prev, k.Search},
		{k.Up, k.Down, k.Expand, k.Collapse, k.Mark, k.Play},
		{k.SaveAll, k.SaveNoLinks, k.DownloadAll, k.DownloadSelected, k.Lucky},
		{k.Stop, k.VolumeUp, k.VolumeDown, k.Pause, k.SeekBack, k.SeekFwd},
		{k.Quit},
	}
}
