package tui

import (
	"strings"

	"github.com/handiism/vkmusic-downloader/internal/model"
)

// node is one row of the track tree. It carries the ID of the track or album
// it shows, so selection never depends on the displayed text.
type node struct {
	id       string
	track    *model.Track
	album    *model.Album
	parent   *node
	children []*node
	expanded bool
	hidden   bool
}

func (n *node) isAlbum() bool {
	return n.album != nil
}

// text is what the row displays and what search matches against.
func (n *node) text() string {
	if n.isAlbum() {
		return n.album.Title
	}
	return n.track.DisplayName()
}

// tree holds the catalog's nodes: flat tracks first, then albums. Album
// children are created on first expansion.
type tree struct {
	roots  []*node
	hidden []*node
	marked map[string]bool
	cursor int
}

func newTree() *tree {
	return &tree{marked: make(map[string]bool)}
}

func (t *tree) populate(c *model.Catalog) {
	t.clear()
	for _, track := range c.Tracks {
		t.roots = append(t.roots, &node{id: track.ID, track: track})
	}
	for _, album := range c.Albums {
		t.roots = append(t.roots, &node{id: album.ID, album: album})
	}
}

func (t *tree) clear() {
	t.roots = nil
	t.hidden = nil
	t.marked = make(map[string]bool)
	t.cursor = 0
}

// expand shows an album's tracks, creating their nodes the first time.
func (t *tree) expand(n *node) {
	if n == nil || !n.isAlbum() {
		return
	}
	if len(n.children) == 0 {
		for _, track := range n.album.Tracks {
			n.children = append(n.children, &node{id: track.ID, track: track, parent: n})
		}
	}
	n.expanded = true
}

func (t *tree) collapse(n *node) {
	if n == nil || !n.isAlbum() {
		return
	}
	n.expanded = false
	t.clampCursor()
}

func (t *tree) toggle(n *node) {
	if n == nil || !n.isAlbum() {
		return
	}
	if n.expanded {
		t.collapse(n)
	} else {
		t.expand(n)
	}
}

// search unhides every root hidden by the previous query, then hides the
// roots whose text does not contain query. Matching ignores case.
func (t *tree) search(query string) {
	t.restore()

	query = strings.ToLower(query)
	for _, root := range t.roots {
		if !strings.Contains(strings.ToLower(root.text()), query) {
			root.hidden = true
			t.hidden = append(t.hidden, root)
		}
	}
	t.clampCursor()
}

func (t *tree) restore() {
	for _, n := range t.hidden {
		n.hidden = false
	}
	t.hidden = nil
}

// visibleRoots returns the roots not hidden by search.
func (t *tree) visibleRoots() []*node {
	var out []*node
	for _, root := range t.roots {
		if !root.hidden {
			out = append(out, root)
		}
	}
	return out
}

// rows flattens the visible part of the tree in display order.
func (t *tree) rows() []*node {
	var out []*node
	for _, root := range t.visibleRoots() {
		out = append(out, root)
		if root.expanded {
			out = append(out, root.children...)
		}
	}
	return out
}

func (t *tree) current() *node {
	rows := t.rows()
	if t.cursor < 0 || t.cursor >= len(rows) {
		return nil
	}
	return rows[t.cursor]
}

func (t *tree) moveCursor(delta int) {
	t.cursor += delta
	t.clampCursor()
}

func (t *tree) clampCursor() {
	n := len(t.rows())
	t.cursor = min(t.cursor, n-1)
	t.cursor = max(t.cursor, 0)
}

// focusTrack moves the cursor to the row showing track id, expanding its
// album if needed. It reports false when the row is hidden by search.
func (t *tree) focusTrack(id string) bool {
	for _, root := range t.visibleRoots() {
		if root.isAlbum() {
			for _, track := range root.album.Tracks {
				if track.ID == id {
					t.expand(root)
				}
			}
		}
	}
	for i, n := range t.rows() {
		if !n.isAlbum() && n.id == id {
			t.cursor = i
			return true
		}
	}
	return false
}

func (t *tree) toggleMark(n *node) {
	if n == nil || n.isAlbum() {
		return
	}
	if t.marked[n.id] {
		delete(t.marked, n.id)
	} else {
		t.marked[n.id] = true
	}
}

func (t *tree) clearMarks() {
	t.marked = make(map[string]bool)
}

// selectedTracks resolves the marked IDs against the catalog: flat tracks
// first, then album tracks, each in catalog order.
func (t *tree) selectedTracks(c *model.Catalog) []*model.Track {
	if c == nil || len(t.marked) == 0 {
		return nil
	}

	var out []*model.Track
	for _, track := range c.Tracks {
		if t.marked[track.ID] {
			out = append(out, track)
		}
	}
	for _, album := range c.Albums {
		for _, track := range album.Tracks {
			if t.marked[track.ID] {
				out = append(out, track)
			}
		}
	}
	return out
}
