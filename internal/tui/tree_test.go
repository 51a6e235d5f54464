package tui

import (
	"testing"

	"github.com/handiism/vkmusic-downloader/internal/model"
)

func testCatalog() *model.Catalog {
	c := &model.Catalog{
		Summary: "Profile Test",
		Tracks: []*model.Track{
			{Artist: "Кино", Title: "Звезда по имени Солнце", Link: "https://cdn/1.mp3"},
			{Artist: "Aria", Title: "Shtil", Link: "https://cdn/2.mp3"},
			{Artist: "DDT", Title: "Osen", Link: "https://cdn/3.mp3"},
		},
		Albums: []*model.Album{
			{Title: "Best of Rock", Tracks: []*model.Track{
				{Artist: "Queen", Title: "Innuendo", Link: "https://cdn/4.mp3"},
				{Artist: "Aria", Title: "Bespechnyj angel", Link: "https://cdn/5.mp3"},
			}},
		},
	}
	c.AssignIDs()
	return c
}

func TestTree_Populate(t *testing.T) {
	c := testCatalog()
	tr := newTree()
	tr.populate(c)

	rows := tr.rows()
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want 4", len(rows))
	}
	if rows[0].id != c.Tracks[0].ID || !rows[3].isAlbum() {
		t.Errorf("flat tracks must come first, then albums")
	}
	if len(rows[3].children) != 0 {
		t.Errorf("album children must be created lazily")
	}

	tr.expand(rows[3])
	if got := len(tr.rows()); got != 6 {
		t.Errorf("rows after expand = %d, want 6", got)
	}
	tr.collapse(rows[3])
	if got := len(tr.rows()); got != 4 {
		t.Errorf("rows after collapse = %d, want 4", got)
	}
}

func TestTree_Search(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", 4},
		{"aria", 1},
		{"ARIA", 1},
		{"кино", 1},
		{"rock", 1},
		{"o", 2},
		{"nothing", 0},
	}

	c := testCatalog()
	tr := newTree()
	tr.populate(c)

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			tr.search(tt.query)
			if got := len(tr.visibleRoots()); got != tt.want {
				t.Errorf("search(%q) visible = %d, want %d", tt.query, got, tt.want)
			}
		})
	}

	tr.restore()
	if got := len(tr.visibleRoots()); got != 4 {
		t.Errorf("restore() visible = %d, want 4", got)
	}
}

func TestTree_SearchMatchesAlbumTitleOnly(t *testing.T) {
	tr := newTree()
	tr.populate(testCatalog())

	// "Queen" only appears inside the album.
	tr.search("queen")
	if got := len(tr.visibleRoots()); got != 0 {
		t.Errorf("visible = %d, want 0", got)
	}
}

func TestTree_SelectedTracks(t *testing.T) {
	c := testCatalog()
	tr := newTree()
	tr.populate(c)

	album := tr.roots[3]
	tr.expand(album)
	tr.toggleMark(album.children[1])
	tr.toggleMark(tr.roots[2])
	tr.toggleMark(tr.roots[0])
	tr.toggleMark(album)

	got := tr.selectedTracks(c)
	want := []*model.Track{c.Tracks[0], c.Tracks[2], c.Albums[0].Tracks[1]}
	if len(got) != len(want) {
		t.Fatalf("selectedTracks() = %d tracks, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("selectedTracks()[%d] = %s, want %s", i, got[i].DisplayName(), want[i].DisplayName())
		}
	}

	tr.toggleMark(tr.roots[0])
	if got := tr.selectedTracks(c); len(got) != 2 {
		t.Errorf("unmark: selectedTracks() = %d tracks, want 2", len(got))
	}

	tr.clearMarks()
	if got := tr.selectedTracks(c); got != nil {
		t.Errorf("clearMarks: selectedTracks() = %v", got)
	}
}

func TestTree_FocusTrack(t *testing.T) {
	c := testCatalog()
	tr := newTree()
	tr.populate(c)

	if !tr.focusTrack(c.Albums[0].Tracks[1].ID) {
		t.Fatal("focusTrack() = false")
	}
	if cur := tr.current(); cur == nil || cur.track != c.Albums[0].Tracks[1] {
		t.Errorf("current() = %v", cur)
	}
	if tr.cursor != 5 {
		t.Errorf("cursor = %d, want 5", tr.cursor)
	}

	tr.search("кино")
	if tr.focusTrack(c.Tracks[1].ID) {
		t.Error("focusTrack() should fail for a hidden track")
	}
}

func TestTree_MoveCursorClamps(t *testing.T) {
	tr := newTree()
	tr.populate(testCatalog())

	tr.moveCursor(-3)
	if tr.cursor != 0 {
		t.Errorf("cursor = %d, want 0", tr.cursor)
	}
	tr.moveCursor(100)
	if tr.cursor != 3 {
		t.Errorf("cursor = %d, want 3", tr.cursor)
	}

	tr.search("aria")
	if tr.cursor != 0 {
		t.Errorf("cursor after search = %d, want 0", tr.cursor)
	}
}

func TestTree_SearchIsIdempotent(t *testing.T) {
	tr := newTree()
	tr.populate(testCatalog())

	visible := func() []string {
		var ids []string
		for _, n := range tr.visibleRoots() {
			ids = append(ids, n.id)
		}
		return ids
	}

	tr.search("aria")
	first := visible()
	tr.search("aria")
	second := visible()

	if len(first) != len(second) {
		t.Fatalf("visible sets differ: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("visible[%d] = %s, want %s", i, second[i], first[i])
		}
	}
	if len(tr.hidden) != 3 {
		t.Errorf("hidden = %d, want 3", len(tr.hidden))
	}
}
