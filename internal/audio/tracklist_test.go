package audio

import (
	"strings"
	"testing"

	"github.com/handiism/vkmusic-downloader/internal/model"
)

func TestCreateTrackList_WithLinks(t *testing.T) {
	catalog := &model.Catalog{
		Summary: "Profile X",
		Tracks: []*model.Track{
			{Artist: "A", Title: "T1", Link: "u1"},
			{Artist: "B", Title: "T2", Link: "u2"},
			{Artist: "C", Title: "T3", Link: "u3"},
		},
		Albums: []*model.Album{
			{Title: "Album", Tracks: []*model.Track{{Artist: "D", Title: "hidden", Link: "u4"}}},
		},
	}

	content := CreateTrackList(catalog, true)
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")

	if len(lines) != len(catalog.Tracks)+1 {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(catalog.Tracks)+1, content)
	}
	if lines[0] != "Profile X, 3 шт." {
		t.Errorf("header = %q", lines[0])
	}
	for i, track := range catalog.Tracks {
		line := lines[i+1]
		for _, part := range []string{track.Artist, track.Title, track.Link} {
			if !strings.Contains(line, part) {
				t.Errorf("line %d = %q, missing %q", i+1, line, part)
			}
		}
	}
	if strings.Contains(content, "hidden") {
		t.Error("album members must not be exported")
	}
}

func TestCreateTrackList_WithoutLinks(t *testing.T) {
	catalog := &model.Catalog{
		Summary: "Profile X",
		Tracks: []*model.Track{
			{Artist: "A", Title: "T1", Link: "u1"},
			{Artist: "B", Title: "T2", Link: "u2"},
		},
	}

	content := CreateTrackList(catalog, false)
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")

	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	if lines[1] != "A - T1" || lines[2] != "B - T2" {
		t.Errorf("track lines = %q", lines[1:])
	}
	if strings.Contains(content, "u1") || strings.Contains(content, "u2") {
		t.Error("links must not be exported")
	}
}
