package audio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2"
	"github.com/handiism/vkmusic-downloader/internal/model"
)

func TestTagger_SaveTags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.mp3")
	if err := os.WriteFile(path, []byte("not really audio"), 0644); err != nil {
		t.Fatal(err)
	}

	tagger := NewTagger(nil)
	info := TagInfo{
		Track:  &model.Track{Artist: "Кино", Title: "Группа крови"},
		Album:  "Группа крови",
		Number: 1,
	}
	if err := tagger.SaveTags(path, info); err != nil {
		t.Fatalf("SaveTags() error = %v", err)
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer tag.Close()

	if tag.Artist() != "Кино" {
		t.Errorf("Artist() = %q", tag.Artist())
	}
	if tag.Title() != "Группа крови" {
		t.Errorf("Title() = %q", tag.Title())
	}
	if tag.Album() != "Группа крови" {
		t.Errorf("Album() = %q", tag.Album())
	}
}

func TestTagger_MissingFile(t *testing.T) {
	tagger := NewTagger(DefaultTagConfig())
	err := tagger.SaveTags(filepath.Join(t.TempDir(), "missing.mp3"), TagInfo{Track: &model.Track{}})
	if err == nil {
		t.Error("SaveTags() expected error for missing file")
	}
}
