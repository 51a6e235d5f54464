package catalog

import (
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/handiism/vkmusic-downloader/internal/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type jsonCatalog struct {
	Summary string      `json:"summary"`
	Tracks  []jsonTrack `json:"tracks"`
	Albums  []jsonAlbum `json:"albums"`
}

type jsonTrack struct {
	Artist   string  `json:"artist"`
	Title    string  `json:"title"`
	URL      string  `json:"url"`
	Duration float64 `json:"duration"`
}

type jsonAlbum struct {
	Title  string      `json:"title"`
	Cover  string      `json:"cover"`
	Tracks []jsonTrack `json:"tracks"`
}

func (t jsonTrack) toTrack() *model.Track {
	return &model.Track{
		Artist:   strings.TrimSpace(t.Artist),
		Title:    strings.TrimSpace(t.Title),
		Link:     t.URL,
		Duration: t.Duration,
	}
}

// decodeCatalog parses a catalog document. link names the profile when the
// document has no summary of its own.
func decodeCatalog(data []byte, link string) (*model.Catalog, error) {
	var doc jsonCatalog
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	c := &model.Catalog{
		Summary: strings.TrimSpace(doc.Summary),
		Tracks:  make([]*model.Track, 0, len(doc.Tracks)),
		Albums:  make([]*model.Album, 0, len(doc.Albums)),
	}
	if c.Summary == "" {
		c.Summary = "Profile " + link
	}

	for _, t := range doc.Tracks {
		c.Tracks = append(c.Tracks, t.toTrack())
	}
	for _, a := range doc.Albums {
		album := &model.Album{
			Title:    strings.TrimSpace(a.Title),
			CoverURL: a.Cover,
			Tracks:   make([]*model.Track, 0, len(a.Tracks)),
		}
		for _, t := range a.Tracks {
			album.Tracks = append(album.Tracks, t.toTrack())
		}
		c.Albums = append(c.Albums, album)
	}

	return c, nil
}

// EncodeCatalog renders c in the document format read by the sources.
func EncodeCatalog(c *model.Catalog) ([]byte, error) {
	toJSON := func(tracks []*model.Track) []jsonTrack {
		out := make([]jsonTrack, 0, len(tracks))
		for _, t := range tracks {
			out = append(out, jsonTrack{Artist: t.Artist, Title: t.Title, URL: t.Link, Duration: t.Duration})
		}
		return out
	}

	doc := jsonCatalog{Summary: c.Summary, Tracks: toJSON(c.Tracks)}
	for _, a := range c.Albums {
		doc.Albums = append(doc.Albums, jsonAlbum{Title: a.Title, Cover: a.CoverURL, Tracks: toJSON(a.Tracks)})
	}
	return json.MarshalIndent(doc, "", "  ")
}
