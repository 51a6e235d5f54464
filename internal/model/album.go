package model

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Album is a named, ordered group of tracks.
//
// Albums are shown collapsed in the track tree; their tracks are only turned
// into tree nodes the first time the album is expanded.
type Album struct {
	// ID is the synthetic identifier assigned at fetch time.
	ID string

	// Title is the album title, also used as its folder name on download.
	Title string

	// CoverURL is the album cover image URL.
	// Empty string means no cover is available.
	CoverURL string

	// Tracks contains all tracks in this album, in source order.
	Tracks []*Track
}

// Len returns the number of tracks in the album.
func (a *Album) Len() int {
	return len(a.Tracks)
}

// HasCover returns true if the album has cover art available for download.
func (a *Album) HasCover() bool {
	return a.CoverURL != ""
}

// FolderName returns the sanitized folder name for the album's downloads.
func (a *Album) FolderName() string {
	name := SanitizeFileName(a.Title)
	if name == "" {
		return "album-" + a.ID
	}
	return strings.TrimRight(truncate(name, 199), " ")
}

// Catalog is the full listing returned by one successful fetch.
type Catalog struct {
	// Summary is a human-readable description of the fetched profile,
	// e.g. "Profile X".
	Summary string

	// Tracks is the flat list of the profile's own tracks.
	Tracks []*Track

	// Albums lists the profile's albums.
	Albums []*Album
}

// AssignIDs gives every track and album without an ID a fresh UUID.
// Existing IDs are kept, so calling it twice is harmless.
func (c *Catalog) AssignIDs() {
	for _, track := range c.Tracks {
		if track.ID == "" {
			track.ID = uuid.NewString()
		}
	}
	for _, album := range c.Albums {
		if album.ID == "" {
			album.ID = uuid.NewString()
		}
		for _, track := range album.Tracks {
			if track.ID == "" {
				track.ID = uuid.NewString()
			}
		}
	}
}

// TotalTracks counts flat tracks plus the tracks of every album.
func (c *Catalog) TotalTracks() int {
	total := len(c.Tracks)
	for _, album := range c.Albums {
		total += album.Len()
	}
	return total
}

// Header returns the first line of a saved track list.
func (c *Catalog) Header() string {
	return fmt.Sprintf("%s, %d шт.", c.Summary, len(c.Tracks))
}

// FindTrack looks a track up by ID among flat and album tracks.
func (c *Catalog) FindTrack(id string) (*Track, bool) {
	for _, track := range c.Tracks {
		if track.ID == id {
			return track, true
		}
	}
	for _, album := range c.Albums {
		for _, track := range album.Tracks {
			if track.ID == id {
				return track, true
			}
		}
	}
	return nil, false
}
