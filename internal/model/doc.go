// Package model defines the core data structures used throughout
// the vkmusic-downloader application.
//
// # Catalog
//
// Catalog is the result of one successful fetch: a summary line, the flat
// track list of the profile and its albums.
//
//	c := &model.Catalog{Summary: "Profile X", Tracks: tracks, Albums: albums}
//	c.AssignIDs()
//	fmt.Println(c.Header()) // "Profile X, 42 шт."
//
// # Track
//
// Track is one playable item identified by a synthetic ID:
//
//	fmt.Println(track.DisplayName())     // "Artist — Title"
//	fmt.Println(track.ExportLine(true))  // "Artist - Title: https://..."
//	fmt.Println(track.FileName(cfg, "", 1)) // "Artist - Title.mp3"
//
// # File Name Configuration
//
// TrackConfig controls how local file names are computed using placeholders:
//
//	cfg := &model.TrackConfig{FileNameFormat: "{artist} - {title}.mp3"}
//
// Available placeholders: {artist}, {title}, {album}, {tracknum}
package model
