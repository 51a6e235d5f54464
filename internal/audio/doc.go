// Package audio provides audio file services: ID3 tag writing, playlist
// generation and the plain-text track list export.
//
// # ID3 Tagging
//
//	tagger := audio.NewTagger(audio.DefaultTagConfig())
//	err := tagger.SaveTags(path, audio.TagInfo{Track: track, Album: "Live", Number: 2})
//
// # Playlist Generation
//
//	creator := audio.NewPlaylistCreator(audio.FormatM3U, true) // extended M3U
//	content := creator.CreatePlaylist(album.Title, entries)
//
// Supported formats: M3U (with optional extended info), PLS, WPL, ZPL.
//
// # Track List Export
//
//	content := audio.CreateTrackList(catalog, true)
//	// Profile X, 2 шт.
//	// A - T1: https://...
//	// B - T2: https://...
package audio
