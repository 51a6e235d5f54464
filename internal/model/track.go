package model

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Track represents a single audio record of a profile or an album.
//
// Tracks carry no stable identifier from the source, so ID is assigned
// locally when the catalog is received (see Catalog.AssignIDs). The UI
// stores the ID on its tree nodes and resolves selections through it.
type Track struct {
	// ID is the synthetic identifier assigned at fetch time.
	ID string

	// Artist is the performer as reported by the source.
	Artist string

	// Title is the track title.
	Title string

	// Link is the directly fetchable audio URL, used both for playback
	// and for downloading.
	Link string

	// Duration is the track length in seconds, 0 when unknown.
	Duration float64
}

// TrackConfig holds track file naming settings.
//
// The FileNameFormat supports placeholders that are replaced with actual values:
//   - {artist} - Track artist
//   - {title} - Track title
//   - {album} - Album title (empty for tracks outside albums)
//   - {tracknum} - Position in the download batch (2 digits, zero-padded)
type TrackConfig struct {
	// FileNameFormat is the template for track filenames.
	// Must include the file extension (typically ".mp3").
	FileNameFormat string
}

// DisplayName returns the label shown in the track tree.
func (t *Track) DisplayName() string {
	return fmt.Sprintf("%s — %s", t.Artist, t.Title)
}

// ExportLine returns the line written for the track in a saved track list.
func (t *Track) ExportLine(withLink bool) string {
	if withLink {
		return fmt.Sprintf("%s - %s: %s", t.Artist, t.Title, t.Link)
	}
	return fmt.Sprintf("%s - %s", t.Artist, t.Title)
}

// FileName computes the local file name from the config template.
// number is the 1-based position used for {tracknum}.
func (t *Track) FileName(cfg *TrackConfig, album string, number int) string {
	fileName := cfg.FileNameFormat
	fileName = strings.ReplaceAll(fileName, "{album}", album)
	fileName = strings.ReplaceAll(fileName, "{artist}", t.Artist)
	fileName = strings.ReplaceAll(fileName, "{title}", t.Title)
	fileName = strings.ReplaceAll(fileName, "{tracknum}", fmt.Sprintf("%02d", number))
	fileName = SanitizeFileName(fileName)

	// Windows MAX_PATH leaves little room once the folder is prepended
	if len(fileName) > 200 {
		ext := fileExt(fileName)
		fileName = strings.TrimRight(truncate(fileName, 200-len(ext)), " ") + ext
	}
	return fileName
}

var (
	invalidChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	trailingDots = regexp.MustCompile(`\.+$`)
	multiSpace   = regexp.MustCompile(`\s+`)
)

// SanitizeFileName removes or replaces characters that are invalid in file/folder names.
//
// The following transformations are applied:
//   - Invalid characters (<>:"/\|?* and control chars) are replaced with underscore
//   - Trailing dots are removed (Windows limitation)
//   - Multiple whitespace is collapsed to single space
//   - Trailing whitespace is removed
//
// Example:
//
//	SanitizeFileName("Song: Part 1/2") // Returns "Song_ Part 1_2"
func SanitizeFileName(name string) string {
	name = invalidChars.ReplaceAllString(name, "_")
	name = trailingDots.ReplaceAllString(name, "")
	name = multiSpace.ReplaceAllString(name, " ")
	return strings.TrimRight(name, " ")
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func fileExt(name string) string {
	if i := strings.LastIndex(name, "."); i > 0 && len(name)-i <= 5 {
		return name[i:]
	}
	return ""
}
