package audio

import (
	"strings"

	"github.com/handiism/vkmusic-downloader/internal/model"
)

// CreateTrackList renders the saved track list of a catalog.
//
// The first line is the catalog header ("<summary>, <count> шт."), followed
// by one line per flat track. Album members are not listed. The result
// always ends with a newline and holds exactly len(c.Tracks)+1 lines.
func CreateTrackList(c *model.Catalog, withLinks bool) string {
	var sb strings.Builder

	sb.WriteString(c.Header())
	sb.WriteString("\n")
	for _, track := range c.Tracks {
		sb.WriteString(track.ExportLine(withLinks))
		sb.WriteString("\n")
	}

	return sb.String()
}
