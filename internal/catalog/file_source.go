package catalog

import (
	"context"
	"fmt"
	"net/url"
	"os"

	ioutils "github.com/handiism/vkmusic-downloader/internal/io"
	"github.com/handiism/vkmusic-downloader/internal/model"
)

// FileSource reads a catalog document from a local file. The profile link is
// either a path or a file:// URL. Login, password and cookie are ignored.
type FileSource struct{}

// Fetch implements Source.
func (FileSource) Fetch(ctx context.Context, creds Credentials, _ Challenger, progress func(string)) (*model.Catalog, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := creds.ProfileLink
	if u, err := url.Parse(path); err == nil && u.Scheme == "file" {
		path = u.Path
	}
	path = ioutils.ExpandHome(path)
	report(progress, "Reading "+path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return decodeCatalog(data, creds.ProfileLink)
}
