package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	vkhttp "github.com/handiism/vkmusic-downloader/internal/http"
	"github.com/handiism/vkmusic-downloader/internal/model"
)

const (
	headerChallenge = "X-Two-Factor"
	headerCode      = "X-Two-Factor-Code"
)

// HTTPSource fetches the catalog document from the profile link.
//
// A 401 answer carrying an X-Two-Factor header is a challenge: the request is
// repeated with the user's code in X-Two-Factor-Code.
type HTTPSource struct {
	client        *vkhttp.Client
	maxChallenges int
}

// NewHTTPSource creates an HTTPSource allowing three challenges per fetch.
func NewHTTPSource(client *vkhttp.Client) *HTTPSource {
	if client == nil {
		client = vkhttp.NewClient(0)
	}
	return &HTTPSource{client: client, maxChallenges: 3}
}

// Fetch implements Source.
func (s *HTTPSource) Fetch(ctx context.Context, creds Credentials, challenge Challenger, progress func(string)) (*model.Catalog, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	report(progress, "Requesting "+creds.ProfileLink)

	req := vkhttp.Request{
		URL:      creds.ProfileLink,
		Username: creds.Login,
		Password: creds.Password,
		Cookie:   creds.Cookie,
	}

	for challenges := 0; ; challenges++ {
		body, err := s.client.Fetch(ctx, req)
		if err == nil {
			c, err := decodeCatalog(body, creds.ProfileLink)
			if err != nil {
				return nil, err
			}
			report(progress, fmt.Sprintf("Received %d tracks and %d albums", len(c.Tracks), len(c.Albums)))
			return c, nil
		}

		var statusErr *vkhttp.StatusError
		if !errors.As(err, &statusErr) || statusErr.Code != http.StatusUnauthorized {
			return nil, fmt.Errorf("fetch %s: %w", creds.ProfileLink, err)
		}

		message := statusErr.Header.Get(headerChallenge)
		if message == "" {
			return nil, errors.New("wrong login or password")
		}
		if challenges >= s.maxChallenges {
			return nil, fmt.Errorf("two-factor code rejected %d times", challenges)
		}
		if challenge == nil {
			return nil, ErrChallengeDeclined
		}

		log.Debug().Str("link", creds.ProfileLink).Int("attempt", challenges+1).Msg("two-factor challenge")

		code, ok := challenge(ctx, message)
		if !ok || code == "" {
			return nil, ErrChallengeDeclined
		}
		req.Header = map[string]string{headerCode: code}
	}
}

func report(progress func(string), message string) {
	if progress != nil {
		progress(message)
	}
}
