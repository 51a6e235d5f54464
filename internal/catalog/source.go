package catalog

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/handiism/vkmusic-downloader/internal/http"
	"github.com/handiism/vkmusic-downloader/internal/model"
	"github.com/pquerna/otp/totp"
)

var (
	// ErrNoCredentials is returned when the profile link is empty.
	ErrNoCredentials = errors.New("profile link is required")

	// ErrChallengeDeclined is returned when a two-factor prompt was dismissed.
	ErrChallengeDeclined = errors.New("two-factor code was not provided")
)

// Credentials identify the profile whose catalog is fetched.
type Credentials struct {
	Login       string
	Password    string
	ProfileLink string

	// Cookie is sent as-is in the Cookie header when non-empty.
	Cookie string
}

// Validate reports ErrNoCredentials when there is nothing to fetch.
func (c Credentials) Validate() error {
	if strings.TrimSpace(c.ProfileLink) == "" {
		return ErrNoCredentials
	}
	return nil
}

// Challenger asks the user for a one-time two-factor code.
// ok is false when the user declined.
type Challenger func(ctx context.Context, message string) (code string, ok bool)

// Source fetches a catalog.
type Source interface {
	Fetch(ctx context.Context, creds Credentials, challenge Challenger, progress func(string)) (*model.Catalog, error)
}

// NewSource returns an HTTPSource for http(s) links and a FileSource for
// file:// links and plain paths.
func NewSource(link string, client *http.Client) Source {
	u, err := url.Parse(link)
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return NewHTTPSource(client)
	}
	return &FileSource{}
}

// AutoSource chooses the source by the profile link on every fetch.
type AutoSource struct {
	client *http.Client
}

// NewAutoSource creates an AutoSource sharing client between HTTP fetches.
func NewAutoSource(client *http.Client) *AutoSource {
	return &AutoSource{client: client}
}

// Fetch implements Source.
func (s *AutoSource) Fetch(ctx context.Context, creds Credentials, challenge Challenger, progress func(string)) (*model.Catalog, error) {
	return NewSource(creds.ProfileLink, s.client).Fetch(ctx, creds, challenge, progress)
}

// TOTPCode returns the current code for a base32 TOTP secret.
func TOTPCode(secret string) (string, error) {
	return totp.GenerateCode(strings.ToUpper(strings.ReplaceAll(secret, " ", "")), time.Now())
}

// TOTPChallenger answers every challenge with the current TOTP code.
func TOTPChallenger(secret string) Challenger {
	return func(ctx context.Context, message string) (string, bool) {
		code, err := TOTPCode(secret)
		if err != nil {
			return "", false
		}
		return code, true
	}
}
