// Package credstore persists the login form between runs.
//
// The file holds the hex encoding of "login|password|profile_link". It is an
// obfuscation so the password is not stored as plain text at a glance; it is
// not encryption.
package credstore

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrMalformed is returned when a credentials file cannot be decoded.
var ErrMalformed = errors.New("malformed credentials file")

const separator = "|"

// Credentials are the saved login form fields.
type Credentials struct {
	Login       string
	Password    string
	ProfileLink string
}

// Encode returns the lowercase hex form of the credentials.
func Encode(c Credentials) []byte {
	data := strings.Join([]string{c.Login, c.Password, c.ProfileLink}, separator)
	out := make([]byte, hex.EncodedLen(len(data)))
	hex.Encode(out, []byte(data))
	return out
}

// Decode is the inverse of Encode. Surrounding whitespace is ignored.
//
// The password may itself contain the separator; the login is everything
// before the first one and the profile link everything after the last one.
func Decode(data []byte) (Credentials, error) {
	data = bytes.TrimSpace(data)
	raw := make([]byte, hex.DecodedLen(len(data)))
	if _, err := hex.Decode(raw, data); err != nil {
		return Credentials{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	text := string(raw)
	first := strings.Index(text, separator)
	last := strings.LastIndex(text, separator)
	if first < 0 || first == last {
		return Credentials{}, fmt.Errorf("%w: expected 3 fields", ErrMalformed)
	}

	return Credentials{
		Login:       text[:first],
		Password:    text[first+1 : last],
		ProfileLink: text[last+1:],
	}, nil
}

// Save writes the credentials to path with owner-only permissions.
func Save(path string, c Credentials) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return os.WriteFile(path, Encode(c), 0600)
}

// Load reads saved credentials. A missing file yields (nil, nil).
func Load(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	c, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &c, nil
}

// LoadCookie reads a raw Cookie header value saved from a browser session.
// An empty path or a missing file yields "".
func LoadCookie(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
