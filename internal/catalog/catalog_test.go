package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"

	vkhttp "github.com/handiism/vkmusic-downloader/internal/http"
	"github.com/handiism/vkmusic-downloader/internal/model"
)

const catalogJSON = `{
  "summary": "Profile X",
  "tracks": [
    {"artist": "A", "title": "T1", "url": "u1", "duration": 61},
    {"artist": "B", "title": "T2", "url": "u2"}
  ],
  "albums": [
    {"title": "Album", "cover": "c1", "tracks": [{"artist": "C", "title": "T3", "url": "u3"}]}
  ]
}`

func TestDecodeCatalog(t *testing.T) {
	c, err := decodeCatalog([]byte(catalogJSON), "link")
	if err != nil {
		t.Fatalf("decodeCatalog() error = %v", err)
	}

	if c.Summary != "Profile X" {
		t.Errorf("Summary = %q", c.Summary)
	}
	if len(c.Tracks) != 2 || len(c.Albums) != 1 {
		t.Fatalf("got %d tracks, %d albums", len(c.Tracks), len(c.Albums))
	}
	if c.Tracks[0].Link != "u1" || c.Tracks[0].Duration != 61 {
		t.Errorf("track[0] = %+v", c.Tracks[0])
	}
	if c.Albums[0].CoverURL != "c1" || c.Albums[0].Tracks[0].Title != "T3" {
		t.Errorf("album = %+v", c.Albums[0])
	}
}

func TestDecodeCatalog_SummaryFallback(t *testing.T) {
	c, err := decodeCatalog([]byte(`{"tracks": []}`), "https://vk.com/id1")
	if err != nil {
		t.Fatal(err)
	}
	if c.Summary != "Profile https://vk.com/id1" {
		t.Errorf("Summary = %q", c.Summary)
	}
}

func TestEncodeCatalog(t *testing.T) {
	src := &model.Catalog{
		Summary: "Profile X",
		Tracks:  []*model.Track{{Artist: "A", Title: "T1", Link: "u1"}},
		Albums:  []*model.Album{{Title: "Album", Tracks: []*model.Track{{Artist: "B", Title: "T2", Link: "u2"}}}},
	}

	data, err := EncodeCatalog(src)
	if err != nil {
		t.Fatalf("EncodeCatalog() error = %v", err)
	}
	got, err := decodeCatalog(data, "")
	if err != nil {
		t.Fatal(err)
	}
	if got.TotalTracks() != 2 || got.Albums[0].Tracks[0].Link != "u2" {
		t.Errorf("decoded = %+v", got)
	}
}

func TestHTTPSource_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, pass, _ := r.BasicAuth(); user != "login" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(catalogJSON))
	}))
	defer srv.Close()

	var messages []string
	source := NewHTTPSource(vkhttp.NewClient(time.Second))
	c, err := source.Fetch(context.Background(), Credentials{Login: "login", Password: "secret", ProfileLink: srv.URL}, nil, func(m string) {
		messages = append(messages, m)
	})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if c.TotalTracks() != 3 {
		t.Errorf("TotalTracks() = %d", c.TotalTracks())
	}
	if len(messages) == 0 {
		t.Error("no progress reported")
	}
}

func TestHTTPSource_WrongPassword(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewHTTPSource(nil).Fetch(context.Background(), Credentials{ProfileLink: srv.URL}, nil, nil)
	if err == nil {
		t.Fatal("Fetch() expected error")
	}
}

func twoFactorServer(t *testing.T, code string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Two-Factor-Code") != code {
			w.Header().Set("X-Two-Factor", "Enter the code from the SMS")
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(catalogJSON))
	}))
}

func TestHTTPSource_TwoFactor(t *testing.T) {
	srv := twoFactorServer(t, "123456")
	defer srv.Close()

	tests := []struct {
		name    string
		answers []string
		wantErr error
		ok      bool
	}{
		{"first try", []string{"123456"}, nil, true},
		{"second try", []string{"000000", "123456"}, nil, true},
		{"declined", nil, ErrChallengeDeclined, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asked := 0
			challenge := func(ctx context.Context, message string) (string, bool) {
				if message != "Enter the code from the SMS" {
					t.Errorf("message = %q", message)
				}
				if asked >= len(tt.answers) {
					return "", false
				}
				asked++
				return tt.answers[asked-1], true
			}

			c, err := NewHTTPSource(nil).Fetch(context.Background(), Credentials{ProfileLink: srv.URL}, challenge, nil)
			if tt.ok {
				if err != nil || c == nil {
					t.Fatalf("Fetch() = %v, %v", c, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Fetch() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestHTTPSource_TooManyChallenges(t *testing.T) {
	srv := twoFactorServer(t, "never")
	defer srv.Close()

	asked := 0
	challenge := func(ctx context.Context, message string) (string, bool) {
		asked++
		return "wrong", true
	}

	if _, err := NewHTTPSource(nil).Fetch(context.Background(), Credentials{ProfileLink: srv.URL}, challenge, nil); err == nil {
		t.Fatal("Fetch() expected error")
	}
	if asked != 3 {
		t.Errorf("asked %d times, want 3", asked)
	}
}

func TestFileSource_Fetch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, []byte(catalogJSON), 0644); err != nil {
		t.Fatal(err)
	}

	for _, link := range []string{path, "file://" + path} {
		c, err := FileSource{}.Fetch(context.Background(), Credentials{ProfileLink: link}, nil, nil)
		if err != nil {
			t.Fatalf("Fetch(%q) error = %v", link, err)
		}
		if len(c.Tracks) != 2 {
			t.Errorf("Fetch(%q) tracks = %d", link, len(c.Tracks))
		}
	}
}

func TestNewSource(t *testing.T) {
	tests := []struct {
		link   string
		isHTTP bool
	}{
		{"https://vk.com/audios1", true},
		{"http://localhost:8080/catalog", true},
		{"file:///tmp/catalog.json", false},
		{"/tmp/catalog.json", false},
	}

	for _, tt := range tests {
		_, isHTTP := NewSource(tt.link, nil).(*HTTPSource)
		if isHTTP != tt.isHTTP {
			t.Errorf("NewSource(%q) http = %v, want %v", tt.link, isHTTP, tt.isHTTP)
		}
	}
}

func TestTOTPChallenger(t *testing.T) {
	const secret = "JBSWY3DPEHPK3PXP"

	code, ok := TOTPChallenger(secret)(context.Background(), "code?")
	if !ok {
		t.Fatal("challenger declined")
	}
	if !totp.Validate(code, secret) {
		t.Errorf("code %q does not validate", code)
	}

	if _, ok := TOTPChallenger("not base32 !!")(context.Background(), "code?"); ok {
		t.Error("invalid secret should decline")
	}
}

type fakeSource struct {
	catalog   *model.Catalog
	err       error
	challenge string
}

func (f *fakeSource) Fetch(ctx context.Context, creds Credentials, challenge Challenger, progress func(string)) (*model.Catalog, error) {
	progress("working")
	if f.challenge != "" {
		code, ok := challenge(ctx, f.challenge)
		if !ok {
			return nil, ErrChallengeDeclined
		}
		f.catalog.Summary = "code " + code
	}
	return f.catalog, f.err
}

func collect(t *testing.T, events <-chan Event, onChallenge func(*Challenge)) []Event {
	t.Helper()
	var out []Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return out
			}
			if ch, isChallenge := ev.(*Challenge); isChallenge && onChallenge != nil {
				onChallenge(ch)
			}
			out = append(out, ev)
		case <-timeout:
			t.Fatal("worker did not finish")
		}
	}
}

func TestWorker_Success(t *testing.T) {
	source := &fakeSource{catalog: &model.Catalog{Tracks: []*model.Track{{Artist: "A", Title: "T"}}}}

	events := collect(t, NewWorker(source).Start(context.Background(), Credentials{ProfileLink: "x"}), nil)

	if len(events) != 2 {
		t.Fatalf("got %d events", len(events))
	}
	if _, ok := events[0].(ProgressEvent); !ok {
		t.Errorf("events[0] = %T", events[0])
	}
	done, ok := events[len(events)-1].(DoneEvent)
	if !ok || done.Err != nil || done.Catalog == nil {
		t.Fatalf("last event = %#v", events[len(events)-1])
	}
	if done.Catalog.Tracks[0].ID == "" {
		t.Error("IDs were not assigned")
	}
}

func TestWorker_Failure(t *testing.T) {
	source := &fakeSource{err: errors.New("boom")}

	events := collect(t, NewWorker(source).Start(context.Background(), Credentials{ProfileLink: "x"}), nil)

	done, ok := events[len(events)-1].(DoneEvent)
	if !ok || done.Err == nil || done.Catalog != nil {
		t.Errorf("last event = %#v", events[len(events)-1])
	}
}

func TestWorker_NoCredentials(t *testing.T) {
	events := collect(t, NewWorker(&fakeSource{}).Start(context.Background(), Credentials{}), nil)

	if len(events) != 1 {
		t.Fatalf("got %d events", len(events))
	}
	if done := events[0].(DoneEvent); !errors.Is(done.Err, ErrNoCredentials) {
		t.Errorf("Err = %v", done.Err)
	}
}

func TestWorker_Challenge(t *testing.T) {
	tests := []struct {
		name    string
		ok      bool
		summary string
		wantErr error
	}{
		{"answered", true, "code 42", nil},
		{"declined", false, "", ErrChallengeDeclined},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := &fakeSource{catalog: &model.Catalog{}, challenge: "code?"}

			events := collect(t, NewWorker(source).Start(context.Background(), Credentials{ProfileLink: "x"}), func(c *Challenge) {
				if c.Message != "code?" {
					t.Errorf("Message = %q", c.Message)
				}
				c.Answer("42", tt.ok)
				c.Answer("ignored", true)
			})

			done := events[len(events)-1].(DoneEvent)
			if !errors.Is(done.Err, tt.wantErr) {
				t.Fatalf("Err = %v, want %v", done.Err, tt.wantErr)
			}
			if tt.ok && done.Catalog.Summary != tt.summary {
				t.Errorf("Summary = %q, want %q", done.Catalog.Summary, tt.summary)
			}
		})
	}
}

func TestWorker_CancelledDuringChallenge(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	source := &fakeSource{catalog: &model.Catalog{}, challenge: "code?"}

	collect(t, NewWorker(source).Start(ctx, Credentials{ProfileLink: "x"}), func(c *Challenge) {
		cancel()
	})
}
