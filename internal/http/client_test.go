package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestClient_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "login" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.Header.Get("Cookie") != "remixsid=abc" {
			t.Errorf("Cookie = %q", r.Header.Get("Cookie"))
		}
		if r.Header.Get("X-Extra") != "1" {
			t.Errorf("X-Extra = %q", r.Header.Get("X-Extra"))
		}
		if r.Header.Get("User-Agent") != "VkMusicDownloader" {
			t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client := NewClient(time.Second)
	body, err := client.Fetch(context.Background(), Request{
		URL:      srv.URL,
		Username: "login",
		Password: "secret",
		Cookie:   "remixsid=abc",
		Header:   map[string]string{"X-Extra": "1"},
	})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(body) != "ok" {
		t.Errorf("body = %q", body)
	}
}

func TestClient_FetchStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Two-Factor", "code please")
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewClient(0).Get(context.Background(), srv.URL)

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("error = %v, want *StatusError", err)
	}
	if statusErr.Code != http.StatusUnauthorized {
		t.Errorf("Code = %d", statusErr.Code)
	}
	if statusErr.Header.Get("X-Two-Factor") != "code please" {
		t.Errorf("header = %q", statusErr.Header.Get("X-Two-Factor"))
	}
}

func TestClient_DownloadFile(t *testing.T) {
	payload := []byte("0123456789")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "track.mp3")
	var last int64
	err := NewClient(time.Second).DownloadFile(context.Background(), srv.URL, dest, func(written, total int64) {
		last = written
	})
	if err != nil {
		t.Fatalf("DownloadFile() error = %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(payload) {
		t.Errorf("content = %q", data)
	}
	if last != int64(len(payload)) {
		t.Errorf("last progress = %d, want %d", last, len(payload))
	}
}

func TestClient_DownloadFileNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "track.mp3")
	if err := NewClient(time.Second).DownloadFile(context.Background(), srv.URL, dest, nil); err == nil {
		t.Fatal("DownloadFile() expected error")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("no file should be created on a failed request")
	}
}

func TestClient_GetFileSize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("method = %s", r.Method)
		}
		w.Header().Set("Content-Length", "1234")
	}))
	defer srv.Close()

	size, err := NewClient(time.Second).GetFileSize(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("GetFileSize() error = %v", err)
	}
	if size != 1234 {
		t.Errorf("size = %d", size)
	}
}
