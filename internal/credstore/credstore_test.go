package credstore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestEncodeDecode(t *testing.T) {
	tests := []struct {
		name string
		in   Credentials
	}{
		{"plain", Credentials{"user", "secret", "https://vk.com/id1"}},
		{"unicode", Credentials{"пользователь", "пароль", "https://vk.com/audios1"}},
		{"separator in password", Credentials{"user", "a|b|c", "link"}},
		{"empty fields", Credentials{"", "", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(Encode(tt.in))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if got != tt.in {
				t.Errorf("Decode(Encode()) = %+v, want %+v", got, tt.in)
			}
		})
	}
}

func TestEncode_Format(t *testing.T) {
	got := string(Encode(Credentials{"a", "b", "c"}))
	// "a|b|c"
	if got != "617c627c63" {
		t.Errorf("Encode() = %q", got)
	}
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not hex", "zz"},
		{"odd length", "617"},
		{"one field", "61"},
		{"two fields", "617c62"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode([]byte(tt.data)); !errors.Is(err, ErrMalformed) {
				t.Errorf("Decode(%q) error = %v, want ErrMalformed", tt.data, err)
			}
		})
	}
}

func TestDecode_TrailingNewline(t *testing.T) {
	got, err := Decode([]byte("617c627c63\n"))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got.ProfileLink != "c" {
		t.Errorf("ProfileLink = %q", got.ProfileLink)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials")
	want := Credentials{"user", "secret", "https://vk.com/id1"}

	if err := Save(path, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("mode = %v, want 0600", perm)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got == nil || *got != want {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}
}

func TestLoad_Missing(t *testing.T) {
	got, err := Load(filepath.Join(t.TempDir(), "missing"))
	if err != nil || got != nil {
		t.Errorf("Load() = %v, %v, want nil, nil", got, err)
	}
}

func TestLoadCookie(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cookie")
	if err := os.WriteFile(path, []byte("remixsid=abc; remixlang=0\n"), 0600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
		want string
	}{
		{"saved", path, "remixsid=abc; remixlang=0"},
		{"missing", filepath.Join(dir, "nope"), ""},
		{"unset", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoadCookie(tt.path)
			if err != nil {
				t.Fatalf("LoadCookie() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("LoadCookie() = %q, want %q", got, tt.want)
			}
		})
	}
}
