package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog/log"
)

func TestSetup_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")

	closer, err := Setup(path, true)
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	defer Discard()

	log.Debug().Str("track", "A — T").Msg("download failed")
	closer.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"level":"debug"`, `"track":"A — T"`, `"message":"download failed"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("log = %s, missing %s", data, want)
		}
	}
}

func TestSetup_LevelFiltering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	closer, err := Setup(path, false)
	if err != nil {
		t.Fatal(err)
	}
	defer Discard()

	log.Debug().Msg("hidden")
	log.Info().Msg("shown")
	closer.Close()

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "hidden") || !strings.Contains(string(data), "shown") {
		t.Errorf("log = %s", data)
	}
}
