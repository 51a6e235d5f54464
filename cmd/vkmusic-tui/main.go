package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/handiism/vkmusic-downloader/internal/config"
	"github.com/handiism/vkmusic-downloader/internal/credstore"
	"github.com/handiism/vkmusic-downloader/internal/logging"
	"github.com/handiism/vkmusic-downloader/internal/tui"
)

func main() {
	var (
		configFlag  = pflag.StringP("config", "c", config.DefaultPath(), "Path to config file")
		verboseFlag = pflag.BoolP("verbose", "v", false, "Write debug messages to the log")
	)
	pflag.Parse()

	if err := run(*configFlag, *verboseFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, verbose bool) error {
	settings, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// The terminal belongs to the UI, so logs always go to a file.
	logPath := settings.LogPath
	if logPath == "" {
		logPath = filepath.Join(config.DefaultDir(), "vkmusic.log")
	}
	closer, err := logging.Setup(logPath, verbose)
	if err != nil {
		return fmt.Errorf("opening log: %w", err)
	}
	defer closer.Close()

	creds, err := credstore.Load(settings.CredentialsPath)
	if err != nil {
		log.Warn().Err(err).Msg("ignoring saved credentials")
		creds = nil
	}

	cookie, err := credstore.LoadCookie(settings.CookiePath)
	if err != nil {
		log.Warn().Err(err).Str("path", settings.CookiePath).Msg("ignoring cookie file")
	}

	log.Info().Str("config", configPath).Msg("starting")
	return tui.Run(tui.Options{
		Settings:        settings,
		Credentials:     creds,
		CredentialsPath: settings.CredentialsPath,
		Cookie:          cookie,
	})
}
