package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/handiism/vkmusic-downloader/internal/audio"
	"github.com/handiism/vkmusic-downloader/internal/model"
)

// Settings holds all configuration options.
type Settings struct {
	// Download settings
	DownloadsPath             string  `json:"downloads_path"`
	MaxConcurrentDownloads    int     `json:"max_concurrent_downloads"`
	DownloadMaxRetries        int     `json:"download_max_retries"`
	DownloadRetryCooldown     float64 `json:"download_retry_cooldown"`
	DownloadRetryExponent     float64 `json:"download_retry_exponent"`
	AllowedFileSizeDifference float64 `json:"allowed_file_size_difference"`
	RequestTimeout            float64 `json:"request_timeout"` // seconds

	// File naming
	FileNameFormat string `json:"file_name_format"`

	// Cover art settings
	SaveCoverArtInFolder bool `json:"save_cover_art_in_folder"`
	SaveCoverArtInTags   bool `json:"save_cover_art_in_tags"`
	CoverArtMaxSize      int  `json:"cover_art_max_size"`

	// Playlist settings
	CreatePlaylist bool   `json:"create_playlist"`
	PlaylistFormat string `json:"playlist_format"` // m3u, pls, wpl, zpl
	M3UExtended    bool   `json:"m3u_extended"`

	// Tag settings
	ModifyTags bool `json:"modify_tags"`

	// Playback settings
	PlayerPath    string `json:"player_path"`
	InitialVolume int    `json:"initial_volume"`
	VolumeStep    int    `json:"volume_step"`
	SeekStepMs    int    `json:"seek_step_ms"`

	// Account settings
	CredentialsPath string `json:"credentials_path"`
	CookiePath      string `json:"cookie_path"`
	TOTPSecret      string `json:"totp_secret"`

	// Logging
	LogPath string `json:"log_path"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	configDir := DefaultDir()
	return &Settings{
		DownloadsPath:             filepath.Join(homeDir, "Music", "VK"),
		MaxConcurrentDownloads:    4,
		DownloadMaxRetries:        5,
		DownloadRetryCooldown:     0.2,
		DownloadRetryExponent:     4.0,
		AllowedFileSizeDifference: 0.05,
		RequestTimeout:            60,

		FileNameFormat: "{artist} - {title}.mp3",

		SaveCoverArtInFolder: true,
		SaveCoverArtInTags:   true,
		CoverArtMaxSize:      1000,

		CreatePlaylist: false,
		PlaylistFormat: "m3u",
		M3UExtended:    true,

		ModifyTags: true,

		PlayerPath:    "mpv",
		InitialVolume: 100,
		VolumeStep:    2,
		SeekStepMs:    2000,

		CredentialsPath: filepath.Join(configDir, "credentials"),
		CookiePath:      filepath.Join(configDir, "cookie"),

		LogPath: filepath.Join(configDir, "vkmusic.log"),
	}
}

// DefaultDir returns the directory holding the config, credentials and log files.
func DefaultDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "vkmusic")
}

// DefaultPath returns the default location of the settings file.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "config.json")
}

// Load reads settings from a JSON file.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, err
	}
	settings.Validate()

	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate clamps out-of-range values to usable ones.
func (s *Settings) Validate() {
	if s.MaxConcurrentDownloads < 1 {
		s.MaxConcurrentDownloads = 1
	}
	if s.DownloadMaxRetries < 1 {
		s.DownloadMaxRetries = 1
	}
	if s.InitialVolume < 0 {
		s.InitialVolume = 0
	}
	if s.InitialVolume > 100 {
		s.InitialVolume = 100
	}
	if s.VolumeStep <= 0 {
		s.VolumeStep = 2
	}
	if s.SeekStepMs <= 0 {
		s.SeekStepMs = 2000
	}
	if s.RequestTimeout <= 0 {
		s.RequestTimeout = 60
	}
	if s.FileNameFormat == "" {
		s.FileNameFormat = "{artist} - {title}.mp3"
	}
}

// SeekStep returns the playback seek offset.
func (s *Settings) SeekStep() time.Duration {
	return time.Duration(s.SeekStepMs) * time.Millisecond
}

// Timeout returns the HTTP request timeout.
func (s *Settings) Timeout() time.Duration {
	return time.Duration(s.RequestTimeout * float64(time.Second))
}

// ToTrackConfig converts settings to TrackConfig.
func (s *Settings) ToTrackConfig() *model.TrackConfig {
	return &model.TrackConfig{
		FileNameFormat: s.FileNameFormat,
	}
}

// ToPlaylistFormat converts the playlist_format setting.
func (s *Settings) ToPlaylistFormat() audio.PlaylistFormat {
	switch s.PlaylistFormat {
	case "pls":
		return audio.FormatPLS
	case "wpl":
		return audio.FormatWPL
	case "zpl":
		return audio.FormatZPL
	default:
		return audio.FormatM3U
	}
}
