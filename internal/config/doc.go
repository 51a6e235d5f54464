// Package config provides configuration management for vkmusic-downloader.
//
// This package handles:
//   - Loading and saving settings from JSON files
//   - Default configuration values
//   - Conversion to the option types of other packages
//
// # Default Settings
//
//	settings := config.DefaultSettings()
//	// Downloads to ~/Music/VK
//	// Four concurrent downloads, ID3 tagging enabled
//	// Playback through mpv, volume step 2, seek step 2s
//
// # Loading from File
//
//	settings, err := config.Load(config.DefaultPath())
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// Loaded values are passed through Validate, which clamps out-of-range
// numbers instead of failing.
package config
