// Package download saves tracks and albums of a catalog to disk.
//
// # Manager
//
// The Manager runs one Request at a time:
//
//  1. Create the target directory and one folder per album
//  2. Download and resize album covers
//  3. Download tracks concurrently, skipping files already present
//  4. Tag MP3 files with ID3 metadata
//  5. Generate album playlists (optional)
//
// # Basic Usage
//
//	manager := download.NewManager(settings, func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//
//	message, err := manager.Download(ctx, download.Request{
//	    Tracks:    catalog.Tracks,
//	    Albums:    catalog.Albums,
//	    Directory: settings.DownloadsPath,
//	})
//
// # Concurrency
//
// settings.MaxConcurrentDownloads bounds how many tracks are fetched at once;
// 1 downloads sequentially. A second Download while one is running returns
// ErrBusy.
//
// # Progress Tracking
//
// GetProgress reports how many tracks were processed so far. Messages are
// delivered to the callback as ProgressEvent values.
//
// # Retry Logic
//
// Failed downloads are retried with exponential backoff, configurable via
// settings.DownloadMaxRetries, settings.DownloadRetryCooldown and
// settings.DownloadRetryExponent.
package download
