// Package http provides the HTTP client shared by the catalog source and the
// download manager.
//
// The Client in this package handles:
//   - User-Agent headers
//   - Basic auth, cookies and extra headers for catalog requests
//   - File downloads with progress tracking
//   - File size retrieval via HEAD requests
//
// # Basic Usage
//
//	client := http.NewClient(settings.Timeout())
//
//	body, err := client.Fetch(ctx, http.Request{URL: link, Username: login, Password: password})
//
//	client.DownloadFile(ctx, track.Link, "/path/to/file.mp3", func(written, total int64) {
//	    fmt.Printf("%.1f%%\n", float64(written)/float64(total)*100)
//	})
//
// Unexpected status codes are returned as *StatusError, which keeps the
// response header for protocol decisions such as two-factor challenges.
package http
