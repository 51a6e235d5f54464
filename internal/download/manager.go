package download

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/handiism/vkmusic-downloader/internal/audio"
	"github.com/handiism/vkmusic-downloader/internal/config"
	"github.com/handiism/vkmusic-downloader/internal/http"
	ioutils "github.com/handiism/vkmusic-downloader/internal/io"
	"github.com/handiism/vkmusic-downloader/internal/model"
)

var (
	// ErrBusy is returned when a download is already running.
	ErrBusy = errors.New("a download is already in progress")

	// ErrNothingToDownload is returned for a request without tracks.
	ErrNothingToDownload = errors.New("nothing to download")
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a download progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// Request lists what to download and where.
type Request struct {
	// Tracks are saved directly into Directory.
	Tracks []*model.Track

	// Albums are saved into Directory/<album folder>.
	Albums []*model.Album

	Directory string
}

// Total returns the number of tracks in the request.
func (r Request) Total() int {
	total := len(r.Tracks)
	for _, album := range r.Albums {
		total += album.Len()
	}
	return total
}

// job is one track to fetch.
type job struct {
	track   *model.Track
	album   *model.Album
	number  int
	dir     string
	artwork []byte
}

// Manager downloads tracks to disk. It runs one request at a time.
type Manager struct {
	settings     *config.Settings
	trackCfg     *model.TrackConfig
	httpClient   *http.Client
	tagger       *audio.Tagger
	playlist     *audio.PlaylistCreator
	imageService *ioutils.ImageService

	running   atomic.Bool
	total     atomic.Int32
	processed atomic.Int32

	onProgress func(ProgressEvent)
}

// NewManager creates a new download Manager. onProgress may be nil.
func NewManager(settings *config.Settings, onProgress func(ProgressEvent)) *Manager {
	tagCfg := audio.DefaultTagConfig()
	tagCfg.ModifyTags = settings.ModifyTags

	return &Manager{
		settings:     settings,
		trackCfg:     settings.ToTrackConfig(),
		httpClient:   http.NewClient(settings.Timeout()),
		tagger:       audio.NewTagger(tagCfg),
		playlist:     audio.NewPlaylistCreator(settings.ToPlaylistFormat(), settings.M3UExtended),
		imageService: ioutils.NewImageService(),
		onProgress:   onProgress,
	}
}

// GetProgress returns how many tracks of the current request were processed.
func (m *Manager) GetProgress() (done, total int32) {
	return m.processed.Load(), m.total.Load()
}

// Download fetches every track of req and returns a summary message.
//
// Failed tracks are reported through the progress callback and do not stop
// the others. An error is returned only when the context was cancelled or no
// track could be downloaded.
func (m *Manager) Download(ctx context.Context, req Request) (string, error) {
	if !m.running.CompareAndSwap(false, true) {
		return "", ErrBusy
	}
	defer m.running.Store(false)

	total := req.Total()
	if total == 0 {
		return "", ErrNothingToDownload
	}
	m.total.Store(int32(total))
	m.processed.Store(0)

	dir := ioutils.ExpandHome(req.Directory)
	if err := ioutils.EnsureDir(dir); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}

	log.Info().Str("dir", dir).Int("tracks", total).Msg("download started")
	m.progress(ProgressEvent{Message: fmt.Sprintf("Downloading %d tracks to %s", total, dir), Level: LevelInfo})

	jobs := make([]job, 0, total)
	for _, track := range req.Tracks {
		jobs = append(jobs, job{track: track, dir: dir})
	}
	for _, album := range req.Albums {
		albumDir := filepath.Join(dir, album.FolderName())
		if err := ioutils.EnsureDir(albumDir); err != nil {
			return "", fmt.Errorf("create %s: %w", albumDir, err)
		}
		artwork := m.prepareArtwork(ctx, album, albumDir)
		for i, track := range album.Tracks {
			jobs = append(jobs, job{track: track, album: album, number: i + 1, dir: albumDir, artwork: artwork})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.settings.MaxConcurrentDownloads)

	paths := make([]string, len(jobs))
	errs := make([]error, len(jobs))
	var succeeded atomic.Int32
	for i, j := range jobs {
		g.Go(func() error {
			defer m.processed.Add(1)

			path, err := m.downloadTrack(gctx, j)
			if err != nil {
				errs[i] = err
				log.Error().Err(err).Str("track", j.track.DisplayName()).Msg("download failed")
				m.progress(ProgressEvent{Message: fmt.Sprintf("Error downloading %s: %v", j.track.DisplayName(), err), Level: LevelError})
				return nil
			}
			paths[i] = path
			succeeded.Add(1)
			return nil
		})
	}
	g.Wait()

	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("download cancelled: %w", err)
	}
	if succeeded.Load() == 0 {
		return "", fmt.Errorf("no track was downloaded: %w", errors.Join(errs...))
	}

	if m.settings.CreatePlaylist {
		m.writePlaylists(jobs, paths)
	}

	message := fmt.Sprintf("Downloaded %d of %d tracks to %s", succeeded.Load(), total, dir)
	log.Info().Int32("succeeded", succeeded.Load()).Int("total", total).Msg("download finished")
	m.progress(ProgressEvent{Message: message, Level: LevelSuccess})
	return message, nil
}

// prepareArtwork downloads the album cover, saves it next to the tracks and
// returns the copy to embed in tags (nil when tags should not carry it).
func (m *Manager) prepareArtwork(ctx context.Context, album *model.Album, albumDir string) []byte {
	if !album.HasCover() || (!m.settings.SaveCoverArtInFolder && !m.settings.SaveCoverArtInTags) {
		return nil
	}

	var artwork []byte
	var err error
	for tries := 0; tries < m.settings.DownloadMaxRetries; tries++ {
		artwork, err = m.httpClient.DownloadBytes(ctx, album.CoverURL)
		if err == nil {
			break
		}
		m.waitForRetry(ctx, tries)
	}
	if err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error downloading cover for %s: %v", album.Title, err), Level: LevelWarning})
		return nil
	}

	cover, err := m.imageService.FitJPEG(ctx, artwork, m.settings.CoverArtMaxSize)
	if err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error converting cover for %s: %v", album.Title, err), Level: LevelWarning})
		return nil
	}

	if m.settings.SaveCoverArtInFolder {
		if err := ioutils.WriteFile(filepath.Join(albumDir, "cover.jpg"), cover); err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error saving cover: %v", err), Level: LevelWarning})
		}
	}

	m.progress(ProgressEvent{Message: fmt.Sprintf("Downloaded cover for %s", album.Title), Level: LevelVerbose})
	if !m.settings.SaveCoverArtInTags {
		return nil
	}
	return cover
}

func (m *Manager) downloadTrack(ctx context.Context, j job) (string, error) {
	albumTitle := ""
	if j.album != nil {
		albumTitle = j.album.Title
	}
	path := filepath.Join(j.dir, j.track.FileName(m.trackCfg, albumTitle, j.number))

	if m.alreadyDownloaded(ctx, j.track, path) {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Skipping existing: %s", filepath.Base(path)), Level: LevelVerbose})
		return path, nil
	}

	var err error
	for tries := 0; tries < m.settings.DownloadMaxRetries; tries++ {
		err = m.httpClient.DownloadFile(ctx, j.track.Link, path, m.byteProgress(j.track))
		if err == nil || ctx.Err() != nil {
			break
		}
		log.Debug().Err(err).Str("track", j.track.DisplayName()).Int("attempt", tries+1).Msg("retrying")
		m.progress(ProgressEvent{Message: fmt.Sprintf("Retry %d/%d for %s", tries+1, m.settings.DownloadMaxRetries, j.track.Title), Level: LevelWarning})
		m.waitForRetry(ctx, tries)
	}
	if err != nil {
		return "", err
	}

	if m.settings.ModifyTags || j.artwork != nil {
		info := audio.TagInfo{Track: j.track, Album: albumTitle, Number: j.number, Artwork: j.artwork}
		if err := m.tagger.SaveTags(path, info); err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error tagging %s: %v", j.track.Title, err), Level: LevelWarning})
		}
	}

	m.progress(ProgressEvent{Message: fmt.Sprintf("Downloaded: %s", filepath.Base(path)), Level: LevelVerbose})
	return path, nil
}

// byteProgress reports a verbose event each time another quarter of the
// track has been received. Responses without a length are not reported.
func (m *Manager) byteProgress(track *model.Track) func(written, total int64) {
	var reported int64
	return func(written, total int64) {
		if total <= 0 {
			return
		}
		quarter := min(written*4/total, 4)
		if quarter <= reported {
			return
		}
		reported = quarter
		m.progress(ProgressEvent{Message: fmt.Sprintf("Receiving %s: %d%%", track.Title, quarter*25), Level: LevelVerbose})
	}
}

// alreadyDownloaded reports whether path holds a file whose size is within
// the allowed difference from the remote one.
func (m *Manager) alreadyDownloaded(ctx context.Context, track *model.Track, path string) bool {
	size, ok := ioutils.FileSize(path)
	if !ok {
		return false
	}
	expected, err := m.httpClient.GetFileSize(ctx, track.Link)
	if err != nil || expected <= 0 {
		return false
	}
	diff := float64(size-expected) / float64(expected)
	return math.Abs(diff) <= m.settings.AllowedFileSizeDifference
}

func (m *Manager) writePlaylists(jobs []job, paths []string) {
	entries := make(map[*model.Album][]audio.Entry)
	var order []*model.Album
	for i, j := range jobs {
		if j.album == nil || paths[i] == "" {
			continue
		}
		if _, seen := entries[j.album]; !seen {
			order = append(order, j.album)
		}
		entries[j.album] = append(entries[j.album], audio.Entry{Track: j.track, Path: paths[i]})
	}

	for _, album := range order {
		dir := filepath.Dir(entries[album][0].Path)
		path := filepath.Join(dir, album.FolderName()+m.playlist.Format().Extension())
		content := m.playlist.CreatePlaylist(album.Title, entries[album])
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error creating playlist: %v", err), Level: LevelWarning})
			continue
		}
		m.progress(ProgressEvent{Message: fmt.Sprintf("Created playlist for %s", album.Title), Level: LevelSuccess})
	}
}

func (m *Manager) waitForRetry(ctx context.Context, tries int) {
	cooldown := m.settings.DownloadRetryCooldown * math.Pow(m.settings.DownloadRetryExponent, float64(tries))
	select {
	case <-ctx.Done():
	case <-time.After(time.Duration(cooldown * float64(time.Second))):
	}
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}
