package download

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"qbz/internal/archive"
	"qbz/internal/audio"
	"qbz/internal/fsutil"
	"qbz/internal/model"
	"qbz/internal/qobuz"
	"qbz/internal/resolve"
)

const defaultWorkers = 3

// Config holds the session-wide download settings.
type Config struct {
	// Quality is the requested tier (5, 6, 7 or 27).
	Quality model.Quality

	// MaxWorkers bounds the number of tracks in flight at once.
	MaxWorkers int

	// BaseDir is the root of the output tree.
	BaseDir string

	// OutputTemplate lays out the per-track path under BaseDir.
	// Empty selects DefaultTemplate.
	OutputTemplate string

	// EmbedArt embeds cover.jpg into MP3 downloads.
	EmbedArt bool

	// NoCover skips the per-album cover.jpg download.
	NoCover bool

	// OGCover requests the original uncompressed cover upload.
	OGCover bool

	// CoverSize, when positive, scales the saved cover down to fit
	// this dimension. Ignored with OGCover.
	CoverSize int

	// AlbumsOnly skips non-album releases (EPs, singles, compilations)
	// when draining artist and label collections.
	AlbumsOnly bool

	// QualityFallback accepts a server-side format downgrade instead
	// of skipping the release.
	QualityFallback bool

	// SmartDiscography, SaveSpace and SkipExtras tune the artist
	// discography filter; see resolve.FilterDiscography.
	SmartDiscography bool
	SaveSpace        bool
	SkipExtras       bool

	// DryRun resolves and logs every track without writing files.
	DryRun bool

	// NoPlaylistFiles disables writing .m3u files for playlists.
	NoPlaylistFiles bool
}

// Manager drives download sessions: it resolves URLs into albums and
// tracks, schedules bounded-concurrency downloads and keeps the
// session stats. One Manager serves one session; it is safe to call
// Handle from a single goroutine while downloads fan out internally.
type Manager struct {
	client   *qobuz.Client
	cfg      Config
	arch     *archive.Archive
	stats    *model.SessionStats
	log      *log.Logger
	sink     ProgressSink
	resolver *resolve.Resolver

	mu         sync.Mutex
	extrasDone map[string]struct{}

	plMu      sync.Mutex
	plEntries []audio.PlaylistEntry
}

// New creates a Manager. arch may be nil to disable the download
// archive; sink may be nil to discard progress.
func New(client *qobuz.Client, cfg Config, arch *archive.Archive, logger *log.Logger, sink ProgressSink) *Manager {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if sink == nil {
		sink = NopSink{}
	}
	if cfg.OutputTemplate == "" {
		cfg.OutputTemplate = DefaultTemplate
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = defaultWorkers
	}
	return &Manager{
		client:     client,
		cfg:        cfg,
		arch:       arch,
		stats:      model.NewSessionStats(),
		log:        logger,
		sink:       sink,
		resolver:   resolve.NewResolver(client, logger),
		extrasDone: make(map[string]struct{}),
	}
}

// Stats exposes the session counters.
func (m *Manager) Stats() *model.SessionStats { return m.stats }

// HandleAll processes a list of inputs, each either a Qobuz URL or a
// path to a text file of URLs (one per line). Recoverable failures are
// logged and counted; fatal session errors abort the run.
func (m *Manager) HandleAll(ctx context.Context, inputs []string) error {
	for _, input := range inputs {
		urls, err := expandInput(input)
		if err != nil {
			m.log.Error("skipping input", "input", input, "err", err)
			m.stats.AddFailed()
			continue
		}
		for _, u := range urls {
			if err := m.Handle(ctx, u); err != nil {
				if qobuz.IsFatal(err) || ctx.Err() != nil {
					return err
				}
				m.log.Error("skipping", "url", u, "err", err)
				m.stats.AddFailed()
			}
		}
	}
	return nil
}

// expandInput turns one command-line input into URLs. Anything that is
// not itself a URL is treated as a text file of URLs.
func expandInput(input string) ([]string, error) {
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		return []string{input}, nil
	}

	f, err := os.Open(input)
	if err != nil {
		return nil, fmt.Errorf("not a URL and not a readable file: %w", err)
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "http://") || strings.HasPrefix(line, "https://") {
			urls = append(urls, line)
		}
	}
	return urls, scanner.Err()
}

// Handle resolves one URL and downloads everything it refers to.
// Failures of individual tracks inside a collection are recorded and
// swallowed; the returned error is either fatal for the session or
// covers the whole item (bad URL, unfetchable album).
func (m *Manager) Handle(ctx context.Context, rawurl string) error {
	ref, err := resolve.ParseURL(rawurl)
	if err != nil {
		return err
	}

	resolved, err := m.resolver.Resolve(ctx, ref, resolve.Options{
		SmartDiscography: m.cfg.SmartDiscography,
		SaveSpace:        m.cfg.SaveSpace,
		SkipExtras:       m.cfg.SkipExtras,
	})
	if err != nil {
		return err
	}

	switch ref.Type {
	case model.ContentAlbum:
		album, err := m.client.Album(ctx, ref.ID)
		if err != nil {
			return err
		}
		return m.downloadAlbum(ctx, album)

	case model.ContentTrack:
		id, err := strconv.ParseInt(ref.ID, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: bad track id %q", resolve.ErrInvalidURL, ref.ID)
		}
		return m.downloadTrackByID(ctx, id, "")

	case model.ContentArtist, model.ContentLabel:
		return m.downloadAlbumList(ctx, resolved.Name, resolved.Albums)

	case model.ContentPlaylist:
		return m.downloadPlaylist(ctx, resolved.Name, resolved.Tracks)
	}
	return nil
}

// downloadAlbumList drains an artist or label collection, isolating
// per-album failures.
func (m *Manager) downloadAlbumList(ctx context.Context, name string, albums []*qobuz.Album) error {
	m.log.Info("downloading collection", "name", name, "releases", len(albums))
	for _, a := range albums {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		album, err := m.client.Album(ctx, a.ID)
		if err == nil {
			err = m.downloadAlbum(ctx, album)
		}
		if err != nil {
			if qobuz.IsFatal(err) {
				return err
			}
			m.log.Error("skipping release", "album", a.FullTitle(), "err", err)
			m.stats.AddFailed()
		}
	}
	return nil
}

func (m *Manager) downloadAlbum(ctx context.Context, album *qobuz.Album) error {
	if !album.Streamable {
		return fmt.Errorf("%s: %w", album.FullTitle(), qobuz.ErrNonStreamable)
	}
	if m.cfg.AlbumsOnly && (album.ReleaseType != "album" || album.ArtistName() == "Various Artists") {
		m.log.Info("not a studio album, skipping", "release", album.FullTitle(), "type", album.ReleaseType)
		return nil
	}

	m.log.Info("downloading album", "album", album.FullTitle(), "artist", album.ArtistName())
	m.stats.MarkProcessed(album.ArtistName() + " - " + album.FullTitle())

	var tracks []*qobuz.Track
	if album.Tracks != nil {
		tracks = album.Tracks.Items
	}

	pending := tracks[:0:0]
	for _, t := range tracks {
		if m.arch.Contains(strconv.FormatInt(t.ID, 10)) {
			m.stats.AddSkippedArchive(1)
			continue
		}
		pending = append(pending, t)
	}
	if skipped := len(tracks) - len(pending); skipped > 0 {
		m.log.Info("tracks already in archive", "album", album.FullTitle(), "count", skipped)
	}
	if len(pending) == 0 {
		return nil
	}

	jobs, err := m.resolveJobs(ctx, pending, album, "")
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		return nil
	}

	// Negotiate once per album; all tracks of a release share a format.
	format, met := Negotiate(m.cfg.Quality, jobs[0].file)
	if !met {
		if !m.cfg.QualityFallback {
			m.log.Warn("requested quality not available, skipping", "album", album.FullTitle())
			return nil
		}
		m.log.Warn("requested quality not available, falling back", "album", album.FullTitle(), "format", format)
	}

	total := m.totalSize(ctx, jobs)
	m.sink.GrowTotal(total)
	m.log.Info("album size", "album", album.FullTitle(), "size", humanSize(total))

	return m.runJobs(ctx, jobs)
}

// resolveJobs fetches stream descriptors for a set of tracks with
// bounded concurrency. Per-track resolution failures are counted and
// dropped; demo/sample streams are dropped without counting as
// failures; fatal errors abort.
func (m *Manager) resolveJobs(ctx context.Context, tracks []*qobuz.Track, release *qobuz.Album, playlist string) ([]*trackJob, error) {
	results := make([]*trackJob, len(tracks))

	var g errgroup.Group
	g.SetLimit(m.cfg.MaxWorkers)
	for i, t := range tracks {
		i, t := i, t
		g.Go(func() error {
			fu, err := m.client.FileURL(ctx, t.ID, m.cfg.Quality)
			if err != nil {
				if qobuz.IsFatal(err) || ctx.Err() != nil {
					return err
				}
				m.log.Error("resolving stream", "track", t.FullTitle(), "err", err)
				m.stats.AddFailed()
				return nil
			}
			if fu.IsSample() {
				m.log.Info("demo stream, skipping", "track", t.FullTitle())
				return nil
			}
			results[i] = &trackJob{track: t, release: release, file: fu, playlist: playlist}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	jobs := results[:0:0]
	for _, j := range results {
		if j != nil {
			jobs = append(jobs, j)
		}
	}
	return jobs, nil
}

// runJobs materializes jobs with bounded concurrency. One track's
// failure never cancels its siblings; only fatal errors and context
// cancellation propagate.
func (m *Manager) runJobs(ctx context.Context, jobs []*trackJob) error {
	var g errgroup.Group
	g.SetLimit(m.cfg.MaxWorkers)
	for _, job := range jobs {
		job := job
		g.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err := m.materialize(ctx, job); err != nil {
				if qobuz.IsFatal(err) || ctx.Err() != nil {
					return err
				}
				m.log.Error("download failed", "track", job.describe(), "err", err)
				m.stats.AddFailed()
			}
			return nil
		})
	}
	return g.Wait()
}

// downloadTrackByID fetches and materializes one standalone track.
func (m *Manager) downloadTrackByID(ctx context.Context, id int64, playlist string) error {
	if m.arch.Contains(strconv.FormatInt(id, 10)) {
		m.log.Info("track already in archive, skipping", "id", id)
		m.stats.AddSkippedArchive(1)
		return nil
	}

	track, err := m.client.Track(ctx, id)
	if err != nil {
		return err
	}
	if !track.Streamable {
		return fmt.Errorf("%s: %w", track.FullTitle(), qobuz.ErrNonStreamable)
	}
	if playlist == "" {
		m.stats.MarkProcessed(track.PerformerName() + " - " + track.FullTitle())
	}

	fu, err := m.client.FileURL(ctx, track.ID, m.cfg.Quality)
	if err != nil {
		return err
	}
	if fu.IsSample() {
		m.log.Info("demo stream, skipping", "track", track.FullTitle())
		return nil
	}
	if format, met := Negotiate(m.cfg.Quality, fu); !met {
		if !m.cfg.QualityFallback {
			m.log.Warn("requested quality not available, skipping", "track", track.FullTitle())
			return nil
		}
		m.log.Warn("requested quality not available, falling back", "track", track.FullTitle(), "format", format)
	}
	m.sink.GrowTotal(fu.DeclaredSize())

	return m.materialize(ctx, &trackJob{track: track, release: track.Album, file: fu, playlist: playlist})
}

// downloadPlaylist handles every member as a standalone track and then
// writes the playlist file referencing the finished ones.
func (m *Manager) downloadPlaylist(ctx context.Context, name string, tracks []*qobuz.Track) error {
	m.log.Info("downloading playlist", "playlist", name, "tracks", len(tracks))
	m.stats.MarkProcessed(name)

	m.plMu.Lock()
	m.plEntries = nil
	m.plMu.Unlock()

	var g errgroup.Group
	g.SetLimit(m.cfg.MaxWorkers)
	for _, t := range tracks {
		t := t
		g.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err := m.downloadTrackByID(ctx, t.ID, name); err != nil {
				if qobuz.IsFatal(err) || ctx.Err() != nil {
					return err
				}
				m.log.Error("download failed", "track", t.FullTitle(), "err", err)
				m.stats.AddFailed()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if m.cfg.NoPlaylistFiles || m.cfg.DryRun {
		return nil
	}
	m.plMu.Lock()
	entries := m.plEntries
	m.plMu.Unlock()
	if len(entries) == 0 {
		return nil
	}

	path := filepath.Join(m.cfg.BaseDir, fsutil.SanitizeFileName(name)+".m3u")
	if err := audio.WriteM3U(path, entries); err != nil {
		return fmt.Errorf("writing playlist file: %w", err)
	}
	m.log.Info("wrote playlist", "file", path, "entries", len(entries))
	return nil
}
