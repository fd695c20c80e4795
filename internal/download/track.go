package download

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"qbz/internal/audio"
	"qbz/internal/fsutil"
	"qbz/internal/model"
	"qbz/internal/qobuz"
)

// trackJob is one track scheduled for materialization, with its parent
// release and resolved stream descriptor. playlist carries the playlist
// name when the track was scheduled through one, so the finished file
// can be recorded for the playlist file.
type trackJob struct {
	track    *qobuz.Track
	release  *qobuz.Album
	file     *qobuz.FileURL
	playlist string
}

func (j *trackJob) describe() string {
	artist := j.track.PerformerName()
	if artist == "" && j.release != nil {
		artist = j.release.ArtistName()
	}
	return artist + " - " + j.track.FullTitle()
}

// materialize turns a resolved track job into a finished file on disk.
//
// The stream goes to a hidden temp file first and is tagged there;
// only a fully downloaded and tagged file is renamed into place, so an
// interrupted run never leaves a file that looks complete. A failed
// download removes the temp file; a failed tag leaves it for
// inspection.
func (m *Manager) materialize(ctx context.Context, job *trackJob) error {
	vars := trackVars(job.track, job.release, job.file)
	rendered, err := RenderTemplate(m.cfg.OutputTemplate, vars)
	if err != nil {
		return fmt.Errorf("%s: %w", job.describe(), err)
	}
	rel := fsutil.SanitizeFilePath(rendered)
	if !strings.HasSuffix(rel, "."+vars["ext"]) {
		rel += "." + vars["ext"]
	}
	final := filepath.Join(m.cfg.BaseDir, rel)
	id := strconv.FormatInt(job.track.ID, 10)

	if _, err := os.Stat(final); err == nil {
		m.log.Info("already downloaded, skipping", "track", job.describe())
		m.stats.AddSkippedExists()
		if err := m.arch.Add(id); err != nil {
			m.log.Warn("updating archive", "err", err)
		}
		m.recordPlaylistEntry(job, rel)
		return nil
	}

	if m.cfg.DryRun {
		m.log.Info("would download", "track", job.describe(), "to", rel)
		m.stats.AddDownloaded()
		return nil
	}

	dir := filepath.Dir(final)
	if err := fsutil.EnsureDir(dir); err != nil {
		return fmt.Errorf("%s: %w", job.describe(), err)
	}
	m.fetchExtras(ctx, dir, job.release)

	m.sink.Describe(job.describe())
	tmp := filepath.Join(dir, "."+id+".tmp")
	err = m.client.Download(ctx, job.file.URL, tmp, func(n int64) {
		m.sink.Add(n)
		m.stats.AddBytes(n)
	})
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%s: %w", job.describe(), err)
	}

	tagger := audio.ForQuality(servedQuality(m.cfg.Quality, job.file), m.cfg.EmbedArt)
	if err := tagger.Tag(tmp, job.track, job.release); err != nil {
		return err
	}

	if err := os.Rename(tmp, final); err != nil {
		return fmt.Errorf("%s: %w", job.describe(), err)
	}
	if err := m.arch.Add(id); err != nil {
		m.log.Warn("updating archive", "err", err)
	}
	m.stats.AddDownloaded()
	m.recordPlaylistEntry(job, rel)
	m.log.Info("downloaded", "track", job.describe(), "format", StreamLabel(job.file))
	return nil
}

// servedQuality maps the stream actually served to a quality tier. A
// lossless request the server downgraded all the way to MP3 must be
// tagged as MP3.
func servedQuality(requested model.Quality, fu *qobuz.FileURL) model.Quality {
	if fu.BitDepth == 0 {
		return model.QualityMP3
	}
	return requested
}

func (m *Manager) recordPlaylistEntry(job *trackJob, rel string) {
	if job.playlist == "" {
		return
	}
	m.plMu.Lock()
	m.plEntries = append(m.plEntries, audio.PlaylistEntry{
		Path:     rel,
		Artist:   job.track.PerformerName(),
		Title:    job.track.FullTitle(),
		Duration: job.track.Duration,
	})
	m.plMu.Unlock()
}

// fetchExtras downloads the per-directory album assets: the cover image
// and any PDF booklets. Each directory is handled at most once per
// session, before the first track lands in it.
func (m *Manager) fetchExtras(ctx context.Context, dir string, release *qobuz.Album) {
	if release == nil {
		return
	}
	m.mu.Lock()
	if _, done := m.extrasDone[dir]; done {
		m.mu.Unlock()
		return
	}
	m.extrasDone[dir] = struct{}{}
	m.mu.Unlock()

	if !m.cfg.NoCover && release.Image != nil && release.Image.Large != "" {
		if err := m.fetchCover(ctx, dir, release.Image.Large); err != nil {
			m.log.Warn("cover art", "album", release.FullTitle(), "err", err)
		}
	}

	for _, goodie := range release.Goodies {
		if goodie.URL == "" {
			continue
		}
		name := fsutil.SanitizeFileName(goodie.Name)
		if name == "" {
			name = "booklet"
		}
		dest := filepath.Join(dir, name+".pdf")
		if _, err := os.Stat(dest); err == nil {
			continue
		}
		if err := m.client.Download(ctx, goodie.URL, dest, nil); err != nil {
			m.log.Warn("booklet", "album", release.FullTitle(), "err", err)
			os.Remove(dest)
		}
	}
}

// fetchCover saves the album cover as cover.jpg. With OGCover set the
// URL is rewritten to the original uncompressed upload; otherwise the
// served image is optionally scaled down to CoverSize.
func (m *Manager) fetchCover(ctx context.Context, dir, coverURL string) error {
	dest := filepath.Join(dir, "cover.jpg")
	if _, err := os.Stat(dest); err == nil {
		return nil
	}

	if m.cfg.OGCover {
		coverURL = strings.Replace(coverURL, "_600.", "_org.", 1)
	}
	if err := m.client.Download(ctx, coverURL, dest, nil); err != nil {
		os.Remove(dest)
		return err
	}

	if m.cfg.CoverSize > 0 && !m.cfg.OGCover {
		data, err := os.ReadFile(dest)
		if err != nil {
			return err
		}
		resized, err := audio.ResizeJPEG(data, m.cfg.CoverSize)
		if err != nil {
			return err
		}
		return os.WriteFile(dest, resized, 0644)
	}
	return nil
}
