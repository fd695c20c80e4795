package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"qbz/internal/download"
	"qbz/internal/model"
)

// Settings holds the full configuration surface.
type Settings struct {
	// Account credentials. Token takes precedence over email/password
	// when both are configured. The password is stored pre-hashed.
	Email       string `toml:"email"`
	PasswordMD5 string `toml:"password_md5"`
	Token       string `toml:"token"`

	// API credentials. Secrets is an ordered candidate list; the first
	// one the server accepts is used for the session.
	AppID   string   `toml:"app_id"`
	Secrets []string `toml:"secrets"`

	// Download behavior.
	Quality         int    `toml:"quality"`
	MaxWorkers      int    `toml:"max_workers"`
	BaseDir         string `toml:"directory"`
	OutputTemplate  string `toml:"output_template"`
	QualityFallback bool   `toml:"quality_fallback"`
	AlbumsOnly      bool   `toml:"albums_only"`

	// Cover art.
	EmbedArt  bool `toml:"embed_art"`
	NoCover   bool `toml:"no_cover"`
	OGCover   bool `toml:"og_cover"`
	CoverSize int  `toml:"cover_size"`

	// Artist discography filtering.
	SmartDiscography bool `toml:"smart_discography"`
	SaveSpace        bool `toml:"save_space"`
	SkipExtras       bool `toml:"skip_extras"`

	// Playlists.
	NoPlaylistFiles bool `toml:"no_playlist_files"`

	// Download archive.
	UseArchive  bool   `toml:"use_archive"`
	ArchivePath string `toml:"archive_path"`
}

// DefaultSettings returns the defaults used when no config file exists.
func DefaultSettings() *Settings {
	home, _ := os.UserHomeDir()
	return &Settings{
		Quality:    int(model.QualityCD),
		MaxWorkers: 3,
		BaseDir:    filepath.Join(home, "Music", "Qobuz"),
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "qbz", "config.toml"), nil
}

// Load reads settings from path. A missing file is not an error and
// yields the defaults; keys absent from the file keep their defaults.
func Load(path string) (*Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := toml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return settings, nil
}

// Save writes settings to path, creating parent directories as needed.
// The file is created private since it carries credentials.
func (s *Settings) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(s); err != nil {
		return fmt.Errorf("config: writing %s: %w", path, err)
	}
	return nil
}

// DownloadConfig maps the settings onto the download manager's
// configuration.
func (s *Settings) DownloadConfig() download.Config {
	return download.Config{
		Quality:          model.Quality(s.Quality),
		MaxWorkers:       s.MaxWorkers,
		BaseDir:          s.BaseDir,
		OutputTemplate:   s.OutputTemplate,
		EmbedArt:         s.EmbedArt,
		NoCover:          s.NoCover,
		OGCover:          s.OGCover,
		CoverSize:        s.CoverSize,
		AlbumsOnly:       s.AlbumsOnly,
		QualityFallback:  s.QualityFallback,
		SmartDiscography: s.SmartDiscography,
		SaveSpace:        s.SaveSpace,
		SkipExtras:       s.SkipExtras,
		NoPlaylistFiles:  s.NoPlaylistFiles,
	}
}
