// Command qbz-dl is the non-interactive downloader. It takes Qobuz
// URLs (or text files of URLs) and drives a full download session; a
// search subcommand finds tracks by free text.
//
// For the interactive terminal UI, use qbz-tui.
package main

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"qbz/internal/config"
	"qbz/internal/creds"
	"qbz/internal/model"
	"qbz/internal/qobuz"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false})

	app := &cli.Command{
		Name:      "qbz-dl",
		Usage:     "Download music from Qobuz",
		Version:   "1.0.0",
		ArgsUsage: "URL|FILE ...",
		Flags:     sessionFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runDownload(ctx, cmd, logger)
		},
		Commands: []*cli.Command{
			searchCommand(logger),
		},
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.Run(ctx, os.Args); err != nil {
		logger.Fatal(err)
	}
}

func sessionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "Path to configuration file"},
		&cli.StringFlag{Name: "email", Usage: "Account email"},
		&cli.StringFlag{Name: "password", Usage: "Account password (hashed before use)"},
		&cli.StringFlag{Name: "token", Usage: "User auth token (takes precedence over email/password)"},
		&cli.StringFlag{Name: "app-id", Usage: "API app id"},
		&cli.StringSliceFlag{Name: "secret", Usage: "Candidate app secret (repeatable, tried in order)"},
		&cli.IntFlag{Name: "quality", Aliases: []string{"q"}, Usage: "Quality tier: 5, 6, 7 or 27"},
		&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: "Concurrent downloads"},
		&cli.StringFlag{Name: "directory", Aliases: []string{"o"}, Usage: "Output directory"},
		&cli.StringFlag{Name: "template", Usage: "Output path template"},
		&cli.BoolFlag{Name: "fallback", Usage: "Accept a lower quality when the requested one is unavailable"},
		&cli.BoolFlag{Name: "albums-only", Usage: "Skip EPs, singles and compilations in artist/label downloads"},
		&cli.BoolFlag{Name: "embed-art", Usage: "Embed cover art into MP3 files"},
		&cli.BoolFlag{Name: "no-cover", Usage: "Skip the per-album cover download"},
		&cli.BoolFlag{Name: "og-cover", Usage: "Download the original uncompressed cover"},
		&cli.IntFlag{Name: "cover-size", Usage: "Scale the saved cover down to this dimension"},
		&cli.BoolFlag{Name: "smart-discography", Usage: "De-duplicate artist discographies"},
		&cli.BoolFlag{Name: "save-space", Usage: "Prefer smaller files in the discography filter"},
		&cli.BoolFlag{Name: "skip-extras", Usage: "Skip deluxe/live/demo editions in the discography filter"},
		&cli.BoolFlag{Name: "no-m3u", Usage: "Do not write .m3u files for playlists"},
		&cli.BoolFlag{Name: "dry-run", Usage: "Resolve and log without downloading"},
		&cli.BoolFlag{Name: "use-archive", Usage: "Record downloaded tracks and skip them on later runs"},
		&cli.StringFlag{Name: "archive", Usage: "Path to the download archive file"},
		&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Debug logging"},
	}
}

// loadSettings reads the config file and layers the command-line flags
// on top.
func loadSettings(cmd *cli.Command) (*config.Settings, error) {
	path := cmd.String("config")
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return nil, err
		}
	}
	settings, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if v := cmd.String("email"); v != "" {
		settings.Email = v
	}
	if v := cmd.String("password"); v != "" {
		sum := md5.Sum([]byte(v))
		settings.PasswordMD5 = hex.EncodeToString(sum[:])
	}
	if v := cmd.String("token"); v != "" {
		settings.Token = v
	}
	if v := cmd.String("app-id"); v != "" {
		settings.AppID = v
	}
	if v := cmd.StringSlice("secret"); len(v) > 0 {
		settings.Secrets = v
	}
	if v := cmd.Int("quality"); v != 0 {
		settings.Quality = int(v)
	}
	if v := cmd.Int("workers"); v != 0 {
		settings.MaxWorkers = int(v)
	}
	if v := cmd.String("directory"); v != "" {
		settings.BaseDir = v
	}
	if v := cmd.String("template"); v != "" {
		settings.OutputTemplate = v
	}
	if v := cmd.Int("cover-size"); v != 0 {
		settings.CoverSize = int(v)
	}
	if v := cmd.String("archive"); v != "" {
		settings.ArchivePath = v
		settings.UseArchive = true
	}
	for flag, dst := range map[string]*bool{
		"fallback":          &settings.QualityFallback,
		"albums-only":       &settings.AlbumsOnly,
		"embed-art":         &settings.EmbedArt,
		"no-cover":          &settings.NoCover,
		"og-cover":          &settings.OGCover,
		"smart-discography": &settings.SmartDiscography,
		"save-space":        &settings.SaveSpace,
		"skip-extras":       &settings.SkipExtras,
		"no-m3u":            &settings.NoPlaylistFiles,
		"use-archive":       &settings.UseArchive,
	} {
		if cmd.Bool(flag) {
			*dst = true
		}
	}

	if !model.Quality(settings.Quality).Valid() {
		return nil, qobuz.ErrInvalidQuality
	}
	return settings, nil
}

// login builds an authenticated API client from the settings.
func login(ctx context.Context, settings *config.Settings, logger *log.Logger) (*qobuz.Client, error) {
	provider := creds.Static{AppID: settings.AppID, Secrets: settings.Secrets}
	appID, secrets, err := provider.Credentials(ctx)
	if err != nil {
		return nil, err
	}

	client := qobuz.NewClient(appID, secrets, logger)
	if settings.Token != "" {
		return client, client.LoginWithToken(ctx, settings.Token)
	}
	return client, client.Login(ctx, settings.Email, settings.PasswordMD5)
}

func archivePath(settings *config.Settings) string {
	if settings.ArchivePath != "" {
		return settings.ArchivePath
	}
	return filepath.Join(settings.BaseDir, "download_archive.txt")
}

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	panelTitleStyle = lipgloss.NewStyle().Bold(true)
)

// printSummary renders the end-of-session panel.
func printSummary(snap model.Snapshot) {
	body := fmt.Sprintf(
		"%s\n\nReleases:   %d\nDownloaded: %d\nSkipped:    %d\nFailed:     %d\nSize:       %.2f MB\nElapsed:    %s",
		panelTitleStyle.Render("Session summary"),
		snap.Processed,
		snap.Downloaded,
		snap.SkippedArchive+snap.SkippedExists,
		snap.Failed,
		float64(snap.Bytes)/1024/1024,
		snap.Elapsed.Round(time.Second),
	)
	fmt.Println(panelStyle.Render(body))
}
