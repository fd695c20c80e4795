package main

import (
	"context"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"

	"qbz/internal/archive"
	"qbz/internal/download"
	"qbz/internal/model"
)

func runDownload(ctx context.Context, cmd *cli.Command, logger *log.Logger) error {
	args := cmd.Args().Slice()
	if len(args) == 0 {
		return cli.Exit("no URLs given, see --help", 1)
	}

	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if cmd.Bool("verbose") {
		logger.SetLevel(log.DebugLevel)
	}

	client, err := login(ctx, settings, logger)
	if err != nil {
		return err
	}
	logger.Info("session", "quality", model.Quality(settings.Quality).Label())

	var arch *archive.Archive
	if settings.UseArchive {
		if arch, err = archive.Open(archivePath(settings)); err != nil {
			return err
		}
	}

	bar := newBar()
	mgr := download.New(client, settings.DownloadConfig(), arch, logger, barSink{bar})

	runErr := mgr.HandleAll(ctx, args)
	bar.Finish()
	printSummary(mgr.Stats().Snapshot())
	return runErr
}

func newBar() *progressbar.ProgressBar {
	return progressbar.NewOptions64(0,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowBytes(true),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetDescription("waiting"),
	)
}

// barSink adapts the terminal progress bar to the download manager's
// progress interface.
type barSink struct {
	bar *progressbar.ProgressBar
}

func (b barSink) Describe(text string) { b.bar.Describe(text) }
func (b barSink) GrowTotal(n int64)    { b.bar.ChangeMax64(b.bar.GetMax64() + n) }
func (b barSink) Add(n int64)          { _ = b.bar.Add64(n) }
