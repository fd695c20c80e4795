package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"qbz/internal/archive"
	"qbz/internal/download"
)

func searchCommand(logger *log.Logger) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search tracks by free text",
		ArgsUsage: "QUERY",
		Flags: append(sessionFlags(),
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "Number of results", Value: 20},
			&cli.BoolFlag{Name: "download", Aliases: []string{"d"}, Usage: "Download the results instead of listing them"},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runSearch(ctx, cmd, logger)
		},
	}
}

func runSearch(ctx context.Context, cmd *cli.Command, logger *log.Logger) error {
	query := strings.Join(cmd.Args().Slice(), " ")
	if query == "" {
		return cli.Exit("no query given", 1)
	}

	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	client, err := login(ctx, settings, logger)
	if err != nil {
		return err
	}

	tracks, err := client.SearchTracks(ctx, query, int(cmd.Int("limit")))
	if err != nil {
		return err
	}
	if len(tracks) == 0 {
		fmt.Println("no results")
		return nil
	}

	if !cmd.Bool("download") {
		for _, t := range tracks {
			album := ""
			if t.Album != nil {
				album = " [" + t.Album.FullTitle() + "]"
			}
			fmt.Printf("%-10d %s - %s%s\n", t.ID, t.PerformerName(), t.FullTitle(), album)
		}
		return nil
	}

	var arch *archive.Archive
	if settings.UseArchive {
		if arch, err = archive.Open(archivePath(settings)); err != nil {
			return err
		}
	}

	bar := newBar()
	mgr := download.New(client, settings.DownloadConfig(), arch, logger, barSink{bar})

	urls := make([]string, len(tracks))
	for i, t := range tracks {
		urls[i] = fmt.Sprintf("https://open.qobuz.com/track/%d", t.ID)
	}
	runErr := mgr.HandleAll(ctx, urls)
	bar.Finish()
	printSummary(mgr.Stats().Snapshot())
	return runErr
}
