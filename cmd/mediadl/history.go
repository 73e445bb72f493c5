package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/veranemoloko/media-downloader/internal/config"
	"github.com/veranemoloko/media-downloader/internal/domain"
	"github.com/veranemoloko/media-downloader/internal/repository"
	"github.com/veranemoloko/media-downloader/internal/ui"
)

func runHistory(args []string) int {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)

	common := addCommonFlags(fs)
	limit := fs.Int("limit", 20, "Number of entries to show (0 for all)")
	failed := fs.Bool("failed", false, "Show only failed submissions")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: mediadl history [options]

Show recent submissions, newest first.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	cfg, err := config.Load(*common.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitConfigError
	}
	if cfg.HistoryFile == "" {
		fmt.Fprintln(os.Stderr, "Error: history is disabled (MD_HISTORY_FILE is empty)")
		return ExitConfigError
	}
	if *common.debug {
		cfg.Debug = true
	}
	logger := config.SetupLogger(cfg, os.Stderr)

	repo, err := repository.NewHistoryStorage(cfg.HistoryFile, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitStorageError
	}

	ctx := context.Background()
	var entries []*domain.HistoryEntry
	if *failed {
		entries, err = repo.ByState(ctx, domain.StateFailed)
		if *limit > 0 && len(entries) > *limit {
			entries = entries[:*limit]
		}
	} else {
		entries, err = repo.List(ctx, *limit)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitStorageError
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tPLATFORM\tSTATE\tRESULT\tURL")
	for _, e := range entries {
		result := e.Message
		if e.State == domain.StateSucceeded {
			result = fmt.Sprintf("%s (%s)", e.SavedAs, ui.FormatBytes(e.Bytes))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			e.CreatedAt.Format("2006-01-02 15:04:05"), e.Platform, e.State, result, e.URL)
	}
	tw.Flush()
	return ExitSuccess
}
