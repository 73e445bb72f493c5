package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gocloud.dev/blob"

	"github.com/veranemoloko/media-downloader/internal/backend"
	"github.com/veranemoloko/media-downloader/internal/config"
	"github.com/veranemoloko/media-downloader/internal/repository"
	"github.com/veranemoloko/media-downloader/internal/service"
	"github.com/veranemoloko/media-downloader/internal/storage"
	"github.com/veranemoloko/media-downloader/internal/ui"
)

// commonOptions are the flags every command accepts.
type commonOptions struct {
	configPath *string
	backendURL *string
	debug      *bool
}

func addCommonFlags(fs *flag.FlagSet) *commonOptions {
	return &commonOptions{
		configPath: fs.String("config", "", "Path to a YAML config file"),
		backendURL: fs.String("backend", "", "Backend base URL (overrides MD_BACKEND_URL)"),
		debug:      fs.Bool("debug", false, "Enable debug logging"),
	}
}

// app wires the components a command needs.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	out       io.Writer
	client    *backend.Client
	board     *ui.Board
	monitor   *service.HealthMonitor
	bucket    *blob.Bucket
	store     *storage.FileStorage
	submitter *service.DownloadSubmitter
	history   repository.HistoryRepo
}

// newApp loads the configuration and builds the backend client, the board
// and the health monitor. withStorage also opens the save bucket, the
// submitter and the history store.
func newApp(ctx context.Context, opts *commonOptions, withStorage bool) (*app, int) {
	cfg, err := config.Load(*opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return nil, ExitConfigError
	}

	if *opts.backendURL != "" {
		cfg.BackendURL = *opts.backendURL
	}
	if *opts.debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return nil, ExitConfigError
	}

	logger := config.SetupLogger(cfg, os.Stderr)
	logger.Debug("configuration loaded", "backend", cfg.BackendURL, "environment", cfg.Environment)

	a := &app{
		cfg:    cfg,
		logger: logger,
		out:    os.Stdout,
		client: backend.NewClient(cfg, logger),
		board:  ui.NewBoard(ui.NewRenderer(os.Stdout), config.SuccessStatusTTL),
	}
	a.monitor = service.NewHealthMonitor(a.client, a.board.Indicator, cfg.Debug, logger)

	if !withStorage {
		return a, ExitSuccess
	}

	a.bucket, err = storage.OpenBucket(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return nil, ExitStorageError
	}
	a.store = storage.NewFileStorage(a.bucket, cfg.TempDir, cfg.MaxFileSize, logger)
	a.submitter = service.NewDownloadSubmitter(a.client, a.store, a.board, logger)

	if cfg.HistoryFile != "" {
		history, err := repository.NewHistoryStorage(cfg.HistoryFile, logger)
		if err != nil {
			logger.Warn("history disabled", "error", err)
		} else {
			a.history = history
		}
	}

	return a, ExitSuccess
}

// record appends outcomes to the history store. Failures are only logged.
func (a *app) record(ctx context.Context, outcomes ...service.Outcome) {
	if a.history == nil {
		return
	}
	for _, out := range outcomes {
		if err := a.history.Record(context.WithoutCancel(ctx), out.HistoryEntry()); err != nil {
			a.logger.Warn("failed to record history", "submission_id", out.SubmissionID, "error", err)
		}
	}
}

func (a *app) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("failed to close bucket", "error", err)
		}
	}
}
