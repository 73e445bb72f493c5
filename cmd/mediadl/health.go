package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	h "github.com/veranemoloko/media-downloader/internal/api/http"
	"github.com/veranemoloko/media-downloader/internal/domain"
)

const shutdownTimeout = 5 * time.Second

// statusServer serves the status router for the lifetime of a command.
type statusServer struct {
	server *http.Server
	addr   string
}

// statusAddr returns the -listen flag value, or MD_STATUS_ADDR when unset.
func statusAddr(a *app, listen string) string {
	if listen != "" {
		return listen
	}
	return a.cfg.StatusAddr
}

// startStatusServer serves /health, /panels and /metrics for a's board and
// monitor. An empty addr starts nothing and returns a nil server.
func (a *app) startStatusServer(addr string) (*statusServer, error) {
	if addr == "" {
		return nil, nil
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	s := &statusServer{
		server: &http.Server{
			Handler:           h.NewRouter(a.monitor, a.board, a.logger),
			ReadHeaderTimeout: shutdownTimeout,
		},
		addr: ln.Addr().String(),
	}

	go func() {
		a.logger.Info("status server starting", "address", s.addr)
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("status server failed", "error", err)
		}
	}()
	return s, nil
}

// Addr returns the address the server is bound to.
func (s *statusServer) Addr() string {
	return s.addr
}

// Shutdown stops the server gracefully. It is a no-op on a nil server.
func (s *statusServer) Shutdown(logger *slog.Logger) error {
	if s == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		logger.Error("status server shutdown failed", "error", err)
		return err
	}
	logger.Info("status server stopped gracefully")
	return nil
}

func runHealth(args []string) int {
	fs := flag.NewFlagSet("health", flag.ContinueOnError)

	common := addCommonFlags(fs)

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: mediadl health [options]

Check once whether the backend answers its health endpoint.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, code := newApp(ctx, common, false)
	if a == nil {
		return code
	}

	if a.monitor.Poll(ctx) != domain.HealthOnline {
		return ExitBackendOffline
	}
	return ExitSuccess
}

func runWatch(args []string) int {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)

	common := addCommonFlags(fs)
	listen := fs.String("listen", "", "Serve /health, /panels and /metrics on this address (overrides MD_STATUS_ADDR)")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: mediadl watch [options]

Poll backend health every 30 seconds until interrupted. With -listen, also
serve local status and Prometheus metrics.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, code := newApp(ctx, common, false)
	if a == nil {
		return code
	}

	status, err := a.startStatusServer(statusAddr(a, *listen))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitGeneralError
	}

	a.monitor.Run(ctx)
	a.logger.Info("shutdown signal received")

	if err := status.Shutdown(a.logger); err != nil {
		return ExitGeneralError
	}
	return ExitSuccess
}
