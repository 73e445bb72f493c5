package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/veranemoloko/media-downloader/internal/config"
	"github.com/veranemoloko/media-downloader/internal/domain"
	"github.com/veranemoloko/media-downloader/internal/metrics"
	"github.com/veranemoloko/media-downloader/internal/ui"
)

// HealthChecker performs one backend health check.
type HealthChecker interface {
	Health(ctx context.Context) (map[string]any, error)
}

// HealthMonitor reflects backend reachability into an indicator.
type HealthMonitor struct {
	checker   HealthChecker
	indicator *ui.Indicator
	interval  time.Duration
	debug     bool
	logger    *slog.Logger
}

// NewHealthMonitor creates a monitor polling every config.HealthPollInterval.
func NewHealthMonitor(checker HealthChecker, indicator *ui.Indicator, debug bool, logger *slog.Logger) *HealthMonitor {
	return &HealthMonitor{
		checker:   checker,
		indicator: indicator,
		interval:  config.HealthPollInterval,
		debug:     debug,
		logger:    logger,
	}
}

// Poll checks the backend once and overwrites the indicator. Failures only
// flip the status to offline.
func (m *HealthMonitor) Poll(ctx context.Context) domain.HealthStatus {
	status := domain.HealthOnline

	body, err := m.checker.Health(ctx)
	if err != nil {
		status = domain.HealthOffline
		if m.debug {
			m.logger.Debug("health check failed", "error", err)
		}
	} else if m.debug {
		m.logger.Debug("server health check", "body", body)
	}

	m.indicator.Set(status)

	metrics.HealthChecksTotal.WithLabelValues(string(status)).Inc()
	if status == domain.HealthOnline {
		metrics.BackendOnline.Set(1)
	} else {
		metrics.BackendOnline.Set(0)
	}

	return status
}

// Run polls immediately and then on every tick until ctx is done.
func (m *HealthMonitor) Run(ctx context.Context) {
	m.Poll(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Poll(ctx)
		}
	}
}

// Status returns the last observed status and when it was taken.
func (m *HealthMonitor) Status() (domain.HealthStatus, time.Time) {
	return m.indicator.Status()
}
