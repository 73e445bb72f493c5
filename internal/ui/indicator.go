package ui

import (
	"sync"
	"time"

	"github.com/veranemoloko/media-downloader/internal/domain"
)

// Indicator shows the backend health.
type Indicator struct {
	renderer *Renderer

	mu        sync.Mutex
	status    domain.HealthStatus
	checkedAt time.Time
}

// NewIndicator returns an indicator with no observation yet.
func NewIndicator(renderer *Renderer) *Indicator {
	return &Indicator{renderer: renderer}
}

// Set overwrites the displayed status.
func (i *Indicator) Set(status domain.HealthStatus) {
	i.mu.Lock()
	changed := i.status != status
	i.status = status
	i.checkedAt = time.Now()
	i.mu.Unlock()

	if changed {
		i.renderer.RenderHealth(status, Text(status))
	}
}

// Status returns the last status and when it was observed.
func (i *Indicator) Status() (domain.HealthStatus, time.Time) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.status, i.checkedAt
}

// Text returns the indicator label for status.
func Text(status domain.HealthStatus) string {
	switch status {
	case domain.HealthOnline:
		return MsgOnline
	case domain.HealthOffline:
		return MsgOffline
	default:
		return MsgChecking
	}
}
