package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/veranemoloko/media-downloader/internal/domain"
	"github.com/veranemoloko/media-downloader/internal/ui"
	"github.com/veranemoloko/media-downloader/internal/validation"
)

// HealthProvider reports the last observed backend status.
type HealthProvider interface {
	Status() (domain.HealthStatus, time.Time)
}

// PanelProvider looks up the panel of a platform. It returns nil for
// unsupported platforms.
type PanelProvider interface {
	Panel(p domain.Platform) *ui.Panel
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Backend   string    `json:"backend"`
	CheckedAt time.Time `json:"checked_at"`
}

// PanelResponse is the public view of one platform panel.
type PanelResponse struct {
	Platform      domain.Platform   `json:"platform"`
	State         domain.UIState    `json:"state"`
	Status        string            `json:"status,omitempty"`
	StatusKind    domain.StatusKind `json:"status_kind,omitempty"`
	Progress      bool              `json:"progress"`
	BytesReceived int64             `json:"bytes_received"`
	BytesTotal    int64             `json:"bytes_total,omitempty"`
}

// StatusHandler serves read-only status endpoints.
type StatusHandler struct {
	health HealthProvider
	panels PanelProvider
	logger *slog.Logger
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(health HealthProvider, panels PanelProvider, logger *slog.Logger) *StatusHandler {
	return &StatusHandler{
		health: health,
		panels: panels,
		logger: logger,
	}
}

// Health handles GET /health. The handler itself is always ok; backend is
// the last result of the health monitor, "unknown" before the first poll.
func (h *StatusHandler) Health(w http.ResponseWriter, r *http.Request) {
	status, checkedAt := h.health.Status()

	backend := string(status)
	if backend == "" {
		backend = "unknown"
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Backend:   backend,
		CheckedAt: checkedAt,
	})
}

// ListPanels handles GET /panels.
func (h *StatusHandler) ListPanels(w http.ResponseWriter, r *http.Request) {
	resp := make([]PanelResponse, 0, len(domain.Platforms))
	for _, p := range domain.Platforms {
		if panel := h.panels.Panel(p); panel != nil {
			resp = append(resp, panelResponse(panel.View()))
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetPanel handles GET /panels/{platform}.
func (h *StatusHandler) GetPanel(w http.ResponseWriter, r *http.Request) {
	platform := domain.Platform(chi.URLParam(r, "platform"))
	if err := validation.ValidatePlatform(platform); err != nil {
		h.logger.Warn("unknown platform requested", "platform", platform)
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	panel := h.panels.Panel(platform)
	if panel == nil {
		writeError(w, http.StatusNotFound, "panel not found")
		return
	}

	writeJSON(w, http.StatusOK, panelResponse(panel.View()))
}

func panelResponse(v ui.PanelView) PanelResponse {
	resp := PanelResponse{
		Platform:      v.Platform,
		State:         v.State,
		Progress:      v.Progress,
		BytesReceived: v.Read,
		BytesTotal:    v.Total,
	}
	if v.Status.Visible {
		resp.Status = v.Status.Text
		resp.StatusKind = v.Status.Kind
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}
