package ui

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/veranemoloko/media-downloader/internal/domain"
)

type theme struct {
	platform lipgloss.Style
	info     lipgloss.Style
	success  lipgloss.Style
	failure  lipgloss.Style
	progress lipgloss.Style
	online   lipgloss.Style
	offline  lipgloss.Style
}

func defaultTheme() theme {
	return theme{
		platform: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213")),
		info:     lipgloss.NewStyle().Foreground(lipgloss.Color("81")),
		success:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		failure:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		progress: lipgloss.NewStyle().Faint(true),
		online:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		offline:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
}

// Renderer writes panel and indicator changes as lines of text. A nil
// Renderer discards everything.
type Renderer struct {
	mu  sync.Mutex
	out io.Writer
	th  theme
}

// NewRenderer creates a renderer writing to out.
func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{out: out, th: defaultTheme()}
}

// RenderStatus prints a panel's status line.
func (r *Renderer) RenderStatus(v PanelView) {
	if r == nil || !v.Status.Visible {
		return
	}

	style := r.th.info
	switch v.Status.Kind {
	case domain.StatusSuccess:
		style = r.th.success
	case domain.StatusError:
		style = r.th.failure
	}
	r.println(r.th.platform.Render("["+v.Platform.String()+"]"), style.Render(v.Status.Text))
}

// RenderProgress prints received bytes for a panel.
func (r *Renderer) RenderProgress(v PanelView) {
	if r == nil {
		return
	}

	text := FormatBytes(v.Read)
	if v.Total > 0 {
		text = fmt.Sprintf("%s / %s (%.0f%%)", text, FormatBytes(v.Total), float64(v.Read)*100/float64(v.Total))
	}
	r.println(r.th.platform.Render("["+v.Platform.String()+"]"), r.th.progress.Render(text))
}

// RenderHealth prints the health indicator.
func (r *Renderer) RenderHealth(status domain.HealthStatus, text string) {
	if r == nil {
		return
	}

	style := r.th.offline
	if status == domain.HealthOnline {
		style = r.th.online
	}
	r.println(style.Render(text))
}

func (r *Renderer) println(parts ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	args := make([]any, len(parts))
	for i, p := range parts {
		args[i] = p
	}
	fmt.Fprintln(r.out, args...)
}

// FormatBytes formats a byte count for display.
func FormatBytes(b int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case b >= GB:
		return fmt.Sprintf("%.2f GB", float64(b)/float64(GB))
	case b >= MB:
		return fmt.Sprintf("%.2f MB", float64(b)/float64(MB))
	case b >= KB:
		return fmt.Sprintf("%.2f KB", float64(b)/float64(KB))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
