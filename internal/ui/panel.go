package ui

import (
	"sync"
	"time"

	"github.com/veranemoloko/media-downloader/internal/domain"
)

// progressStep is the minimum byte delta between rendered progress updates.
const progressStep = 1 << 20

// Status is the message line of a panel.
type Status struct {
	Text    string
	Kind    domain.StatusKind
	Visible bool
}

// PanelView is a point-in-time copy of a panel.
type PanelView struct {
	Platform domain.Platform
	State    domain.UIState
	Status   Status
	Progress bool
	Read     int64
	Total    int64
}

// Panel holds the UI state of one platform. Panels never share state.
type Panel struct {
	platform   domain.Platform
	renderer   *Renderer
	successTTL time.Duration

	mu           sync.Mutex
	state        domain.UIState
	status       Status
	progress     bool
	read         int64
	total        int64
	lastRendered int64
	clearTimer   *time.Timer
	statusSeq    uint64
}

// NewPanel creates an idle panel. Success messages are hidden after
// successTTL; a nil renderer renders nothing.
func NewPanel(platform domain.Platform, renderer *Renderer, successTTL time.Duration) *Panel {
	return &Panel{
		platform:   platform,
		renderer:   renderer,
		successTTL: successTTL,
		state:      domain.StateIdle,
	}
}

// Platform returns the panel's platform.
func (p *Panel) Platform() domain.Platform {
	return p.platform
}

// SetState moves the panel to s.
func (p *Panel) SetState(s domain.UIState) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

// TryBegin moves an idle or finished panel to Validating and returns the
// state it left. It fails while another submission is validating or in flight.
func (p *Panel) TryBegin() (domain.UIState, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == domain.StateValidating || p.state.Busy() {
		return p.state, false
	}
	prev := p.state
	p.state = domain.StateValidating
	return prev, true
}

// State returns the current state.
func (p *Panel) State() domain.UIState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// ShowStatus replaces the status line. Success messages hide themselves
// after the panel's TTL; others stay until replaced.
func (p *Panel) ShowStatus(text string, kind domain.StatusKind) {
	p.mu.Lock()
	if p.clearTimer != nil {
		p.clearTimer.Stop()
		p.clearTimer = nil
	}
	p.statusSeq++
	p.status = Status{Text: text, Kind: kind, Visible: true}

	if kind == domain.StatusSuccess && p.successTTL > 0 {
		seq := p.statusSeq
		p.clearTimer = time.AfterFunc(p.successTTL, func() { p.hideStatus(seq) })
	}
	view := p.viewLocked()
	p.mu.Unlock()

	p.renderer.RenderStatus(view)
}

func (p *Panel) hideStatus(seq uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// A newer message replaced the one this timer was armed for.
	if seq != p.statusSeq {
		return
	}
	p.status.Visible = false
	p.clearTimer = nil
}

// Status returns the current status line.
func (p *Panel) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// ShowProgress shows or hides the progress indicator and resets counters.
func (p *Panel) ShowProgress(show bool) {
	p.mu.Lock()
	p.progress = show
	p.read, p.total, p.lastRendered = 0, 0, 0
	p.mu.Unlock()
}

// UpdateProgress records bytes received so far; total is -1 when unknown.
func (p *Panel) UpdateProgress(read, total int64) {
	p.mu.Lock()
	p.read, p.total = read, total
	render := p.progress && (read-p.lastRendered >= progressStep || (total > 0 && read >= total))
	if render {
		p.lastRendered = read
	}
	view := p.viewLocked()
	p.mu.Unlock()

	if render {
		p.renderer.RenderProgress(view)
	}
}

// Progressing reports whether the progress indicator is visible.
func (p *Panel) Progressing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.progress
}

// View returns a copy of the panel.
func (p *Panel) View() PanelView {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.viewLocked()
}

func (p *Panel) viewLocked() PanelView {
	return PanelView{
		Platform: p.platform,
		State:    p.state,
		Status:   p.status,
		Progress: p.progress,
		Read:     p.read,
		Total:    p.total,
	}
}

// Board holds one panel per platform and the health indicator.
type Board struct {
	panels    map[domain.Platform]*Panel
	Indicator *Indicator
}

// NewBoard creates panels for every supported platform.
func NewBoard(renderer *Renderer, successTTL time.Duration) *Board {
	b := &Board{
		panels:    make(map[domain.Platform]*Panel, len(domain.Platforms)),
		Indicator: NewIndicator(renderer),
	}
	for _, p := range domain.Platforms {
		b.panels[p] = NewPanel(p, renderer, successTTL)
	}
	return b
}

// Panel returns the panel for platform p, or nil if p is unsupported.
func (b *Board) Panel(p domain.Platform) *Panel {
	return b.panels[p]
}
