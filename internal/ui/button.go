package ui

import "sync"

const (
	// DefaultLabel is restored when a button had no label before loading.
	DefaultLabel = "Download"
	// LoadingLabel is shown while a submission is in flight.
	LoadingLabel = "Processing..."
)

// Control is the element that triggered a submission.
type Control interface {
	// Acquire disables the control and shows the loading label. It returns
	// false if the control is already disabled.
	Acquire() bool
	// Release enables the control and restores its original label.
	Release()
}

// Button is a Control with a text label.
type Button struct {
	mu       sync.Mutex
	label    string
	original string
	enabled  bool
}

// NewButton returns an enabled button.
func NewButton(label string) *Button {
	return &Button{label: label, enabled: true}
}

func (b *Button) Acquire() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.enabled {
		return false
	}
	if b.original == "" {
		b.original = b.label
	}
	b.enabled = false
	b.label = LoadingLabel
	return true
}

func (b *Button) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.enabled = true
	b.label = b.original
	if b.label == "" {
		b.label = DefaultLabel
	}
}

// Enabled reports whether the button accepts clicks.
func (b *Button) Enabled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.enabled
}

// Label returns the current label.
func (b *Button) Label() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.label
}
