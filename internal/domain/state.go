package domain

// UIState is the lifecycle state of one platform panel.
type UIState string

const (
	StateIdle        UIState = "idle"
	StateValidating  UIState = "validating"
	StateSubmitting  UIState = "submitting"
	StateDownloading UIState = "downloading"
	StateSucceeded   UIState = "succeeded"
	StateFailed      UIState = "failed"
)

// Busy reports whether a submission is in flight.
func (s UIState) Busy() bool {
	return s == StateSubmitting || s == StateDownloading
}

// HealthStatus is the last observed backend reachability.
type HealthStatus string

const (
	HealthOnline  HealthStatus = "online"
	HealthOffline HealthStatus = "offline"
)

// StatusKind selects how a status message is styled.
type StatusKind string

const (
	StatusInfo    StatusKind = "info"
	StatusSuccess StatusKind = "success"
	StatusError   StatusKind = "error"
)
