package domain

import (
	"time"

	"github.com/google/uuid"
)

// HistoryEntry records the result of one finished submission.
type HistoryEntry struct {
	ID        uuid.UUID `json:"id"`
	Platform  Platform  `json:"platform"`
	URL       string    `json:"url"`
	State     UIState   `json:"state"`
	ErrorKind string    `json:"error_kind,omitempty"`
	Message   string    `json:"message"`
	SavedAs   string    `json:"saved_as,omitempty"`
	Bytes     int64     `json:"bytes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
