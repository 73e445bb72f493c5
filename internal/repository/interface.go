package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/veranemoloko/media-downloader/internal/domain"
)

// HistoryRepo defines the interface for submission history storage.
type HistoryRepo interface {
	Record(ctx context.Context, entry *domain.HistoryEntry) error
	Get(ctx context.Context, id uuid.UUID) (*domain.HistoryEntry, error)
	List(ctx context.Context, limit int) ([]*domain.HistoryEntry, error)
	ByState(ctx context.Context, state domain.UIState) ([]*domain.HistoryEntry, error)
}
