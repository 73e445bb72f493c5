package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/veranemoloko/media-downloader/internal/domain"
	errpkg "github.com/veranemoloko/media-downloader/internal/errors"
)

// MaxHistoryEntries bounds the history file; the oldest entries are dropped.
const MaxHistoryEntries = 1000

// HistoryStorage keeps submission history in memory and mirrors it to a JSON file.
type HistoryStorage struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*domain.HistoryEntry
	file    string
	logger  *slog.Logger
}

// NewHistoryStorage creates a HistoryStorage and loads entries from the file if it exists.
func NewHistoryStorage(filePath string, logger *slog.Logger) (*HistoryStorage, error) {
	repo := &HistoryStorage{
		entries: make(map[uuid.UUID]*domain.HistoryEntry),
		file:    filepath.Clean(filePath),
		logger:  logger,
	}

	if err := repo.restore(); err != nil {
		return nil, fmt.Errorf("failed to load history from file: %w", err)
	}

	logger.Debug("history storage initialized", "file_path", repo.file, "entries", len(repo.entries))
	return repo, nil
}

func (r *HistoryStorage) restore() error {
	data, err := os.ReadFile(r.file)
	if err != nil {
		if os.IsNotExist(err) {
			r.logger.Debug("history file does not exist, starting empty", "file_path", r.file)
			return nil
		}
		return fmt.Errorf("failed to read history file: %w", err)
	}

	if len(data) == 0 {
		r.logger.Warn("history file is empty", "file_path", r.file)
		return nil
	}

	var entries []*domain.HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to unmarshal history file: %w", err)
	}

	for _, e := range entries {
		r.entries[e.ID] = e
	}
	return nil
}

func (r *HistoryStorage) persist() error {
	r.mu.RLock()
	entries := r.sortedLocked()
	r.mu.RUnlock()

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	tempFile := r.file + ".tmp"
	if err := os.WriteFile(tempFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := os.Rename(tempFile, r.file); err != nil {
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	r.logger.Debug("history saved to file", "entries", len(entries), "file_path", r.file)
	return nil
}

// sortedLocked returns entries newest first. The caller holds r.mu.
func (r *HistoryStorage) sortedLocked() []*domain.HistoryEntry {
	entries := make([]*domain.HistoryEntry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries
}

// Record stores an entry and persists the history. Entries beyond
// MaxHistoryEntries are evicted oldest first.
func (r *HistoryStorage) Record(ctx context.Context, entry *domain.HistoryEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	r.mu.Lock()
	r.entries[entry.ID] = entry
	if len(r.entries) > MaxHistoryEntries {
		sorted := r.sortedLocked()
		for _, old := range sorted[MaxHistoryEntries:] {
			delete(r.entries, old.ID)
		}
	}
	r.mu.Unlock()

	if err := r.persist(); err != nil {
		return fmt.Errorf("failed to save history after recording entry: %w", err)
	}
	return nil
}

// Get retrieves an entry by ID.
func (r *HistoryStorage) Get(ctx context.Context, id uuid.UUID) (*domain.HistoryEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	entry, exists := r.entries[id]
	r.mu.RUnlock()

	if !exists {
		return nil, errpkg.ErrEntryNotFound
	}
	return entry, nil
}

// List returns up to limit entries, newest first. A limit <= 0 returns all.
func (r *HistoryStorage) List(ctx context.Context, limit int) ([]*domain.HistoryEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	entries := r.sortedLocked()
	r.mu.RUnlock()

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// ByState returns all entries that finished in the given state, newest first.
func (r *HistoryStorage) ByState(ctx context.Context, state domain.UIState) ([]*domain.HistoryEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	var filtered []*domain.HistoryEntry
	for _, e := range r.sortedLocked() {
		if e.State == state {
			filtered = append(filtered, e)
		}
	}
	r.mu.RUnlock()

	return filtered, nil
}
