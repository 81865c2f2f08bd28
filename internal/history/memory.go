package history

import (
	"context"
	"sync"

	"risk-workers/internal/models"
)

// MemoryRepository is the process-local history used when no external store is
// configured. Contents are lost on restart.
type MemoryRepository struct {
	mu         sync.RWMutex
	maxEntries int
	byUser     map[string][]models.Prediction // append order, oldest first
}

func NewMemoryRepository(maxEntries int) *MemoryRepository {
	return &MemoryRepository{
		maxEntries: maxEntriesOrDefault(maxEntries),
		byUser:     make(map[string][]models.Prediction),
	}
}

func (r *MemoryRepository) Name() string { return "memory" }

func (r *MemoryRepository) Append(_ context.Context, userID string, p models.Prediction) error {
	if userID == "" {
		return ErrUserIDRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entries := append(r.byUser[userID], p)
	if over := len(entries) - r.maxEntries; over > 0 {
		entries = append([]models.Prediction(nil), entries[over:]...)
	}
	r.byUser[userID] = entries
	return nil
}

func (r *MemoryRepository) List(_ context.Context, userID string) ([]models.Prediction, error) {
	r.mu.RLock()
	entries := r.byUser[userID]
	out := make([]models.Prediction, len(entries))
	for i, p := range entries {
		out[len(entries)-1-i] = p
	}
	r.mu.RUnlock()

	sortMostRecentFirst(out)
	return out, nil
}

func (r *MemoryRepository) Len(_ context.Context, userID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser[userID]), nil
}

func (r *MemoryRepository) Ping(context.Context) error { return nil }
