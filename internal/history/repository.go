package history

import (
	"context"
	"errors"
	"sort"

	"risk-workers/internal/models"
)

// DefaultMaxEntries is how many predictions are kept per user.
const DefaultMaxEntries = 100

var ErrUserIDRequired = errors.New("userId is required")

// Repository keeps a bounded, per-user prediction history. Once a user has
// MaxEntries predictions, each append evicts the earliest appended one.
type Repository interface {
	Name() string
	Append(ctx context.Context, userID string, p models.Prediction) error
	// List returns the user's predictions, most recent CreatedAt first.
	List(ctx context.Context, userID string) ([]models.Prediction, error)
	Len(ctx context.Context, userID string) (int, error)
	Ping(ctx context.Context) error
}

func maxEntriesOrDefault(n int) int {
	if n <= 0 {
		return DefaultMaxEntries
	}
	return n
}

// sortMostRecentFirst orders by CreatedAt descending. Input must already be in
// newest-appended-first order so that equal timestamps keep append order.
func sortMostRecentFirst(ps []models.Prediction) {
	sort.SliceStable(ps, func(i, j int) bool {
		return ps[i].CreatedAt.After(ps[j].CreatedAt)
	})
}
