package history

import (
	"context"
	"time"

	"github.com/google/uuid"

	"risk-workers/internal/common/logger"
	"risk-workers/internal/common/metrics"
	"risk-workers/internal/models"
)

// Indexer receives stored predictions for analytics search.
type Indexer interface {
	IndexPrediction(ctx context.Context, p models.Prediction) error
}

// Publisher announces stored predictions on the event stream.
type Publisher interface {
	PublishPrediction(ctx context.Context, event models.PredictionEvent) error
}

// Receipt is what Record reports back to callers.
type Receipt struct {
	Prediction  models.Prediction
	HistorySize int
}

// Recorder stores predictions and fans them out. Only the repository write can
// fail a Record call; indexing and publishing failures are logged.
type Recorder struct {
	repo      Repository
	indexer   Indexer
	publisher Publisher
	logger    logger.Logger
	now       func() time.Time
}

type RecorderOption func(*Recorder)

func WithIndexer(i Indexer) RecorderOption {
	return func(r *Recorder) { r.indexer = i }
}

func WithPublisher(p Publisher) RecorderOption {
	return func(r *Recorder) { r.publisher = p }
}

func WithClock(now func() time.Time) RecorderOption {
	return func(r *Recorder) { r.now = now }
}

func NewRecorder(repo Repository, log logger.Logger, opts ...RecorderOption) *Recorder {
	r := &Recorder{repo: repo, logger: log, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Recorder) Repository() Repository { return r.repo }

// Record stamps a missing ID or CreatedAt, appends the prediction to the user's
// history and then indexes and publishes it.
func (r *Recorder) Record(ctx context.Context, userID string, p models.Prediction) (Receipt, error) {
	if userID == "" {
		return Receipt{}, ErrUserIDRequired
	}

	p.UserID = userID
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = r.now().UTC()
	}

	if err := r.repo.Append(ctx, userID, p); err != nil {
		metrics.HistoryWrites.WithLabelValues(r.repo.Name(), "error").Inc()
		return Receipt{}, err
	}
	metrics.HistoryWrites.WithLabelValues(r.repo.Name(), "ok").Inc()

	size, err := r.repo.Len(ctx, userID)
	if err != nil {
		r.logger.Warn("history size unavailable", map[string]interface{}{
			"userId": userID,
			"error":  err,
		})
		size = -1
	}

	r.fanOut(ctx, p)

	return Receipt{Prediction: p, HistorySize: size}, nil
}

// List returns the user's history, most recent first.
func (r *Recorder) List(ctx context.Context, userID string) ([]models.Prediction, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	return r.repo.List(ctx, userID)
}

func (r *Recorder) fanOut(ctx context.Context, p models.Prediction) {
	if r.indexer != nil {
		if err := r.indexer.IndexPrediction(ctx, p); err != nil {
			r.logger.Warn("prediction indexing failed", map[string]interface{}{
				"predictionId": p.ID,
				"userId":       p.UserID,
				"error":        err,
			})
		}
	}

	if r.publisher != nil {
		event := models.NewPredictionEvent(p, r.now().UTC())
		if err := r.publisher.PublishPrediction(ctx, event); err != nil {
			r.logger.Warn("prediction event publish failed", map[string]interface{}{
				"predictionId": p.ID,
				"userId":       p.UserID,
				"error":        err,
			})
		}
	}
}
