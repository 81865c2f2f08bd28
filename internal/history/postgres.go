package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"risk-workers/internal/models"
)

const createPredictionsTable = `
CREATE TABLE IF NOT EXISTS risk_predictions (
	seq            BIGSERIAL PRIMARY KEY,
	id             TEXT        NOT NULL,
	user_id        TEXT        NOT NULL,
	overall_risk   INTEGER     NOT NULL,
	payload        JSONB       NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_risk_predictions_user ON risk_predictions (user_id, seq DESC);`

// PostgresRepository stores history rows in risk_predictions. Insertion order is
// tracked by seq, which drives eviction.
type PostgresRepository struct {
	db         *sql.DB
	maxEntries int
}

func NewPostgresRepository(db *sql.DB, maxEntries int) *PostgresRepository {
	return &PostgresRepository{db: db, maxEntries: maxEntriesOrDefault(maxEntries)}
}

func (r *PostgresRepository) Name() string { return "postgres" }

// Migrate creates the table and index if they do not exist.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createPredictionsTable); err != nil {
		return fmt.Errorf("migrate risk_predictions: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Append(ctx context.Context, userID string, p models.Prediction) error {
	if userID == "" {
		return ErrUserIDRequired
	}

	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prediction: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Writers for one user queue here until the holder commits.
	if _, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, userID); err != nil {
		return fmt.Errorf("lock user history: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO risk_predictions (id, user_id, overall_risk, payload, created_at) VALUES ($1, $2, $3, $4, $5)`,
		p.ID, userID, p.RiskScores.OverallRisk, payload, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert prediction: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM risk_predictions WHERE user_id = $1 AND seq NOT IN (
			SELECT seq FROM risk_predictions WHERE user_id = $1 ORDER BY seq DESC LIMIT $2
		)`,
		userID, r.maxEntries,
	)
	if err != nil {
		return fmt.Errorf("trim history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, userID string) ([]models.Prediction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT payload FROM risk_predictions WHERE user_id = $1 ORDER BY created_at DESC, seq DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query predictions: %w", err)
	}
	defer rows.Close()

	out := []models.Prediction{}
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		var p models.Prediction
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("decode prediction: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate predictions: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Len(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM risk_predictions WHERE user_id = $1`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count predictions: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
