package history

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"risk-workers/internal/models"
)

// RedisRepository keeps each user's history in a list, newest appended at the
// head. LPUSH and LTRIM run in one MULTI so the cap holds under concurrency.
type RedisRepository struct {
	client     *redis.Client
	keyPrefix  string
	maxEntries int
}

func NewRedisRepository(client *redis.Client, keyPrefix string, maxEntries int) *RedisRepository {
	return &RedisRepository{
		client:     client,
		keyPrefix:  keyPrefix,
		maxEntries: maxEntriesOrDefault(maxEntries),
	}
}

func (r *RedisRepository) Name() string { return "redis" }

func (r *RedisRepository) key(userID string) string {
	return r.keyPrefix + userID
}

func (r *RedisRepository) Append(ctx context.Context, userID string, p models.Prediction) error {
	if userID == "" {
		return ErrUserIDRequired
	}

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prediction: %w", err)
	}

	key := r.key(userID)
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, key, data)
		pipe.LTrim(ctx, key, 0, int64(r.maxEntries-1))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis append %s: %w", key, err)
	}
	return nil
}

func (r *RedisRepository) List(ctx context.Context, userID string) ([]models.Prediction, error) {
	raw, err := r.client.LRange(ctx, r.key(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list %s: %w", r.key(userID), err)
	}

	out := make([]models.Prediction, 0, len(raw))
	for _, item := range raw {
		var p models.Prediction
		if err := json.Unmarshal([]byte(item), &p); err != nil {
			return nil, fmt.Errorf("decode prediction: %w", err)
		}
		out = append(out, p)
	}

	sortMostRecentFirst(out)
	return out, nil
}

func (r *RedisRepository) Len(ctx context.Context, userID string) (int, error) {
	n, err := r.client.LLen(ctx, r.key(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("redis len %s: %w", r.key(userID), err)
	}
	return int(n), nil
}

func (r *RedisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
