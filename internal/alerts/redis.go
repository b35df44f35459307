package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/savegress/budgetwatch/pkg/models"
)

// RedisStore backs the alert store with a shared Redis instance so a
// fleet of API replicas sees one pending set per user. Each user maps to
// one hash; fields are (budget, tier) keys. HSETNX gives the atomic
// insert-if-absent the Store contract requires.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(url, keyPrefix string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	if keyPrefix == "" {
		keyPrefix = "budgetwatch"
	}

	return &RedisStore{
		client:    client,
		keyPrefix: keyPrefix,
	}, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) key(userID string) string {
	return s.keyPrefix + ":alerts:" + userID
}

// Store inserts the alert unless one with the same (budget, tier) is
// already pending for the user.
func (s *RedisStore) Store(ctx context.Context, userID string, alert *models.BudgetAlert) error {
	data, err := json.Marshal(alert)
	if err != nil {
		return err
	}

	return s.client.HSetNX(ctx, s.key(userID), alertKey(alert.BudgetID, alert.Tier), data).Err()
}

// Pending returns all held alerts for a user.
func (s *RedisStore) Pending(ctx context.Context, userID string) ([]*models.BudgetAlert, error) {
	fields, err := s.client.HGetAll(ctx, s.key(userID)).Result()
	if err != nil {
		return nil, err
	}

	alerts := make([]*models.BudgetAlert, 0, len(fields))
	for _, raw := range fields {
		var a models.BudgetAlert
		if err := json.Unmarshal([]byte(raw), &a); err != nil {
			return nil, err
		}
		alerts = append(alerts, &a)
	}
	return alerts, nil
}

// Clear removes every pending alert for a user.
func (s *RedisStore) Clear(ctx context.Context, userID string) error {
	return s.client.Del(ctx, s.key(userID)).Err()
}

// Dismiss removes a single (budget, tier) alert. Redis drops the hash
// itself once its last field is deleted, so no empty entry lingers.
func (s *RedisStore) Dismiss(ctx context.Context, userID, budgetID string, tier models.AlertTier) error {
	return s.client.HDel(ctx, s.key(userID), alertKey(budgetID, tier)).Err()
}
