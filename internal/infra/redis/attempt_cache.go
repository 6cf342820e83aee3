package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"studybudy-quiz-service/internal/domain"
)

// AttemptCache layers a best-effort Redis flag over an authoritative
// attempt store so the prior-submission check stays cheap. The flag is
// only ever a positive hint: misses and Redis errors fall through to the
// store, and saves always go to the store first.
type AttemptCache struct {
	client *redis.Client
	store  AttemptStore
	ttl    time.Duration
}

// AttemptStore mirrors quiz.AttemptStore; declared locally to keep the
// dependency pointing inward.
type AttemptStore interface {
	SaveAttempt(ctx context.Context, attempt domain.Attempt) (string, error)
	HasAttempt(ctx context.Context, userID, planID string) (bool, error)
}

func NewAttemptCache(client *redis.Client, store AttemptStore, ttl time.Duration) *AttemptCache {
	return &AttemptCache{client: client, store: store, ttl: ttl}
}

func (c *AttemptCache) SaveAttempt(ctx context.Context, attempt domain.Attempt) (string, error) {
	message, err := c.store.SaveAttempt(ctx, attempt)
	if err == nil || err == domain.ErrAlreadySubmitted {
		// Either way an attempt now exists; mark the flag best-effort.
		_ = c.client.Set(ctx, c.key(attempt.UserID, attempt.PlanID), "1", c.ttl).Err()
	}
	return message, err
}

func (c *AttemptCache) HasAttempt(ctx context.Context, userID, planID string) (bool, error) {
	if val, err := c.client.Get(ctx, c.key(userID, planID)).Result(); err == nil && val == "1" {
		return true, nil
	}

	attempted, err := c.store.HasAttempt(ctx, userID, planID)
	if err != nil {
		return false, err
	}
	if attempted {
		_ = c.client.Set(ctx, c.key(userID, planID), "1", c.ttl).Err()
	}
	return attempted, nil
}

func (c *AttemptCache) key(userID, planID string) string {
	return "attempt:" + userID + ":" + planID
}
