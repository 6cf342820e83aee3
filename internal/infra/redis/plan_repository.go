package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"studybudy-quiz-service/internal/domain"
)

// PlanLoader fetches plan content from a backing store (e.g., Postgres).
type PlanLoader interface {
	LoadPlan(ctx context.Context, planID string) (domain.Plan, error)
}

// PlanRepository caches the full plan JSON in Redis (one key per plan) and
// falls back to a loader on cache miss. The whole document is cached rather
// than a stripped answers-only form: the session needs prompts and option
// text, not just correct keys.
type PlanRepository struct {
	client *redis.Client
	loader PlanLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewPlanRepository(client *redis.Client, loader PlanLoader, ttl time.Duration) *PlanRepository {
	return &PlanRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *PlanRepository) GetPlan(ctx context.Context, planID string) (domain.Plan, error) {
	key := r.planKey(planID)

	if raw, err := r.client.Get(ctx, key).Result(); err == nil {
		var plan domain.Plan
		if err := json.Unmarshal([]byte(raw), &plan); err == nil {
			return plan, nil
		}
		// Corrupt cache entry; drop it and reload.
		_ = r.client.Del(ctx, key).Err()
	}

	result, err, _ := r.sf.Do(planID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if raw, err := r.client.Get(ctx, key).Result(); err == nil {
			var plan domain.Plan
			if err := json.Unmarshal([]byte(raw), &plan); err == nil {
				return plan, nil
			}
		}

		plan, err := r.loader.LoadPlan(ctx, planID)
		if err != nil {
			return domain.Plan{}, err
		}

		if data, err := json.Marshal(plan); err == nil {
			_ = r.client.Set(ctx, key, data, r.ttlWithJitter()).Err()
		}
		return plan, nil
	})
	if err != nil {
		return domain.Plan{}, err
	}
	return result.(domain.Plan), nil
}

func (r *PlanRepository) planKey(planID string) string {
	return "plan:" + planID
}

func (r *PlanRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
