package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"studybudy-quiz-service/internal/domain"
)

// PlanLoader fetches plan content from a backing store (e.g., Postgres).
type PlanLoader interface {
	LoadPlan(ctx context.Context, planID string) (domain.Plan, error)
}

// PlanRepository caches plans with TTL to avoid repeated DB hits while a
// user works through a quiz.
type PlanRepository struct {
	loader PlanLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedPlan
}

type cachedPlan struct {
	plan      domain.Plan
	expiresAt time.Time
}

func NewPlanRepository(loader PlanLoader, ttl time.Duration) *PlanRepository {
	return &PlanRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedPlan),
	}
}

func (r *PlanRepository) GetPlan(ctx context.Context, planID string) (domain.Plan, error) {
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.cache[planID]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return entry.plan, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(planID, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.cache[planID]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.plan, nil
		}
		r.mu.RUnlock()

		plan, err := r.loader.LoadPlan(ctx, planID)
		if err != nil {
			return domain.Plan{}, err
		}

		r.mu.Lock()
		r.cache[planID] = cachedPlan{
			plan:      plan,
			expiresAt: now.Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return plan, nil
	})
	if err != nil {
		return domain.Plan{}, err
	}
	return result.(domain.Plan), nil
}

func (r *PlanRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticPlanLoader is a simple loader backed by an in-memory map (useful for tests/demos).
type StaticPlanLoader struct {
	plans map[string]domain.Plan
}

func NewStaticPlanLoader(plans map[string]domain.Plan) *StaticPlanLoader {
	return &StaticPlanLoader{plans: plans}
}

func (l *StaticPlanLoader) LoadPlan(_ context.Context, planID string) (domain.Plan, error) {
	if plan, ok := l.plans[planID]; ok {
		return plan, nil
	}
	return domain.Plan{}, domain.ErrPlanNotFound
}
