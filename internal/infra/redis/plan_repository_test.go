package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"studybudy-quiz-service/internal/domain"
	"studybudy-quiz-service/internal/infra/memory"
)

func TestPlanRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	loader := &countingLoader{
		PlanLoader: memory.NewStaticPlanLoader(map[string]domain.Plan{
			"plan-1": samplePlan(),
		}),
	}
	repo := NewPlanRepository(client, loader, time.Minute)

	plan, err := repo.GetPlan(context.Background(), "plan-1")
	if err != nil {
		t.Fatalf("get plan: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("plan:plan-1") {
		t.Fatalf("expected plan cached in redis")
	}

	// Second call should hit cache, loader not incremented, content intact.
	cached, err := repo.GetPlan(context.Background(), "plan-1")
	if err != nil {
		t.Fatalf("get plan cached: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if len(cached.Questions) != len(plan.Questions) || cached.Questions[0].Prompt != plan.Questions[0].Prompt {
		t.Fatalf("cached plan lost content: %+v", cached)
	}
}

func TestPlanRepositoryDropsCorruptCacheEntries(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)
	_ = mr.Set("plan:plan-1", "{not json")

	loader := &countingLoader{
		PlanLoader: memory.NewStaticPlanLoader(map[string]domain.Plan{
			"plan-1": samplePlan(),
		}),
	}
	repo := NewPlanRepository(client, loader, time.Minute)

	if _, err := repo.GetPlan(context.Background(), "plan-1"); err != nil {
		t.Fatalf("get plan past corrupt entry: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected reload after corrupt entry, calls=%d", loader.calls)
	}
}

type countingLoader struct {
	PlanLoader
	calls int
}

func (l *countingLoader) LoadPlan(ctx context.Context, planID string) (domain.Plan, error) {
	l.calls++
	return l.PlanLoader.LoadPlan(ctx, planID)
}

func samplePlan() domain.Plan {
	return domain.Plan{
		ID:      "plan-1",
		Subject: "Mathematics",
		Questions: []domain.QuizQuestion{
			{Prompt: "What is 2 + 2?", Options: []string{"3", "4"}, Answer: "B"},
		},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}
