package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"studybudy-quiz-service/internal/domain"
)

// PlanLoader loads study-plan JSONB from Postgres.
type PlanLoader struct {
	pool *pgxpool.Pool
}

func NewPlanLoader(pool *pgxpool.Pool) *PlanLoader {
	return &PlanLoader{pool: pool}
}

func (l *PlanLoader) LoadPlan(ctx context.Context, planID string) (domain.Plan, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM study_plans WHERE id=$1`, planID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Plan{}, domain.ErrPlanNotFound
	}
	if err != nil {
		return domain.Plan{}, fmt.Errorf("load plan: %w", err)
	}
	var plan domain.Plan
	if err := json.Unmarshal(raw, &plan); err != nil {
		return domain.Plan{}, fmt.Errorf("unmarshal plan: %w", err)
	}
	if plan.ID == "" {
		plan.ID = planID
	}
	return plan, nil
}
