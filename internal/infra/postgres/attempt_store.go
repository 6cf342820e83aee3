package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"studybudy-quiz-service/internal/domain"
)

// AttemptStore persists quiz attempts in Postgres. The UNIQUE(user_id,
// plan_id) constraint is what makes submission exactly-once: the insert is
// attempted unconditionally and a conflict means a prior attempt exists.
type AttemptStore struct {
	pool *pgxpool.Pool
}

func NewAttemptStore(pool *pgxpool.Pool) *AttemptStore {
	return &AttemptStore{pool: pool}
}

func (s *AttemptStore) SaveAttempt(ctx context.Context, attempt domain.Attempt) (string, error) {
	answers, err := json.Marshal(attempt.Answers)
	if err != nil {
		return "", fmt.Errorf("marshal answers: %w", err)
	}

	tag, err := s.pool.Exec(ctx, `
		INSERT INTO quiz_attempts (id, user_id, plan_id, answers, score, total_questions, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, plan_id) DO NOTHING`,
		attempt.ID, attempt.UserID, attempt.PlanID, answers, attempt.Score, attempt.Total, attempt.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("save attempt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return "you have already completed this quiz", domain.ErrAlreadySubmitted
	}
	return "quiz submitted successfully", nil
}

func (s *AttemptStore) HasAttempt(ctx context.Context, userID, planID string) (bool, error) {
	var attempted bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM quiz_attempts WHERE user_id=$1 AND plan_id=$2)`,
		userID, planID,
	).Scan(&attempted)
	if err != nil {
		return false, fmt.Errorf("check attempt: %w", err)
	}
	return attempted, nil
}
