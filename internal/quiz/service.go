package quiz

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"studybudy-quiz-service/internal/domain"
)

// PlanRepository loads study plans (from cache/backing store).
type PlanRepository interface {
	GetPlan(ctx context.Context, planID string) (domain.Plan, error)
}

// AttemptStore persists completed attempts with exactly-once semantics per
// (user, plan). SaveAttempt returns a server-supplied confirmation message
// and ErrAlreadySubmitted when a prior attempt exists.
type AttemptStore interface {
	SaveAttempt(ctx context.Context, attempt domain.Attempt) (string, error)
	HasAttempt(ctx context.Context, userID, planID string) (bool, error)
}

// Service contains the quiz session use cases: starting a session from a
// stored plan, persisting its final ledger exactly once, and checking for
// a prior submission.
type Service struct {
	plans    PlanRepository
	attempts AttemptStore
	now      func() time.Time
}

func NewService(plans PlanRepository, attempts AttemptStore) *Service {
	return &Service{plans: plans, attempts: attempts, now: time.Now}
}

// NewServiceWithClock is test-only for deterministic attempt timestamps.
func NewServiceWithClock(plans PlanRepository, attempts AttemptStore, now func() time.Time) *Service {
	return &Service{plans: plans, attempts: attempts, now: now}
}

// Start loads the plan and opens a session on its first question. The
// caller's identity must already be established; an empty userID never
// reaches the plan store.
func (s *Service) Start(ctx context.Context, userID, planID string) (*Session, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	plan, err := s.plans.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan.ID == "" {
		plan.ID = planID
	}
	return NewSession(plan)
}

// SubmitResult hands the completed session's ledger and score to the
// attempt store and returns the terminal outcome. A duplicate is reported
// as a benign AlreadySubmitted result; any other store failure becomes
// Failed without invalidating the session's local score. No retry is
// attempted.
func (s *Service) SubmitResult(ctx context.Context, userID string, session *Session) domain.SubmissionResult {
	if err := session.beginPersist(); err != nil {
		result := domain.Failed(err)
		session.finishPersist(result)
		return result
	}

	correct, total := session.Score()
	attempt := domain.Attempt{
		ID:        uuid.NewString(),
		UserID:    userID,
		PlanID:    session.Plan().ID,
		Answers:   session.Answers(),
		Score:     correct,
		Total:     total,
		CreatedAt: s.now(),
	}

	message, err := s.attempts.SaveAttempt(ctx, attempt)
	var result domain.SubmissionResult
	switch {
	case errors.Is(err, domain.ErrAlreadySubmitted):
		result = domain.AlreadySubmitted(message)
	case err != nil:
		log.Printf("save attempt for plan %s failed: %v", attempt.PlanID, err)
		result = domain.Failed(err)
	default:
		result = domain.Accepted(message)
	}
	session.finishPersist(result)
	return result
}

// CheckPrior reports whether the user already submitted this plan's quiz.
// It is best-effort and fail-open: a store error reads as "not submitted"
// so it can never block quiz presentation.
func (s *Service) CheckPrior(ctx context.Context, userID, planID string) bool {
	attempted, err := s.attempts.HasAttempt(ctx, userID, planID)
	if err != nil {
		log.Printf("prior-submission check for plan %s failed: %v", planID, err)
		return false
	}
	return attempted
}
