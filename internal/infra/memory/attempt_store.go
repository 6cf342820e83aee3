package memory

import (
	"context"
	"sync"

	"studybudy-quiz-service/internal/domain"
)

// AttemptStore is an in-memory implementation of quiz.AttemptStore. One
// attempt is kept per (user, plan); later saves report a duplicate.
type AttemptStore struct {
	mu       sync.RWMutex
	attempts map[string]domain.Attempt
}

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{attempts: make(map[string]domain.Attempt)}
}

func (s *AttemptStore) SaveAttempt(_ context.Context, attempt domain.Attempt) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := s.key(attempt.UserID, attempt.PlanID)
	if _, ok := s.attempts[key]; ok {
		return "you have already completed this quiz", domain.ErrAlreadySubmitted
	}
	s.attempts[key] = attempt
	return "quiz submitted successfully", nil
}

func (s *AttemptStore) HasAttempt(_ context.Context, userID, planID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.attempts[s.key(userID, planID)]
	return ok, nil
}

// GetAttempt returns the stored attempt, if any.
func (s *AttemptStore) GetAttempt(_ context.Context, userID, planID string) (domain.Attempt, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	attempt, ok := s.attempts[s.key(userID, planID)]
	return attempt, ok
}

func (s *AttemptStore) key(userID, planID string) string {
	return userID + "|" + planID
}
