package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"studybudy-quiz-service/internal/auth"
	"studybudy-quiz-service/internal/domain"
	"studybudy-quiz-service/internal/quiz"
)

type contextKey string

const userIDKey contextKey = "userID"

// API exposes the plan-storage REST surface the quiz engine talks to:
// plan fetch, attempt submission with duplicate detection, and the
// prior-submission read.
type API struct {
	plans    quiz.PlanRepository
	attempts quiz.AttemptStore
	verifier auth.Verifier
}

func NewAPI(plans quiz.PlanRepository, attempts quiz.AttemptStore, verifier auth.Verifier) *API {
	return &API{plans: plans, attempts: attempts, verifier: verifier}
}

// Register wires the API routes onto mux.
func (a *API) Register(mux *http.ServeMux) {
	mux.Handle("GET /api/plan/{id}", a.requireAuth(a.handleGetPlan))
	mux.Handle("POST /api/quiz/submit", a.requireAuth(a.handleSubmitQuiz))
	mux.Handle("GET /api/quiz/result/{id}", a.requireAuth(a.handleQuizResult))
}

func (a *API) requireAuth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
			return
		}
		userID, err := a.verifier.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	})
}

func userFrom(r *http.Request) string {
	userID, _ := r.Context().Value(userIDKey).(string)
	return userID
}

func (a *API) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := a.plans.GetPlan(r.Context(), r.PathValue("id"))
	if errors.Is(err, domain.ErrPlanNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "study plan not found"})
		return
	}
	if err != nil {
		log.Printf("get plan: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load study plan"})
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

type submitRequest struct {
	PlanID  string          `json:"plan_id"`
	Answers []domain.Answer `json:"answers"`
	Score   *int            `json:"score"`
	Total   int             `json:"total_questions"`
}

func (a *API) handleSubmitQuiz(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if req.PlanID == "" || len(req.Answers) == 0 || req.Score == nil || req.Total == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing required fields"})
		return
	}

	attempt := domain.Attempt{
		ID:        uuid.NewString(),
		UserID:    userFrom(r),
		PlanID:    req.PlanID,
		Answers:   req.Answers,
		Score:     *req.Score,
		Total:     req.Total,
		CreatedAt: time.Now(),
	}

	message, err := a.attempts.SaveAttempt(r.Context(), attempt)
	switch {
	case errors.Is(err, domain.ErrAlreadySubmitted):
		writeJSON(w, http.StatusConflict, map[string]string{
			"error":   "quiz already submitted",
			"message": message,
			"status":  "duplicate",
		})
	case err != nil:
		log.Printf("save attempt: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save quiz results"})
	default:
		writeJSON(w, http.StatusOK, map[string]any{
			"message": message,
			"score":   attempt.Score,
			"total":   attempt.Total,
		})
	}
}

func (a *API) handleQuizResult(w http.ResponseWriter, r *http.Request) {
	attempted, err := a.attempts.HasAttempt(r.Context(), userFrom(r), r.PathValue("id"))
	if err != nil {
		log.Printf("check attempt: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to check quiz status"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"attempted": attempted})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
