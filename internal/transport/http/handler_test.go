package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"studybudy-quiz-service/internal/auth"
	"studybudy-quiz-service/internal/domain"
	"studybudy-quiz-service/internal/infra/memory"
)

func newTestAPI() (*API, *memory.AttemptStore) {
	attempts := memory.NewAttemptStore()
	plans := memory.NewPlanRepository(memory.NewStaticPlanLoader(map[string]domain.Plan{
		"plan-1": samplePlan(),
	}), time.Minute)
	verifier := auth.StaticVerifier{"tok-alice": "u1", "tok-bob": "u2"}
	return NewAPI(plans, attempts, verifier), attempts
}

func serve(api *API, r *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	api.Register(mux)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)
	return w
}

func TestGetPlan(t *testing.T) {
	api, _ := newTestAPI()

	r := httptest.NewRequest(http.MethodGet, "/api/plan/plan-1", nil)
	r.Header.Set("Authorization", "Bearer tok-alice")
	w := serve(api, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var plan domain.Plan
	if err := json.Unmarshal(w.Body.Bytes(), &plan); err != nil {
		t.Fatalf("decode plan: %v", err)
	}
	if plan.Subject != "Geography" || len(plan.Questions) != 2 {
		t.Fatalf("unexpected plan: %+v", plan)
	}
}

func TestGetPlanNotFound(t *testing.T) {
	api, _ := newTestAPI()

	r := httptest.NewRequest(http.MethodGet, "/api/plan/plan-x", nil)
	r.Header.Set("Authorization", "Bearer tok-alice")
	if w := serve(api, r); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	api, _ := newTestAPI()

	r := httptest.NewRequest(http.MethodGet, "/api/plan/plan-1", nil)
	if w := serve(api, r); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	r = httptest.NewRequest(http.MethodGet, "/api/plan/plan-1", nil)
	r.Header.Set("Authorization", "Bearer nope")
	if w := serve(api, r); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with bad token, got %d", w.Code)
	}
}

func TestSubmitQuizThenConflict(t *testing.T) {
	api, _ := newTestAPI()

	w := postSubmission(t, api, "tok-alice")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var ok struct {
		Message string `json:"message"`
		Score   int    `json:"score"`
		Total   int    `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &ok); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ok.Score != 1 || ok.Total != 2 || ok.Message == "" {
		t.Fatalf("unexpected body: %+v", ok)
	}

	// Same user, same plan: 409 with duplicate marker.
	w = postSubmission(t, api, "tok-alice")
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
	var dup struct {
		Status string `json:"status"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &dup)
	if dup.Status != "duplicate" {
		t.Fatalf("expected duplicate status, got %s", w.Body.String())
	}

	// A different user is not a duplicate.
	if w := postSubmission(t, api, "tok-bob"); w.Code != http.StatusOK {
		t.Fatalf("expected 200 for other user, got %d", w.Code)
	}
}

func TestSubmitQuizValidation(t *testing.T) {
	api, _ := newTestAPI()

	r := httptest.NewRequest(http.MethodPost, "/api/quiz/submit", bytes.NewReader([]byte(`{"plan_id":""}`)))
	r.Header.Set("Authorization", "Bearer tok-alice")
	if w := serve(api, r); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing fields, got %d", w.Code)
	}

	r = httptest.NewRequest(http.MethodPost, "/api/quiz/submit", bytes.NewReader([]byte(`not json`)))
	r.Header.Set("Authorization", "Bearer tok-alice")
	if w := serve(api, r); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad json, got %d", w.Code)
	}
}

func TestQuizResult(t *testing.T) {
	api, _ := newTestAPI()

	r := httptest.NewRequest(http.MethodGet, "/api/quiz/result/plan-1", nil)
	r.Header.Set("Authorization", "Bearer tok-alice")
	w := serve(api, r)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if body := w.Body.String(); !bytes.Contains([]byte(body), []byte(`"attempted":false`)) {
		t.Fatalf("expected attempted=false, got %s", body)
	}

	_ = postSubmission(t, api, "tok-alice")

	r = httptest.NewRequest(http.MethodGet, "/api/quiz/result/plan-1", nil)
	r.Header.Set("Authorization", "Bearer tok-alice")
	w = serve(api, r)
	if body := w.Body.String(); !bytes.Contains([]byte(body), []byte(`"attempted":true`)) {
		t.Fatalf("expected attempted=true, got %s", body)
	}
}

func postSubmission(t *testing.T, api *API, token string) *httptest.ResponseRecorder {
	t.Helper()
	payload := map[string]any{
		"plan_id": "plan-1",
		"answers": []domain.Answer{
			{QuestionIndex: 0, Given: "A", Correct: "A"},
			{QuestionIndex: 1, Given: "A", Correct: "B"},
		},
		"score":           1,
		"total_questions": 2,
	}
	body, _ := json.Marshal(payload)
	r := httptest.NewRequest(http.MethodPost, "/api/quiz/submit", bytes.NewReader(body))
	r.Header.Set("Authorization", "Bearer "+token)
	r.Header.Set("Content-Type", "application/json")
	return serve(api, r)
}

func samplePlan() domain.Plan {
	return domain.Plan{
		ID:      "plan-1",
		Subject: "Geography",
		Level:   "Beginner",
		Summary: "Maps and sums.",
		Roadmap: []domain.RoadmapWeek{{Week: 1, Topic: "Capitals", Goal: "Know ten capitals"}},
		Questions: []domain.QuizQuestion{
			{Prompt: "Capital of France?", Options: []string{"Paris", "Rome"}, Answer: "A"},
			{Prompt: "What is 2 + 2?", Options: []string{"2", "4"}, Answer: "B"},
		},
	}
}
