package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"studybudy-quiz-service/internal/domain"
)

func TestSaveAttemptAccepted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/quiz/submit" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Fatalf("missing bearer token, got %q", got)
		}
		var req struct {
			PlanID string          `json:"plan_id"`
			Score  int             `json:"score"`
			Total  int             `json:"total_questions"`
			Answ   []domain.Answer `json:"answers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if req.PlanID != "plan-1" || req.Score != 1 || req.Total != 2 || len(req.Answ) != 2 {
			t.Fatalf("unexpected payload: %+v", req)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "quiz submitted successfully"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "tok")
	message, err := client.SaveAttempt(context.Background(), sampleAttempt())
	if err != nil {
		t.Fatalf("save attempt: %v", err)
	}
	if message != "quiz submitted successfully" {
		t.Fatalf("expected server message, got %q", message)
	}
}

func TestSaveAttemptConflict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "you have already completed this quiz"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "tok")
	message, err := client.SaveAttempt(context.Background(), sampleAttempt())
	if err != domain.ErrAlreadySubmitted {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if message == "" {
		t.Fatalf("expected conflict message carried through")
	}
}

func TestSaveAttemptServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "tok")
	if _, err := client.SaveAttempt(context.Background(), sampleAttempt()); err == nil {
		t.Fatalf("expected error for 500 response")
	}
}

func TestSaveAttemptUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := NewClient(server.URL, "tok")
	if _, err := client.SaveAttempt(context.Background(), sampleAttempt()); err == nil {
		t.Fatalf("expected transport error")
	}
}

func TestHasAttempt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/quiz/result/plan-1" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]bool{"attempted": true})
	}))
	defer server.Close()

	client := NewClient(server.URL, "tok")
	attempted, err := client.HasAttempt(context.Background(), "u1", "plan-1")
	if err != nil {
		t.Fatalf("has attempt: %v", err)
	}
	if !attempted {
		t.Fatalf("expected attempted=true")
	}
}

func TestHasAttemptErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, "tok")
	if _, err := client.HasAttempt(context.Background(), "u1", "plan-1"); err == nil {
		t.Fatalf("expected error; the fail-open decision belongs to the caller")
	}
}

func sampleAttempt() domain.Attempt {
	return domain.Attempt{
		ID:     "a1",
		UserID: "u1",
		PlanID: "plan-1",
		Answers: []domain.Answer{
			{QuestionIndex: 0, Given: "A", Correct: "A"},
			{QuestionIndex: 1, Given: "A", Correct: "B"},
		},
		Score: 1,
		Total: 2,
	}
}
