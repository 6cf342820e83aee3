// Package remote implements quiz.AttemptStore against another
// studybudy-quiz-service instance's REST API, so the session engine can run
// apart from the plan store. A 409 from the remote is the benign duplicate
// condition; any transport error or other non-success status is a plain
// error the coordinator reports as a failed submission.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"studybudy-quiz-service/internal/domain"
)

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// NewClientWithHTTP is test-only for injecting a custom http.Client.
func NewClientWithHTTP(baseURL, token string, httpClient *http.Client) *Client {
	return &Client{baseURL: baseURL, token: token, httpClient: httpClient}
}

type submitRequest struct {
	PlanID  string          `json:"plan_id"`
	Answers []domain.Answer `json:"answers"`
	Score   int             `json:"score"`
	Total   int             `json:"total_questions"`
}

type submitResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *Client) SaveAttempt(ctx context.Context, attempt domain.Attempt) (string, error) {
	body, err := json.Marshal(submitRequest{
		PlanID:  attempt.PlanID,
		Answers: attempt.Answers,
		Score:   attempt.Score,
		Total:   attempt.Total,
	})
	if err != nil {
		return "", fmt.Errorf("marshal submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/quiz/submit", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("submit quiz: %w", err)
	}
	defer resp.Body.Close()

	var parsed submitResponse
	_ = json.NewDecoder(resp.Body).Decode(&parsed)

	switch {
	case resp.StatusCode == http.StatusConflict:
		return parsed.Message, domain.ErrAlreadySubmitted
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return "", fmt.Errorf("submit quiz: status %d", resp.StatusCode)
	default:
		return parsed.Message, nil
	}
}

func (c *Client) HasAttempt(ctx context.Context, _, planID string) (bool, error) {
	u := c.baseURL + "/api/quiz/result/" + url.PathEscape(planID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("check attempt: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("check attempt: status %d", resp.StatusCode)
	}
	var parsed struct {
		Attempted bool `json:"attempted"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return false, fmt.Errorf("decode attempt status: %w", err)
	}
	return parsed.Attempted, nil
}
