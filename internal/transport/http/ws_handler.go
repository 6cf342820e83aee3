package http

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"studybudy-quiz-service/internal/auth"
	"studybudy-quiz-service/internal/domain"
	"studybudy-quiz-service/internal/quiz"
)

// WSHandler drives a full quiz session over a websocket, one question per
// round trip: the server presents a question, the client answers, and the
// server advances. The protocol is strictly request/response, so a single
// read/write loop serializes all session transitions.
type WSHandler struct {
	service  *quiz.Service
	verifier auth.Verifier
	upgrader websocket.Upgrader
}

func NewWSHandler(service *quiz.Service, verifier auth.Verifier) *WSHandler {
	return &WSHandler{
		service:  service,
		verifier: verifier,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	Choice string `json:"choice"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type statusPayload struct {
	Attempted bool `json:"attempted"`
}

type questionPayload struct {
	Index   int      `json:"index"`
	Total   int      `json:"total"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
	Labels  []string `json:"labels"`
}

type completedPayload struct {
	Correct    int             `json:"correct"`
	Total      int             `json:"total"`
	Percentage float64         `json:"percentage"`
	Answers    []domain.Answer `json:"answers"`
}

type submissionPayload struct {
	Status  domain.SubmissionStatus `json:"status"`
	Message string                  `json:"message"`
}

// ServeWS upgrades the request and runs one quiz session to its terminal
// submission outcome.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	planID := r.URL.Query().Get("planId")
	token := r.URL.Query().Get("token")
	if planID == "" || token == "" {
		http.Error(w, "missing planId or token", http.StatusBadRequest)
		return
	}
	userID, err := h.verifier.Verify(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	session, err := h.service.Start(r.Context(), userID, planID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	// Cosmetic badge; fail-open, never blocks the quiz.
	attempted := h.service.CheckPrior(r.Context(), userID, planID)
	_ = conn.WriteJSON(outboundMessage[statusPayload]{Type: "status", Payload: statusPayload{Attempted: attempted}})

	for {
		question, ok := session.Current()
		if !ok {
			break
		}
		msg := outboundMessage[questionPayload]{Type: "question", Payload: questionPayload{
			Index:   session.Cursor(),
			Total:   session.Total(),
			Prompt:  question.Prompt,
			Options: question.Options,
			Labels:  question.Labels(),
		}}
		if err := conn.WriteJSON(msg); err != nil {
			log.Printf("ws write error: %v", err)
			return
		}

		choice, ok := h.readAnswer(conn)
		if !ok {
			return
		}
		switch err := session.Submit(choice); {
		case err == nil:
		case err == domain.ErrNoSelection:
			// Recoverable: re-prompt, the loop re-sends the same question.
			_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "please select an answer"}})
		default:
			_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
			return
		}
	}

	correct, total := session.Score()
	done := outboundMessage[completedPayload]{Type: "completed", Payload: completedPayload{
		Correct:    correct,
		Total:      total,
		Percentage: session.Percentage(),
		Answers:    session.Answers(),
	}}
	if err := conn.WriteJSON(done); err != nil {
		return
	}
	_ = conn.WriteJSON(outboundMessage[struct{}]{Type: "saving"})

	result := h.service.SubmitResult(r.Context(), userID, session)
	_ = conn.WriteJSON(outboundMessage[submissionPayload]{Type: "submission", Payload: submissionPayload{
		Status:  result.Status,
		Message: result.Message,
	}})
}

// readAnswer blocks until the client sends an answer message. Unsupported
// message types are rejected in place without consuming the question.
func (h *WSHandler) readAnswer(conn *websocket.Conn) (string, bool) {
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return "", false
		}
		if inbound.Type != "answer" {
			_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}})
			continue
		}
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}})
			continue
		}
		return payload.Choice, true
	}
}
