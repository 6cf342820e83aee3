package domain

import (
	"strings"
	"time"
	"unicode"
)

// RoadmapWeek is one entry of the generated study roadmap.
type RoadmapWeek struct {
	Week  int    `json:"week"`
	Topic string `json:"topic"`
	Goal  string `json:"goal"`
}

// QuizQuestion models an MCQ question as delivered by the plan generator.
// Options are ordered; the option at index i is addressed by the letter
// label derived from its position (0 -> "A", 1 -> "B", ...). Answer holds
// the raw correct-answer key from the generator, which may be a letter or
// the full option text; NormalizeKey canonicalizes it into a label.
type QuizQuestion struct {
	Prompt  string   `json:"question"`
	Options []string `json:"options"`
	Answer  string   `json:"answer"`
}

// Labels returns the positional labels for the question's options.
func (q QuizQuestion) Labels() []string {
	labels := make([]string, len(q.Options))
	for i := range q.Options {
		labels[i] = Label(i)
	}
	return labels
}

// CorrectLabel normalizes the raw answer key into a positional label.
func (q QuizQuestion) CorrectLabel() (string, error) {
	return NormalizeKey(q.Answer, q.Options)
}

// Plan is the AI-generated study plan plus quiz bundle for one subject.
type Plan struct {
	ID        string         `json:"id"`
	Subject   string         `json:"subject"`
	Level     string         `json:"level"`
	Summary   string         `json:"summary"`
	Roadmap   []RoadmapWeek  `json:"roadmap"`
	Questions []QuizQuestion `json:"quiz_questions"`
}

// Answer records one submitted choice. Correct is copied from the plan at
// record time so later scoring never re-derives it.
type Answer struct {
	QuestionIndex int    `json:"question"`
	Given         string `json:"given"`
	Correct       string `json:"correct"`
}

// Attempt is one user's completed quiz run for a plan.
type Attempt struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	PlanID    string    `json:"plan_id"`
	Answers   []Answer  `json:"answers"`
	Score     int       `json:"score"`
	Total     int       `json:"total_questions"`
	CreatedAt time.Time `json:"created_at"`
}

// SubmissionStatus classifies the terminal outcome of persisting an attempt.
type SubmissionStatus string

const (
	SubmissionAccepted  SubmissionStatus = "accepted"
	SubmissionDuplicate SubmissionStatus = "already_submitted"
	SubmissionFailed    SubmissionStatus = "failed"
)

// SubmissionResult is the outcome reported back to the caller after a
// completed session was handed off for persistence. A duplicate is benign
// and distinct from failure; on failure the session's local score stays
// valid and displayable.
type SubmissionResult struct {
	Status  SubmissionStatus `json:"status"`
	Message string           `json:"message"`
	Err     error            `json:"-"`
}

func Accepted(message string) SubmissionResult {
	if message == "" {
		message = "quiz submitted successfully"
	}
	return SubmissionResult{Status: SubmissionAccepted, Message: message}
}

func AlreadySubmitted(message string) SubmissionResult {
	if message == "" {
		message = "quiz already submitted"
	}
	return SubmissionResult{Status: SubmissionDuplicate, Message: message}
}

func Failed(err error) SubmissionResult {
	msg := "could not save quiz results"
	if err != nil {
		msg = err.Error()
	}
	return SubmissionResult{Status: SubmissionFailed, Message: msg, Err: err}
}

// Label derives the letter label for an option position (0 -> "A").
// Positions beyond the Latin alphabet are not labeled; quiz generators
// never produce that many options.
func Label(pos int) string {
	if pos < 0 || pos >= 26 {
		return ""
	}
	return string(rune('A' + pos))
}

// NormalizeGiven canonicalizes a submitted key for comparison: trimmed and
// upper-cased.
func NormalizeGiven(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// NormalizeKey maps a raw correct-answer key onto the positional label of
// one of the options. Generators emit the key either as a bare letter or as
// the full option text; both forms are accepted. The result is always a
// label within the option range, otherwise ErrInvalidAnswerKey.
func NormalizeKey(raw string, options []string) (string, error) {
	key := strings.TrimSpace(raw)
	if key == "" || len(options) == 0 {
		return "", ErrInvalidAnswerKey
	}

	runes := []rune(key)
	if len(runes) == 1 && unicode.IsLetter(runes[0]) {
		label := strings.ToUpper(key)
		if pos := int(label[0] - 'A'); pos >= 0 && pos < len(options) {
			return label, nil
		}
		return "", ErrInvalidAnswerKey
	}

	// Full-text key: match against the option content, not its first letter.
	for i, opt := range options {
		if strings.EqualFold(strings.TrimSpace(opt), key) {
			return Label(i), nil
		}
	}
	return "", ErrInvalidAnswerKey
}
