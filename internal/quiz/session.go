package quiz

import (
	"strings"

	"studybudy-quiz-service/internal/domain"
)

// Phase is the lifecycle state of a quiz session.
type Phase int

const (
	// PhasePresenting: a question is shown and awaiting an answer.
	PhasePresenting Phase = iota
	// PhaseEvaluating: transient while a submitted answer is being recorded.
	PhaseEvaluating
	// PhaseCompleted: every question has been answered.
	PhaseCompleted
	// PhasePersisting: the final ledger is being handed to the store.
	PhasePersisting
	// PhasePersisted: a terminal submission outcome is available.
	PhasePersisted
)

// Session drives one-question-at-a-time presentation of a plan's quiz.
// Questions are visited in plan order exactly once; there is no way back
// to an answered question. A Session is owned by a single caller and is
// not safe for concurrent use: transitions only happen in response to
// discrete user events, which the transport serializes.
type Session struct {
	plan    domain.Plan
	correct []string // normalized correct label per question, fixed at start
	ledger  Ledger
	cursor  int
	phase   Phase
	result  domain.SubmissionResult
}

// NewSession validates the plan's quiz and starts a session on its first
// question. An empty quiz, a question without options, or a correct-answer
// key that maps to no label all fail fast before anything is presented.
func NewSession(plan domain.Plan) (*Session, error) {
	if len(plan.Questions) == 0 {
		return nil, domain.ErrEmptyQuiz
	}
	correct := make([]string, len(plan.Questions))
	for i, q := range plan.Questions {
		if len(q.Options) == 0 {
			return nil, domain.ErrEmptyQuiz
		}
		label, err := q.CorrectLabel()
		if err != nil {
			return nil, err
		}
		correct[i] = label
	}
	return &Session{plan: plan, correct: correct, phase: PhasePresenting}, nil
}

// Plan returns the plan this session was built from.
func (s *Session) Plan() domain.Plan {
	return s.plan
}

// Phase reports the current lifecycle state.
func (s *Session) Phase() Phase {
	return s.phase
}

// Cursor is the index of the question currently presented.
func (s *Session) Cursor() int {
	return s.cursor
}

// Total is the number of questions in the session.
func (s *Session) Total() int {
	return len(s.plan.Questions)
}

// Current returns the presented question, or ok=false once the session has
// moved past the last question.
func (s *Session) Current() (domain.QuizQuestion, bool) {
	if s.phase != PhasePresenting {
		return domain.QuizQuestion{}, false
	}
	return s.plan.Questions[s.cursor], true
}

// Submit records the chosen label for the current question and advances the
// cursor, reaching PhaseCompleted after the last question. An empty or
// out-of-range choice returns ErrNoSelection and leaves the session on the
// same question; submitting after completion returns ErrOutOfSequence.
func (s *Session) Submit(choice string) error {
	if s.phase != PhasePresenting {
		return domain.ErrOutOfSequence
	}
	given := domain.NormalizeGiven(choice)
	if given == "" || !s.validLabel(given) {
		return domain.ErrNoSelection
	}

	s.phase = PhaseEvaluating
	if err := s.ledger.Record(s.cursor, given, s.correct[s.cursor]); err != nil {
		s.phase = PhasePresenting
		return err
	}
	s.cursor++
	if s.cursor < len(s.plan.Questions) {
		s.phase = PhasePresenting
	} else {
		s.phase = PhaseCompleted
	}
	return nil
}

func (s *Session) validLabel(given string) bool {
	for _, label := range s.plan.Questions[s.cursor].Labels() {
		if strings.EqualFold(given, label) {
			return true
		}
	}
	return false
}

// Score returns (correct, total) for the answers recorded so far.
func (s *Session) Score() (int, int) {
	return s.ledger.Score()
}

// Percentage returns the progress-bar percentage for the recorded answers.
func (s *Session) Percentage() float64 {
	return s.ledger.Percentage()
}

// Answers returns the recorded answers in presentation order.
func (s *Session) Answers() []domain.Answer {
	return s.ledger.Answers()
}

// beginPersist moves a completed session into PhasePersisting.
func (s *Session) beginPersist() error {
	if s.phase != PhaseCompleted {
		return domain.ErrOutOfSequence
	}
	s.phase = PhasePersisting
	return nil
}

// finishPersist records the terminal submission outcome.
func (s *Session) finishPersist(result domain.SubmissionResult) {
	s.result = result
	s.phase = PhasePersisted
}

// Result returns the submission outcome once the session is persisted.
func (s *Session) Result() (domain.SubmissionResult, bool) {
	if s.phase != PhasePersisted {
		return domain.SubmissionResult{}, false
	}
	return s.result, true
}
