package quiz

import (
	"studybudy-quiz-service/internal/domain"
)

// Ledger is the append-only record of a session's answers. Entries are
// strictly sequential: the next recordable index is always len(answers).
type Ledger struct {
	answers []domain.Answer
}

// Record appends one answer. questionIndex must equal the next expected
// index; anything else is a programming defect in the caller, reported as
// ErrOutOfSequence and never shown to a user.
func (l *Ledger) Record(questionIndex int, given, correct string) error {
	if questionIndex != len(l.answers) {
		return domain.ErrOutOfSequence
	}
	l.answers = append(l.answers, domain.Answer{
		QuestionIndex: questionIndex,
		Given:         given,
		Correct:       correct,
	})
	return nil
}

// Len reports how many answers have been recorded.
func (l *Ledger) Len() int {
	return len(l.answers)
}

// Answers returns a copy of the recorded answers in presentation order.
func (l *Ledger) Answers() []domain.Answer {
	out := make([]domain.Answer, len(l.answers))
	copy(out, l.answers)
	return out
}

// Score counts answers whose given key matches the correct key. Comparison
// is case-insensitive and whitespace-trimmed on both sides.
func (l *Ledger) Score() (correct, total int) {
	total = len(l.answers)
	for _, a := range l.answers {
		if domain.NormalizeGiven(a.Given) == domain.NormalizeGiven(a.Correct) {
			correct++
		}
	}
	return correct, total
}

// Percentage converts the score into a progress-bar percentage. A floor of
// 10 is applied so the indicator never renders as empty on a zero score.
func (l *Ledger) Percentage() float64 {
	correct, total := l.Score()
	if total == 0 {
		return 10
	}
	pct := float64(correct) / float64(total) * 100
	if pct < 10 {
		return 10
	}
	return pct
}
