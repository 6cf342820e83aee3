package domain

import "errors"

var (
	// ErrEmptyQuiz is returned when a plan carries no usable quiz questions.
	ErrEmptyQuiz = errors.New("quiz has no questions")
	// ErrInvalidAnswerKey indicates a correct-answer key that maps to no option label.
	ErrInvalidAnswerKey = errors.New("answer key does not match any option")
	// ErrNoSelection is returned when an answer is submitted without a choice.
	// It is recoverable: the session stays on the current question.
	ErrNoSelection = errors.New("no option selected")
	// ErrOutOfSequence indicates an attempt to record an answer out of order.
	ErrOutOfSequence = errors.New("answer recorded out of sequence")
	// ErrPlanNotFound indicates the study plan could not be loaded.
	ErrPlanNotFound = errors.New("study plan not found")
	// ErrAlreadySubmitted marks a duplicate attempt for the same user and plan.
	ErrAlreadySubmitted = errors.New("quiz already submitted")
	// ErrUnauthenticated is returned when a session is requested without a valid identity.
	ErrUnauthenticated = errors.New("not authenticated")
)
