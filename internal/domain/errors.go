package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a quiz session has not been started or was torn down.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuestionNotFound indicates a selected question ID is invalid.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrOptionNotFound indicates a selected option ID is invalid.
	ErrOptionNotFound = errors.New("option not found")
	// ErrAnswerRequired is returned when "next" on the last question would finish without an answer.
	ErrAnswerRequired = errors.New("answer required before finishing")
	// ErrEmptyQuestionSet marks a quiz with no questions; scoring is undefined for N=0.
	ErrEmptyQuestionSet = errors.New("question set is empty")
	// ErrInvalidQuestionSet wraps structural problems in quiz content.
	ErrInvalidQuestionSet = errors.New("invalid question set")
	// ErrHandoffNotFound is returned when the handoff slot holds no answers.
	ErrHandoffNotFound = errors.New("handoff slot is empty")
)
