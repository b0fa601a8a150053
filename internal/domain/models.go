package domain

import (
	"fmt"
)

// Option represents a possible answer for a question.
type Option struct {
	ID   string `json:"id" yaml:"id"`
	Text string `json:"text" yaml:"text"`
}

// Question models an MCQ question with exactly one correct option.
type Question struct {
	ID            int      `json:"id" yaml:"id"`
	Text          string   `json:"text" yaml:"text"`
	Options       []Option `json:"options" yaml:"options"`
	CorrectAnswer string   `json:"correctAnswer" yaml:"correctAnswer"`
}

// HasOption reports whether optionID names one of the question's options.
func (q Question) HasOption(optionID string) bool {
	for _, opt := range q.Options {
		if opt.ID == optionID {
			return true
		}
	}
	return false
}

// QuestionSet is the static quiz resource: an ordered question list plus the time budget.
type QuestionSet struct {
	ID               string     `json:"id" yaml:"id"`
	Title            string     `json:"title" yaml:"title"`
	TimeLimitSeconds int        `json:"timeLimit" yaml:"timeLimit"`
	Questions        []Question `json:"questions" yaml:"questions"`
}

// Len returns the number of questions (N).
func (s QuestionSet) Len() int {
	return len(s.Questions)
}

// Question looks up a question by id.
func (s QuestionSet) Question(id int) (Question, bool) {
	if id >= 1 && id <= len(s.Questions) && s.Questions[id-1].ID == id {
		return s.Questions[id-1], true
	}
	for _, q := range s.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// Validate checks the invariants the session controller relies on:
// ids run 1..N in order and every correct answer names an option.
func (s QuestionSet) Validate() error {
	if len(s.Questions) == 0 {
		return ErrEmptyQuestionSet
	}
	if s.TimeLimitSeconds <= 0 {
		return fmt.Errorf("%w: time limit must be positive, got %d", ErrInvalidQuestionSet, s.TimeLimitSeconds)
	}
	for i, q := range s.Questions {
		if q.ID != i+1 {
			return fmt.Errorf("%w: question at position %d has id %d", ErrInvalidQuestionSet, i+1, q.ID)
		}
		if len(q.Options) == 0 {
			return fmt.Errorf("%w: question %d has no options", ErrInvalidQuestionSet, q.ID)
		}
		seen := make(map[string]struct{}, len(q.Options))
		for _, opt := range q.Options {
			if _, dup := seen[opt.ID]; dup {
				return fmt.Errorf("%w: question %d repeats option %q", ErrInvalidQuestionSet, q.ID, opt.ID)
			}
			seen[opt.ID] = struct{}{}
		}
		if !q.HasOption(q.CorrectAnswer) {
			return fmt.Errorf("%w: question %d correct answer %q is not an option", ErrInvalidQuestionSet, q.ID, q.CorrectAnswer)
		}
	}
	return nil
}

// Answer is the recorded choice for one question.
type Answer struct {
	QuestionID     int    `json:"questionId"`
	SelectedOption string `json:"selectedOption"`
}

// FinishReason records what moved a session to Finished.
type FinishReason string

const (
	FinishExplicit     FinishReason = "explicit"
	FinishLastQuestion FinishReason = "last_question"
	FinishTimeout      FinishReason = "timeout"
)

// Tally is the score computed once, at the Finished transition.
type Tally struct {
	CorrectCount int     `json:"correctCount"`
	ScorePercent float64 `json:"scorePercent"`
}

// SessionState is a point-in-time view of a quiz session for the rendering boundary.
type SessionState struct {
	SessionID            string       `json:"sessionId"`
	QuizID               string       `json:"quizId"`
	CurrentQuestionIndex int          `json:"currentQuestion"`
	TotalQuestions       int          `json:"totalQuestions"`
	TimeRemaining        int          `json:"timeRemaining"`
	Clock                string       `json:"clock"`
	Answers              []Answer     `json:"answers"`
	CanAdvance           bool         `json:"canAdvance"`
	Finished             bool         `json:"finished"`
	FinishReason         FinishReason `json:"finishReason,omitempty"`
	Result               *Tally       `json:"result,omitempty"`
}

// FormatClock renders seconds as zero-padded mm:ss.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
