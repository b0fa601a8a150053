// Package report derives the scored summary of a finished quiz.
//
// Everything here is a pure function of the question list and the answer list,
// so a report can be recomputed any number of times with the same result.
package report

import (
	"encoding/json"
	"fmt"

	"timed-quiz-service/internal/domain"
)

// Outcome classifies one question in the final report.
type Outcome string

const (
	OutcomeCorrect      Outcome = "correct"
	OutcomeIncorrect    Outcome = "incorrect"
	OutcomeNotAttempted Outcome = "notAttempted"
)

// PenaltyPerIncorrect is the negative-marking weight of a wrong answer.
const PenaltyPerIncorrect = 0.25

// Stats is the report for one answer list against one question list.
type Stats struct {
	Total         int       `json:"total"`
	Correct       int       `json:"correct"`
	Incorrect     int       `json:"incorrect"`
	NotAttempted  int       `json:"notAttempted"`
	ScorePercent  float64   `json:"score"`
	Positive      float64   `json:"positive"`
	Negative      float64   `json:"negative"`
	WeightedTotal float64   `json:"weightedTotal"`
	Segments      []Outcome `json:"segments"`
}

// Compute scores answers against questions.
//
// Answers naming a question that is not in the list are dropped, and when the same
// question appears more than once the last entry wins, so Correct+Incorrect+NotAttempted
// always equals len(questions). Compute panics if questions is empty.
func Compute(questions []domain.Question, answers []domain.Answer) Stats {
	n := len(questions)
	if n == 0 {
		panic(domain.ErrEmptyQuestionSet)
	}

	byID := make(map[int]domain.Question, n)
	for _, q := range questions {
		byID[q.ID] = q
	}
	selected := make(map[int]string, len(answers))
	for _, a := range answers {
		if _, ok := byID[a.QuestionID]; !ok {
			continue
		}
		selected[a.QuestionID] = a.SelectedOption
	}

	attempted := len(selected)
	correct := 0
	for qid, opt := range selected {
		if byID[qid].CorrectAnswer == opt {
			correct++
		}
	}
	incorrect := attempted - correct

	return Stats{
		Total:         n,
		Correct:       correct,
		Incorrect:     incorrect,
		NotAttempted:  n - attempted,
		ScorePercent:  100 * float64(correct) / float64(n),
		Positive:      float64(correct),
		Negative:      PenaltyPerIncorrect * float64(incorrect),
		WeightedTotal: float64(correct) - PenaltyPerIncorrect*float64(incorrect),
		Segments:      Segments(correct, incorrect, n-attempted),
	}
}

// Segments lays out chart slices: all correct, then incorrect, then not attempted.
// The order is a rendering convention and deliberately ignores question order.
func Segments(correct, incorrect, notAttempted int) []Outcome {
	out := make([]Outcome, 0, correct+incorrect+notAttempted)
	for i := 0; i < correct; i++ {
		out = append(out, OutcomeCorrect)
	}
	for i := 0; i < incorrect; i++ {
		out = append(out, OutcomeIncorrect)
	}
	for i := 0; i < notAttempted; i++ {
		out = append(out, OutcomeNotAttempted)
	}
	return out
}

// Decode parses the handoff payload: a JSON array of {questionId, selectedOption}.
func Decode(data []byte) ([]domain.Answer, error) {
	var answers []domain.Answer
	if err := json.Unmarshal(data, &answers); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	return answers, nil
}

// Encode is the inverse of Decode.
func Encode(answers []domain.Answer) ([]byte, error) {
	if answers == nil {
		answers = []domain.Answer{}
	}
	return json.Marshal(answers)
}

// ReviewItem describes how one question was answered.
type ReviewItem struct {
	QuestionID     int     `json:"questionId"`
	Text           string  `json:"text"`
	SelectedOption string  `json:"selectedOption,omitempty"`
	CorrectAnswer  string  `json:"correctAnswer"`
	Outcome        Outcome `json:"outcome"`
}

// Review lists every question in question order with the recorded choice.
func Review(questions []domain.Question, answers []domain.Answer) []ReviewItem {
	selected := make(map[int]string, len(answers))
	for _, a := range answers {
		selected[a.QuestionID] = a.SelectedOption
	}
	items := make([]ReviewItem, 0, len(questions))
	for _, q := range questions {
		item := ReviewItem{
			QuestionID:    q.ID,
			Text:          q.Text,
			CorrectAnswer: q.CorrectAnswer,
			Outcome:       OutcomeNotAttempted,
		}
		if opt, ok := selected[q.ID]; ok {
			item.SelectedOption = opt
			item.Outcome = OutcomeIncorrect
			if opt == q.CorrectAnswer {
				item.Outcome = OutcomeCorrect
			}
		}
		items = append(items, item)
	}
	return items
}
