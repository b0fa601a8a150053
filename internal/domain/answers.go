package domain

import "encoding/json"

// AnswerSet holds at most one Answer per question, in the order questions were first answered.
// Re-selecting overwrites in place and keeps the original position.
type AnswerSet struct {
	order []Answer
	index map[int]int
}

func NewAnswerSet() *AnswerSet {
	return &AnswerSet{index: make(map[int]int)}
}

// Upsert records optionID for questionID, overwriting any previous choice.
func (a *AnswerSet) Upsert(questionID int, optionID string) {
	if a.index == nil {
		a.index = make(map[int]int)
	}
	if pos, ok := a.index[questionID]; ok {
		a.order[pos].SelectedOption = optionID
		return
	}
	a.index[questionID] = len(a.order)
	a.order = append(a.order, Answer{QuestionID: questionID, SelectedOption: optionID})
}

func (a *AnswerSet) Get(questionID int) (Answer, bool) {
	pos, ok := a.index[questionID]
	if !ok {
		return Answer{}, false
	}
	return a.order[pos], true
}

func (a *AnswerSet) Len() int {
	return len(a.order)
}

// List returns a copy of the answers in insertion order.
func (a *AnswerSet) List() []Answer {
	out := make([]Answer, len(a.order))
	copy(out, a.order)
	return out
}

// MarshalJSON encodes the set as the ordered handoff array.
func (a *AnswerSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.List())
}
