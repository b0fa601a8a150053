package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerSetOverwriteKeepsSingleEntry(t *testing.T) {
	set := NewAnswerSet()
	set.Upsert(1, "B")
	set.Upsert(2, "A")
	set.Upsert(1, "C")

	require.Equal(t, 2, set.Len())
	got, ok := set.Get(1)
	require.True(t, ok)
	assert.Equal(t, "C", got.SelectedOption)
	assert.Equal(t, []Answer{
		{QuestionID: 1, SelectedOption: "C"},
		{QuestionID: 2, SelectedOption: "A"},
	}, set.List())
}

func TestAnswerSetEncodesInsertionOrder(t *testing.T) {
	set := NewAnswerSet()
	set.Upsert(3, "a")
	set.Upsert(1, "b")

	data, err := json.Marshal(set)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"questionId":3,"selectedOption":"a"},{"questionId":1,"selectedOption":"b"}]`, string(data))
}

func TestValidateQuestionSet(t *testing.T) {
	valid := QuestionSet{
		ID:               "q",
		TimeLimitSeconds: 60,
		Questions: []Question{
			{ID: 1, Text: "one", Options: []Option{{ID: "a"}, {ID: "b"}}, CorrectAnswer: "a"},
			{ID: 2, Text: "two", Options: []Option{{ID: "a"}, {ID: "b"}}, CorrectAnswer: "b"},
		},
	}
	require.NoError(t, valid.Validate())

	empty := valid
	empty.Questions = nil
	assert.ErrorIs(t, empty.Validate(), ErrEmptyQuestionSet)

	gap := valid
	gap.Questions = []Question{valid.Questions[1]}
	assert.ErrorIs(t, gap.Validate(), ErrInvalidQuestionSet)

	badAnswer := valid
	badAnswer.Questions = []Question{{ID: 1, Options: []Option{{ID: "a"}}, CorrectAnswer: "z"}}
	assert.ErrorIs(t, badAnswer.Validate(), ErrInvalidQuestionSet)

	noTime := valid
	noTime.TimeLimitSeconds = 0
	assert.ErrorIs(t, noTime.Validate(), ErrInvalidQuestionSet)
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "05:00", FormatClock(300))
	assert.Equal(t, "00:09", FormatClock(9))
	assert.Equal(t, "01:05", FormatClock(65))
	assert.Equal(t, "00:00", FormatClock(-3))
}
