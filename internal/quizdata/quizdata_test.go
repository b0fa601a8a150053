package quizdata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timed-quiz-service/internal/domain"
)

func TestEmbeddedDefaultQuiz(t *testing.T) {
	sets, err := Embedded()
	require.NoError(t, err)

	set, ok := sets[DefaultQuizID]
	require.True(t, ok)
	assert.Equal(t, 5, set.Len())
	assert.Equal(t, 300, set.TimeLimitSeconds)
	assert.Equal(t, "b", set.Questions[0].CorrectAnswer)
}

func TestParseAcceptsJSON(t *testing.T) {
	set, err := Parse([]byte(`{"id":"j","timeLimit":30,"questions":[{"id":1,"text":"t","options":[{"id":"x","text":"X"}],"correctAnswer":"x"}]}`))
	require.NoError(t, err)
	assert.Equal(t, "j", set.ID)
	assert.Equal(t, 1, set.Len())
}

func TestParseRejectsEmptySet(t *testing.T) {
	_, err := Parse([]byte("id: empty\ntimeLimit: 10\nquestions: []\n"))
	assert.ErrorIs(t, err, domain.ErrEmptyQuestionSet)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "quiz.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
id: disk
timeLimit: 45
questions:
  - id: 1
    text: one
    options: [{id: a, text: A}, {id: b, text: B}]
    correctAnswer: a
`), 0o600))

	set, err := LoadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "disk", set.ID)
	assert.Equal(t, 45, set.TimeLimitSeconds)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
