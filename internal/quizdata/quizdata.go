// Package quizdata holds the static question sets bundled with the service and
// parses question sets from YAML or JSON.
package quizdata

import (
	"embed"
	"fmt"
	"os"
	"path"

	"gopkg.in/yaml.v3"

	"timed-quiz-service/internal/domain"
)

// DefaultQuizID names the bundled quiz served when no other source is configured.
const DefaultQuizID = "quiz20"

//go:embed *.yaml
var files embed.FS

// Parse decodes a question set. JSON input is accepted since it is valid YAML.
func Parse(data []byte) (domain.QuestionSet, error) {
	var set domain.QuestionSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return domain.QuestionSet{}, fmt.Errorf("parse question set: %w", err)
	}
	if err := set.Validate(); err != nil {
		return domain.QuestionSet{}, err
	}
	return set, nil
}

// LoadFile reads and parses a question set from disk.
func LoadFile(filename string) (domain.QuestionSet, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return domain.QuestionSet{}, fmt.Errorf("read question set: %w", err)
	}
	return Parse(data)
}

// Embedded returns every bundled question set keyed by id.
func Embedded() (map[string]domain.QuestionSet, error) {
	entries, err := files.ReadDir(".")
	if err != nil {
		return nil, err
	}
	sets := make(map[string]domain.QuestionSet, len(entries))
	for _, entry := range entries {
		data, err := files.ReadFile(entry.Name())
		if err != nil {
			return nil, err
		}
		set, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path.Base(entry.Name()), err)
		}
		sets[set.ID] = set
	}
	return sets, nil
}
