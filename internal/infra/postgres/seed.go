package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/uptrace/bun"

	"timed-quiz-service/internal/domain"
)

// SeedQuizzes upserts question sets into the quizzes table.
func SeedQuizzes(ctx context.Context, db *bun.DB, sets ...domain.QuestionSet) error {
	for _, set := range sets {
		if err := set.Validate(); err != nil {
			return fmt.Errorf("seed quiz %s: %w", set.ID, err)
		}
		data, err := json.Marshal(set)
		if err != nil {
			return fmt.Errorf("marshal quiz %s: %w", set.ID, err)
		}
		if _, err := db.ExecContext(ctx,
			`INSERT INTO quizzes (id, data) VALUES (?, ?::jsonb) ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data, updated_at=now()`,
			set.ID, string(data),
		); err != nil {
			return fmt.Errorf("insert quiz %s: %w", set.ID, err)
		}
	}
	return nil
}
