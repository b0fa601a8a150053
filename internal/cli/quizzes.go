package cli

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"

	"timed-quiz-service/internal/config"
	"timed-quiz-service/internal/domain"
	"timed-quiz-service/internal/infra/memory"
	pgloader "timed-quiz-service/internal/infra/postgres"
	"timed-quiz-service/internal/quizdata"
)

// quizLoader chains the configured question sources: the optional quiz file,
// the bundled sets, then Postgres when a URL is configured.
// The returned cleanup closes any pool it opened.
func quizLoader(ctx context.Context, cfg config.Config, logger zerolog.Logger) (memory.QuizLoader, func(), error) {
	static, err := quizdata.Embedded()
	if err != nil {
		return nil, nil, err
	}
	if cfg.Quiz.File != "" {
		set, err := quizdata.LoadFile(cfg.Quiz.File)
		if err != nil {
			return nil, nil, err
		}
		logger.Info().Str("quiz_id", set.ID).Str("file", cfg.Quiz.File).Msg("loaded question set from file")
		static = withSet(static, set)
	}

	chain := memory.ChainLoader{memory.NewStaticQuizLoader(static)}
	cleanup := func() {}
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, err
		}
		chain = append(chain, pgloader.NewQuizLoader(pool))
		cleanup = pool.Close
	}
	return chain, cleanup, nil
}

func withSet(sets map[string]domain.QuestionSet, set domain.QuestionSet) map[string]domain.QuestionSet {
	out := make(map[string]domain.QuestionSet, len(sets)+1)
	for id, s := range sets {
		out[id] = s
	}
	out[set.ID] = set
	return out
}
