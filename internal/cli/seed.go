package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"timed-quiz-service/internal/config"
	"timed-quiz-service/internal/domain"
	pgloader "timed-quiz-service/internal/infra/postgres"
	pgmigrations "timed-quiz-service/internal/infra/postgres/migrations"
	"timed-quiz-service/internal/logging"
	"timed-quiz-service/internal/quizdata"
)

// NewSeedCmd upserts the bundled question sets, plus any --file, into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	var files []string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load question sets into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath, files)
		},
	}
	cmd.Flags().StringSliceVar(&files, "file", nil, "extra YAML or JSON question set to seed (repeatable)")
	return cmd
}

func runSeed(ctx context.Context, configPath string, files []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := runMigrationsWithConfig(ctx, cfg); err != nil {
		return err
	}

	embedded, err := quizdata.Embedded()
	if err != nil {
		return err
	}
	sets := make([]domain.QuestionSet, 0, len(embedded)+len(files))
	for _, set := range embedded {
		sets = append(sets, set)
	}
	for _, f := range files {
		set, err := quizdata.LoadFile(f)
		if err != nil {
			return fmt.Errorf("%s: %w", f, err)
		}
		sets = append(sets, set)
	}

	db := pgmigrations.OpenDB(cfg.Postgres.URL)
	defer db.Close()
	if err := pgloader.SeedQuizzes(ctx, db, sets...); err != nil {
		return err
	}
	logger := logging.FromContext(ctx)
	logger.Info().Int("count", len(sets)).Msg("question sets seeded")
	return nil
}
