package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"timed-quiz-service/internal/config"
	"timed-quiz-service/internal/domain"
	"timed-quiz-service/internal/logging"
	"timed-quiz-service/internal/report"
)

// NewReportCmd scores a saved answers document against a question set offline.
func NewReportCmd(configPath *string) *cobra.Command {
	var (
		quizID  string
		answers string
		svgOut  string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Compute a report from a saved answers file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd.Context(), cmd.OutOrStdout(), *configPath, quizID, answers, svgOut)
		},
	}
	cmd.Flags().StringVar(&quizID, "quiz", "", "quiz id (defaults to the configured default quiz)")
	cmd.Flags().StringVar(&answers, "answers", "", "JSON array of {questionId, selectedOption}")
	cmd.Flags().StringVar(&svgOut, "svg", "", "write the score chart to this file")
	_ = cmd.MarkFlagRequired("answers")
	return cmd
}

func runReport(ctx context.Context, out io.Writer, configPath, quizID, answersPath, svgOut string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if quizID == "" {
		quizID = cfg.Quiz.DefaultID
	}
	logger := logging.FromContext(ctx)

	loader, closeLoader, err := quizLoader(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeLoader()
	set, err := loader.LoadQuiz(ctx, quizID)
	if err != nil {
		return err
	}
	if err := set.Validate(); err != nil {
		return err
	}

	data, err := os.ReadFile(answersPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	stats := scoreAnswers(set, data, logger)
	printReport(out, set, stats)

	if svgOut == "" {
		return nil
	}
	f, err := os.Create(svgOut)
	if err != nil {
		return err
	}
	defer f.Close()
	return report.RenderSVG(f, stats, report.DefaultGeometry)
}

// scoreAnswers treats missing or unreadable answer data as nothing attempted.
func scoreAnswers(set domain.QuestionSet, data []byte, logger zerolog.Logger) report.Stats {
	if len(data) == 0 {
		logger.Warn().Str("quiz_id", set.ID).Msg("no answers found, reporting zero attempted")
		return report.Compute(set.Questions, nil)
	}
	answers, err := report.Decode(data)
	if err != nil {
		logger.Warn().Err(err).Str("quiz_id", set.ID).Msg("corrupt answers, reporting zero attempted")
		return report.Compute(set.Questions, nil)
	}
	return report.Compute(set.Questions, answers)
}

func printReport(out io.Writer, set domain.QuestionSet, stats report.Stats) {
	fmt.Fprintf(out, "Quiz:           %s\n", set.Title)
	fmt.Fprintf(out, "Total:          %d\n", stats.Total)
	fmt.Fprintf(out, "Correct:        %d\n", stats.Correct)
	fmt.Fprintf(out, "Incorrect:      %d\n", stats.Incorrect)
	fmt.Fprintf(out, "Not attempted:  %d\n", stats.NotAttempted)
	fmt.Fprintf(out, "Score:          %.2f\n", stats.ScorePercent)
	fmt.Fprintf(out, "Weighted total: %.2f (+%.2f / -%.2f)\n", stats.WeightedTotal, stats.Positive, stats.Negative)
}
