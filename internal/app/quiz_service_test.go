package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"timed-quiz-service/internal/app"
	"timed-quiz-service/internal/clock"
	"timed-quiz-service/internal/domain"
	"timed-quiz-service/internal/infra/memory"
	"timed-quiz-service/internal/report"
)

func TestStartAndReport(t *testing.T) {
	ctx := context.Background()
	service, _, _, _ := newTestService()

	session, err := service.Start(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if session.ID() == "" {
		t.Fatalf("expected generated session id")
	}

	// Q1 correct, Q2 incorrect, Q3 skipped, Q4 correct
	mustSelect(t, session, 1, "A")
	mustSelect(t, session, 2, "C")
	mustSelect(t, session, 4, "A")
	session.Finish()

	view, err := service.Report(ctx, "quiz-1", session.ID())
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}
	if view.Degraded {
		t.Fatalf("expected report from handoff data")
	}
	s := view.Stats
	if s.Correct != 2 || s.Incorrect != 1 || s.NotAttempted != 1 {
		t.Fatalf("unexpected counts %+v", s)
	}
	if s.ScorePercent != 50 || s.WeightedTotal != 1.75 {
		t.Fatalf("unexpected score %.2f / weighted %.2f", s.ScorePercent, s.WeightedTotal)
	}
	if len(view.Arcs) != 4 || view.Arcs[0].Outcome != report.OutcomeCorrect || view.Arcs[3].Outcome != report.OutcomeNotAttempted {
		t.Fatalf("unexpected arcs %+v", view.Arcs)
	}

	again, _ := service.Report(ctx, "quiz-1", session.ID())
	if again.Stats.ScorePercent != s.ScorePercent || again.Stats.Correct != s.Correct {
		t.Fatalf("report should be idempotent")
	}
}

func TestReportDegradesWhenHandoffMissing(t *testing.T) {
	ctx := context.Background()
	service, _, _, rec := newTestService()

	view, err := service.Report(ctx, "quiz-1", "never-finished")
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}
	if !view.Degraded || view.Stats.NotAttempted != 4 || view.Stats.ScorePercent != 0 {
		t.Fatalf("expected zero-attempted report, got %+v", view)
	}
	if rec.degraded != 1 {
		t.Fatalf("expected degraded report to be recorded")
	}
}

func TestReportDegradesWhenHandoffCorrupt(t *testing.T) {
	ctx := context.Background()
	service, _, handoff, _ := newTestService()

	if err := handoff.Write(ctx, app.HandoffKey("s-bad"), []byte("{oops")); err != nil {
		t.Fatalf("seed handoff: %v", err)
	}
	view, err := service.Report(ctx, "quiz-1", "s-bad")
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}
	if !view.Degraded || view.Stats.NotAttempted != 4 {
		t.Fatalf("expected zero-attempted report, got %+v", view)
	}
}

func TestReviewFlagsDegradedHandoff(t *testing.T) {
	ctx := context.Background()
	service, _, handoff, _ := newTestService()

	missing, err := service.Review(ctx, "quiz-1", "never-finished")
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if !missing.Degraded || len(missing.Items) != 4 {
		t.Fatalf("expected degraded review over all questions, got %+v", missing)
	}

	if err := handoff.Write(ctx, app.HandoffKey("s-bad"), []byte("{oops")); err != nil {
		t.Fatalf("seed handoff: %v", err)
	}
	corrupt, err := service.Review(ctx, "quiz-1", "s-bad")
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if !corrupt.Degraded {
		t.Fatalf("expected corrupt handoff to be flagged")
	}

	session, _ := service.Start(ctx, "quiz-1")
	session.Finish()
	empty, err := service.Review(ctx, "quiz-1", session.ID())
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if empty.Degraded || empty.Items[0].Outcome != report.OutcomeNotAttempted {
		t.Fatalf("expected a non-degraded review with nothing attempted, got %+v", empty)
	}
}

func TestReportUnknownQuiz(t *testing.T) {
	service, _, _, _ := newTestService()
	if _, err := service.Report(context.Background(), "quiz-unknown", "s1"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz not found, got %v", err)
	}
}

func TestStartUnknownQuiz(t *testing.T) {
	service, _, _, _ := newTestService()
	if _, err := service.Start(context.Background(), "quiz-unknown"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz not found, got %v", err)
	}
}

func TestRestartStopsPreviousTimer(t *testing.T) {
	ctx := context.Background()
	service, clk, _, rec := newTestService()

	first, err := service.Start(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	firstTicker := clk.Last()

	second, err := service.Restart(ctx, first.ID())
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	if !firstTicker.Stopped() {
		t.Fatalf("expected previous ticker stopped")
	}
	if second.ID() == first.ID() {
		t.Fatalf("expected a new session id")
	}
	if _, err := service.Get(first.ID()); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected old session dropped, got %v", err)
	}
	if got, err := service.Get(second.ID()); err != nil || got != second {
		t.Fatalf("expected new session registered")
	}
	if rec.started != 2 {
		t.Fatalf("expected two starts recorded, got %d", rec.started)
	}

	if _, err := service.Restart(ctx, "missing"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session not found, got %v", err)
	}
}

func TestEndKeepsHandoffReadable(t *testing.T) {
	ctx := context.Background()
	service, clk, _, rec := newTestService()

	session, _ := service.Start(ctx, "quiz-1")
	mustSelect(t, session, 1, "A")
	session.Finish()
	service.End(session.ID())
	service.End(session.ID())

	if !clk.Last().Stopped() {
		t.Fatalf("expected ticker stopped")
	}
	if _, err := service.Get(session.ID()); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session removed")
	}
	review, err := service.Review(ctx, "quiz-1", session.ID())
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	items := review.Items
	if review.Degraded || len(items) != 4 || items[0].Outcome != report.OutcomeCorrect || items[1].Outcome != report.OutcomeNotAttempted {
		t.Fatalf("unexpected review %+v", review)
	}
	if rec.finished[domain.FinishExplicit] != 1 {
		t.Fatalf("expected finish recorded, got %+v", rec.finished)
	}
}

func mustSelect(t *testing.T, session *app.Session, questionID int, optionID string) {
	t.Helper()
	if err := session.SelectOption(questionID, optionID); err != nil {
		t.Fatalf("select %d/%s: %v", questionID, optionID, err)
	}
}

type fakeRecorder struct {
	mu       sync.Mutex
	started  int
	degraded int
	finished map[domain.FinishReason]int
}

func (r *fakeRecorder) SessionStarted(string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started++
}

func (r *fakeRecorder) SessionFinished(_ string, reason domain.FinishReason, _ float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finished == nil {
		r.finished = make(map[domain.FinishReason]int)
	}
	r.finished[reason]++
}

func (r *fakeRecorder) ReportDegraded(string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.degraded++
}

func newTestService() (*app.QuizService, *clock.Manual, *memory.HandoffStore, *fakeRecorder) {
	clk := clock.NewManual(time.Unix(0, 0))
	handoff := memory.NewHandoffStore(time.Hour)
	rec := &fakeRecorder{}
	quizRepo := memory.NewQuizRepository(memory.NewStaticQuizLoader(map[string]domain.QuestionSet{
		"quiz-1": questionSet(4, 60),
	}), 5*time.Minute)
	service := app.NewQuizService(memory.NewSessionStore(), quizRepo, handoff,
		app.WithClock(clk),
		app.WithRecorder(rec),
	)
	return service, clk, handoff, rec
}
