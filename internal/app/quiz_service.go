package app

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"timed-quiz-service/internal/clock"
	"timed-quiz-service/internal/domain"
	"timed-quiz-service/internal/report"
)

// HandoffSlotName is the fixed name of the cell that carries a finished session's answers to the report.
const HandoffSlotName = "quizAnswers"

// HandoffKey scopes the handoff cell to one session.
func HandoffKey(sessionID string) string {
	return HandoffSlotName + ":" + sessionID
}

// SessionRepository abstracts where live sessions are registered (in-memory, Redis, etc).
type SessionRepository interface {
	Put(session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.QuestionSet, error)
}

// HandoffStore is the single-slot cell written once at finish and read at report time.
// Read returns domain.ErrHandoffNotFound when nothing was written.
type HandoffStore interface {
	Write(ctx context.Context, key string, data []byte) error
	Read(ctx context.Context, key string) ([]byte, error)
}

// Recorder receives session lifecycle events for metrics.
type Recorder interface {
	SessionStarted(quizID string)
	SessionFinished(quizID string, reason domain.FinishReason, scorePercent float64)
	ReportDegraded(quizID string)
}

type nopRecorder struct{}

func (nopRecorder) SessionStarted(string)                                {}
func (nopRecorder) SessionFinished(string, domain.FinishReason, float64) {}
func (nopRecorder) ReportDegraded(string)                                {}

// Option customizes a QuizService.
type Option func(*QuizService)

func WithClock(c clock.Clock) Option {
	return func(s *QuizService) { s.clock = c }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *QuizService) { s.logger = l }
}

func WithRecorder(r Recorder) Option {
	return func(s *QuizService) { s.recorder = r }
}

// QuizService contains the core quiz use cases.
type QuizService struct {
	sessions SessionRepository
	quizzes  QuizRepository
	handoff  HandoffStore
	clock    clock.Clock
	logger   zerolog.Logger
	recorder Recorder
	newID    func() string
}

func NewQuizService(store SessionRepository, quizzes QuizRepository, handoff HandoffStore, opts ...Option) *QuizService {
	s := &QuizService{
		sessions: store,
		quizzes:  quizzes,
		handoff:  handoff,
		clock:    clock.Real{},
		logger:   zerolog.Nop(),
		recorder: nopRecorder{},
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("component", "quiz_service").Logger()
	return s
}

// Start begins a new session over quizID and arms its countdown.
func (s *QuizService) Start(ctx context.Context, quizID string) (*Session, error) {
	set, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}

	session := NewSession(SessionConfig{
		ID:        s.newID(),
		Questions: set,
		Handoff:   s.handoff,
		Clock:     s.clock,
		Logger:    s.logger,
		OnFinish: func(state domain.SessionState) {
			score := 0.0
			if state.Result != nil {
				score = state.Result.ScorePercent
			}
			s.recorder.SessionFinished(state.QuizID, state.FinishReason, score)
		},
	})
	s.sessions.Put(session)
	// the countdown outlives the request that started it; End or Restart stop it
	session.Start(context.WithoutCancel(ctx))

	s.recorder.SessionStarted(quizID)
	s.logger.Info().Str("session_id", session.ID()).Str("quiz_id", quizID).Msg("quiz session started")
	return session, nil
}

// Restart stops the session's timer, drops it, and starts a fresh session over the same quiz.
func (s *QuizService) Restart(ctx context.Context, sessionID string) (*Session, error) {
	old, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	old.Stop()
	s.sessions.Delete(sessionID)
	return s.Start(ctx, old.QuizID())
}

// Get returns a live session.
func (s *QuizService) Get(sessionID string) (*Session, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// End tears a session down. Its handoff data, if any, stays readable.
func (s *QuizService) End(sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	session.Stop()
	s.sessions.Delete(sessionID)
}

// ReportView is what the report display needs.
type ReportView struct {
	QuizID    string       `json:"quizId"`
	SessionID string       `json:"sessionId"`
	Stats     report.Stats `json:"stats"`
	Arcs      []report.Arc `json:"arcs"`
	// Degraded is set when the handoff slot was empty or unreadable and the
	// report shows zero questions attempted.
	Degraded bool `json:"degraded"`
}

// Report reads the session's handoff slot and computes the report.
// Missing or corrupt handoff data yields a zero-attempted report instead of an error.
func (s *QuizService) Report(ctx context.Context, quizID, sessionID string) (ReportView, error) {
	set, answers, degraded, err := s.loadFinished(ctx, quizID, sessionID)
	if err != nil {
		return ReportView{}, err
	}
	stats := report.Compute(set.Questions, answers)
	return ReportView{
		QuizID:    quizID,
		SessionID: sessionID,
		Stats:     stats,
		Arcs:      report.Chart(stats, report.DefaultGeometry),
		Degraded:  degraded,
	}, nil
}

// ReviewView lists every question with the recorded and the correct option.
type ReviewView struct {
	QuizID    string              `json:"quizId"`
	SessionID string              `json:"sessionId"`
	Items     []report.ReviewItem `json:"items"`
	// Degraded has the same meaning as in ReportView.
	Degraded bool `json:"degraded"`
}

// Review reads the session's handoff slot under the same policy as Report.
func (s *QuizService) Review(ctx context.Context, quizID, sessionID string) (ReviewView, error) {
	set, answers, degraded, err := s.loadFinished(ctx, quizID, sessionID)
	if err != nil {
		return ReviewView{}, err
	}
	return ReviewView{
		QuizID:    quizID,
		SessionID: sessionID,
		Items:     report.Review(set.Questions, answers),
		Degraded:  degraded,
	}, nil
}

func (s *QuizService) loadFinished(ctx context.Context, quizID, sessionID string) (domain.QuestionSet, []domain.Answer, bool, error) {
	set, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.QuestionSet{}, nil, false, err
	}
	if err := set.Validate(); err != nil {
		return domain.QuestionSet{}, nil, false, err
	}

	log := s.logger.With().Str("quiz_id", quizID).Str("session_id", sessionID).Logger()
	data, err := s.handoff.Read(ctx, HandoffKey(sessionID))
	if errors.Is(err, domain.ErrHandoffNotFound) {
		log.Warn().Msg("no answers in handoff slot, reporting zero attempted")
		s.recorder.ReportDegraded(quizID)
		return set, nil, true, nil
	}
	if err != nil {
		return domain.QuestionSet{}, nil, false, err
	}

	answers, err := report.Decode(data)
	if err != nil {
		log.Warn().Err(err).Msg("corrupt handoff data, reporting zero attempted")
		s.recorder.ReportDegraded(quizID)
		return set, nil, true, nil
	}
	return set, answers, false, nil
}
