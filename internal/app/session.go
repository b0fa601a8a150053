package app

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"timed-quiz-service/internal/clock"
	"timed-quiz-service/internal/domain"
	"timed-quiz-service/internal/report"
)

// DefaultHandoffTimeout bounds the handoff write made while the session lock is held.
const DefaultHandoffTimeout = 2 * time.Second

// SessionConfig wires a Session to its collaborators.
type SessionConfig struct {
	ID        string
	Questions domain.QuestionSet
	Handoff   HandoffStore
	Clock     clock.Clock
	Logger    zerolog.Logger
	// HandoffTimeout bounds the handoff write; zero means DefaultHandoffTimeout.
	HandoffTimeout time.Duration
	// OnFinish runs once, under the session lock, right after the Finished transition.
	// It must not call back into the session.
	OnFinish func(domain.SessionState)
}

// Session is one run of a quiz: InProgress until finished by the user, the last
// "next", or the countdown, then Finished for good.
//
// All mutations go through mu, so the ticker goroutine and the transport see a
// single ordered stream of state changes.
type Session struct {
	id             string
	set            domain.QuestionSet
	handoff        HandoffStore
	clock          clock.Clock
	logger         zerolog.Logger
	onFinish       func(domain.SessionState)
	handoffTimeout time.Duration

	mu          sync.Mutex
	current     int
	remaining   int
	answers     *domain.AnswerSet
	finished    bool
	reason      domain.FinishReason
	tally       *domain.Tally
	stopped     bool
	ticker      clock.Ticker
	done        chan struct{}
	subscribers map[chan domain.SessionState]struct{}
}

// NewSession creates a session at question 1 with the full time budget.
// The set must already be validated.
func NewSession(cfg SessionConfig) *Session {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real{}
	}
	timeout := cfg.HandoffTimeout
	if timeout <= 0 {
		timeout = DefaultHandoffTimeout
	}
	return &Session{
		id:             cfg.ID,
		set:            cfg.Questions,
		handoff:        cfg.Handoff,
		clock:          clk,
		logger:         cfg.Logger.With().Str("session_id", cfg.ID).Str("quiz_id", cfg.Questions.ID).Logger(),
		onFinish:       cfg.OnFinish,
		handoffTimeout: timeout,
		current:        1,
		remaining:      cfg.Questions.TimeLimitSeconds,
		answers:        domain.NewAnswerSet(),
		done:           make(chan struct{}),
		subscribers:    make(map[chan domain.SessionState]struct{}),
	}
}

func (s *Session) ID() string     { return s.id }
func (s *Session) QuizID() string { return s.set.ID }

// Questions returns the static question set the session runs over.
func (s *Session) Questions() domain.QuestionSet { return s.set }

// Start arms the one-second countdown. The ticker is created before Start returns
// and is stopped when the session finishes, is stopped, or ctx ends.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	if s.ticker != nil || s.finished || s.stopped {
		s.mu.Unlock()
		return
	}
	t := s.clock.NewTicker(time.Second)
	s.ticker = t
	done := s.done
	s.mu.Unlock()

	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-t.C():
				s.Tick()
			}
		}
	}()
}

// Stop tears the session down without finishing it. Safe to call more than once.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	s.stopTimerLocked()
}

// SelectOption records optionID for questionID, overwriting an earlier choice.
// After the session is finished or stopped it does nothing.
func (s *Session) SelectOption(questionID int, optionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.activeLocked() {
		return nil
	}
	q, ok := s.set.Question(questionID)
	if !ok {
		return domain.ErrQuestionNotFound
	}
	if !q.HasOption(optionID) {
		return domain.ErrOptionNotFound
	}
	s.answers.Upsert(questionID, optionID)
	s.broadcastLocked()
	return nil
}

// Next moves to the following question. On the last question it finishes the
// session instead, provided that question has an answer.
func (s *Session) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.activeLocked() {
		return nil
	}
	if s.current < s.set.Len() {
		s.current++
		s.broadcastLocked()
		return nil
	}
	if _, ok := s.answers.Get(s.current); !ok {
		return domain.ErrAnswerRequired
	}
	s.finishLocked(domain.FinishLastQuestion)
	return nil
}

// Previous moves back one question; at the first question it does nothing.
func (s *Session) Previous() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.activeLocked() || s.current <= 1 {
		return
	}
	s.current--
	s.broadcastLocked()
}

// Finish ends the session regardless of the current question.
func (s *Session) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.activeLocked() {
		return
	}
	s.finishLocked(domain.FinishExplicit)
}

// Tick accounts for one elapsed second and finishes the session when time runs out.
func (s *Session) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.activeLocked() {
		return
	}
	if s.remaining > 0 {
		s.remaining--
	}
	if s.remaining == 0 {
		s.finishLocked(domain.FinishTimeout)
		return
	}
	s.broadcastLocked()
}

// Snapshot returns the current state.
func (s *Session) Snapshot() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Done is closed once the session is finished or stopped.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Subscribe returns a channel that receives a snapshot after every change.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *Session) Subscribe() (<-chan domain.SessionState, func()) {
	ch := make(chan domain.SessionState, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	// the buffer is empty, so this never blocks and no broadcast can overtake it
	ch <- s.snapshotLocked()
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) activeLocked() bool {
	return !s.finished && !s.stopped
}

func (s *Session) finishLocked(reason domain.FinishReason) {
	s.finished = true
	s.reason = reason
	s.stopTimerLocked()

	answers := s.answers.List()
	stats := report.Compute(s.set.Questions, answers)
	s.tally = &domain.Tally{CorrectCount: stats.Correct, ScorePercent: stats.ScorePercent}

	s.writeHandoffLocked(answers)

	state := s.broadcastLocked()
	s.logger.Info().
		Str("reason", string(reason)).
		Int("correct", stats.Correct).
		Float64("score", stats.ScorePercent).
		Msg("quiz session finished")
	if s.onFinish != nil {
		s.onFinish(state)
	}
}

func (s *Session) writeHandoffLocked(answers []domain.Answer) {
	if s.handoff == nil {
		return
	}
	data, err := report.Encode(answers)
	if err != nil {
		s.logger.Error().Err(err).Msg("encode answers for handoff")
		return
	}
	// written under mu so subscribers never see Finished before the answers are readable
	ctx, cancel := context.WithTimeout(context.Background(), s.handoffTimeout)
	defer cancel()
	if err := s.handoff.Write(ctx, HandoffKey(s.id), data); err != nil {
		s.logger.Error().Err(err).Msg("write answers to handoff slot")
	}
}

func (s *Session) stopTimerLocked() {
	if s.ticker != nil {
		s.ticker.Stop()
	}
	select {
	case <-s.done:
	default:
		close(s.done)
	}
}

func (s *Session) broadcastLocked() domain.SessionState {
	state := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- state:
		default:
			// drop the oldest pending snapshot so a slow reader never blocks the session
			select {
			case <-ch:
			default:
			}
			ch <- state
		}
	}
	return state
}

func (s *Session) snapshotLocked() domain.SessionState {
	_, answered := s.answers.Get(s.current)
	state := domain.SessionState{
		SessionID:            s.id,
		QuizID:               s.set.ID,
		CurrentQuestionIndex: s.current,
		TotalQuestions:       s.set.Len(),
		TimeRemaining:        s.remaining,
		Clock:                domain.FormatClock(s.remaining),
		Answers:              s.answers.List(),
		CanAdvance:           answered,
		Finished:             s.finished,
		FinishReason:         s.reason,
	}
	if s.tally != nil {
		tally := *s.tally
		state.Result = &tally
	}
	return state
}
