package memory

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"timed-quiz-service/internal/domain"
)

// QuizLoader fetches quiz content from a backing store (e.g., Postgres, embedded files).
type QuizLoader interface {
	LoadQuiz(ctx context.Context, quizID string) (domain.QuestionSet, error)
}

// QuizRepository caches question sets with TTL to avoid repeated loader hits.
// Sets that fail validation are never cached.
type QuizRepository struct {
	loader QuizLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedQuiz
}

type cachedQuiz struct {
	set       domain.QuestionSet
	expiresAt time.Time
}

func NewQuizRepository(loader QuizLoader, ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedQuiz),
	}
}

func (r *QuizRepository) GetQuiz(ctx context.Context, quizID string) (domain.QuestionSet, error) {
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.cache[quizID]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return entry.set, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(quizID, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.cache[quizID]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.set, nil
		}
		r.mu.RUnlock()

		set, err := r.loader.LoadQuiz(ctx, quizID)
		if err != nil {
			return domain.QuestionSet{}, err
		}
		if err := set.Validate(); err != nil {
			return domain.QuestionSet{}, err
		}

		r.mu.Lock()
		r.cache[quizID] = cachedQuiz{
			set:       set,
			expiresAt: now.Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return set, nil
	})
	if err != nil {
		return domain.QuestionSet{}, err
	}
	return result.(domain.QuestionSet), nil
}

// StaticQuizLoader is a loader backed by an in-memory map (embedded quizzes, tests).
type StaticQuizLoader struct {
	quizzes map[string]domain.QuestionSet
}

func NewStaticQuizLoader(quizzes map[string]domain.QuestionSet) *StaticQuizLoader {
	return &StaticQuizLoader{quizzes: quizzes}
}

func (l *StaticQuizLoader) LoadQuiz(_ context.Context, quizID string) (domain.QuestionSet, error) {
	if set, ok := l.quizzes[quizID]; ok {
		return set, nil
	}
	return domain.QuestionSet{}, domain.ErrQuizNotFound
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// ChainLoader asks each loader in turn and returns the first set found.
// Only domain.ErrQuizNotFound moves on to the next loader.
type ChainLoader []QuizLoader

func (c ChainLoader) LoadQuiz(ctx context.Context, quizID string) (domain.QuestionSet, error) {
	for _, loader := range c {
		set, err := loader.LoadQuiz(ctx, quizID)
		if errors.Is(err, domain.ErrQuizNotFound) {
			continue
		}
		return set, err
	}
	return domain.QuestionSet{}, domain.ErrQuizNotFound
}
