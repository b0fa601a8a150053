package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"timed-quiz-service/internal/domain"
)

// QuizLoader fetches quiz content from a backing store (e.g., Postgres).
type QuizLoader interface {
	LoadQuiz(ctx context.Context, quizID string) (domain.QuestionSet, error)
}

// QuizRepository caches whole question sets in Redis as JSON and falls back to a loader on miss.
//
//	SET quiz:{quizID}:set {json} EX ttl
type QuizRepository struct {
	client *redis.Client
	loader QuizLoader
	ttl    time.Duration
	logger zerolog.Logger
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex
}

func NewQuizRepository(client *redis.Client, loader QuizLoader, ttl time.Duration, logger zerolog.Logger) *QuizRepository {
	return &QuizRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		logger: logger.With().Str("component", "redis_quiz_repository").Logger(),
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuizRepository) GetQuiz(ctx context.Context, quizID string) (domain.QuestionSet, error) {
	if set, ok := r.cached(ctx, quizID); ok {
		return set, nil
	}

	result, err, _ := r.sf.Do(quizID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if set, ok := r.cached(ctx, quizID); ok {
			return set, nil
		}

		set, err := r.loader.LoadQuiz(ctx, quizID)
		if err != nil {
			return domain.QuestionSet{}, err
		}
		if err := set.Validate(); err != nil {
			return domain.QuestionSet{}, err
		}

		data, err := json.Marshal(set)
		if err != nil {
			return domain.QuestionSet{}, err
		}
		if err := r.client.Set(ctx, r.setKey(quizID), data, r.ttlWithJitter()).Err(); err != nil {
			r.logger.Warn().Err(err).Str("quiz_id", quizID).Msg("cache question set")
		}
		return set, nil
	})
	if err != nil {
		return domain.QuestionSet{}, err
	}
	return result.(domain.QuestionSet), nil
}

func (r *QuizRepository) cached(ctx context.Context, quizID string) (domain.QuestionSet, bool) {
	data, err := r.client.Get(ctx, r.setKey(quizID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn().Err(err).Str("quiz_id", quizID).Msg("read cached question set")
		}
		return domain.QuestionSet{}, false
	}
	var set domain.QuestionSet
	if err := json.Unmarshal(data, &set); err != nil {
		r.logger.Warn().Err(err).Str("quiz_id", quizID).Msg("drop corrupt cached question set")
		return domain.QuestionSet{}, false
	}
	if set.Validate() != nil {
		return domain.QuestionSet{}, false
	}
	return set, true
}

func (r *QuizRepository) setKey(quizID string) string {
	return "quiz:" + quizID + ":set"
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
