package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"timed-quiz-service/internal/domain"
)

// HandoffStore keeps handoff cells as plain Redis strings that expire after ttl.
type HandoffStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewHandoffStore(client *redis.Client, ttl time.Duration) *HandoffStore {
	return &HandoffStore{client: client, ttl: ttl}
}

func (h *HandoffStore) Write(ctx context.Context, key string, data []byte) error {
	if err := h.client.Set(ctx, h.key(key), data, h.ttl).Err(); err != nil {
		return fmt.Errorf("write handoff: %w", err)
	}
	return nil
}

func (h *HandoffStore) Read(ctx context.Context, key string) ([]byte, error) {
	data, err := h.client.Get(ctx, h.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrHandoffNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read handoff: %w", err)
	}
	return data, nil
}

func (h *HandoffStore) key(key string) string {
	return "quiz:handoff:" + key
}
