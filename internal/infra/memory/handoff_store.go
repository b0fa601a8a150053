package memory

import (
	"context"
	"sync"
	"time"

	"timed-quiz-service/internal/domain"
)

// HandoffStore keeps handoff cells in process memory until they expire.
// Expired cells read as domain.ErrHandoffNotFound and are purged on the next write.
type HandoffStore struct {
	ttl   time.Duration
	clock func() time.Time

	mu    sync.Mutex
	cells map[string]handoffCell
}

type handoffCell struct {
	data      []byte
	expiresAt time.Time
}

// NewHandoffStore creates a store whose cells live for ttl; ttl <= 0 keeps them forever.
func NewHandoffStore(ttl time.Duration) *HandoffStore {
	return &HandoffStore{
		ttl:   ttl,
		clock: time.Now,
		cells: make(map[string]handoffCell),
	}
}

func (h *HandoffStore) Write(_ context.Context, key string, data []byte) error {
	buf := make([]byte, len(data))
	copy(buf, data)

	h.mu.Lock()
	defer h.mu.Unlock()
	now := h.clock()
	h.purgeLocked(now)
	cell := handoffCell{data: buf}
	if h.ttl > 0 {
		cell.expiresAt = now.Add(h.ttl)
	}
	h.cells[key] = cell
	return nil
}

func (h *HandoffStore) Read(_ context.Context, key string) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	cell, ok := h.cells[key]
	if !ok {
		return nil, domain.ErrHandoffNotFound
	}
	if cell.expired(h.clock()) {
		delete(h.cells, key)
		return nil, domain.ErrHandoffNotFound
	}
	out := make([]byte, len(cell.data))
	copy(out, cell.data)
	return out, nil
}

// Len reports how many cells are held, expired or not.
func (h *HandoffStore) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.cells)
}

func (h *HandoffStore) purgeLocked(now time.Time) {
	for key, cell := range h.cells {
		if cell.expired(now) {
			delete(h.cells, key)
		}
	}
}

func (c handoffCell) expired(now time.Time) bool {
	return !c.expiresAt.IsZero() && !c.expiresAt.After(now)
}
