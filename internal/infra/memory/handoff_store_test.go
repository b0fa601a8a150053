package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"timed-quiz-service/internal/domain"
)

func TestHandoffStoreReadBeforeWrite(t *testing.T) {
	store := NewHandoffStore(time.Hour)
	if _, err := store.Read(context.Background(), "quizAnswers:s1"); !errors.Is(err, domain.ErrHandoffNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestHandoffStoreCopiesData(t *testing.T) {
	ctx := context.Background()
	store := NewHandoffStore(time.Hour)

	data := []byte(`[{"questionId":1,"selectedOption":"a"}]`)
	if err := store.Write(ctx, "quizAnswers:s1", data); err != nil {
		t.Fatalf("write: %v", err)
	}
	data[0] = 'x'

	got, err := store.Read(ctx, "quizAnswers:s1")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != `[{"questionId":1,"selectedOption":"a"}]` {
		t.Fatalf("unexpected payload %s", got)
	}
}

func TestHandoffStoreExpiresCells(t *testing.T) {
	ctx := context.Background()
	store := NewHandoffStore(time.Minute)
	now := time.Unix(0, 0)
	store.clock = func() time.Time { return now }

	if err := store.Write(ctx, "quizAnswers:s1", []byte(`[]`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	now = now.Add(59 * time.Second)
	if _, err := store.Read(ctx, "quizAnswers:s1"); err != nil {
		t.Fatalf("expected live cell, got %v", err)
	}

	now = now.Add(time.Second)
	if _, err := store.Read(ctx, "quizAnswers:s1"); !errors.Is(err, domain.ErrHandoffNotFound) {
		t.Fatalf("expected expired cell to read as not found, got %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("expected expired cell purged on read, got %d cells", store.Len())
	}
}

func TestHandoffStorePurgesUnreadCellsOnWrite(t *testing.T) {
	ctx := context.Background()
	store := NewHandoffStore(time.Minute)
	now := time.Unix(0, 0)
	store.clock = func() time.Time { return now }

	for _, key := range []string{"quizAnswers:s1", "quizAnswers:s2", "quizAnswers:s3"} {
		if err := store.Write(ctx, key, []byte(`[]`)); err != nil {
			t.Fatalf("write %s: %v", key, err)
		}
	}
	now = now.Add(2 * time.Minute)
	if err := store.Write(ctx, "quizAnswers:s4", []byte(`[]`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("expected only the fresh cell to remain, got %d", store.Len())
	}
}

func TestHandoffStoreWithoutTTLKeepsCells(t *testing.T) {
	ctx := context.Background()
	store := NewHandoffStore(0)
	now := time.Unix(0, 0)
	store.clock = func() time.Time { return now }

	if err := store.Write(ctx, "quizAnswers:s1", []byte(`[]`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	now = now.Add(24 * time.Hour)
	if _, err := store.Read(ctx, "quizAnswers:s1"); err != nil {
		t.Fatalf("expected cell kept without ttl, got %v", err)
	}
}
