package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"timed-quiz-service/internal/domain"
)

func TestHandoffStoreRoundTripWithTTL(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewHandoffStore(newClient(mr), time.Minute)

	if _, err := store.Read(ctx, "quizAnswers:s1"); !errors.Is(err, domain.ErrHandoffNotFound) {
		t.Fatalf("expected not found before write, got %v", err)
	}

	payload := []byte(`[{"questionId":2,"selectedOption":"b"}]`)
	if err := store.Write(ctx, "quizAnswers:s1", payload); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := store.Read(ctx, "quizAnswers:s1")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("unexpected payload %s", got)
	}
	if ttl := mr.TTL("quiz:handoff:quizAnswers:s1"); ttl != time.Minute {
		t.Fatalf("expected ttl of one minute, got %v", ttl)
	}

	mr.FastForward(2 * time.Minute)
	if _, err := store.Read(ctx, "quizAnswers:s1"); !errors.Is(err, domain.ErrHandoffNotFound) {
		t.Fatalf("expected expiry, got %v", err)
	}
}
