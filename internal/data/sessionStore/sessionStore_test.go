package sessionStore_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/akolanti/CourseChatAPI/internal/config"
	"github.com/akolanti/CourseChatAPI/internal/data/redisStore"
	"github.com/akolanti/CourseChatAPI/internal/data/sessionStore"
	"github.com/akolanti/CourseChatAPI/internal/domain/sessionModel"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStore(t *testing.T) sessionModel.SessionStore {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return sessionStore.NewTestSessionStore(redisStore.NewTestStore(client))
}

func turn(q string) sessionModel.Turn {
	return sessionModel.Turn{Question: q, Answer: "answer to " + q, AskedAt: time.Now().UTC()}
}

func runStoreTests(t *testing.T, store sessionModel.SessionStore) {
	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")

	t.Run("Create and Exists", func(t *testing.T) {
		if store.Exists(ctx, "s1") {
			t.Fatal("session should not exist before create")
		}
		if err := store.Create(ctx, "s1"); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if !store.Exists(ctx, "s1") {
			t.Fatal("session should exist after create")
		}
	})

	t.Run("Append and History order", func(t *testing.T) {
		if err := store.Create(ctx, "s2"); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		for i := 0; i < 3; i++ {
			if err := store.AppendTurn(ctx, "s2", turn(fmt.Sprintf("q%d", i)), 10); err != nil {
				t.Fatalf("AppendTurn failed: %v", err)
			}
		}
		history, err := store.History(ctx, "s2")
		if err != nil {
			t.Fatalf("History failed: %v", err)
		}
		if len(history) != 3 {
			t.Fatalf("expected 3 turns, got %d", len(history))
		}
		for i, tn := range history {
			if tn.Question != fmt.Sprintf("q%d", i) {
				t.Fatalf("turn %d out of order: %q", i, tn.Question)
			}
		}
	})

	t.Run("FIFO eviction at max turns", func(t *testing.T) {
		if err := store.Create(ctx, "s3"); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		for i := 0; i < 5; i++ {
			if err := store.AppendTurn(ctx, "s3", turn(fmt.Sprintf("q%d", i)), 3); err != nil {
				t.Fatalf("AppendTurn failed: %v", err)
			}
		}
		history, err := store.History(ctx, "s3")
		if err != nil {
			t.Fatalf("History failed: %v", err)
		}
		if len(history) != 3 {
			t.Fatalf("expected 3 turns after eviction, got %d", len(history))
		}
		if history[0].Question != "q2" || history[2].Question != "q4" {
			t.Fatalf("oldest turns were not evicted first: %+v", history)
		}
	})

	t.Run("Clear removes session", func(t *testing.T) {
		if err := store.Create(ctx, "s4"); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if err := store.AppendTurn(ctx, "s4", turn("q"), 10); err != nil {
			t.Fatalf("AppendTurn failed: %v", err)
		}
		if err := store.Clear(ctx, "s4"); err != nil {
			t.Fatalf("Clear failed: %v", err)
		}
		if store.Exists(ctx, "s4") {
			t.Fatal("session still exists after Clear")
		}
		history, err := store.History(ctx, "s4")
		if err != nil {
			t.Fatalf("History after clear failed: %v", err)
		}
		if len(history) != 0 {
			t.Fatalf("expected empty history after clear, got %d", len(history))
		}
	})

	t.Run("Create resets previous turns", func(t *testing.T) {
		if err := store.Create(ctx, "s5"); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if err := store.AppendTurn(ctx, "s5", turn("old"), 10); err != nil {
			t.Fatalf("AppendTurn failed: %v", err)
		}
		if err := store.Create(ctx, "s5"); err != nil {
			t.Fatalf("re-Create failed: %v", err)
		}
		history, err := store.History(ctx, "s5")
		if err != nil {
			t.Fatalf("History failed: %v", err)
		}
		if len(history) != 0 {
			t.Fatalf("expected fresh session after re-create, got %d turns", len(history))
		}
	})
}

func TestRedisSessionStore(t *testing.T) {
	runStoreTests(t, newRedisStore(t))
}

func TestInMemorySessionStore(t *testing.T) {
	runStoreTests(t, sessionStore.InitSessionStore())
}
