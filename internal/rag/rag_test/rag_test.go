package rag_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/akolanti/CourseChatAPI/internal/config"
	"github.com/akolanti/CourseChatAPI/internal/data/sessionStore"
	"github.com/akolanti/CourseChatAPI/internal/domain/courseModels"
	"github.com/akolanti/CourseChatAPI/internal/domain/ragError"
	"github.com/akolanti/CourseChatAPI/internal/rag"
	"github.com/akolanti/CourseChatAPI/internal/rag/assembler"
	"github.com/akolanti/CourseChatAPI/internal/rag/ingest"
	"github.com/akolanti/CourseChatAPI/internal/rag/retriever"
	"github.com/akolanti/CourseChatAPI/internal/rag/vectorDB"
	"github.com/akolanti/CourseChatAPI/internal/rag/vectorDB/memoryDB"
	"github.com/akolanti/CourseChatAPI/internal/session"
	"github.com/akolanti/CourseChatAPI/internal/worker"
)

func newTestService(embedder *MockEmbedder, provider *MockLLM) (rag.Service, vectorDB.Store) {
	store := memoryDB.InitMemoryStore()
	svc := rag.NewService(rag.ServiceConfig{
		Retriever: retriever.NewRetriever(embedder, store, config.MinRelevanceScore),
		Assembler: assembler.NewAssembler(config.ContextCharBudget),
		Provider:  provider,
		Sessions:  session.NewManager(sessionStore.InitSessionStore()),
		Ingestor:  ingest.NewIngestor(store, worker.NewEmbedPool(embedder)),
		VectorDB:  store,
	})
	return svc, store
}

func seedLessons(t *testing.T, store vectorDB.Store) {
	t.Helper()
	docs := []struct {
		lesson int
		title  string
		text   string
	}{
		{1, "Concurrency", "A goroutine is a lightweight thread and a channel connects goroutines."},
		{2, "Memory", "A pointer holds an address; a slice wraps an array; a map stores pairs."},
	}
	var chunks []courseModels.DocChunk
	var vectors [][]float32
	for _, d := range docs {
		doc := courseModels.Document{
			Id:            ingest.NewDocId("Go Basics", d.lesson),
			Title:         "go_basics_script",
			CourseTitle:   "Go Basics",
			LessonNumber:  d.lesson,
			LessonTitle:   d.title,
			IngestVersion: 1,
		}
		chunks = append(chunks, courseModels.DocChunk{
			Doc:        doc,
			ChunkId:    courseModels.NewChunkId(doc.Id, 0),
			Chunk:      d.text,
			ChunkIndex: 0,
		})
		vectors = append(vectors, embedWords(d.text))
	}
	if err := store.UpsertBatch(context.Background(), chunks, vectors); err != nil {
		t.Fatalf("seeding store: %v", err)
	}
}

func TestAnswerFullFlow(t *testing.T) {
	svc, store := newTestService(&MockEmbedder{}, &MockLLM{})
	seedLessons(t, store)

	answer, err := svc.Answer(context.Background(), "How do goroutines talk over a channel?", "")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if answer.Answer != "mocked llm response" {
		t.Errorf("unexpected answer: %q", answer.Answer)
	}
	if answer.SessionId == "" {
		t.Error("expected a generated session id")
	}
	if len(answer.Citations) != 1 {
		t.Fatalf("expected exactly the concurrency lesson cited, got %+v", answer.Citations)
	}
	if answer.Citations[0].Course != "Go Basics" || answer.Citations[0].Lesson != 1 {
		t.Errorf("wrong citation: %+v", answer.Citations[0])
	}
}

func TestAnswerEmptyStoreNoCitations(t *testing.T) {
	var gotContext string
	provider := &MockLLM{
		OnGenerate: func(ctx context.Context, query string, contextBlock string, history []string) (string, error) {
			gotContext = contextBlock
			return "answered from general knowledge", nil
		},
	}
	svc, _ := newTestService(&MockEmbedder{}, provider)

	answer, err := svc.Answer(context.Background(), "What is a goroutine?", "")
	if err != nil {
		t.Fatalf("Answer over empty store: %v", err)
	}
	if gotContext != "" {
		t.Errorf("expected empty context block, got %q", gotContext)
	}
	if len(answer.Citations) != 0 {
		t.Errorf("expected no citations, got %+v", answer.Citations)
	}
}

func TestAnswerTwoTurnSession(t *testing.T) {
	var lastHistory []string
	provider := &MockLLM{
		OnGenerate: func(ctx context.Context, query string, contextBlock string, history []string) (string, error) {
			lastHistory = history
			return "answer to " + query, nil
		},
	}
	svc, store := newTestService(&MockEmbedder{}, provider)
	seedLessons(t, store)
	ctx := context.Background()

	first, err := svc.Answer(ctx, "What is a goroutine?", "")
	if err != nil {
		t.Fatalf("first turn: %v", err)
	}
	if len(lastHistory) != 0 {
		t.Fatalf("first turn should see no history, got %v", lastHistory)
	}

	second, err := svc.Answer(ctx, "And what about channels?", first.SessionId)
	if err != nil {
		t.Fatalf("second turn: %v", err)
	}
	if second.SessionId != first.SessionId {
		t.Errorf("session id changed between turns: %q vs %q", first.SessionId, second.SessionId)
	}
	if len(lastHistory) != 1 || !strings.Contains(lastHistory[0], "What is a goroutine?") {
		t.Errorf("second turn missing first turn in history: %v", lastHistory)
	}

	history, err := svc.SessionHistory(ctx, first.SessionId)
	if err != nil {
		t.Fatalf("SessionHistory: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 recorded turns, got %d", len(history))
	}
}

func TestAnswerKeepsUnknownSessionId(t *testing.T) {
	svc, _ := newTestService(&MockEmbedder{}, &MockLLM{})

	answer, err := svc.Answer(context.Background(), "What is a slice?", "stale-session-id")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if answer.SessionId != "stale-session-id" {
		t.Errorf("unknown session id must be kept, got %q", answer.SessionId)
	}
}

func TestAnswerGenerationFailureLeavesSessionUntouched(t *testing.T) {
	provider := &MockLLM{
		OnGenerate: func(ctx context.Context, query string, contextBlock string, history []string) (string, error) {
			return "", errors.New("model overloaded")
		},
	}
	svc, _ := newTestService(&MockEmbedder{}, provider)
	ctx := context.Background()

	_, err := svc.Answer(ctx, "What is a map?", "my-session")
	if err == nil {
		t.Fatal("expected generation failure")
	}
	if ragError.KindOf(err) != ragError.Generation {
		t.Fatalf("expected generation kind, got %v", ragError.KindOf(err))
	}

	history, err := svc.SessionHistory(ctx, "my-session")
	if err != nil {
		t.Fatalf("SessionHistory: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("failed request mutated the session: %d turns", len(history))
	}
}

func TestAnswerCancellationRecordsNothing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	provider := &MockLLM{
		OnGenerate: func(ctx context.Context, query string, contextBlock string, history []string) (string, error) {
			// the caller walks away mid-generation
			cancel()
			return "too late", nil
		},
	}
	svc, _ := newTestService(&MockEmbedder{}, provider)

	_, err := svc.Answer(ctx, "What is an interface?", "cancel-session")
	if err == nil {
		t.Fatal("expected error after cancellation")
	}

	history, err := svc.SessionHistory(context.Background(), "cancel-session")
	if err != nil {
		t.Fatalf("SessionHistory: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("cancelled request mutated the session: %d turns", len(history))
	}
}

func TestAnswerEmbeddingFailure(t *testing.T) {
	embedder := &MockEmbedder{
		OnGetEmbedding: func(ctx context.Context, text string) ([]float32, error) {
			return nil, errors.New("quota exhausted")
		},
	}
	svc, _ := newTestService(embedder, &MockLLM{})

	_, err := svc.Answer(context.Background(), "What is a channel?", "")
	if err == nil {
		t.Fatal("expected embedding failure")
	}
	if ragError.KindOf(err) != ragError.Embedding {
		t.Fatalf("expected embedding kind, got %v", ragError.KindOf(err))
	}
}

func TestIngestThenAnswer(t *testing.T) {
	svc, _ := newTestService(&MockEmbedder{}, &MockLLM{})
	ctx := context.Background()

	script := `Course Title: Practical Go

Lesson 1: Concurrency
A goroutine is started with the go keyword and a channel moves values between goroutines.
`
	path := filepath.Join(t.TempDir(), "practical_go.txt")
	if err := os.WriteFile(path, []byte(script), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	count, err := svc.Ingest(ctx, path, "practical_go.txt")
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if count == 0 {
		t.Fatal("expected ingested chunks")
	}

	answer, err := svc.Answer(ctx, "How do I start a goroutine?", "")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if len(answer.Citations) == 0 || answer.Citations[0].Course != "Practical Go" {
		t.Fatalf("expected citation from ingested course, got %+v", answer.Citations)
	}

	total, titles, err := svc.CourseAnalytics(ctx)
	if err != nil {
		t.Fatalf("CourseAnalytics: %v", err)
	}
	if total != 1 || len(titles) != 1 || titles[0] != "Practical Go" {
		t.Fatalf("unexpected analytics: %d %v", total, titles)
	}
}

func TestClearSession(t *testing.T) {
	svc, _ := newTestService(&MockEmbedder{}, &MockLLM{})
	ctx := context.Background()

	answer, err := svc.Answer(ctx, "What is a pointer?", "")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if err := svc.ClearSession(ctx, answer.SessionId); err != nil {
		t.Fatalf("ClearSession: %v", err)
	}
	history, err := svc.SessionHistory(ctx, answer.SessionId)
	if err != nil {
		t.Fatalf("SessionHistory: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected empty history after clear, got %d", len(history))
	}
}
