package retriever

import (
	"context"
	"testing"

	"github.com/akolanti/CourseChatAPI/internal/domain/courseModels"
	"github.com/akolanti/CourseChatAPI/internal/rag/vectorDB"
	"github.com/akolanti/CourseChatAPI/internal/rag/vectorDB/memoryDB"
)

type fixedEmbedder struct {
	vector []float32
}

func (f *fixedEmbedder) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	return f.vector, nil
}

func (f *fixedEmbedder) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vector
	}
	return out, nil
}

func seedStore(t *testing.T, store vectorDB.Store, vectors map[string][]float32) {
	t.Helper()
	chunks := make([]courseModels.DocChunk, 0, len(vectors))
	embeddings := make([][]float32, 0, len(vectors))
	index := 0
	for id, vec := range vectors {
		chunks = append(chunks, courseModels.DocChunk{
			Doc: courseModels.Document{
				Id:          "doc-1",
				Title:       "Intro",
				CourseTitle: "Go Basics",
			},
			ChunkId:    id,
			Chunk:      "content " + id,
			ChunkIndex: index,
		})
		embeddings = append(embeddings, vec)
		index++
	}
	if err := store.UpsertBatch(context.Background(), chunks, embeddings); err != nil {
		t.Fatalf("seed upsert: %v", err)
	}
}

func TestRetrieveDropsBelowThreshold(t *testing.T) {
	store := memoryDB.InitMemoryStore()
	seedStore(t, store, map[string][]float32{
		"strong": {1, 0},
		"weak":   {0, 1},
	})

	r := NewRetriever(&fixedEmbedder{vector: []float32{1, 0}}, store, 0.5)
	vec, err := r.EmbedQuery(context.Background(), "query")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	hits, err := r.Retrieve(context.Background(), vec, 5, nil)
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit above threshold, got %d", len(hits))
	}
	if hits[0].Chunk.ChunkId != "strong" {
		t.Fatalf("expected strong chunk, got %s", hits[0].Chunk.ChunkId)
	}
}

func TestRetrieveEmptyWhenNothingClears(t *testing.T) {
	store := memoryDB.InitMemoryStore()
	seedStore(t, store, map[string][]float32{
		"orthogonal": {0, 1},
	})

	r := NewRetriever(&fixedEmbedder{vector: []float32{1, 0}}, store, 0.25)
	hits, err := r.Retrieve(context.Background(), []float32{1, 0}, 5, nil)
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("expected no hits, got %d", len(hits))
	}
}

func TestRetrieveEmptyStore(t *testing.T) {
	store := memoryDB.InitMemoryStore()
	r := NewRetriever(&fixedEmbedder{vector: []float32{1, 0}}, store, 0.25)

	hits, err := r.Retrieve(context.Background(), []float32{1, 0}, 5, nil)
	if err != nil {
		t.Fatalf("retrieve against empty store: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("expected empty result, got %d", len(hits))
	}
}

func TestRetrieveRespectsK(t *testing.T) {
	store := memoryDB.InitMemoryStore()
	seedStore(t, store, map[string][]float32{
		"a": {1, 0},
		"b": {0.9, 0.1},
		"c": {0.8, 0.2},
	})

	r := NewRetriever(&fixedEmbedder{vector: []float32{1, 0}}, store, 0.25)
	hits, err := r.Retrieve(context.Background(), []float32{1, 0}, 2, nil)
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Score > hits[i-1].Score {
			t.Fatalf("scores not non-increasing at %d", i)
		}
	}
}
