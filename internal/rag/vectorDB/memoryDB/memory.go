package memoryDB

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/akolanti/CourseChatAPI/internal/domain/courseModels"
	"github.com/akolanti/CourseChatAPI/internal/rag/vectorDB"
	"github.com/akolanti/CourseChatAPI/pkg/logger_i"
)

// Store is the in-process fallback used when Qdrant is offline, and the
// backing store for tests. Exact cosine scan - fine at course-corpus scale,
// but contents do not survive a restart, which is why the qdrant store is
// the default.
type Store struct {
	mu      sync.RWMutex
	records map[string]record
	logger  *logger_i.Logger
}

type record struct {
	chunk  courseModels.DocChunk
	vector []float32
}

func InitMemoryStore() *Store {
	return &Store{
		records: make(map[string]record),
		logger:  logger_i.NewLogger("InMem VectorStore"),
	}
}

func (s *Store) EnsureCollection(ctx context.Context) error {
	return nil
}

func (s *Store) UpsertBatch(ctx context.Context, chunks []courseModels.DocChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, chunk := range chunks {
		s.records[chunk.ChunkId] = record{chunk: chunk, vector: vectors[i]}
	}
	s.logger.Debug("Upserted batch", "count", len(chunks))
	return nil
}

func (s *Store) Search(ctx context.Context, queryVector []float32, k int, filter *vectorDB.SearchFilter) ([]courseModels.ScoredChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var hits []courseModels.ScoredChunk
	for _, rec := range s.records {
		if !matchesFilter(rec.chunk, filter) {
			continue
		}
		hits = append(hits, courseModels.ScoredChunk{
			Chunk: rec.chunk,
			Score: cosine(queryVector, rec.vector),
		})
	}

	//best score first; equal scores fall back to ingestion order
	//(document id, then chunk position) for determinism
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		if hits[i].Chunk.Doc.Id != hits[j].Chunk.Doc.Id {
			return hits[i].Chunk.Doc.Id < hits[j].Chunk.Doc.Id
		}
		return hits[i].Chunk.ChunkIndex < hits[j].Chunk.ChunkIndex
	})

	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (s *Store) DeleteDocument(ctx context.Context, docId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, rec := range s.records {
		if rec.chunk.Doc.Id == docId {
			delete(s.records, id)
		}
	}
	return nil
}

func (s *Store) PruneStale(ctx context.Context, docId string, keepVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, rec := range s.records {
		if rec.chunk.Doc.Id == docId && rec.chunk.Doc.IngestVersion != keepVersion {
			delete(s.records, id)
		}
	}
	return nil
}

func (s *Store) CourseTitles(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	var titles []string
	for _, rec := range s.records {
		title := rec.chunk.Doc.CourseTitle
		if title != "" && !seen[title] {
			seen[title] = true
			titles = append(titles, title)
		}
	}
	sort.Strings(titles)
	return titles, nil
}

func matchesFilter(chunk courseModels.DocChunk, filter *vectorDB.SearchFilter) bool {
	if filter == nil {
		return true
	}
	if filter.CourseTitle != "" && chunk.Doc.CourseTitle != filter.CourseTitle {
		return false
	}
	if filter.HasLesson && chunk.Doc.LessonNumber != filter.LessonNumber {
		return false
	}
	return true
}

func cosine(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
