package memoryDB

import (
	"context"
	"testing"

	"github.com/akolanti/CourseChatAPI/internal/domain/courseModels"
	"github.com/akolanti/CourseChatAPI/internal/rag/vectorDB"
)

func chunkFor(docId string, course string, lesson int, index int, version int64, text string) courseModels.DocChunk {
	return courseModels.DocChunk{
		ChunkId:    courseModels.NewChunkId(docId, index),
		Chunk:      text,
		ChunkIndex: index,
		Doc: courseModels.Document{
			Id:            docId,
			CourseTitle:   course,
			LessonNumber:  lesson,
			IngestVersion: version,
		},
	}
}

func TestSearch_EmptyStore(t *testing.T) {
	s := InitMemoryStore()
	hits, err := s.Search(context.Background(), []float32{1, 0}, 5, nil)
	if err != nil {
		t.Fatalf("empty store search must not error: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("expected no hits, got %d", len(hits))
	}
}

func TestUpsert_Idempotent(t *testing.T) {
	s := InitMemoryStore()
	ctx := context.Background()
	chunks := []courseModels.DocChunk{chunkFor("d1", "Go Basics", 1, 0, 1, "variables")}
	vectors := [][]float32{{1, 0}}

	if err := s.UpsertBatch(ctx, chunks, vectors); err != nil {
		t.Fatal(err)
	}
	first, _ := s.Search(ctx, []float32{1, 0}, 10, nil)

	if err := s.UpsertBatch(ctx, chunks, vectors); err != nil {
		t.Fatal(err)
	}
	second, _ := s.Search(ctx, []float32{1, 0}, 10, nil)

	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("re-upserting the same chunk id must not duplicate: %d then %d hits", len(first), len(second))
	}
	if first[0].Score != second[0].Score {
		t.Errorf("scores changed after identical upsert")
	}
}

func TestSearch_RankingNonIncreasing(t *testing.T) {
	s := InitMemoryStore()
	ctx := context.Background()

	chunks := []courseModels.DocChunk{
		chunkFor("d1", "Go Basics", 1, 0, 1, "exact match"),
		chunkFor("d2", "Go Basics", 2, 0, 1, "orthogonal"),
		chunkFor("d3", "Go Basics", 3, 0, 1, "partial match"),
	}
	vectors := [][]float32{{1, 0}, {0, 1}, {1, 1}}
	if err := s.UpsertBatch(ctx, chunks, vectors); err != nil {
		t.Fatal(err)
	}

	hits, err := s.Search(ctx, []float32{1, 0}, 3, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Score > hits[i-1].Score {
			t.Errorf("scores increase at position %d: %f after %f", i, hits[i].Score, hits[i-1].Score)
		}
	}
	if hits[0].Chunk.Doc.Id != "d1" {
		t.Errorf("best hit should be the exact match, got %s", hits[0].Chunk.Doc.Id)
	}
}

func TestSearch_TieBreakByIngestionOrder(t *testing.T) {
	s := InitMemoryStore()
	ctx := context.Background()

	//identical vectors - ties broken by (doc id, chunk index)
	chunks := []courseModels.DocChunk{
		chunkFor("docB", "Go Basics", 1, 0, 1, "b0"),
		chunkFor("docA", "Go Basics", 1, 1, 1, "a1"),
		chunkFor("docA", "Go Basics", 1, 0, 1, "a0"),
	}
	vectors := [][]float32{{1, 0}, {1, 0}, {1, 0}}
	if err := s.UpsertBatch(ctx, chunks, vectors); err != nil {
		t.Fatal(err)
	}

	hits, _ := s.Search(ctx, []float32{1, 0}, 3, nil)
	got := []string{hits[0].Chunk.Chunk, hits[1].Chunk.Chunk, hits[2].Chunk.Chunk}
	want := []string{"a0", "a1", "b0"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tie-break order wrong: got %v, want %v", got, want)
		}
	}
}

func TestSearch_CourseAndLessonFilter(t *testing.T) {
	s := InitMemoryStore()
	ctx := context.Background()

	chunks := []courseModels.DocChunk{
		chunkFor("d1", "Go Basics", 1, 0, 1, "go lesson 1"),
		chunkFor("d2", "Go Basics", 2, 0, 1, "go lesson 2"),
		chunkFor("d3", "Rust Basics", 1, 0, 1, "rust lesson 1"),
	}
	vectors := [][]float32{{1, 0}, {1, 0}, {1, 0}}
	if err := s.UpsertBatch(ctx, chunks, vectors); err != nil {
		t.Fatal(err)
	}

	hits, _ := s.Search(ctx, []float32{1, 0}, 10, &vectorDB.SearchFilter{CourseTitle: "Go Basics"})
	if len(hits) != 2 {
		t.Errorf("course filter: expected 2 hits, got %d", len(hits))
	}

	hits, _ = s.Search(ctx, []float32{1, 0}, 10, &vectorDB.SearchFilter{CourseTitle: "Go Basics", HasLesson: true, LessonNumber: 2})
	if len(hits) != 1 || hits[0].Chunk.Chunk != "go lesson 2" {
		t.Errorf("lesson filter: unexpected hits %+v", hits)
	}
}

func TestDeleteDocument_RemovesAllChunks(t *testing.T) {
	s := InitMemoryStore()
	ctx := context.Background()

	chunks := []courseModels.DocChunk{
		chunkFor("d1", "Go Basics", 1, 0, 1, "one"),
		chunkFor("d1", "Go Basics", 1, 1, 1, "two"),
		chunkFor("d2", "Go Basics", 2, 0, 1, "other doc"),
	}
	vectors := [][]float32{{1, 0}, {1, 0}, {1, 0}}
	if err := s.UpsertBatch(ctx, chunks, vectors); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteDocument(ctx, "d1"); err != nil {
		t.Fatal(err)
	}

	hits, _ := s.Search(ctx, []float32{1, 0}, 10, nil)
	if len(hits) != 1 || hits[0].Chunk.Doc.Id != "d2" {
		t.Errorf("deleted document still searchable: %+v", hits)
	}
}

func TestPruneStale_KeepsCurrentVersionOnly(t *testing.T) {
	s := InitMemoryStore()
	ctx := context.Background()

	old := []courseModels.DocChunk{
		chunkFor("d1", "Go Basics", 1, 0, 1, "old content"),
		chunkFor("d1", "Go Basics", 1, 1, 1, "old tail"),
	}
	if err := s.UpsertBatch(ctx, old, [][]float32{{1, 0}, {1, 0}}); err != nil {
		t.Fatal(err)
	}

	//re-ingest: new version upserted first (chunk 0 overwritten in place),
	//then the shorter document prunes the stale tail
	fresh := []courseModels.DocChunk{chunkFor("d1", "Go Basics", 1, 0, 2, "new content")}
	if err := s.UpsertBatch(ctx, fresh, [][]float32{{1, 0}}); err != nil {
		t.Fatal(err)
	}
	if err := s.PruneStale(ctx, "d1", 2); err != nil {
		t.Fatal(err)
	}

	hits, _ := s.Search(ctx, []float32{1, 0}, 10, nil)
	if len(hits) != 1 || hits[0].Chunk.Chunk != "new content" {
		t.Errorf("stale chunks survived re-ingestion: %+v", hits)
	}
}

func TestCourseTitles_Distinct(t *testing.T) {
	s := InitMemoryStore()
	ctx := context.Background()

	chunks := []courseModels.DocChunk{
		chunkFor("d1", "Go Basics", 1, 0, 1, "a"),
		chunkFor("d2", "Go Basics", 2, 0, 1, "b"),
		chunkFor("d3", "Rust Basics", 1, 0, 1, "c"),
	}
	if err := s.UpsertBatch(ctx, chunks, [][]float32{{1}, {1}, {1}}); err != nil {
		t.Fatal(err)
	}

	titles, err := s.CourseTitles(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(titles) != 2 || titles[0] != "Go Basics" || titles[1] != "Rust Basics" {
		t.Errorf("unexpected titles: %v", titles)
	}
}
