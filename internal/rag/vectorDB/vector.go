package vectorDB

import (
	"context"

	"github.com/akolanti/CourseChatAPI/internal/domain/courseModels"
)

// SearchFilter narrows a search to one course and optionally one lesson.
// The zero value searches the whole corpus.
type SearchFilter struct {
	CourseTitle  string
	HasLesson    bool
	LessonNumber int
}

// Store persists chunk embeddings and serves nearest-neighbour search.
// Similarity metric is cosine, fixed at collection creation - ingestion and
// query embeddings must come from the same model. Searching an empty store
// returns an empty slice, never an error.
type Store interface {
	EnsureCollection(ctx context.Context) error

	// UpsertBatch is idempotent: chunk ids are derived from document id +
	// position, so a re-upsert overwrites instead of duplicating.
	UpsertBatch(ctx context.Context, chunks []courseModels.DocChunk, vectors [][]float32) error

	// Search returns at most k records, best score first.
	Search(ctx context.Context, queryVector []float32, k int, filter *SearchFilter) ([]courseModels.ScoredChunk, error)

	// DeleteDocument removes every chunk belonging to the document.
	DeleteDocument(ctx context.Context, docId string) error

	// PruneStale removes chunks of the document left over from earlier
	// ingest versions. Re-ingestion upserts the new version first and prunes
	// after, so readers never observe a gap.
	PruneStale(ctx context.Context, docId string, keepVersion int64) error

	// CourseTitles lists the distinct courses present in the store.
	CourseTitles(ctx context.Context) ([]string, error)
}
