package retriever

import (
	"context"
	"sort"

	"github.com/akolanti/CourseChatAPI/internal/domain/courseModels"
	"github.com/akolanti/CourseChatAPI/internal/rag/embedding"
	"github.com/akolanti/CourseChatAPI/internal/rag/vectorDB"
	"github.com/akolanti/CourseChatAPI/pkg/logger_i"
)

// Retriever turns a query into ranked course chunks. "Nothing relevant
// found" is a normal outcome (empty slice), never an error - the
// orchestrator answers from conversation context alone in that case.
type Retriever struct {
	embedder embedding.Embedder
	store    vectorDB.Store
	minScore float32
	logger   *logger_i.Logger
}

func NewRetriever(embedder embedding.Embedder, store vectorDB.Store, minScore float32) *Retriever {
	return &Retriever{
		embedder: embedder,
		store:    store,
		minScore: minScore,
		logger:   logger_i.NewLogger("Retriever"),
	}
}

// EmbedQuery is split out so the orchestrator can report embedding failures
// separately from store failures.
func (r *Retriever) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	return r.embedder.GetEmbedding(ctx, query)
}

func (r *Retriever) Retrieve(ctx context.Context, queryVector []float32, k int, filter *vectorDB.SearchFilter) ([]courseModels.ScoredChunk, error) {
	log := r.logger.ForTrace(ctx)

	hits, err := r.store.Search(ctx, queryVector, k, filter)
	if err != nil {
		return nil, err
	}

	kept := hits[:0]
	for _, hit := range hits {
		if hit.Score >= r.minScore {
			kept = append(kept, hit)
		}
	}

	//the store ranks by score; re-apply the tie-break here so backends that
	//return equal scores in arbitrary order stay deterministic
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Score != kept[j].Score {
			return kept[i].Score > kept[j].Score
		}
		if kept[i].Chunk.Doc.Id != kept[j].Chunk.Doc.Id {
			return kept[i].Chunk.Doc.Id < kept[j].Chunk.Doc.Id
		}
		return kept[i].Chunk.ChunkIndex < kept[j].Chunk.ChunkIndex
	})

	log.Debug("Retrieved chunks", "requested", k, "kept", len(kept), "minScore", r.minScore)
	return kept, nil
}
