package embedding

import "context"

// Embedder produces fixed-length vectors in the same space used for stored
// chunk embeddings. Deterministic for identical text and model version.
type Embedder interface {
	GetEmbedding(ctx context.Context, text string) ([]float32, error)
	BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error)
}
