package rag_test

import (
	"context"
	"strings"
)

// MockEmbedder implements embedding.Embedder with a tiny word-overlap model:
// each text maps to a vector over a fixed vocabulary, so texts sharing words
// land close together. Deterministic, which is the whole point.
type MockEmbedder struct {
	OnGetEmbedding   func(ctx context.Context, text string) ([]float32, error)
	OnBatchEmbedding func(ctx context.Context, texts []string) ([][]float32, error)
}

var vocabulary = []string{"goroutine", "channel", "interface", "pointer", "slice", "map"}

func embedWords(text string) []float32 {
	vector := make([]float32, len(vocabulary)+1)
	lowered := strings.ToLower(text)
	for i, word := range vocabulary {
		if strings.Contains(lowered, word) {
			vector[i] = 1
		}
	}
	// bias term keeps zero-overlap texts from producing a zero vector
	vector[len(vocabulary)] = 0.1
	return vector
}

func (m *MockEmbedder) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	if m.OnGetEmbedding != nil {
		return m.OnGetEmbedding(ctx, text)
	}
	return embedWords(text), nil
}

func (m *MockEmbedder) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	if m.OnBatchEmbedding != nil {
		return m.OnBatchEmbedding(ctx, texts)
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = embedWords(text)
	}
	return out, nil
}

// MockLLM implements llm.Provider.
type MockLLM struct {
	OnGenerate func(ctx context.Context, query string, contextBlock string, history []string) (string, error)
}

func (m *MockLLM) Generate(ctx context.Context, query string, contextBlock string, history []string) (string, error) {
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, query, contextBlock, history)
	}
	return "mocked llm response", nil
}
