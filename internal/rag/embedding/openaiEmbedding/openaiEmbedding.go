package openaiEmbedding

import (
	"context"
	"errors"
	"sync"

	"github.com/akolanti/CourseChatAPI/internal/config"
	"github.com/akolanti/CourseChatAPI/internal/customHttpClient"
	"github.com/akolanti/CourseChatAPI/internal/rag/embedding"
	"github.com/akolanti/CourseChatAPI/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var logger *logger_i.Logger
var once sync.Once
var embeddingClient *client

type client struct {
	api   openai.Client
	model string
}

func GetOpenAIEmbeddingClient(modelName string, apikey string) embedding.Embedder {
	once.Do(func() {
		logger = logger_i.NewLogger("openai_embedding")
		if apikey == "" {
			logger.Error("OpenAI API key is empty")
			return
		}
		embeddingClient = &client{
			api: openai.NewClient(
				option.WithAPIKey(apikey),
				option.WithHTTPClient(customHttpClient.GetPooledClient()),
			),
			model: modelName,
		}
		logger.Info("OpenAI Embedding client created", "model", modelName)
	})

	if embeddingClient == nil {
		return nil
	}
	return embeddingClient
}

func (c *client) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.BatchEmbedding(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, errors.New("openai embedding returned no vectors")
	}
	return vectors[0], nil
}

func (c *client) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	log := logger.ForTrace(ctx)

	resp, err := c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input:      openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model:      openai.EmbeddingModel(c.model),
		Dimensions: openai.Int(int64(config.EmbeddingOutputDimensionality)),
	})
	if err != nil {
		log.Error("Error getting Embeddings from OpenAI", "error", err.Error())
		return nil, err
	}

	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vec := make([]float32, len(d.Embedding))
		for j, v := range d.Embedding {
			vec[j] = float32(v)
		}
		vectors[i] = vec
	}
	return vectors, nil
}
