package googleEmbedding

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/akolanti/CourseChatAPI/internal/config"
	"github.com/akolanti/CourseChatAPI/internal/rag/embedding"
	"github.com/akolanti/CourseChatAPI/pkg/logger_i"
	"google.golang.org/genai"
)

var logger *logger_i.Logger
var once sync.Once
var embeddingClient *client
var dimension int32 = config.EmbeddingOutputDimensionality

type client struct {
	genAi *genai.Client
	model string
}

func newGoogleEmbedder(ctx context.Context, modelName string, apikey string) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		logger.Error("Error creating Google Embedding client:", "error", err)
	}
	if c != nil {
		embeddingClient = &client{
			genAi: c,
			model: modelName,
		}
		logger.Debug("Google Embedding model name: " + modelName)
		logger.Info("Google Embedding client created")
		go closeClient(ctx, embeddingClient)
	}
}

func closeClient(ctx context.Context, embeddingClient *client) {
	<-ctx.Done()
	logger.Info("Closing Google Embedding client")
	embeddingClient.genAi = nil
	embeddingClient.model = ""
}

func GetGoogleEmbeddingClient(ctx context.Context, modelName string, apikey string) embedding.Embedder {
	once.Do(func() {
		logger = logger_i.NewLogger("google_embedding")
		newGoogleEmbedder(ctx, modelName, apikey)
	})

	//if init still fails
	if embeddingClient == nil {
		return nil
	}
	return &client{genAi: embeddingClient.genAi, model: embeddingClient.model}
}

func (c *client) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	log := logger.ForTrace(ctx)

	result, err := c.doCall(ctx, genai.Text(text))
	if err != nil {
		log.Error("Error getting Embedding from Google", "error", err.Error())
		return nil, err
	}
	if len(result.Embeddings) == 0 {
		return nil, errors.New("google embedding returned no vectors")
	}
	return result.Embeddings[0].Values, nil
}

func (c *client) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	log := logger.ForTrace(ctx)

	res, err := c.doCall(ctx, getContent(texts))
	if err != nil {
		if doRetry(err, log) {
			log.Debug("Retrying in 5 seconds")
			if waitErr := waitBeforeRetry(ctx, 5*time.Second); waitErr != nil {
				return nil, waitErr
			}
			res, err = c.doCall(ctx, getContent(texts))
		}
		if err != nil {
			log.Error("Error getting batch Embeddings from Google", "error", err.Error())
			return nil, err
		}
	}

	var vectors [][]float32
	for _, r := range res.Embeddings {
		vectors = append(vectors, r.Values)
	}
	return vectors, nil
}

func (c *client) doCall(ctx context.Context, content []*genai.Content) (*genai.EmbedContentResponse, error) {
	return c.genAi.Models.EmbedContent(ctx, c.model, content, &genai.EmbedContentConfig{OutputDimensionality: &dimension, TaskType: "RETRIEVAL_DOCUMENT"})
}
