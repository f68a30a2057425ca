package gemini

import (
	"context"
	"errors"
	"sync"

	"github.com/akolanti/CourseChatAPI/internal/config"
	"github.com/akolanti/CourseChatAPI/internal/rag/llm"
	"github.com/akolanti/CourseChatAPI/pkg/logger_i"
	"google.golang.org/genai"
)

type llmClient struct {
	client    *genai.Client
	modelName string
}

var logger *logger_i.Logger
var geminiClient *llmClient
var once sync.Once

func GetGeminiClient(ctx context.Context, modelName string, apikey string) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_gemini")
		newGeminiClient(ctx, modelName, apikey)
	})

	if geminiClient == nil {
		return nil
	}
	return &llmClient{client: geminiClient.client, modelName: geminiClient.modelName}
}

func newGeminiClient(ctx context.Context, modelName string, apikey string) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		logger.Error("Error creating Gemini client:", "error", err)
	}
	if c != nil {
		geminiClient = &llmClient{client: c, modelName: modelName}
		logger.Info("Gemini client created", "model", modelName)
		go closeClient(ctx, geminiClient)
	}
}

func (c *llmClient) Generate(ctx context.Context, query string, contextBlock string, history []string) (string, error) {
	log := logger.ForTrace(ctx)

	systemInstruction := &genai.Content{
		Parts: []*genai.Part{
			{Text: config.SystemPrompt},
		},
	}

	result, err := c.client.Models.GenerateContent(
		ctx,
		c.modelName,
		genai.Text(llm.BuildUserPrompt(query, contextBlock, history)),
		&genai.GenerateContentConfig{
			SystemInstruction: systemInstruction,
			Temperature:       genai.Ptr(config.ModelTemperature),
		},
	)
	if err != nil {
		log.Error("Gemini generation failed", "error", err)
		return "", err
	}
	if result == nil {
		return "", errors.New("gemini returned an empty response")
	}
	return result.Text(), nil
}

func closeClient(ctx context.Context, llm *llmClient) {
	<-ctx.Done()
	logger.Info("Closing Gemini client")
	llm.client = nil
	llm.modelName = ""
}
