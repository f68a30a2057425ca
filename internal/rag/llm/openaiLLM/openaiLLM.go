package openaiLLM

import (
	"context"
	"errors"
	"sync"

	"github.com/akolanti/CourseChatAPI/internal/config"
	"github.com/akolanti/CourseChatAPI/internal/customHttpClient"
	"github.com/akolanti/CourseChatAPI/internal/rag/llm"
	"github.com/akolanti/CourseChatAPI/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var logger *logger_i.Logger
var once sync.Once
var chatClient *llmClient

type llmClient struct {
	api       openai.Client
	modelName string
}

func GetOpenAIClient(modelName string, apikey string) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_openai")
		if apikey == "" {
			logger.Error("OpenAI API key is empty")
			return
		}
		chatClient = &llmClient{
			api: openai.NewClient(
				option.WithAPIKey(apikey),
				option.WithHTTPClient(customHttpClient.GetPooledClient()),
			),
			modelName: modelName,
		}
		logger.Info("OpenAI chat client created", "model", modelName)
	})

	if chatClient == nil {
		return nil
	}
	return chatClient
}

func (c *llmClient) Generate(ctx context.Context, query string, contextBlock string, history []string) (string, error) {
	log := logger.ForTrace(ctx)

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.modelName),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(config.SystemPrompt),
			openai.UserMessage(llm.BuildUserPrompt(query, contextBlock, history)),
		},
		Temperature: openai.Float(float64(config.ModelTemperature)),
	})
	if err != nil {
		log.Error("OpenAI generation failed", "error", err)
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
