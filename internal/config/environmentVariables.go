package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo
	TRACE_ID_KEY   = "traceId"

	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	//chunking - sizes are measured in CHARACTERS, not tokens
	ChunkTargetSize = 800
	ChunkOverlap    = 120

	//retrieval
	//similarity metric is cosine - fixed at collection creation and shared
	//by ingestion and query embeddings
	RetrievalTopK             = 5
	MinRelevanceScore float32 = 0.25

	//context assembly budget (characters) - retrieved chunks are spent first,
	//history fills whatever is left, oldest turns dropped first
	ContextCharBudget = 6000

	//sessions
	MaxSessionTurns = 10

	//TODO:this will differ based on the embedding provider
	EmbeddingOutputDimensionality int32 = 1536
	CourseCollectionName                = "course-chunks"

	//ingestion
	EmbedBatchSize       = 100
	EmbedPoolWorkerCount = 4

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 60 * time.Second //generation can be slow
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//request budget for one answer pipeline run
	AnswerTimeout = 60 * time.Second
	IngestTimeout = 5 * time.Minute

	//vectorDB
	QdrantHost             = "localhost"
	QdrantGrpcPort         = 6334
	QdrantUseTLS           = false
	QdrantPoolSize         = 1
	QdrantKeepAliveTimeout = 30 * time.Second

	GeminiModelName      = "gemini-2.5-flash-lite-preview-09-2025"
	GoogleEmbeddingModel = "gemini-embedding-001"
	OpenAIChatModel      = "gpt-4o-mini"
	OpenAIEmbeddingModel = "text-embedding-3-small"

	ModelTemperature float32 = 0.7
	SystemPrompt             = "You are a course-materials assistant. Answer from the provided course content. " +
		"Cite the course and lesson when the context supports the answer. If the context does not cover the question, say so."

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//sessions live in their own redis DB
	RedisSessionStore = 1

	RedisSessionTTL = 24 * time.Hour

	//auth
	NoAuthBypass = true //flip for deployments that front their own auth
)

// deployment-dependent settings, overridable via environment
var (
	GoogleAPIKey = os.Getenv("GOOGLE_API_KEY")
	OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")

	ServerListenAddr = EnvOr("LISTEN_ADDR", ":3000")

	RedisAddr     = EnvOr("REDIS_ADDR", "127.0.0.1:6379")
	RedisPassword = EnvOr("REDIS_PASSWORD", "")

	//providers: "google" or "openai"
	EmbeddingProvider = EnvOr("EMBEDDING_PROVIDER", "google")
	LLMProviderName   = EnvOr("LLM_PROVIDER", "google")

	AuthToken = EnvOr("AUTH_TOKEN", "")
)

func EnvOr(key string, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func EnvIntOr(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
