// @title           Course Chat API
// @version         1.0
// @description     Retrieval-augmented question answering over ingested course material
// @termsOfService  http://swagger.io/terms/

// @contact.name    me lol
// @contact.url
// @contact.email

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/akolanti/CourseChatAPI/internal/config"
	"github.com/akolanti/CourseChatAPI/internal/data/sessionStore"
	"github.com/akolanti/CourseChatAPI/internal/domain/sessionModel"
	"github.com/akolanti/CourseChatAPI/internal/handlers"
	"github.com/akolanti/CourseChatAPI/internal/mcpserver"
	"github.com/akolanti/CourseChatAPI/internal/rag"
	"github.com/akolanti/CourseChatAPI/internal/rag/assembler"
	"github.com/akolanti/CourseChatAPI/internal/rag/embedding"
	"github.com/akolanti/CourseChatAPI/internal/rag/embedding/googleEmbedding"
	"github.com/akolanti/CourseChatAPI/internal/rag/embedding/openaiEmbedding"
	"github.com/akolanti/CourseChatAPI/internal/rag/ingest"
	"github.com/akolanti/CourseChatAPI/internal/rag/llm"
	"github.com/akolanti/CourseChatAPI/internal/rag/llm/gemini"
	"github.com/akolanti/CourseChatAPI/internal/rag/llm/openaiLLM"
	"github.com/akolanti/CourseChatAPI/internal/rag/retriever"
	"github.com/akolanti/CourseChatAPI/internal/rag/vectorDB"
	"github.com/akolanti/CourseChatAPI/internal/rag/vectorDB/memoryDB"
	"github.com/akolanti/CourseChatAPI/internal/rag/vectorDB/qdrantDB"
	"github.com/akolanti/CourseChatAPI/internal/server"
	"github.com/akolanti/CourseChatAPI/internal/session"
	"github.com/akolanti/CourseChatAPI/internal/worker"
	"github.com/akolanti/CourseChatAPI/pkg/logger_i"
)

var listenAddr string

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	store := qdrantDB.GetQdrantClient(serviceContext)
	if store == nil {
		logger.Error("Qdrant is offline, falling back to the in-memory store - ingested data will not survive a restart")
		store = memoryDB.InitMemoryStore()
	}

	var sessions sessionModel.SessionStore
	if redisSessions := sessionStore.GetRedisSessionStore(serviceContext); redisSessions != nil {
		sessions = redisSessions
	} else {
		logger.Error("Redis is offline, falling back to the in-memory session store")
		sessions = sessionStore.InitSessionStore()
	}

	embedder := buildEmbedder(serviceContext)
	llmProvider := buildProvider(serviceContext)
	if embedder == nil || llmProvider == nil {
		logger.Error("One or more external services failed to initialize. Shutting down.")
		logger.Debug("Available services : ", "EmbeddingService", embedder != nil, "LLMProvider", llmProvider != nil)
		return
	}

	queryRetriever := retriever.NewRetriever(embedder, store, config.MinRelevanceScore)
	ragService := rag.NewService(rag.ServiceConfig{
		Retriever: queryRetriever,
		Assembler: assembler.NewAssembler(config.ContextCharBudget),
		Provider:  llmProvider,
		Sessions:  session.NewManager(sessions),
		Ingestor:  ingest.NewIngestor(store, worker.NewEmbedPool(embedder)),
		VectorDB:  store,
	})

	handlers.InitHandlers(ragService)
	mcpServer := mcpserver.NewServer(ragService, queryRetriever)

	warmCollection(serviceContext, logger, store)

	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr, mcpServer.HTTPHandler())

	<-stopExecution
	logger.Info("Server stopped")
}

func buildEmbedder(ctx context.Context) embedding.Embedder {
	if config.EmbeddingProvider == "openai" {
		return openaiEmbedding.GetOpenAIEmbeddingClient(config.OpenAIEmbeddingModel, config.OpenAIAPIKey)
	}
	return googleEmbedding.GetGoogleEmbeddingClient(ctx, config.GoogleEmbeddingModel, config.GoogleAPIKey)
}

func buildProvider(ctx context.Context) llm.Provider {
	if config.LLMProviderName == "openai" {
		return openaiLLM.GetOpenAIClient(config.OpenAIChatModel, config.OpenAIAPIKey)
	}
	return gemini.GetGeminiClient(ctx, config.GeminiModelName, config.GoogleAPIKey)
}

func warmCollection(ctx context.Context, logger *logger_i.Logger, store vectorDB.Store) {
	if err := store.EnsureCollection(ctx); err != nil {
		logger.Error("Could not ensure vector collection", "err", err)
	}
}
