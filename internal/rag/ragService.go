package rag

import (
	"context"
	"time"

	"github.com/akolanti/CourseChatAPI/internal/config"
	"github.com/akolanti/CourseChatAPI/internal/domain/courseModels"
	"github.com/akolanti/CourseChatAPI/internal/domain/ragError"
	"github.com/akolanti/CourseChatAPI/internal/domain/sessionModel"
	"github.com/akolanti/CourseChatAPI/internal/metrics"
	"github.com/akolanti/CourseChatAPI/internal/rag/assembler"
	"github.com/akolanti/CourseChatAPI/internal/rag/ingest"
	"github.com/akolanti/CourseChatAPI/internal/rag/llm"
	"github.com/akolanti/CourseChatAPI/internal/rag/retriever"
	"github.com/akolanti/CourseChatAPI/internal/rag/vectorDB"
	"github.com/akolanti/CourseChatAPI/internal/session"
	"github.com/akolanti/CourseChatAPI/pkg/logger_i"
)

// Answer is what a query resolves to: the generated text, the course
// material it leaned on, and the session id to reuse on the next turn.
type Answer struct {
	Answer    string
	Citations []courseModels.Citation
	SessionId string
}

// Service is the only surface the transport layer talks to - handlers never
// touch the store, the embedder or the LLM directly.
type Service interface {
	Answer(ctx context.Context, query string, sessionId string) (Answer, error)
	Ingest(ctx context.Context, path string, fileName string) (int, error)
	CourseAnalytics(ctx context.Context) (int, []string, error)
	SessionHistory(ctx context.Context, sessionId string) ([]sessionModel.Turn, error)
	ClearSession(ctx context.Context, sessionId string) error
}

type service struct {
	retriever   *retriever.Retriever
	assembler   *assembler.Assembler
	llmProvider llm.Provider
	sessions    *session.Manager
	ingestor    *ingest.Ingestor
	vectorDB    vectorDB.Store
	logger      *logger_i.Logger
}

type ServiceConfig struct {
	Retriever *retriever.Retriever
	Assembler *assembler.Assembler
	Provider  llm.Provider
	Sessions  *session.Manager
	Ingestor  *ingest.Ingestor
	VectorDB  vectorDB.Store
}

func NewService(cfg ServiceConfig) Service {
	return &service{
		retriever:   cfg.Retriever,
		assembler:   cfg.Assembler,
		llmProvider: cfg.Provider,
		sessions:    cfg.Sessions,
		ingestor:    cfg.Ingestor,
		vectorDB:    cfg.VectorDB,
		logger:      logger_i.NewLogger("RAG Service"),
	}
}

// Answer runs the query pipeline. A failure at any step aborts the request
// with a typed error and leaves the session untouched - history is only
// written after generation succeeds, so a cancelled or failed request looks
// like it never happened.
func (s *service) Answer(ctx context.Context, query string, sessionId string) (Answer, error) {
	inMethodLogger := s.logger.ForTrace(ctx)
	start := time.Now()
	status := "ok"
	defer func() { metrics.CaptureAnswerMetrics(status, time.Since(start)) }()

	processContext, cancel := context.WithTimeout(ctx, config.AnswerTimeout)
	defer cancel()

	sessionId, err := s.sessions.GetOrCreate(processContext, sessionId)
	if err != nil {
		status = "error"
		return Answer{}, s.stepError(stepReceive, err, true)
	}

	// same-session requests are serialized across the whole
	// read-generate-record span; other sessions run in parallel
	unlock := s.sessions.Lock(sessionId)
	defer unlock()

	history, err := s.sessions.History(processContext, sessionId)
	if err != nil {
		status = "error"
		return Answer{}, s.stepError(stepReceive, err, true)
	}

	queryVector, err := s.executeEmbeddingStep(processContext, inMethodLogger, query)
	if err != nil {
		status = "error"
		return Answer{}, s.stepError(stepEmbedQuery, err, true)
	}

	matches, err := s.executeRetrievalStep(processContext, inMethodLogger, queryVector)
	if err != nil {
		status = "error"
		return Answer{}, s.stepError(stepRetrieve, err, true)
	}

	payload := s.executeAssembleStep(inMethodLogger, query, matches, history)

	answerText, err := s.executeLLMStep(processContext, inMethodLogger, query, payload)
	if err != nil {
		status = "error"
		return Answer{}, s.stepError(stepGenerate, err, ragError.IsRetryable(err))
	}

	// a cancelled request must not mutate the session
	if processContext.Err() != nil {
		status = "cancelled"
		return Answer{}, s.stepError(stepRecordHistory, processContext.Err(), true)
	}

	turn := sessionModel.Turn{Question: query, Answer: answerText, AskedAt: time.Now().UTC()}
	if err := s.sessions.RecordTurn(processContext, sessionId, turn); err != nil {
		// the answer exists; losing one history entry is not worth failing
		// the request over
		inMethodLogger.Error("Failed to record turn", "sessionId", sessionId, "err", err)
	}

	return Answer{
		Answer:    answerText,
		Citations: payload.Citations,
		SessionId: sessionId,
	}, nil
}

func (s *service) Ingest(ctx context.Context, path string, fileName string) (int, error) {
	start := time.Now()
	defer func() { metrics.CaptureStepMetrics("document_ingestion", time.Since(start)) }()
	return s.ingestor.IngestFile(ctx, path, fileName)
}

func (s *service) CourseAnalytics(ctx context.Context) (int, []string, error) {
	titles, err := s.vectorDB.CourseTitles(ctx)
	if err != nil {
		return 0, nil, ragError.New(ragError.Retrieval, err, true)
	}
	return len(titles), titles, nil
}

func (s *service) SessionHistory(ctx context.Context, sessionId string) ([]sessionModel.Turn, error) {
	return s.sessions.History(ctx, sessionId)
}

func (s *service) ClearSession(ctx context.Context, sessionId string) error {
	unlock := s.sessions.Lock(sessionId)
	defer unlock()
	return s.sessions.Clear(ctx, sessionId)
}
