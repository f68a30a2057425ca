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
	"github.com/akolanti/CourseChatAPI/pkg/logger_i"
)

// pipelineStep labels the answer state machine for logs and metrics.
type pipelineStep string

const (
	stepReceive       pipelineStep = "receive"
	stepEmbedQuery    pipelineStep = "embed_query"
	stepRetrieve      pipelineStep = "retrieve"
	stepAssemble      pipelineStep = "assemble_context"
	stepGenerate      pipelineStep = "generate"
	stepRecordHistory pipelineStep = "record_history"
)

var stepKinds = map[pipelineStep]ragError.Kind{
	stepReceive:       ragError.Retrieval,
	stepEmbedQuery:    ragError.Embedding,
	stepRetrieve:      ragError.Retrieval,
	stepAssemble:      ragError.Retrieval,
	stepGenerate:      ragError.Generation,
	stepRecordHistory: ragError.Generation,
}

func (s *service) stepError(step pipelineStep, err error, canRetry bool) error {
	s.logger.Error("Pipeline step failed", "step", string(step), "error", err)
	if ragError.KindOf(err) != "" {
		return err
	}
	return ragError.New(stepKinds[step], err, canRetry)
}

func (s *service) executeEmbeddingStep(ctx context.Context, log *logger_i.Logger, query string) ([]float32, error) {
	log.Debug("Answer pipeline", "step", string(stepEmbedQuery))

	start := time.Now()
	defer func() { metrics.CaptureStepMetrics(string(stepEmbedQuery), time.Since(start)) }()

	return s.retriever.EmbedQuery(ctx, query)
}

func (s *service) executeRetrievalStep(ctx context.Context, log *logger_i.Logger, queryVector []float32) ([]courseModels.ScoredChunk, error) {
	log.Debug("Answer pipeline", "step", string(stepRetrieve))

	start := time.Now()
	defer func() { metrics.CaptureStepMetrics(string(stepRetrieve), time.Since(start)) }()

	return s.retriever.Retrieve(ctx, queryVector, config.RetrievalTopK, nil)
}

func (s *service) executeAssembleStep(log *logger_i.Logger, query string, matches []courseModels.ScoredChunk, history []sessionModel.Turn) assembler.Payload {
	log.Debug("Answer pipeline", "step", string(stepAssemble), "matches", len(matches), "historyTurns", len(history))

	start := time.Now()
	defer func() { metrics.CaptureStepMetrics(string(stepAssemble), time.Since(start)) }()

	return s.assembler.Assemble(query, matches, history)
}

func (s *service) executeLLMStep(ctx context.Context, log *logger_i.Logger, query string, payload assembler.Payload) (string, error) {
	log.Debug("Answer pipeline", "step", string(stepGenerate))

	start := time.Now()
	defer func() { metrics.CaptureStepMetrics(string(stepGenerate), time.Since(start)) }()

	return s.llmProvider.Generate(ctx, query, payload.ContextBlock, payload.History)
}
