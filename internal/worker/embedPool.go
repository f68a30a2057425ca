package worker

import (
	"context"
	"sync"

	"github.com/akolanti/CourseChatAPI/internal/config"
	"github.com/akolanti/CourseChatAPI/internal/metrics"
	"github.com/akolanti/CourseChatAPI/internal/rag/embedding"
	"github.com/akolanti/CourseChatAPI/pkg/logger_i"
)

// EmbedPool fans document chunks out to a bounded set of workers calling the
// embedding provider in batches. Output order matches input order regardless
// of which worker finishes first.
type EmbedPool struct {
	embedder    embedding.Embedder
	workerCount int
	batchSize   int
	logger      *logger_i.Logger
}

type embedBatch struct {
	index int
	texts []string
}

func NewEmbedPool(embedder embedding.Embedder) *EmbedPool {
	return &EmbedPool{
		embedder:    embedder,
		workerCount: config.EmbedPoolWorkerCount,
		batchSize:   config.EmbedBatchSize,
		logger:      logger_i.NewLogger("EmbedPool"),
	}
}

// EmbedAll embeds every text and returns vectors aligned index-for-index
// with the input. The first worker error cancels the remaining batches.
func (p *EmbedPool) EmbedAll(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	log := p.logger.ForTrace(ctx)

	batches := p.split(texts)
	results := make([][][]float32, len(batches))

	workCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobChannel := make(chan embedBatch, len(batches))
	for _, batch := range batches {
		jobChannel <- batch
	}
	close(jobChannel)

	workers := p.workerCount
	if workers > len(batches) {
		workers = len(batches)
	}

	var waitGroup sync.WaitGroup
	var errOnce sync.Once
	var firstErr error
	for i := 0; i < workers; i++ {
		waitGroup.Add(1)
		metrics.IncrementActiveWorkerCount()
		go func() {
			defer waitGroup.Done()
			defer metrics.DecrementActiveWorkerCount()
			for batch := range jobChannel {
				if workCtx.Err() != nil {
					return
				}
				vectors, err := p.embedder.BatchEmbedding(workCtx, batch.texts)
				if err != nil {
					errOnce.Do(func() {
						firstErr = err
						cancel()
					})
					return
				}
				results[batch.index] = vectors
			}
		}()
	}
	waitGroup.Wait()

	if firstErr == nil {
		firstErr = ctx.Err()
	}
	if firstErr != nil {
		log.Error("Embedding pool failed", "err", firstErr)
		return nil, firstErr
	}

	out := make([][]float32, 0, len(texts))
	for _, vectors := range results {
		out = append(out, vectors...)
	}
	log.Debug("Embedded texts", "count", len(texts), "batches", len(batches), "workers", workers)
	return out, nil
}

func (p *EmbedPool) split(texts []string) []embedBatch {
	batches := make([]embedBatch, 0, (len(texts)+p.batchSize-1)/p.batchSize)
	for start := 0; start < len(texts); start += p.batchSize {
		end := start + p.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batches = append(batches, embedBatch{index: len(batches), texts: texts[start:end]})
	}
	return batches
}
