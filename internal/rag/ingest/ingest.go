package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/akolanti/CourseChatAPI/internal/config"
	"github.com/akolanti/CourseChatAPI/internal/domain/courseModels"
	"github.com/akolanti/CourseChatAPI/internal/domain/ragError"
	"github.com/akolanti/CourseChatAPI/internal/metrics"
	"github.com/akolanti/CourseChatAPI/internal/rag/chunker"
	"github.com/akolanti/CourseChatAPI/internal/rag/vectorDB"
	"github.com/akolanti/CourseChatAPI/pkg/logger_i"
	"github.com/google/uuid"
)

var logger *logger_i.Logger

// Embedder is satisfied by the worker pool; ingestion only needs the bulk
// call.
type Embedder interface {
	EmbedAll(ctx context.Context, texts []string) ([][]float32, error)
}

// Ingestor turns an uploaded course document into embedded chunks in the
// vector store. Re-ingesting a document is atomic from a reader's point of
// view: the new version is upserted first, then stale chunks are pruned, so
// searches never observe a gap.
type Ingestor struct {
	store    vectorDB.Store
	embedder Embedder
	splitter *chunker.Splitter
}

func NewIngestor(store vectorDB.Store, embedder Embedder) *Ingestor {
	logger = logger_i.NewLogger("Document Ingestion")
	return &Ingestor{
		store:    store,
		embedder: embedder,
		splitter: chunker.NewSplitter(config.ChunkTargetSize, config.ChunkOverlap),
	}
}

// IngestFile processes the document at path. fileName carries the original
// upload name; its extension decides the extraction strategy. Returns the
// number of chunks written.
func (ing *Ingestor) IngestFile(ctx context.Context, path string, fileName string) (int, error) {
	log := logger.ForTrace(ctx)
	log.Debug("Processing document", "filename", fileName, "path", path)

	if err := ing.store.EnsureCollection(ctx); err != nil {
		return 0, ragError.New(ragError.Ingestion, fmt.Errorf("ensuring collection: %w", err), true)
	}

	docType := getDocType(fileName)
	if docType == courseModels.ERR {
		return 0, ragError.New(ragError.Ingestion, fmt.Errorf("unsupported file type: %s", fileName), false)
	}

	text, err := extractText(path, docType)
	if err != nil {
		return 0, ragError.New(ragError.Ingestion, fmt.Errorf("extracting %s: %w", fileName, err), false)
	}

	version := time.Now().UnixNano()
	chunks := ing.prepareChunks(text, fileName, docType, version)
	if len(chunks) == 0 {
		log.Info("Document produced no chunks", "filename", fileName)
		return 0, nil
	}
	log.Debug("Prepared chunks", "count", len(chunks))

	if err := ing.embedAndUpsert(ctx, chunks); err != nil {
		return 0, err
	}

	// prune superseded versions only after the new chunks are visible
	for _, docId := range distinctDocIds(chunks) {
		if err := ing.store.PruneStale(ctx, docId, version); err != nil {
			return 0, ragError.New(ragError.Ingestion, fmt.Errorf("pruning stale chunks of %s: %w", docId, err), true)
		}
	}

	metrics.CountIngestedChunks(chunks[0].Doc.CourseTitle, len(chunks))
	log.Info("Ingested document", "filename", fileName, "chunks", len(chunks))
	return len(chunks), nil
}

// prepareChunks splits the document. Plain text files are parsed as course
// scripts so each lesson becomes its own logical document; everything else
// is one document titled after the file.
func (ing *Ingestor) prepareChunks(text string, fileName string, docType courseModels.DocType, version int64) []courseModels.DocChunk {
	baseName := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	now := time.Now().UTC()

	if docType == courseModels.TXT {
		script := parseCourseScript(text)
		if script.Title == "" {
			script.Title = baseName
		}
		var all []courseModels.DocChunk
		for _, lesson := range script.Lessons {
			doc := courseModels.Document{
				Id:            NewDocId(script.Title, lesson.Number),
				Title:         baseName,
				CourseTitle:   script.Title,
				LessonNumber:  lesson.Number,
				LessonTitle:   lesson.Title,
				IngestVersion: version,
				IngestedAt:    now,
				ContentType:   docType,
			}
			all = append(all, ing.splitter.Chunk(doc, lesson.Content)...)
		}
		return all
	}

	doc := courseModels.Document{
		Id:            NewDocId(baseName, 0),
		Title:         baseName,
		CourseTitle:   baseName,
		IngestVersion: version,
		IngestedAt:    now,
		ContentType:   docType,
	}
	return ing.splitter.Chunk(doc, text)
}

// embedAndUpsert embeds the whole document in one EmbedAll call (the pool
// batches and fans out internally) and writes all chunks in one upsert, so
// a provider failure leaves the previous version of the document intact.
func (ing *Ingestor) embedAndUpsert(ctx context.Context, chunks []courseModels.DocChunk) error {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Chunk
	}

	vectors, err := ing.embedder.EmbedAll(ctx, texts)
	if err != nil {
		return ragError.New(ragError.Embedding, fmt.Errorf("embedding document failed: %w", err), true)
	}
	if err := ing.store.UpsertBatch(ctx, chunks, vectors); err != nil {
		return ragError.New(ragError.Ingestion, fmt.Errorf("upserting chunks failed: %w", err), true)
	}
	return nil
}

// NewDocId is stable per (course, lesson) so a re-ingest of the same material
// lands on the same document id and supersedes the previous version.
func NewDocId(courseTitle string, lessonNumber int) string {
	key := fmt.Sprintf("%s:%d", courseTitle, lessonNumber)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key)).String()
}

func distinctDocIds(chunks []courseModels.DocChunk) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, c := range chunks {
		if !seen[c.Doc.Id] {
			seen[c.Doc.Id] = true
			ids = append(ids, c.Doc.Id)
		}
	}
	return ids
}
