package qdrantDB

import (
	"context"
	"fmt"
	"sync"

	"github.com/akolanti/CourseChatAPI/internal/config"
	"github.com/akolanti/CourseChatAPI/internal/domain/courseModels"
	"github.com/akolanti/CourseChatAPI/internal/rag/vectorDB"
	"github.com/akolanti/CourseChatAPI/pkg/logger_i"
	"github.com/qdrant/go-client/qdrant"
)

var logger *logger_i.Logger
var qdrantInstance *qdrant.Client
var once sync.Once
var dimension = uint64(config.EmbeddingOutputDimensionality)

const collectionName = config.CourseCollectionName

type ClientHolder struct {
	QObj *qdrant.Client
}

func GetQdrantClient(ctx context.Context) vectorDB.Store {
	once.Do(func() {
		logger = logger_i.NewLogger("Qdrant")
		res := newClient(ctx)
		if res != nil {
			qdrantInstance = res
			go closeQdrant(ctx, qdrantInstance)
		}
	})

	if qdrantInstance == nil {
		return nil
	}
	return &ClientHolder{QObj: qdrantInstance}
}

func newClient(ctx context.Context) *qdrant.Client {
	host := config.EnvOr("QDRANT_HOST", config.QdrantHost)
	port := config.EnvIntOr("QDRANT_PORT", config.QdrantGrpcPort)

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     port,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		logger.Error("could not instantiate qdrant client: ", "error:", err)
		return nil
	}

	if err = ensureCollection(ctx, client); err != nil {
		logger.Error("could not create collection: ", "collectionName", collectionName, "error:", err)
		return nil
	}

	return client
}

func closeQdrant(ctx context.Context, qi *qdrant.Client) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	if err := qi.Close(); err != nil {
		logger.Error("could not close Qdrant: ", "error:", err)
	}
}

func (db *ClientHolder) EnsureCollection(ctx context.Context) error {
	return ensureCollection(ctx, db.QObj)
}

func (db *ClientHolder) UpsertBatch(ctx context.Context, chunks []courseModels.DocChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}

	points := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(chunk.ChunkId),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				"content":        chunk.Chunk,
				"chunk_id":       chunk.ChunkId,
				"chunk_index":    chunk.ChunkIndex,
				"overlap_prefix": chunk.OverlapPrefix,
				"source_doc_id":  chunk.Doc.Id,
				"doc_title":      chunk.Doc.Title,
				"course_title":   chunk.Doc.CourseTitle,
				"lesson_number":  chunk.Doc.LessonNumber,
				"lesson_title":   chunk.Doc.LessonTitle,
				"ingest_version": chunk.Doc.IngestVersion,
				"ingested_at":    chunk.Doc.IngestedAt.Unix(),
			}),
		}
	}

	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collectionName,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

func (db *ClientHolder) Search(ctx context.Context, queryVector []float32, k int, filter *vectorDB.SearchFilter) ([]courseModels.ScoredChunk, error) {
	log := logger.ForTrace(ctx)

	result, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collectionName,
		Query:          qdrant.NewQuery(queryVector...),
		Limit:          qdrant.PtrOf(uint64(k)),
		Filter:         toQdrantFilter(filter),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		log.Error("Error querying Qdrant: ", "error:", err)
		return nil, err
	}

	matches := make([]courseModels.ScoredChunk, 0, len(result))
	for _, hit := range result {
		matches = append(matches, courseModels.ScoredChunk{
			Chunk: payloadToChunk(hit.Payload),
			Score: hit.Score,
		})
	}

	log.Debug("Qdrant search done", "hits", len(matches))
	return matches, nil
}

func (db *ClientHolder) DeleteDocument(ctx context.Context, docId string) error {
	return db.deleteByFilter(ctx, &qdrant.Filter{
		Must: []*qdrant.Condition{qdrant.NewMatch("source_doc_id", docId)},
	})
}

func (db *ClientHolder) PruneStale(ctx context.Context, docId string, keepVersion int64) error {
	return db.deleteByFilter(ctx, &qdrant.Filter{
		Must:    []*qdrant.Condition{qdrant.NewMatch("source_doc_id", docId)},
		MustNot: []*qdrant.Condition{qdrant.NewMatchInt("ingest_version", keepVersion)},
	})
}

func (db *ClientHolder) CourseTitles(ctx context.Context) ([]string, error) {
	points, err := db.QObj.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: collectionName,
		Limit:          qdrant.PtrOf(uint32(10000)),
		WithPayload:    qdrant.NewWithPayloadInclude("course_title"),
	})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var titles []string
	for _, p := range points {
		title := p.Payload["course_title"].GetStringValue()
		if title != "" && !seen[title] {
			seen[title] = true
			titles = append(titles, title)
		}
	}
	return titles, nil
}

func (db *ClientHolder) deleteByFilter(ctx context.Context, filter *qdrant.Filter) error {
	_, err := db.QObj.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collectionName,
		Points:         qdrant.NewPointsSelectorFilter(filter),
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant delete failed: %w", err)
	}
	return nil
}

func toQdrantFilter(filter *vectorDB.SearchFilter) *qdrant.Filter {
	if filter == nil {
		return nil
	}
	var must []*qdrant.Condition
	if filter.CourseTitle != "" {
		must = append(must, qdrant.NewMatch("course_title", filter.CourseTitle))
	}
	if filter.HasLesson {
		must = append(must, qdrant.NewMatchInt("lesson_number", int64(filter.LessonNumber)))
	}
	if len(must) == 0 {
		return nil
	}
	return &qdrant.Filter{Must: must}
}

func payloadToChunk(payload map[string]*qdrant.Value) courseModels.DocChunk {
	return courseModels.DocChunk{
		ChunkId:       payload["chunk_id"].GetStringValue(),
		Chunk:         payload["content"].GetStringValue(),
		ChunkIndex:    int(payload["chunk_index"].GetIntegerValue()),
		OverlapPrefix: int(payload["overlap_prefix"].GetIntegerValue()),
		Doc: courseModels.Document{
			Id:            payload["source_doc_id"].GetStringValue(),
			Title:         payload["doc_title"].GetStringValue(),
			CourseTitle:   payload["course_title"].GetStringValue(),
			LessonNumber:  int(payload["lesson_number"].GetIntegerValue()),
			LessonTitle:   payload["lesson_title"].GetStringValue(),
			IngestVersion: payload["ingest_version"].GetIntegerValue(),
		},
	}
}

func ensureCollection(ctx context.Context, client *qdrant.Client) error {
	exists, err := client.CollectionExists(ctx, collectionName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	err = client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return err
	}

	//payload indexes back the course/lesson filters and the per-document deletes
	for field, fieldType := range map[string]qdrant.FieldType{
		"source_doc_id":  qdrant.FieldType_FieldTypeKeyword,
		"course_title":   qdrant.FieldType_FieldTypeKeyword,
		"lesson_number":  qdrant.FieldType_FieldTypeInteger,
		"ingest_version": qdrant.FieldType_FieldTypeInteger,
	} {
		_, err = client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: collectionName,
			FieldName:      field,
			FieldType:      fieldType.Enum(),
		})
		if err != nil {
			return err
		}
	}
	return nil
}
