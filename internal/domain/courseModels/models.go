package courseModels

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Document is a source course file. Immutable once ingested - a re-ingest
// replaces it wholesale (new IngestVersion, old chunks pruned).
type Document struct {
	Id            string    `json:"source_doc_id"`
	Title         string    `json:"doc_title"`
	CourseTitle   string    `json:"course_title"`
	LessonNumber  int       `json:"lesson_number"`
	LessonTitle   string    `json:"lesson_title,omitempty"`
	IngestVersion int64     `json:"ingest_version"`
	IngestedAt    time.Time `json:"ingested_at"`
	ContentType   DocType   `json:"content_type"`
}

// DocChunk is a contiguous span of a Document. Never mutated; deleted only
// when its owning document is re-ingested or removed.
type DocChunk struct {
	Doc        Document `json:"doc"`
	ChunkId    string   `json:"chunk_id"`
	Chunk      string   `json:"content"`
	ChunkIndex int      `json:"chunk_index"`
	//OverlapPrefix is how many leading characters repeat the tail of the
	//previous chunk. Stripping it from every chunk after the first yields
	//the original document text.
	OverlapPrefix int `json:"overlap_prefix"`
}

// ScoredChunk pairs a retrieved chunk with its cosine similarity score.
// Ephemeral - never persisted.
type ScoredChunk struct {
	Chunk DocChunk
	Score float32
}

// Citation references the course material backing part of an answer.
type Citation struct {
	Course string `json:"course"`
	Lesson int    `json:"lesson"`
}

type DocType string

var (
	PDF DocType = "PDF"
	DOC DocType = "DOC"
	TXT DocType = "TXT"
	ERR DocType = "ERROR"
)

// NewChunkId derives a stable uuid from the owning document and the chunk
// position, so re-upserting the same chunk overwrites instead of duplicating
// (and Qdrant accepts it as a point id).
func NewChunkId(docId string, index int) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s:%d", docId, index))).String()
}
