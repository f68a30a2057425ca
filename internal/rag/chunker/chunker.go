package chunker

import (
	"strings"

	"github.com/akolanti/CourseChatAPI/internal/domain/courseModels"
)

// Splitter cuts document text into overlapping character-bounded chunks.
// Identical input and identical configuration always produce the identical
// chunk sequence - the chunk ids are derived from document id + position,
// so re-chunking a re-ingested document overwrites cleanly.
type Splitter struct {
	targetSize int
	overlap    int
}

func NewSplitter(targetSize int, overlap int) *Splitter {
	if targetSize <= 0 {
		targetSize = 800
	}
	if overlap < 0 || overlap >= targetSize {
		overlap = targetSize / 8
	}
	return &Splitter{targetSize: targetSize, overlap: overlap}
}

// Chunk splits content into chunks of at most targetSize characters,
// preferring paragraph, then sentence, then word boundaries. A single run
// with no break point gets a hard cut. Empty content yields no chunks.
func (s *Splitter) Chunk(doc courseModels.Document, content string) []courseModels.DocChunk {
	if content == "" {
		return nil
	}

	var chunks []courseModels.DocChunk
	start := 0
	prevEnd := 0
	index := 0

	for start < len(content) {
		end := start + s.targetSize
		if end >= len(content) {
			end = len(content)
		} else {
			end = s.breakPoint(content, start, end)
		}

		overlapPrefix := 0
		if index > 0 && start < prevEnd {
			overlapPrefix = prevEnd - start
		}

		chunks = append(chunks, courseModels.DocChunk{
			Doc:           doc,
			ChunkId:       courseModels.NewChunkId(doc.Id, index),
			Chunk:         content[start:end],
			ChunkIndex:    index,
			OverlapPrefix: overlapPrefix,
		})

		if end == len(content) {
			break
		}

		next := end - s.overlap
		if next <= start { //a short chunk must still make progress
			next = end
		}
		prevEnd = end
		start = next
		index++
	}

	return chunks
}

// breakPoint picks where to end the chunk that starts at start and may run
// to at most limit. Paragraph breaks win over sentence ends, sentence ends
// over spaces; a hard cut at limit is the last resort.
func (s *Splitter) breakPoint(content string, start int, limit int) int {
	window := content[start:limit]

	if i := strings.LastIndex(window, "\n\n"); i > 0 {
		return start + i + 2
	}

	best := -1
	for _, sep := range []string{". ", "! ", "? ", ".\n", "!\n", "?\n", "\n"} {
		if i := strings.LastIndex(window, sep); i >= 0 && i+len(sep) > best {
			best = i + len(sep)
		}
	}
	if best > 0 {
		return start + best
	}

	if i := strings.LastIndex(window, " "); i > 0 {
		return start + i + 1
	}

	//no break point at all - hard split mid-run
	return limit
}
