package assembler

import (
	"fmt"
	"strings"

	"github.com/akolanti/CourseChatAPI/internal/domain/courseModels"
	"github.com/akolanti/CourseChatAPI/internal/domain/sessionModel"
)

// Payload is the bounded prompt context handed to the generation provider.
// Citations cover only the chunks that made it into ContextBlock; chunks
// dropped by the budget never produce a citation.
type Payload struct {
	ContextBlock string
	History      []string
	Citations    []courseModels.Citation
}

// Assembler merges retrieved chunk text with recent conversation turns
// under a character budget. Chunk content always wins over old history:
// turns are dropped oldest-first until the remainder fits.
type Assembler struct {
	charBudget int
}

func NewAssembler(charBudget int) *Assembler {
	return &Assembler{charBudget: charBudget}
}

func (a *Assembler) Assemble(query string, retrieved []courseModels.ScoredChunk, history []sessionModel.Turn) Payload {
	var payload Payload
	var blocks []string
	used := 0

	for _, hit := range retrieved {
		block := sourceHeader(hit.Chunk.Doc) + "\n" + hit.Chunk.Chunk
		cost := len(block)
		if len(blocks) > 0 {
			cost += len("\n\n")
		}
		if used+cost > a.charBudget {
			break
		}
		used += cost
		blocks = append(blocks, block)
		payload.Citations = appendCitation(payload.Citations, hit.Chunk.Doc)
	}
	payload.ContextBlock = strings.Join(blocks, "\n\n")

	// walk turns newest-first to find how many old ones must go, then emit
	// the survivors in chronological order
	keepFrom := len(history)
	for i := len(history) - 1; i >= 0; i-- {
		cost := len(turnLine(history[i]))
		if used+cost > a.charBudget {
			break
		}
		used += cost
		keepFrom = i
	}
	for _, turn := range history[keepFrom:] {
		payload.History = append(payload.History, turnLine(turn))
	}

	return payload
}

func sourceHeader(doc courseModels.Document) string {
	if doc.LessonNumber > 0 {
		return fmt.Sprintf("[%s - Lesson %d]", doc.CourseTitle, doc.LessonNumber)
	}
	return fmt.Sprintf("[%s]", doc.CourseTitle)
}

func turnLine(turn sessionModel.Turn) string {
	return fmt.Sprintf("User: %s\nAssistant: %s", turn.Question, turn.Answer)
}

func appendCitation(citations []courseModels.Citation, doc courseModels.Document) []courseModels.Citation {
	next := courseModels.Citation{Course: doc.CourseTitle, Lesson: doc.LessonNumber}
	for _, c := range citations {
		if c == next {
			return citations
		}
	}
	return append(citations, next)
}
