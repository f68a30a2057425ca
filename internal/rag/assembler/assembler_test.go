package assembler

import (
	"strings"
	"testing"

	"github.com/akolanti/CourseChatAPI/internal/domain/courseModels"
	"github.com/akolanti/CourseChatAPI/internal/domain/sessionModel"
)

func scored(course string, lesson, index int, text string) courseModels.ScoredChunk {
	return courseModels.ScoredChunk{
		Chunk: courseModels.DocChunk{
			Doc: courseModels.Document{
				Id:           "doc-" + course,
				CourseTitle:  course,
				LessonNumber: lesson,
			},
			ChunkId:    course + "-chunk",
			Chunk:      text,
			ChunkIndex: index,
		},
		Score: 0.9,
	}
}

func TestAssembleTagsSources(t *testing.T) {
	a := NewAssembler(6000)
	payload := a.Assemble("q", []courseModels.ScoredChunk{
		scored("Go Basics", 2, 0, "goroutines are cheap"),
	}, nil)

	if !strings.Contains(payload.ContextBlock, "[Go Basics - Lesson 2]") {
		t.Fatalf("missing source header: %q", payload.ContextBlock)
	}
	if len(payload.Citations) != 1 || payload.Citations[0].Course != "Go Basics" || payload.Citations[0].Lesson != 2 {
		t.Fatalf("unexpected citations: %+v", payload.Citations)
	}
}

func TestAssembleDropsOldestTurnsFirst(t *testing.T) {
	chunkText := strings.Repeat("c", 150)
	turns := []sessionModel.Turn{
		{Question: "first question", Answer: strings.Repeat("a", 100)},
		{Question: "second question", Answer: strings.Repeat("b", 100)},
	}

	// budget fits the chunk plus one turn, not both turns
	a := NewAssembler(350)
	payload := a.Assemble("q", []courseModels.ScoredChunk{
		scored("Go Basics", 1, 0, chunkText),
	}, turns)

	if !strings.Contains(payload.ContextBlock, chunkText) {
		t.Fatal("chunk content was truncated before history")
	}
	if len(payload.History) != 1 {
		t.Fatalf("expected 1 surviving turn, got %d", len(payload.History))
	}
	if !strings.Contains(payload.History[0], "second question") {
		t.Fatalf("survivor should be the newest turn, got %q", payload.History[0])
	}
}

func TestAssembleCitationsExcludeDroppedChunks(t *testing.T) {
	a := NewAssembler(60)
	payload := a.Assemble("q", []courseModels.ScoredChunk{
		scored("Go Basics", 1, 0, "short"),
		scored("Distributed Systems", 3, 0, strings.Repeat("x", 200)),
	}, nil)

	if len(payload.Citations) != 1 {
		t.Fatalf("expected 1 citation, got %+v", payload.Citations)
	}
	if payload.Citations[0].Course != "Go Basics" {
		t.Fatalf("citation for dropped chunk leaked: %+v", payload.Citations)
	}
}

func TestAssembleDeduplicatesCitations(t *testing.T) {
	a := NewAssembler(6000)
	payload := a.Assemble("q", []courseModels.ScoredChunk{
		scored("Go Basics", 1, 0, "chunk one"),
		scored("Go Basics", 1, 1, "chunk two"),
	}, nil)

	if len(payload.Citations) != 1 {
		t.Fatalf("expected deduplicated citation, got %+v", payload.Citations)
	}
}

func TestAssembleDeterministic(t *testing.T) {
	chunks := []courseModels.ScoredChunk{
		scored("Go Basics", 1, 0, "alpha"),
		scored("Go Basics", 2, 0, "beta"),
	}
	turns := []sessionModel.Turn{{Question: "q1", Answer: "a1"}}

	a := NewAssembler(6000)
	first := a.Assemble("q", chunks, turns)
	second := a.Assemble("q", chunks, turns)

	if first.ContextBlock != second.ContextBlock {
		t.Fatal("context block not deterministic")
	}
	if len(first.History) != len(second.History) {
		t.Fatal("history not deterministic")
	}
}

func TestAssembleEmptyInputs(t *testing.T) {
	a := NewAssembler(6000)
	payload := a.Assemble("q", nil, nil)

	if payload.ContextBlock != "" || len(payload.History) != 0 || len(payload.Citations) != 0 {
		t.Fatalf("expected empty payload, got %+v", payload)
	}
}
