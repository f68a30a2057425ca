package mcpserver

import (
	"context"
	"fmt"

	"github.com/akolanti/CourseChatAPI/internal/config"
	"github.com/akolanti/CourseChatAPI/internal/rag/vectorDB"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type SearchInput struct {
	Query        string `json:"query" jsonschema:"what to look for in the course material"`
	CourseTitle  string `json:"course_title,omitempty" jsonschema:"restrict the search to one course"`
	LessonNumber int    `json:"lesson_number,omitempty" jsonschema:"restrict the search to one lesson"`
	Limit        int    `json:"limit,omitempty" jsonschema:"maximum number of results (default 5)"`
}

type SearchResult struct {
	Course  string  `json:"course"`
	Lesson  int     `json:"lesson"`
	Content string  `json:"content"`
	Score   float32 `json:"score"`
}

type SearchOutput struct {
	Results []SearchResult `json:"results"`
	Count   int            `json:"count"`
}

type AskInput struct {
	Question  string `json:"question" jsonschema:"the question to answer from course material"`
	SessionId string `json:"session_id,omitempty" jsonschema:"session id from a previous ask to keep conversation context"`
}

type AskOutput struct {
	Answer    string   `json:"answer"`
	Sources   []string `json:"sources"`
	SessionId string   `json:"session_id"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_course_content",
		Description: "Semantic search over ingested course material, optionally filtered by course or lesson",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask_course_question",
		Description: "Answer a question from course material with citations, keeping conversation context per session",
	}, s.handleAsk)
}

func (s *Server) handleSearch(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = config.RetrievalTopK
	}

	queryVector, err := s.retriever.EmbedQuery(ctx, input.Query)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	var filter *vectorDB.SearchFilter
	if input.CourseTitle != "" || input.LessonNumber > 0 {
		filter = &vectorDB.SearchFilter{
			CourseTitle:  input.CourseTitle,
			HasLesson:    input.LessonNumber > 0,
			LessonNumber: input.LessonNumber,
		}
	}

	hits, err := s.retriever.Retrieve(ctx, queryVector, limit, filter)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResult, len(hits)),
		Count:   len(hits),
	}
	for i, hit := range hits {
		output.Results[i] = SearchResult{
			Course:  hit.Chunk.Doc.CourseTitle,
			Lesson:  hit.Chunk.Doc.LessonNumber,
			Content: hit.Chunk.Chunk,
			Score:   hit.Score,
		}
	}
	return nil, output, nil
}

func (s *Server) handleAsk(ctx context.Context, _ *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ragService.Answer(ctx, input.Question, input.SessionId)
	if err != nil {
		return nil, AskOutput{}, err
	}

	sources := make([]string, len(answer.Citations))
	for i, c := range answer.Citations {
		if c.Lesson > 0 {
			sources[i] = fmt.Sprintf("%s - Lesson %d", c.Course, c.Lesson)
		} else {
			sources[i] = c.Course
		}
	}
	return nil, AskOutput{
		Answer:    answer.Answer,
		Sources:   sources,
		SessionId: answer.SessionId,
	}, nil
}
