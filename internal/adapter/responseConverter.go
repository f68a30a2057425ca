package adapter

import (
	"net/http"

	"github.com/akolanti/CourseChatAPI/internal/api"
	"github.com/akolanti/CourseChatAPI/internal/domain/ragError"
	"github.com/akolanti/CourseChatAPI/internal/domain/sessionModel"
	"github.com/akolanti/CourseChatAPI/internal/rag"
)

func ToQueryResponse(answer rag.Answer) api.QueryResponse {
	sources := make([]api.Source, 0, len(answer.Citations))
	for _, c := range answer.Citations {
		sources = append(sources, api.Source{Course: c.Course, Lesson: c.Lesson})
	}
	return api.QueryResponse{
		Answer:    answer.Answer,
		Sources:   sources,
		SessionId: answer.SessionId,
	}
}

func ToIngestResponse(fileName string, chunkCount int) api.IngestResponse {
	return api.IngestResponse{FileName: fileName, ChunkCount: chunkCount}
}

func ToCourseStats(total int, titles []string) api.CourseStats {
	if titles == nil {
		titles = []string{}
	}
	return api.CourseStats{TotalCourses: total, CourseTitles: titles}
}

func ToSessionHistoryResponse(sessionId string, turns []sessionModel.Turn) api.SessionHistoryResponse {
	out := make([]api.HistoryTurn, 0, len(turns))
	for _, turn := range turns {
		out = append(out, api.HistoryTurn{
			Question: turn.Question,
			Answer:   turn.Answer,
			AskedAt:  turn.AskedAt,
		})
	}
	return api.SessionHistoryResponse{SessionId: sessionId, Turns: out}
}

// ToErrorResponse maps pipeline failures onto transport status codes. The
// caller sees which stage died and whether an identical retry is safe.
func ToErrorResponse(err error) (int, api.ErrorResponse) {
	kind := ragError.KindOf(err)
	code := http.StatusInternalServerError
	message := "Internal Server Error"

	switch kind {
	case ragError.Embedding, ragError.Generation:
		code = http.StatusBadGateway
		message = "Upstream model call failed"
	case ragError.Retrieval:
		code = http.StatusServiceUnavailable
		message = "Retrieval unavailable"
	case ragError.Ingestion:
		code = http.StatusUnprocessableEntity
		message = "Could not ingest document"
	}

	return code, api.ErrorResponse{
		Code:    code,
		Message: message,
		Kind:    string(kind),
		Retry:   ragError.IsRetryable(err),
	}
}

func BadRequest(message string, code int) api.ErrorResponse {
	return api.ErrorResponse{
		Code:    code,
		Message: message,
		Retry:   false,
	}
}
