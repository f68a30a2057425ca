package api

import "time"

type QueryRequest struct {
	Query     string `json:"query" validate:"required" example:"What is a goroutine?"`
	SessionId string `json:"session_id,omitempty" example:"3b2f6c1e-..."`
}

type Source struct {
	Course string `json:"course" example:"Building Towards Computer Use"`
	Lesson int    `json:"lesson" example:"1"`
}

type QueryResponse struct {
	Answer    string   `json:"answer"`
	Sources   []Source `json:"sources"`
	SessionId string   `json:"session_id"`
}

type IngestResponse struct {
	FileName   string `json:"file_name"`
	ChunkCount int    `json:"chunk_count"`
}

type CourseStats struct {
	TotalCourses int      `json:"total_courses"`
	CourseTitles []string `json:"course_titles"`
}

type HistoryTurn struct {
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	AskedAt  time.Time `json:"asked_at"`
}

type SessionHistoryResponse struct {
	SessionId string        `json:"session_id"`
	Turns     []HistoryTurn `json:"turns"`
}

type ErrorResponse struct {
	Code    int    `json:"code" example:"502"`
	Message string `json:"message" example:"Generation failed"`
	Kind    string `json:"kind,omitempty" example:"GENERATION_FAILURE"`
	Retry   bool   `json:"can_retry" example:"true"`
}
