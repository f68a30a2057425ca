package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/akolanti/CourseChatAPI/internal/adapter"
	"github.com/akolanti/CourseChatAPI/internal/api"
	"github.com/akolanti/CourseChatAPI/internal/rag"
	"github.com/akolanti/CourseChatAPI/pkg/logger_i"
)

var (
	ragService rag.Service
	once       sync.Once
	logRH      *logger_i.Logger
)

func InitHandlers(service rag.Service) {
	once.Do(func() {
		ragService = service
		logRH = logger_i.NewLogger("RequestHandler")
		logRH.Info("Starting request handlers")
	})
}

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	return
}

// QueryHandler godoc
// @Summary      Ask a question about course material
// @Description  Runs the retrieval pipeline and returns the answer with source citations. Omit session_id to start a new conversation.
// @Tags         Query
// @Accept       json
// @Produce      json
// @Param        request  body      api.QueryRequest   true  "Question and optional session id"
// @Success      200      {object}  api.QueryResponse  "Answer with citations"
// @Failure      400      {object}  api.ErrorResponse  "Invalid request data"
// @Failure      502      {object}  api.ErrorResponse  "Upstream model failure"
// @Router       /api/query [post]
func QueryHandler(w http.ResponseWriter, request *http.Request) {
	if !validateContext(request.Context()) {
		logRH.Warn("Invalid Context by request ", "addr", request.RemoteAddr)
		return
	}

	var requestData api.QueryRequest
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			logRH.Error("Couldn't close the query handler reader", "err", err)
		}
	}(request.Body)

	if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil || strings.TrimSpace(requestData.Query) == "" {
		logRH.Warn("Bad Query Request", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, "query is required")
		return
	}

	answer, err := ragService.Answer(request.Context(), requestData.Query, requestData.SessionId)
	if err != nil {
		writePipelineError(w, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToQueryResponse(answer))
}

// PostIngestHandler godoc
// @Summary      Upload a course document for ingestion
// @Description  Receives a pdf, docx or txt course script via multipart/form-data, chunks and embeds it into the vector store, and returns the chunk count.
// @Tags         Ingestion
// @Accept       multipart/form-data
// @Produce      json
// @Param        document  formData  file  true  "The course document"
// @Success      200  {object}  api.IngestResponse  "Number of chunks written"
// @Failure      400  {object}  api.ErrorResponse   "Missing file or file too large"
// @Failure      422  {object}  api.ErrorResponse   "Unsupported or unreadable document"
// @Router       /api/ingest [post]
func PostIngestHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", "addr", r.RemoteAddr)
		return
	}

	targetDir, errString := getTargetDirectory()
	if errString != "" {
		logRH.Error("Couldn't get target directory", "err", errString)
		WriteErrorResponse(w, http.StatusInternalServerError, errString)
		return
	}

	const maxUploadSize = 32 << 20 //32mb
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "File too large or bad request")
		return
	}

	fileReader, fileMetadata, err := r.FormFile("document")
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "Could not retrieve file")
		return
	}
	defer fileReader.Close()

	tempName := fmt.Sprintf("%d-%s", time.Now().UnixNano(), fileMetadata.Filename)
	tempFilePath := filepath.Join(targetDir, tempName)
	destinationFileWriter, err := os.Create(tempFilePath)
	if err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, "Storage error")
		return
	}
	defer destinationFileWriter.Close()
	defer os.Remove(tempFilePath)

	if _, err := io.Copy(destinationFileWriter, fileReader); err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, "Write error")
		return
	}
	if err := destinationFileWriter.Close(); err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, "Write error")
		return
	}

	ingestCtx, cancel := contextWithIngestTimeout(r)
	defer cancel()

	count, err := ragService.Ingest(ingestCtx, tempFilePath, fileMetadata.Filename)
	if err != nil {
		writePipelineError(w, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToIngestResponse(fileMetadata.Filename, count))
}

// GetCoursesHandler godoc
// @Summary      Course catalog analytics
// @Description  Returns the number of ingested courses and their titles.
// @Tags         Courses
// @Produce      json
// @Success      200  {object}  api.CourseStats
// @Failure      503  {object}  api.ErrorResponse  "Vector store unavailable"
// @Router       /api/courses [get]
func GetCoursesHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", "addr", r.RemoteAddr)
		return
	}

	total, titles, err := ragService.CourseAnalytics(r.Context())
	if err != nil {
		writePipelineError(w, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToCourseStats(total, titles))
}
