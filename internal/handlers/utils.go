package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"

	"github.com/akolanti/CourseChatAPI/internal/adapter"
	"github.com/akolanti/CourseChatAPI/internal/config"
)

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but can't send a clean status code now
		logRH.Error("Error encoding response", "err", err)
	}
}

func validateContext(ctx context.Context) bool {
	logRH.With("traceId:", ctx.Value(config.TRACE_ID_KEY).(string))
	if ctx.Err() != nil {
		logRH.Warn("context error", "err", ctx.Err())
		return false
	}

	select {
	case <-ctx.Done():
		logRH.Warn("context cancelled")
		return false
	default:
		return true

	}
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, message string) {
	writeJsonResponse(w, httpCode, adapter.BadRequest(message, httpCode))
}

func writePipelineError(w http.ResponseWriter, err error) {
	code, body := adapter.ToErrorResponse(err)
	writeJsonResponse(w, code, body)
}

// ingestion of a large pdf outlives the default request deadline
func contextWithIngestTimeout(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), config.IngestTimeout)
}

func getTargetDirectory() (string, string) {
	root, err := os.Getwd()
	if err != nil {
		return "", "Storage Error"
	}

	targetDir := filepath.Join(root, "temporary_data")
	if err := os.MkdirAll(targetDir, 0750); err != nil {
		return "", "Storage Error"
	}
	return targetDir, ""
}
