package handlers

import (
	"net/http"

	"github.com/akolanti/CourseChatAPI/internal/adapter"
	"github.com/akolanti/CourseChatAPI/internal/adapter/utils"
)

// GetSessionHistoryHandler godoc
// @Summary      Conversation history for a session
// @Description  Returns the recorded turns of a session in chronological order. Unknown sessions return an empty turn list.
// @Tags         Sessions
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  api.SessionHistoryResponse
// @Failure      400  {object}  api.ErrorResponse  "Missing session id"
// @Router       /api/sessions/{id}/history [get]
func GetSessionHistoryHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", "addr", r.RemoteAddr)
		return
	}

	sessionId := utils.GetChiURLParam(r, "id")
	if sessionId == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "session id is required")
		return
	}

	turns, err := ragService.SessionHistory(r.Context(), sessionId)
	if err != nil {
		writePipelineError(w, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToSessionHistoryResponse(sessionId, turns))
}

// DeleteSessionHandler godoc
// @Summary      Clear a conversation session
// @Description  Drops the session and its history. The id can be reused afterwards; it will start a fresh conversation.
// @Tags         Sessions
// @Produce      json
// @Param        id   path  string  true  "Session ID"
// @Success      204  "Session cleared"
// @Failure      400  {object}  api.ErrorResponse  "Missing session id"
// @Router       /api/sessions/{id} [delete]
func DeleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", "addr", r.RemoteAddr)
		return
	}

	sessionId := utils.GetChiURLParam(r, "id")
	if sessionId == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "session id is required")
		return
	}

	if err := ragService.ClearSession(r.Context(), sessionId); err != nil {
		writePipelineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
