package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"ctxoptimizer/internal/session"
)

type analyzeRequest struct {
	SessionID  string   `json:"session_id"`
	FocusAreas []string `json:"focus_areas"`
}

type analyzeResponse struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}

// Analyze starts the evaluation of a session in the background and returns
// immediately. Progress is observed via session polling or the watch socket.
// A session already being analyzed is reported as in progress rather than
// started twice.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "session_id is required"})
		return
	}

	info, err := h.sessions.Info(r.Context(), req.SessionID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if !info.HasFiles {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "session files not uploaded"})
		return
	}
	if info.Status == session.StatusAnalyzing {
		h.writeJSON(w, http.StatusOK, analyzeResponse{
			SessionID: req.SessionID,
			Status:    string(session.StatusAnalyzing),
			Message:   "Analysis already in progress",
		})
		return
	}
	if info.Status == session.StatusAnalyzed && info.HasAnalysis {
		h.writeJSON(w, http.StatusOK, analyzeResponse{
			SessionID: req.SessionID,
			Status:    string(session.StatusAnalyzed),
			Message:   "Analysis already completed",
		})
		return
	}

	// The evaluation outlives this request; it runs against its own
	// timeout, not the client's.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.llmTimeout)
		defer cancel()
		if _, err := h.eval.Run(ctx, req.SessionID, req.FocusAreas); err != nil {
			h.log.Printf("handler: analysis of session %s failed: %v", req.SessionID, err)
		}
	}()

	h.writeJSON(w, http.StatusAccepted, analyzeResponse{
		SessionID: req.SessionID,
		Status:    string(session.StatusAnalyzing),
		Message:   "Analysis started",
	})
}
