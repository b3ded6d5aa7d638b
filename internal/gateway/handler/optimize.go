package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"ctxoptimizer/internal/optimizer"
)

type optimizeRequest struct {
	OptimizationLevel string   `json:"optimization_level"`
	FocusAreas        []string `json:"focus_areas"`
}

// Optimize runs the optimization synchronously and returns the full result.
// If a completed optimization already exists for the session it is returned
// as-is instead of rerunning the model.
func (h *Handler) Optimize(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	var req optimizeRequest
	if body, err := io.ReadAll(r.Body); err == nil && len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}
	}
	level, err := optimizer.ParseLevel(req.OptimizationLevel)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	info, err := h.sessions.Info(r.Context(), sessionID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if info.HasOptimization {
		raw, err := h.sessions.OptimizationResult(r.Context(), sessionID)
		if err == nil {
			h.writeRaw(w, http.StatusOK, raw)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.llmTimeout)
	defer cancel()
	result, err := h.opt.Run(ctx, sessionID, level, req.FocusAreas)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}
