package handler

import (
	"fmt"
	"net/http"
)

func (h *Handler) AnalysisReport(w http.ResponseWriter, r *http.Request) {
	raw, err := h.sessions.EvaluationReport(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeRaw(w, http.StatusOK, raw)
}

func (h *Handler) OptimizationResult(w http.ResponseWriter, r *http.Request) {
	raw, err := h.sessions.OptimizationResult(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeRaw(w, http.StatusOK, raw)
}

func (h *Handler) DownloadAnalysis(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	raw, err := h.sessions.EvaluationReport(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=evaluation_report_%s.json", id))
	h.writeRaw(w, http.StatusOK, raw)
}

func (h *Handler) DownloadOptimization(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	raw, err := h.sessions.OptimizationResult(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=optimization_result_%s.json", id))
	h.writeRaw(w, http.StatusOK, raw)
}
