package server

import (
	"net/http"

	"ctxoptimizer/internal/gateway/handler"
	"ctxoptimizer/internal/gateway/middleware"
)

// NewMux wires all API routes under /api/v1. corsOrigins limits which
// origins may call the API; empty allows any.
func NewMux(h *handler.Handler, corsOrigins []string) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/health", h.Health)

	mux.HandleFunc("POST /api/v1/upload", h.Upload)
	mux.HandleFunc("POST /api/v1/analyze", h.Analyze)
	mux.HandleFunc("POST /api/v1/optimize/{id}", h.Optimize)

	mux.HandleFunc("GET /api/v1/session/{id}", h.SessionInfo)
	mux.HandleFunc("DELETE /api/v1/session/{id}", h.DeleteSession)
	mux.HandleFunc("GET /api/v1/session/{id}/watch", h.WatchSession)
	mux.HandleFunc("GET /api/v1/sessions", h.ListSessions)
	mux.HandleFunc("GET /api/v1/sessions/recent", h.RecentSessions)
	mux.HandleFunc("GET /api/v1/sessions/stats", h.SessionStats)

	mux.HandleFunc("GET /api/v1/analysis/{id}", h.AnalysisReport)
	mux.HandleFunc("GET /api/v1/optimization/{id}", h.OptimizationResult)
	mux.HandleFunc("GET /api/v1/session/{id}/evaluation", h.AnalysisReport)
	mux.HandleFunc("GET /api/v1/session/{id}/optimization", h.OptimizationResult)
	mux.HandleFunc("GET /api/v1/sessions/{id}/evaluation/download", h.DownloadAnalysis)
	mux.HandleFunc("GET /api/v1/sessions/{id}/optimization/download", h.DownloadOptimization)

	return middleware.CORS(corsOrigins)(mux)
}
