package handler

import (
	"net/http"
	"strconv"
)

func (h *Handler) SessionInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.sessions.Info(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, info)
}

type deleteResponse struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.sessions.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, deleteResponse{Message: "Session deleted successfully", SessionID: id})
}

func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 10)
	offset := queryInt(r, "offset", 0)
	infos, err := h.sessions.List(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, infos)
}

func (h *Handler) RecentSessions(w http.ResponseWriter, r *http.Request) {
	infos, err := h.sessions.List(r.Context(), queryInt(r, "limit", 5), 0)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, infos)
}

func (h *Handler) SessionStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.sessions.Stats(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
