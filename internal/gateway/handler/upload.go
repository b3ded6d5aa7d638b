package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// Upload accepts a multipart form with two JSON files, agents_config and
// messages_dataset, creates a session and stores both under it. Invalid
// JSON rejects the whole upload; nothing is stored for either file.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart form", Detail: err.Error()})
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	agentsData, agentsName, err := h.formFile(r, "agents_config")
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	messagesData, messagesName, err := h.formFile(r, "messages_dataset")
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	info, err := h.sessions.Create(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	names := map[string]string{
		"agents_config":    agentsName,
		"messages_dataset": messagesName,
	}
	if err := h.sessions.SaveInputFiles(r.Context(), info.SessionID, agentsData, messagesData, names); err != nil {
		h.writeError(w, err)
		return
	}

	saved, err := h.sessions.Info(r.Context(), info.SessionID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.log.Printf("handler: files uploaded for session %s", saved.SessionID)
	h.writeJSON(w, http.StatusOK, saved)
}

func (h *Handler) formFile(r *http.Request, field string) ([]byte, string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", fmt.Errorf("missing form file %q", field)
	}
	defer file.Close()
	data, err := readAll(file, h.maxUploadBytes)
	if err != nil {
		return nil, "", fmt.Errorf("reading %q: %w", field, err)
	}
	return data, header.Filename, nil
}

func readAll(f multipart.File, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("file exceeds %d bytes", limit)
	}
	return data, nil
}
