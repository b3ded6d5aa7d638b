// Package handler implements the REST surface under /api/v1.
package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"ctxoptimizer/internal/evaluator"
	"ctxoptimizer/internal/jsonutil"
	"ctxoptimizer/internal/llm"
	llmclient "ctxoptimizer/internal/llm/client"
	"ctxoptimizer/internal/optimizer"
	"ctxoptimizer/internal/session"
)

type Handler struct {
	sessions *session.Manager
	eval     *evaluator.Evaluator
	opt      *optimizer.Optimizer
	log      *log.Logger

	maxUploadBytes int64
	llmTimeout     time.Duration
}

type Options struct {
	MaxUploadBytes int64
	LLMTimeout     time.Duration
	Logger         *log.Logger
}

func New(sessions *session.Manager, eval *evaluator.Evaluator, opt *optimizer.Optimizer, opts Options) *Handler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	if opts.LLMTimeout <= 0 {
		opts.LLMTimeout = 120 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Handler{
		sessions:       sessions,
		eval:           eval,
		opt:            opt,
		log:            opts.Logger,
		maxUploadBytes: opts.MaxUploadBytes,
		llmTimeout:     opts.LLMTimeout,
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	raw, err := jsonutil.MarshalNoEscape(v)
	if err != nil {
		h.log.Printf("handler: encode response: %v", err)
		http.Error(w, `{"error": "internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(raw)
}

func (h *Handler) writeRaw(w http.ResponseWriter, status int, raw json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(raw)
}

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// writeError maps domain errors onto HTTP status codes. Provider failures
// surface as 502 so clients can distinguish them from bad requests.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var (
		inputErr   *session.InvalidInputError
		callErr    *llmclient.CallError
		schemaErr  *llm.SchemaError
		storageErr *session.StorageError
	)
	switch {
	case errors.Is(err, session.ErrNotFound):
		h.writeJSON(w, http.StatusNotFound, errorResponse{Error: "session not found"})
	case errors.As(err, &inputErr):
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid input", Detail: inputErr.Error()})
	case errors.As(err, &callErr):
		h.log.Printf("handler: llm call failed: %v", callErr)
		h.writeJSON(w, http.StatusBadGateway, errorResponse{Error: "model call failed", Detail: string(callErr.Kind)})
	case errors.As(err, &schemaErr):
		h.log.Printf("handler: llm schema failure: %v", schemaErr)
		h.writeJSON(w, http.StatusBadGateway, errorResponse{Error: "model returned unusable output"})
	case errors.As(err, &storageErr):
		h.log.Printf("handler: storage failure: %v", storageErr)
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "storage failure"})
	default:
		h.log.Printf("handler: internal error: %v", err)
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
