// Package llmclient holds the provider-facing client interface and its
// implementations. Cross-cutting concerns (caching, logging) are applied
// via llm.Middleware, not here.
package llmclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidJSON is returned when the model produced no usable output.
var ErrInvalidJSON = errors.New("no usable output from model")

// Client is the minimal surface an LLM provider must offer.
type Client interface {
	Name() string
	GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error)
	Close() error
}

// ErrorKind classifies provider call failures for HTTP mapping and logs.
type ErrorKind string

const (
	KindTimeout   ErrorKind = "timeout"
	KindAuth      ErrorKind = "auth"
	KindRateLimit ErrorKind = "rate-limit"
	KindTransport ErrorKind = "transport"
)

// CallError wraps a failed provider call with its classification.
type CallError struct {
	Kind     ErrorKind
	Provider string
	Err      error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("%s call failed (%s): %v", e.Provider, e.Kind, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }
