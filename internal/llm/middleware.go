package llm

import (
	"context"
	"encoding/json"
	"log"
	"time"

	llmclient "ctxoptimizer/internal/llm/client"
)

// Middleware decorates a Client to inject cross-cutting concerns.
type Middleware func(llmclient.Client) llmclient.Client

// Wrap applies middlewares in left-to-right order.
// Example: Wrap(inner, A, B) => A(B(inner))
func Wrap(inner llmclient.Client, mws ...Middleware) llmclient.Client {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

// WithLogging logs request size, duration and errors. Pass nil to use
// log.Default().
func WithLogging(logger *log.Logger) Middleware {
	if logger == nil {
		logger = log.Default()
	}
	return func(next llmclient.Client) llmclient.Client {
		return &logging{next: next, log: logger}
	}
}

type logging struct {
	next llmclient.Client
	log  *log.Logger
}

func (l *logging) Name() string { return l.next.Name() }
func (l *logging) Close() error { return l.next.Close() }
func (l *logging) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	in, _ := json.Marshal(input)
	start := time.Now()
	l.log.Printf("llm request (%s): %d bytes", l.next.Name(), len(prompt)+len(in))
	raw, err := l.next.GenerateJSON(ctx, prompt, input)
	if err != nil {
		l.log.Printf("llm error (%s) after %s: %v", l.next.Name(), time.Since(start).Round(time.Millisecond), err)
		return nil, err
	}
	l.log.Printf("llm response (%s) after %s: %d bytes", l.next.Name(), time.Since(start).Round(time.Millisecond), len(raw))
	return raw, nil
}
