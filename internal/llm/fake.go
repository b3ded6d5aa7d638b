package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// FakeClient returns scripted responses for offline use and tests. Responses
// are consumed in order; the last one repeats once the queue is drained.
type FakeClient struct {
	mu        sync.Mutex
	responses []json.RawMessage
	err       error

	Prompts []string
	Inputs  []any
}

func NewFakeClient(responses ...json.RawMessage) *FakeClient {
	return &FakeClient{responses: responses}
}

// Fail makes every subsequent call return err.
func (f *FakeClient) Fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Prompts = append(f.Prompts, prompt)
	f.Inputs = append(f.Inputs, input)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.responses) == 0 {
		return json.RawMessage(`{}`), nil
	}
	resp := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return resp, nil
}
