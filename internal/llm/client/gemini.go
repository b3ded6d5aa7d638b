package llmclient

import (
	"context"
	"encoding/json"
	"errors"

	genai "google.golang.org/genai"
)

// GeminiConfig carries only what the wrapper needs; everything else stays at
// genai defaults.
type GeminiConfig struct {
	APIKey          string
	Model           string
	Temperature     float32
	MaxOutputTokens int32
}

// GeminiClient is a thin wrapper around the official genai client. It only
// focuses on the API call itself; retries, caching and logging live in
// middleware layers.
type GeminiClient struct {
	cli *genai.Client
	cfg GeminiConfig
}

func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	return &GeminiClient{cli: cli, cfg: cfg}, nil
}

func (g *GeminiClient) Name() string { return "Gemini:" + g.cfg.Model }
func (g *GeminiClient) Close() error { return nil }

// GenerateJSON concatenates prompt and input, asks for application/json,
// and returns the model's JSON as json.RawMessage. A nil input sends the
// prompt alone.
func (g *GeminiClient) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	full := prompt
	if input != nil {
		in, err := json.MarshalIndent(input, "", "  ")
		if err != nil {
			return nil, &CallError{Kind: KindTransport, Provider: g.Name(), Err: err}
		}
		full = prompt + "\n\n[INPUT JSON]\n" + string(in)
	}

	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}
	if g.cfg.Temperature > 0 {
		cfg.Temperature = ptr(g.cfg.Temperature)
	}
	if g.cfg.MaxOutputTokens > 0 {
		cfg.MaxOutputTokens = g.cfg.MaxOutputTokens
	}

	resp, err := g.cli.Models.GenerateContent(ctx, g.cfg.Model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: full}}}},
		cfg,
	)
	if err != nil {
		return nil, &CallError{Kind: classify(err), Provider: g.Name(), Err: err}
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, ErrInvalidJSON
	}
	return json.RawMessage(resp.Candidates[0].Content.Parts[0].Text), nil
}

func classify(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 401, 403:
			return KindAuth
		case 429:
			return KindRateLimit
		}
	}
	return KindTransport
}

func ptr[T any](v T) *T { return &v }
