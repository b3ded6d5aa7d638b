// Package app assembles the service: config, stores, LLM stack, handlers
// and the HTTP server.
package app

import (
	"context"
	"fmt"
	"log"

	"ctxoptimizer/internal/evaluator"
	"ctxoptimizer/internal/gateway/config"
	"ctxoptimizer/internal/gateway/handler"
	"ctxoptimizer/internal/gateway/server"
	"ctxoptimizer/internal/llm"
	llmclient "ctxoptimizer/internal/llm/client"
	"ctxoptimizer/internal/optimizer"
	"ctxoptimizer/internal/session"
)

type App struct {
	server *server.Server
	client llmclient.Client
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	store, err := initArtifactStore(cfg)
	if err != nil {
		return nil, err
	}
	sessions := session.NewManager(store)

	client, err := initLLMClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	gw := llm.NewGateway(client)
	if cfg.LLM.CacheEnabled {
		gw = llm.NewCachedGateway(client, cfg.LLM.CacheSize, cfg.LLM.CacheTTL)
	}

	eval := evaluator.New(sessions, gw, log.Default())
	opt := optimizer.New(sessions, gw, log.Default())

	h := handler.New(sessions, eval, opt, handler.Options{
		MaxUploadBytes: cfg.MaxUploadBytes,
		LLMTimeout:     cfg.LLM.Timeout,
	})

	mux := server.NewMux(h, cfg.CORSOrigins)
	srv := server.New(cfg.Port, mux)

	return &App{server: srv, client: client}, nil
}

// initLLMClient builds the provider stack: Gemini wrapped with logging.
// Without an API key the app runs against the scripted fake, which keeps
// local development and the test env offline.
func initLLMClient(ctx context.Context, cfg *config.Config) (llmclient.Client, error) {
	var inner llmclient.Client
	if cfg.LLM.APIKey == "" {
		log.Printf("llm: GEMINI_API_KEY not set, using fake client")
		inner = llm.NewFakeClient()
	} else {
		gemini, err := llmclient.NewGeminiClient(ctx, llmclient.GeminiConfig{
			APIKey:          cfg.LLM.APIKey,
			Model:           cfg.LLM.Model,
			Temperature:     float32(cfg.LLM.Temperature),
			MaxOutputTokens: int32(cfg.LLM.MaxOutputTokens),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize gemini client: %w", err)
		}
		inner = gemini
	}
	return llm.Wrap(inner, llm.WithLogging(log.Default())), nil
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	if err := a.client.Close(); err != nil {
		log.Printf("llm client close: %v", err)
	}
	return a.server.Shutdown(ctx)
}
