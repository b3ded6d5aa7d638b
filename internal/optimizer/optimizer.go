// Package optimizer runs the optimization phase: given a session's agent
// configuration and, when available, its evaluation report, ask the model
// for rewritten prompts and tool format recommendations and persist them.
package optimizer

import (
	"context"
	"errors"
	"fmt"
	"log"

	"ctxoptimizer/internal/jsonutil"
	"ctxoptimizer/internal/llm"
	"ctxoptimizer/internal/mas"
	"ctxoptimizer/internal/session"
)

// Level controls how far the model may depart from the original prompts.
type Level string

const (
	LevelConservative Level = "conservative"
	LevelBalanced     Level = "balanced"
	LevelAggressive   Level = "aggressive"
)

// ParseLevel normalizes a user-supplied level, defaulting to balanced.
func ParseLevel(s string) (Level, error) {
	switch Level(s) {
	case LevelConservative, LevelBalanced, LevelAggressive:
		return Level(s), nil
	case "":
		return LevelBalanced, nil
	default:
		return "", fmt.Errorf("unknown optimization level %q", s)
	}
}

type Optimizer struct {
	sessions *session.Manager
	gw       *llm.Gateway
	log      *log.Logger
}

func New(sessions *session.Manager, gw *llm.Gateway, logger *log.Logger) *Optimizer {
	if logger == nil {
		logger = log.Default()
	}
	return &Optimizer{sessions: sessions, gw: gw, log: logger}
}

// Run optimizes one session. An evaluation report is used when present but
// is not required; without one the model optimizes from the configuration
// alone. focusAreas are client-requested emphases merged with the areas
// derived from the report. The session moves to optimizing before the call
// and to completed after the result is persisted; failures land in error
// with the cause recorded.
func (o *Optimizer) Run(ctx context.Context, sessionID string, level Level, focusAreas []string) (*mas.OptimizationResult, error) {
	release := o.sessions.Lock(sessionID)
	defer release()

	agentsRaw, _, err := o.sessions.LoadInputs(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	cfg, err := mas.ParseAgentsConfig(agentsRaw)
	if err != nil {
		return nil, &session.InvalidInputError{File: "agents_config", Reason: err.Error()}
	}

	reportJSON, report, err := o.loadReport(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := o.sessions.UpdateStatus(ctx, sessionID, session.StatusOptimizing, ""); err != nil {
		return nil, err
	}

	result, err := o.optimize(ctx, sessionID, cfg, reportJSON, report, level, focusAreas)
	if err != nil {
		cleanup := context.WithoutCancel(ctx)
		if stErr := o.sessions.UpdateStatus(cleanup, sessionID, session.StatusError, err.Error()); stErr != nil {
			o.log.Printf("optimizer: session %s: failed to record error status: %v", sessionID, stErr)
		}
		return nil, err
	}

	if err := o.sessions.UpdateStatus(ctx, sessionID, session.StatusCompleted, ""); err != nil {
		return nil, err
	}
	o.log.Printf("optimizer: session %s completed, %d agents optimized", sessionID, len(result.OptimizedAgents))
	return result, nil
}

func (o *Optimizer) loadReport(ctx context.Context, sessionID string) ([]byte, *mas.EvaluationReport, error) {
	raw, err := o.sessions.EvaluationReport(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	var report mas.EvaluationReport
	if err := jsonutil.UnmarshalFlex(raw, &report); err != nil {
		// A stored report that no longer parses is treated as absent.
		o.log.Printf("optimizer: session %s: unreadable evaluation report: %v", sessionID, err)
		return nil, nil, nil
	}
	return raw, &report, nil
}

func (o *Optimizer) optimize(ctx context.Context, sessionID string, cfg mas.AgentsConfig, reportJSON []byte, report *mas.EvaluationReport, level Level, focusAreas []string) (*mas.OptimizationResult, error) {
	prompt, err := buildPrompt(cfg, reportJSON, report, level, focusAreas)
	if err != nil {
		return nil, err
	}

	var result mas.OptimizationResult
	if err := o.gw.Complete(ctx, prompt, nil, &result); err != nil {
		return nil, fmt.Errorf("context optimization failed: %w", err)
	}
	mas.CoerceOptimizationResult(&result, sessionID, cfg)

	if err := o.sessions.SaveOptimizationResult(ctx, sessionID, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
