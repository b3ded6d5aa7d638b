// Package evaluator runs the analysis phase: load a session's inputs, ask
// the model to score the system on five dimensions, and persist the report.
package evaluator

import (
	"context"
	"fmt"
	"log"

	"ctxoptimizer/internal/llm"
	"ctxoptimizer/internal/mas"
	"ctxoptimizer/internal/session"
)

type Evaluator struct {
	sessions *session.Manager
	gw       *llm.Gateway
	log      *log.Logger
}

func New(sessions *session.Manager, gw *llm.Gateway, logger *log.Logger) *Evaluator {
	if logger == nil {
		logger = log.Default()
	}
	return &Evaluator{sessions: sessions, gw: gw, log: logger}
}

// Run evaluates one session end to end. The session moves to analyzing
// before the model call and to analyzed after the report is persisted; any
// failure after the transition lands the session in error with the cause
// recorded. The report file is only written complete, never partially.
// focusAreas, when given, steer the model's emphasis.
func (e *Evaluator) Run(ctx context.Context, sessionID string, focusAreas []string) (*mas.EvaluationReport, error) {
	release := e.sessions.Lock(sessionID)
	defer release()

	agentsRaw, messagesRaw, err := e.sessions.LoadInputs(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	cfg, err := mas.ParseAgentsConfig(agentsRaw)
	if err != nil {
		return nil, &session.InvalidInputError{File: "agents_config", Reason: err.Error()}
	}
	ds, err := mas.ParseMessagesDataset(messagesRaw)
	if err != nil {
		return nil, &session.InvalidInputError{File: "messages_dataset", Reason: err.Error()}
	}

	if err := e.sessions.UpdateStatus(ctx, sessionID, session.StatusAnalyzing, ""); err != nil {
		return nil, err
	}

	report, err := e.analyze(ctx, sessionID, cfg, ds, focusAreas)
	if err != nil {
		// The original request context may already be canceled; the error
		// transition must still land.
		cleanup := context.WithoutCancel(ctx)
		if stErr := e.sessions.UpdateStatus(cleanup, sessionID, session.StatusError, err.Error()); stErr != nil {
			e.log.Printf("evaluator: session %s: failed to record error status: %v", sessionID, stErr)
		}
		return nil, err
	}

	if err := e.sessions.UpdateStatus(ctx, sessionID, session.StatusAnalyzed, ""); err != nil {
		return nil, err
	}
	e.log.Printf("evaluator: session %s analyzed, overall score %.1f", sessionID, report.OverallScore)
	return report, nil
}

func (e *Evaluator) analyze(ctx context.Context, sessionID string, cfg mas.AgentsConfig, ds mas.MessagesDataset, focusAreas []string) (*mas.EvaluationReport, error) {
	prompt, err := buildPrompt(cfg, ds, focusAreas)
	if err != nil {
		return nil, err
	}

	var report mas.EvaluationReport
	if err := e.gw.Complete(ctx, prompt, nil, &report); err != nil {
		return nil, fmt.Errorf("context evaluation failed: %w", err)
	}
	mas.CoerceEvaluationReport(&report, sessionID, cfg, ds)

	if err := e.sessions.SaveEvaluationReport(ctx, sessionID, &report); err != nil {
		return nil, err
	}
	return &report, nil
}
