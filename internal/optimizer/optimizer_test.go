package optimizer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ctxoptimizer/internal/artifact"
	"ctxoptimizer/internal/llm"
	"ctxoptimizer/internal/session"
)

var testAgents = []byte(`{
  "agents": [
    {"agent_id": "supervisor", "agent_name": "Supervisor", "system_prompt": "Coordinate.",
     "tools": [{"name": "think", "description": "internal reasoning"}]},
    {"agent_id": "worker", "system_prompt": "Execute."}
  ]
}`)

var testMessages = []byte(`{"messages": [{"type": "human", "content": "go"}]}`)

var modelResult = json.RawMessage(`{
  "optimized_agents": [
    {"agent_id": "supervisor", "optimized_system_prompt": "Coordinate with explicit handoff protocol.",
     "changes_summary": "Added handoff protocol."}
  ],
  "tool_format_recommendations": [
    {"tool_name": "think", "current_format": "free text", "recommended_format": "structured sections",
     "format_example": {"analysis": "...", "recommendation": "..."}, "rationale": "usable by other agents"}
  ],
  "implementation_guide": "Roll out prompts one agent at a time.",
  "expected_improvements": ["fewer handoff losses"],
  "compatibility_notes": ["no breaking changes"]
}`)

func newFixture(t *testing.T, responses ...json.RawMessage) (*Optimizer, *session.Manager, *llm.FakeClient, string) {
	t.Helper()
	mgr := session.NewManager(artifact.NewMemoryStore())
	fake := llm.NewFakeClient(responses...)
	opt := New(mgr, llm.NewGateway(fake), log.New(io.Discard, "", 0))

	info, err := mgr.Create(context.Background())
	require.NoError(t, err)
	require.NoError(t, mgr.SaveInputFiles(context.Background(), info.SessionID, testAgents, testMessages, nil))
	return opt, mgr, fake, info.SessionID
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, LevelBalanced, lvl)

	lvl, err = ParseLevel("aggressive")
	require.NoError(t, err)
	assert.Equal(t, LevelAggressive, lvl)

	_, err = ParseLevel("extreme")
	assert.Error(t, err)
}

func TestRunCompletesAndCoversAllAgents(t *testing.T) {
	opt, mgr, _, id := newFixture(t, modelResult)

	result, err := opt.Run(context.Background(), id, LevelBalanced, nil)
	require.NoError(t, err)

	assert.Equal(t, id, result.SessionID)
	require.Len(t, result.OptimizedAgents, 2, "skipped agents are carried through unchanged")

	byID := map[string]int{}
	for i, a := range result.OptimizedAgents {
		byID[a.AgentID] = i
	}
	sup := result.OptimizedAgents[byID["supervisor"]]
	assert.Equal(t, "Coordinate.", sup.OriginalSystemPrompt, "original prompt backfilled from config")
	assert.Equal(t, "Coordinate with explicit handoff protocol.", sup.OptimizedSystemPrompt)
	assert.Equal(t, "Supervisor", sup.AgentName)

	wrk := result.OptimizedAgents[byID["worker"]]
	assert.Equal(t, "Execute.", wrk.OptimizedSystemPrompt, "untouched agent keeps its prompt")
	assert.Equal(t, "No changes proposed", wrk.ChangesSummary)

	info, err := mgr.Info(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, session.StatusCompleted, info.Status)
	assert.True(t, info.HasOptimization)
}

func TestRunWithoutReportUsesPlaceholder(t *testing.T) {
	opt, _, fake, id := newFixture(t, modelResult)

	_, err := opt.Run(context.Background(), id, LevelConservative, nil)
	require.NoError(t, err)

	require.Len(t, fake.Prompts, 1)
	assert.Contains(t, fake.Prompts[0], "no prior evaluation report")
	assert.Contains(t, fake.Prompts[0], "low-risk wording")
	assert.NotContains(t, fake.Prompts[0], "Optimization Focus Areas")
}

func TestRunWithReportIncludesFocusAreas(t *testing.T) {
	opt, mgr, fake, id := newFixture(t, modelResult)

	report := map[string]any{
		"session_id":    id,
		"overall_score": 5.5,
		"dimensions": []map[string]any{
			{"name": "Prompt Clarity", "score": 4.0},
			{"name": "Context Flow", "score": 8.0},
		},
		"priority_issues": []map[string]any{
			{"priority": "high", "category": "Tool Integration", "description": "d", "impact": "i", "solution": "s"},
		},
		"summary": "s",
	}
	require.NoError(t, mgr.SaveEvaluationReport(context.Background(), id, report))

	_, err := opt.Run(context.Background(), id, LevelBalanced, nil)
	require.NoError(t, err)

	require.Len(t, fake.Prompts, 1)
	assert.Contains(t, fake.Prompts[0], "Optimization Focus Areas")
	assert.Contains(t, fake.Prompts[0], "Prompt Clarity")
	assert.Contains(t, fake.Prompts[0], "Tool Integration")
	assert.NotContains(t, fake.Prompts[0], "no prior evaluation report")
}

func TestRunRequestedFocusAreasAppearInPrompt(t *testing.T) {
	opt, _, fake, id := newFixture(t, modelResult)

	_, err := opt.Run(context.Background(), id, LevelBalanced, []string{"Error Handling", "  "})
	require.NoError(t, err)

	require.Len(t, fake.Prompts, 1)
	assert.Contains(t, fake.Prompts[0], "Optimization Focus Areas")
	assert.Contains(t, fake.Prompts[0], "- Error Handling")
}

func TestRunModelFailureLandsInError(t *testing.T) {
	opt, mgr, fake, id := newFixture(t)
	fake.Fail(errors.New("provider down"))

	_, err := opt.Run(context.Background(), id, LevelBalanced, nil)
	require.Error(t, err)

	info, infoErr := mgr.Info(context.Background(), id)
	require.NoError(t, infoErr)
	assert.Equal(t, session.StatusError, info.Status)
	assert.False(t, info.HasOptimization)
}

func TestRunPersistsResult(t *testing.T) {
	opt, mgr, _, id := newFixture(t, modelResult)

	_, err := opt.Run(context.Background(), id, LevelBalanced, nil)
	require.NoError(t, err)

	raw, err := mgr.OptimizationResult(context.Background(), id)
	require.NoError(t, err)
	var stored map[string]any
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.Equal(t, id, stored["session_id"])
	assert.Equal(t, "Roll out prompts one agent at a time.", stored["implementation_guide"])
}

func TestRunWithoutUploadFails(t *testing.T) {
	mgr := session.NewManager(artifact.NewMemoryStore())
	opt := New(mgr, llm.NewGateway(llm.NewFakeClient(modelResult)), log.New(io.Discard, "", 0))

	info, err := mgr.Create(context.Background())
	require.NoError(t, err)

	_, err = opt.Run(context.Background(), info.SessionID, LevelBalanced, nil)
	var inputErr *session.InvalidInputError
	require.ErrorAs(t, err, &inputErr)
}
