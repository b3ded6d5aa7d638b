package mas

import (
	"strings"
	"time"
)

// CoerceEvaluationReport fills defaults the model tends to omit, clamps
// scores into [0,10] and stamps the session-derived fields. The model output
// is otherwise taken as-is; scoring is not recomputed here.
func CoerceEvaluationReport(r *EvaluationReport, sessionID string, cfg AgentsConfig, ds MessagesDataset) {
	r.SessionID = sessionID
	if r.GeneratedAt.IsZero() {
		r.GeneratedAt = time.Now().UTC()
	}
	r.OverallScore = clampScore(r.OverallScore)
	for i := range r.Dimensions {
		r.Dimensions[i].Score = clampScore(r.Dimensions[i].Score)
		if r.Dimensions[i].Issues == nil {
			r.Dimensions[i].Issues = []string{}
		}
		if r.Dimensions[i].Recommendations == nil {
			r.Dimensions[i].Recommendations = []string{}
		}
	}
	if r.Dimensions == nil {
		r.Dimensions = []EvaluationDimension{}
	}
	if r.PriorityIssues == nil {
		r.PriorityIssues = []PriorityIssue{}
	}
	for i := range r.PriorityIssues {
		r.PriorityIssues[i].Priority = normalizePriority(r.PriorityIssues[i].Priority)
		if r.PriorityIssues[i].AffectedAgents == nil {
			r.PriorityIssues[i].AffectedAgents = []string{}
		}
	}
	if strings.TrimSpace(r.Summary) == "" {
		r.Summary = "Analysis completed"
	}
	if r.Recommendations == nil {
		r.Recommendations = []string{}
	}
	tools := ds.UniqueTools()
	r.Metadata = &ReportMetadata{
		AgentCount:   len(cfg.Agents),
		MessageCount: len(ds.Messages),
		UniqueTools:  len(tools),
		AgentNames:   cfg.AgentNames(),
		ToolNames:    tools,
	}
}

// CoerceOptimizationResult fills defaults and stamps session-derived fields.
// Optimized agents missing an original prompt get it backfilled from the
// input config, and agents the model skipped entirely are carried through
// unchanged so the result always covers every input agent.
func CoerceOptimizationResult(r *OptimizationResult, sessionID string, cfg AgentsConfig) {
	r.SessionID = sessionID
	if r.GeneratedAt.IsZero() {
		r.GeneratedAt = time.Now().UTC()
	}
	byID := make(map[string]Agent, len(cfg.Agents))
	for _, a := range cfg.Agents {
		byID[a.AgentID] = a
	}
	covered := make(map[string]struct{}, len(r.OptimizedAgents))
	for i := range r.OptimizedAgents {
		oa := &r.OptimizedAgents[i]
		covered[oa.AgentID] = struct{}{}
		src, ok := byID[oa.AgentID]
		if !ok {
			continue
		}
		if strings.TrimSpace(oa.AgentName) == "" {
			oa.AgentName = src.AgentName
		}
		if strings.TrimSpace(oa.OriginalSystemPrompt) == "" {
			oa.OriginalSystemPrompt = src.SystemPrompt
		}
		if oa.Tools == nil {
			oa.Tools = src.Tools
		}
	}
	for _, a := range cfg.Agents {
		if _, ok := covered[a.AgentID]; ok {
			continue
		}
		r.OptimizedAgents = append(r.OptimizedAgents, OptimizedAgent{
			AgentID:               a.AgentID,
			AgentName:             a.AgentName,
			OriginalSystemPrompt:  a.SystemPrompt,
			OptimizedSystemPrompt: a.SystemPrompt,
			ChangesSummary:        "No changes proposed",
			Tools:                 a.Tools,
		})
	}
	if r.OptimizedAgents == nil {
		r.OptimizedAgents = []OptimizedAgent{}
	}
	if r.ToolFormatRecommendations == nil {
		r.ToolFormatRecommendations = []ToolFormatRecommendation{}
	}
	if strings.TrimSpace(r.ImplementationGuide) == "" {
		r.ImplementationGuide = "Apply the optimized configurations to your agent system."
	}
	if r.ExpectedImprovements == nil {
		r.ExpectedImprovements = []string{}
	}
	if r.CompatibilityNotes == nil {
		r.CompatibilityNotes = []string{}
	}
}

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 10 {
		return 10
	}
	return s
}

func normalizePriority(p string) string {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case "high":
		return "high"
	case "low":
		return "low"
	default:
		return "medium"
	}
}
