package mas

import (
	"encoding/json"
	"time"
)

// EvaluationDimension is one of the five scored aspects of an evaluation.
type EvaluationDimension struct {
	Name            string   `json:"name"`
	Score           float64  `json:"score"`
	Description     string   `json:"description"`
	Issues          []string `json:"issues"`
	Recommendations []string `json:"recommendations"`
}

// PriorityIssue is one prioritized finding from an evaluation.
type PriorityIssue struct {
	Priority       string   `json:"priority"` // high, medium, low
	Category       string   `json:"category"`
	Description    string   `json:"description"`
	Impact         string   `json:"impact"`
	Solution       string   `json:"solution"`
	AffectedAgents []string `json:"affected_agents"`
}

// ReportMetadata carries counts derived from the inputs, not model output.
type ReportMetadata struct {
	AgentCount   int      `json:"agent_count"`
	MessageCount int      `json:"message_count"`
	UniqueTools  int      `json:"unique_tools"`
	AgentNames   []string `json:"agent_names,omitempty"`
	ToolNames    []string `json:"tool_names,omitempty"`
}

// EvaluationReport is the persisted result of one analysis run.
type EvaluationReport struct {
	SessionID       string                `json:"session_id"`
	OverallScore    float64               `json:"overall_score"`
	Dimensions      []EvaluationDimension `json:"dimensions"`
	PriorityIssues  []PriorityIssue       `json:"priority_issues"`
	Summary         string                `json:"summary"`
	Recommendations []string              `json:"recommendations"`
	GeneratedAt     time.Time             `json:"generated_at"`
	Metadata        *ReportMetadata       `json:"metadata,omitempty"`
}

// OptimizedAgent is one rewritten agent configuration.
type OptimizedAgent struct {
	AgentID               string `json:"agent_id"`
	AgentName             string `json:"agent_name"`
	OriginalSystemPrompt  string `json:"original_system_prompt"`
	OptimizedSystemPrompt string `json:"optimized_system_prompt"`
	ChangesSummary        string `json:"changes_summary"`
	Tools                 []Tool `json:"tools"`
}

// ToolFormatRecommendation is one recommended tool I/O format change.
type ToolFormatRecommendation struct {
	ToolName          string          `json:"tool_name"`
	CurrentFormat     string          `json:"current_format,omitempty"`
	RecommendedFormat string          `json:"recommended_format"`
	FormatExample     json.RawMessage `json:"format_example,omitempty"`
	Rationale         string          `json:"rationale"`
}

// OptimizationResult is the persisted result of one optimization run.
type OptimizationResult struct {
	SessionID                 string                     `json:"session_id"`
	OptimizedAgents           []OptimizedAgent           `json:"optimized_agents"`
	ToolFormatRecommendations []ToolFormatRecommendation `json:"tool_format_recommendations"`
	ImplementationGuide       string                     `json:"implementation_guide"`
	ExpectedImprovements      []string                   `json:"expected_improvements"`
	CompatibilityNotes        []string                   `json:"compatibility_notes"`
	GeneratedAt               time.Time                  `json:"generated_at"`
}
