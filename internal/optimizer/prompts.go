package optimizer

import (
	"fmt"
	"strings"

	"ctxoptimizer/internal/jsonutil"
	"ctxoptimizer/internal/mas"
)

const systemPrompt = `You are an expert Multi-Agent Systems engineer specializing in context optimization. Your task is to generate optimized agent configurations and tool format recommendations based on evaluation results.

Your optimization should focus on:
1. **System Prompt Enhancement**: improve clarity with precise language, add missing instructions for edge cases and error handling, fix logical gaps in workflow, ensure roles and responsibilities are explicitly defined.
2. **Context Flow Optimization**: create standardized handoff protocols between agents, implement explicit context preservation mechanisms, add verification steps to confirm successful transfers.
3. **Tool Format Standardization**: define consistent input and output schemas for each tool, implement structured error reporting for tool failures, add examples of proper tool usage patterns.
4. **Error Handling Improvement**: implement explicit error detection mechanisms, add recovery procedures for common failure scenarios, define escalation paths for unresolvable issues.
5. **Coordination Enhancement**: clarify task allocation and delegation protocols, improve dependency management between agents, reduce coordination overhead while maintaining reliability.

For each optimized agent, provide the original and optimized system prompts, a clear summary of changes, and the agent's tools. Your optimizations should be practical, specific, and immediately implementable. Ensure backward compatibility where possible, and clearly mark any breaking changes.

IMPORTANT: Your response must be a valid JSON object that can be parsed directly. Do not include any text before or after the JSON. Start your response with '{' and end with '}'. Do not use markdown code blocks or any other formatting.`

const userPromptFormat = `Based on the evaluation results, please generate optimized configurations for the Multi-Agent System:

## Current Agent Configuration:
%s

## Evaluation Results:
%s

## Optimization Level:
%s

%s## Requirements:

- Address all high-priority issues identified in the evaluation
- Aim to improve the overall system score to 8.5+
- Maintain backward compatibility where possible
- Provide clear rationales for all modifications

Please provide optimized configurations in the following JSON structure:
{
  "optimized_agents": [
    {
      "agent_id": "supervisor",
      "agent_name": "Supervisor Agent",
      "original_system_prompt": "...",
      "optimized_system_prompt": "...",
      "changes_summary": "...",
      "tools": [{"name": "think", "description": "..."}]
    }
  ],
  "tool_format_recommendations": [
    {
      "tool_name": "think",
      "current_format": "...",
      "recommended_format": "...",
      "format_example": {},
      "rationale": "..."
    }
  ],
  "implementation_guide": "Step-by-step guide for implementing these changes...",
  "expected_improvements": ["..."],
  "compatibility_notes": ["..."]
}

Every agent from the current configuration must appear in "optimized_agents" with its original agent_id.

Focus on creating a coherent, well-integrated set of optimizations that work together to address the system's most critical issues.`

const noReportPlaceholder = `{"note": "no prior evaluation report; optimize from the configuration alone"}`

// levelInstructions maps an optimization level to extra prompt guidance.
var levelInstructions = map[Level]string{
	LevelConservative: "Apply only low-risk wording and structure improvements. Do not change agent responsibilities, tool sets, or workflow order.",
	LevelBalanced:     "Apply meaningful improvements to prompts, handoffs and tool formats while preserving each agent's core responsibilities.",
	LevelAggressive:   "Restructure prompts, handoff protocols and tool formats as deeply as needed to fix the identified issues, including breaking changes when clearly justified.",
}

// buildPrompt renders the optimization prompt. reportJSON may be nil when no
// evaluation has run yet; the model is then told to optimize from the
// configuration alone. requested focus areas come before the report-derived
// ones.
func buildPrompt(cfg mas.AgentsConfig, reportJSON []byte, report *mas.EvaluationReport, level Level, requested []string) (string, error) {
	cfgJSON, err := jsonutil.MarshalIndentNoEscape(cfg)
	if err != nil {
		return "", fmt.Errorf("encode agents config: %w", err)
	}
	evalSection := noReportPlaceholder
	if len(reportJSON) > 0 {
		evalSection = string(reportJSON)
	}
	focus := ""
	if areas := focusAreas(report, requested); len(areas) > 0 {
		focus = "## Optimization Focus Areas:\n- " + strings.Join(areas, "\n- ") + "\n\n"
	}
	user := fmt.Sprintf(userPromptFormat,
		string(cfgJSON), evalSection, levelInstructions[level], focus)
	return systemPrompt + "\n\n" + user, nil
}

// focusAreas merges client-requested areas with dimensions scoring below 7
// and the categories of high priority issues, deduplicated in that order.
func focusAreas(report *mas.EvaluationReport, requested []string) []string {
	var areas []string
	seen := make(map[string]struct{})
	add := func(a string) {
		a = strings.TrimSpace(a)
		if a == "" {
			return
		}
		if _, ok := seen[a]; ok {
			return
		}
		seen[a] = struct{}{}
		areas = append(areas, a)
	}
	for _, a := range requested {
		add(a)
	}
	if report != nil {
		for _, d := range report.Dimensions {
			if d.Score < 7.0 {
				add(d.Name)
			}
		}
		for _, issue := range report.PriorityIssues {
			if issue.Priority == "high" {
				add(issue.Category)
			}
		}
	}
	return areas
}
