package evaluator

import (
	"fmt"
	"strings"

	"ctxoptimizer/internal/jsonutil"
	"ctxoptimizer/internal/mas"
)

const systemPrompt = `You are an expert in Multi-Agent Systems (MAS) and context engineering. Your task is to analyze agent configurations and conversation flows to identify context logic issues and provide quantified evaluations.

You will evaluate the system on 5 key dimensions:
1. **Prompt Clarity** (1-10): How clear and unambiguous are the system prompts?
   - Are roles and responsibilities clearly defined?
   - Are instructions specific and actionable?
   - Are constraints and limitations explicitly stated?
2. **Context Flow** (1-10): How well does context information flow between agents?
   - Is critical information preserved when transferring between agents?
   - Are there clear handoff protocols between agents?
   - Are there mechanisms to prevent context loss?
3. **Tool Integration** (1-10): How well are tools integrated and their outputs structured?
   - Are tool purposes clearly defined?
   - Are tool inputs and outputs well-structured?
   - Is error handling for tool failures robust?
4. **Error Handling** (1-10): How robust is the system in handling errors and edge cases?
   - Are there explicit error recovery mechanisms?
   - Is there graceful degradation when optimal paths fail?
   - Is error information preserved and communicated effectively?
5. **Coordination Logic** (1-10): How effective is the agent coordination and task delegation?
   - Is there clear task allocation logic?
   - Are dependencies between tasks managed effectively?
   - Are there mechanisms to prevent duplicated work?

For each dimension, provide:
- A score from 1-10 with decimal precision (e.g., 7.5)
- At least 3 specific issues identified, with concrete examples
- Actionable recommendations that are specific and implementable

Also identify priority issues (high/medium/low) with category, description, impact assessment, recommended solution and the affected agent_ids.

Your analysis must be thorough, specific, and actionable. Avoid generic observations and provide concrete examples from the provided data. Focus on identifying patterns and systemic issues rather than isolated incidents.

IMPORTANT: Your response must be a valid JSON object that can be parsed directly. Do not include any text before or after the JSON. Start your response with '{' and end with '}'. Do not use markdown code blocks or any other formatting.`

const userPromptFormat = `Please analyze the following Multi-Agent System configuration and conversation data:

## Agent Configuration:
%s

## Conversation Messages:
%s

## Analysis Context:
- Total agents: %d
- Total messages: %d
- Unique tools used: %d

%sReturn your analysis in the following JSON structure:
{
  "overall_score": 7.5,
  "dimensions": [
    {
      "name": "Prompt Clarity",
      "score": 8.0,
      "description": "Assessment of system prompt quality",
      "issues": ["..."],
      "recommendations": ["..."]
    }
  ],
  "priority_issues": [
    {
      "priority": "high",
      "category": "Context Flow",
      "description": "...",
      "impact": "...",
      "solution": "...",
      "affected_agents": ["..."]
    }
  ],
  "summary": "Executive summary of findings",
  "recommendations": ["..."]
}

The "dimensions" array must contain exactly these five entries: "Prompt Clarity", "Context Flow", "Tool Integration", "Error Handling", "Coordination Logic".

Focus on identifying issues that, if fixed, would most significantly improve the system's performance and reliability.`

// buildPrompt renders the full evaluation prompt from the parsed inputs.
// Documents are embedded re-serialized, not as-uploaded, so the model sees
// the normalized agent shape. focusAreas, when present, become an emphasis
// section; all five dimensions are still scored.
func buildPrompt(cfg mas.AgentsConfig, ds mas.MessagesDataset, focusAreas []string) (string, error) {
	cfgJSON, err := jsonutil.MarshalIndentNoEscape(cfg)
	if err != nil {
		return "", fmt.Errorf("encode agents config: %w", err)
	}
	dsJSON, err := jsonutil.MarshalIndentNoEscape(ds)
	if err != nil {
		return "", fmt.Errorf("encode messages dataset: %w", err)
	}
	focus := ""
	if areas := cleanFocusAreas(focusAreas); len(areas) > 0 {
		focus = "## Evaluation Focus Areas:\nPay particular attention to:\n- " +
			strings.Join(areas, "\n- ") + "\n\n"
	}
	user := fmt.Sprintf(userPromptFormat,
		string(cfgJSON), string(dsJSON),
		len(cfg.Agents), len(ds.Messages), len(ds.UniqueTools()),
		focus)
	return systemPrompt + "\n\n" + user, nil
}

func cleanFocusAreas(areas []string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, a := range areas {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}
