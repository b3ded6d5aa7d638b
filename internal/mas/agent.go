package mas

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Tool is one tool descriptor attached to an agent.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// Agent is one agent record from the uploaded configuration.
type Agent struct {
	AgentID      string `json:"agent_id"`
	AgentName    string `json:"agent_name"`
	SystemPrompt string `json:"system_prompt"`
	Tools        []Tool `json:"tools"`
}

// AgentsConfig is the normalized agents_config document.
type AgentsConfig struct {
	Agents []Agent `json:"agents"`
}

// AgentNames returns the display names in input order.
func (c AgentsConfig) AgentNames() []string {
	names := make([]string, 0, len(c.Agents))
	for _, a := range c.Agents {
		names = append(names, a.AgentName)
	}
	return names
}

// ParseAgentsConfig parses the user-supplied agents_config document. Uploads
// arrive in several shapes in practice: {"agents": [...]}, a bare array, a
// single agent object, or a map of id to agent. All are normalized to
// AgentsConfig, with id/name/prompt field aliases resolved.
func ParseAgentsConfig(raw []byte) (AgentsConfig, error) {
	var root any
	if err := json.Unmarshal(raw, &root); err != nil {
		return AgentsConfig{}, fmt.Errorf("agents_config is not valid JSON: %w", err)
	}

	var items []any
	switch v := root.(type) {
	case []any:
		items = v
	case map[string]any:
		if list, ok := v["agents"].([]any); ok {
			items = list
		} else if looksLikeAgent(v) {
			items = []any{v}
		} else {
			// Map of id -> agent object.
			for _, vv := range v {
				if m, ok := vv.(map[string]any); ok && looksLikeAgent(m) {
					items = append(items, m)
				}
			}
			if len(items) == 0 {
				return AgentsConfig{}, fmt.Errorf("could not infer agents_config format")
			}
		}
	default:
		return AgentsConfig{}, fmt.Errorf("agents_config has unexpected top-level type")
	}

	cfg := AgentsConfig{Agents: make([]Agent, 0, len(items))}
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return AgentsConfig{}, fmt.Errorf("agent %d is not an object", i)
		}
		agent, err := normalizeAgent(m, i)
		if err != nil {
			return AgentsConfig{}, err
		}
		cfg.Agents = append(cfg.Agents, agent)
	}
	return cfg, nil
}

func looksLikeAgent(m map[string]any) bool {
	for _, key := range []string{"agent_id", "id", "agent_name", "name", "system_prompt"} {
		if _, ok := m[key]; ok {
			return true
		}
	}
	return false
}

func normalizeAgent(m map[string]any, index int) (Agent, error) {
	var a Agent
	a.AgentID = firstString(m, "agent_id", "id")
	if strings.TrimSpace(a.AgentID) == "" {
		return Agent{}, fmt.Errorf("agent %d missing required field: agent_id", index)
	}
	a.AgentName = firstString(m, "agent_name", "name")
	if strings.TrimSpace(a.AgentName) == "" {
		a.AgentName = a.AgentID
	}
	a.SystemPrompt = firstString(m, "system_prompt", "prompt", "system")
	if strings.TrimSpace(a.SystemPrompt) == "" {
		return Agent{}, fmt.Errorf("agent %d missing required field: system_prompt", index)
	}
	if tools, ok := m["tools"].([]any); ok {
		for _, tv := range tools {
			tm, ok := tv.(map[string]any)
			if !ok {
				continue
			}
			tool := Tool{
				Name:        firstString(tm, "name", "tool_name"),
				Description: firstString(tm, "description"),
			}
			if params, ok := tm["parameters"]; ok {
				if b, err := json.Marshal(params); err == nil {
					tool.Parameters = b
				}
			}
			if tool.Name != "" {
				a.Tools = append(a.Tools, tool)
			}
		}
	}
	return a, nil
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
