package mas

import "testing"

func TestParseAgentsConfigStandardFormat(t *testing.T) {
	raw := []byte(`{"agents":[{"agent_id":"supervisor","agent_name":"Supervisor","system_prompt":"You supervise.","tools":[{"name":"think","description":"reason"}]}]}`)
	cfg, err := ParseAgentsConfig(raw)
	if err != nil {
		t.Fatalf("ParseAgentsConfig: %v", err)
	}
	if len(cfg.Agents) != 1 {
		t.Fatalf("expected 1 agent, got %d", len(cfg.Agents))
	}
	a := cfg.Agents[0]
	if a.AgentID != "supervisor" || a.AgentName != "Supervisor" {
		t.Fatalf("unexpected agent: %+v", a)
	}
	if len(a.Tools) != 1 || a.Tools[0].Name != "think" {
		t.Fatalf("unexpected tools: %+v", a.Tools)
	}
}

func TestParseAgentsConfigBareArray(t *testing.T) {
	raw := []byte(`[{"id":"w1","name":"Worker","prompt":"You work."}]`)
	cfg, err := ParseAgentsConfig(raw)
	if err != nil {
		t.Fatalf("ParseAgentsConfig: %v", err)
	}
	if len(cfg.Agents) != 1 {
		t.Fatalf("expected 1 agent, got %d", len(cfg.Agents))
	}
	a := cfg.Agents[0]
	if a.AgentID != "w1" || a.AgentName != "Worker" || a.SystemPrompt != "You work." {
		t.Fatalf("alias fields not normalized: %+v", a)
	}
}

func TestParseAgentsConfigSingleAgent(t *testing.T) {
	raw := []byte(`{"agent_id":"solo","system_prompt":"You are alone."}`)
	cfg, err := ParseAgentsConfig(raw)
	if err != nil {
		t.Fatalf("ParseAgentsConfig: %v", err)
	}
	if len(cfg.Agents) != 1 || cfg.Agents[0].AgentName != "solo" {
		t.Fatalf("expected id used as name fallback: %+v", cfg.Agents)
	}
}

func TestParseAgentsConfigMissingFields(t *testing.T) {
	if _, err := ParseAgentsConfig([]byte(`{"agents":[{"agent_name":"x","system_prompt":"p"}]}`)); err == nil {
		t.Fatal("expected error for missing agent_id")
	}
	if _, err := ParseAgentsConfig([]byte(`{"agents":[{"agent_id":"x"}]}`)); err == nil {
		t.Fatal("expected error for missing system_prompt")
	}
	if _, err := ParseAgentsConfig([]byte(`not json`)); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestParseMessagesDatasetShapes(t *testing.T) {
	wrapped := []byte(`{"messages":[{"type":"human","content":"hi","id":"m1"}]}`)
	ds, err := ParseMessagesDataset(wrapped)
	if err != nil {
		t.Fatalf("wrapped: %v", err)
	}
	if len(ds.Messages) != 1 || ds.Messages[0].Type != MessageHuman {
		t.Fatalf("unexpected dataset: %+v", ds)
	}

	bare := []byte(`[{"type":"ai","id":"m2","tool_calls":[{"name":"search","id":"c1"}]}]`)
	ds, err = ParseMessagesDataset(bare)
	if err != nil {
		t.Fatalf("bare: %v", err)
	}
	if len(ds.Messages[0].ToolCalls) != 1 {
		t.Fatalf("tool calls lost: %+v", ds.Messages[0])
	}

	if _, err := ParseMessagesDataset([]byte(`{"nope":true}`)); err == nil {
		t.Fatal("expected error for unrecognized shape")
	}
}

func TestUniqueTools(t *testing.T) {
	ds := MessagesDataset{Messages: []Message{
		{Type: MessageAI, ToolCalls: []ToolCall{{Name: "search"}, {Name: "think"}}},
		{Type: MessageTool, Name: "search"},
		{Type: MessageTool, Name: "browse"},
	}}
	tools := ds.UniqueTools()
	if len(tools) != 3 {
		t.Fatalf("expected 3 unique tools, got %v", tools)
	}
	if tools[0] != "browse" || tools[1] != "search" || tools[2] != "think" {
		t.Fatalf("not sorted: %v", tools)
	}
}
