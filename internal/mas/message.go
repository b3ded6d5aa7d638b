package mas

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Message types observed in conversation traces.
const (
	MessageHuman = "human"
	MessageAI    = "ai"
	MessageTool  = "tool"
)

// ToolCall is one tool invocation recorded on an ai message.
type ToolCall struct {
	Name string          `json:"name"`
	Args json.RawMessage `json:"args,omitempty"`
	ID   string          `json:"id,omitempty"`
}

// Message is one record of a conversation trace.
type Message struct {
	Type       string          `json:"type"`
	Name       string          `json:"name,omitempty"`
	Content    string          `json:"content,omitempty"`
	ID         string          `json:"id,omitempty"`
	ToolCalls  []ToolCall      `json:"tool_calls,omitempty"`
	ToolCallID string          `json:"tool_call_id,omitempty"`
	Result     json.RawMessage `json:"result,omitempty"`
}

// MessagesDataset is the normalized messages_dataset document.
type MessagesDataset struct {
	Messages []Message `json:"messages"`
}

// UniqueTools returns the sorted set of tool names referenced by tool calls
// and tool messages in the trace.
func (d MessagesDataset) UniqueTools() []string {
	seen := make(map[string]struct{})
	for _, m := range d.Messages {
		for _, tc := range m.ToolCalls {
			if tc.Name != "" {
				seen[tc.Name] = struct{}{}
			}
		}
		if m.Type == MessageTool && m.Name != "" {
			seen[m.Name] = struct{}{}
		}
	}
	tools := make([]string, 0, len(seen))
	for name := range seen {
		tools = append(tools, name)
	}
	sort.Strings(tools)
	return tools
}

// ParseMessagesDataset parses the user-supplied messages_dataset document.
// Accepts {"messages": [...]} or a bare array of message objects. Message
// contents beyond the expected top-level fields are passed through untouched
// when the documents are embedded into prompts; this parse only needs the
// loose shape.
func ParseMessagesDataset(raw []byte) (MessagesDataset, error) {
	var wrapped MessagesDataset
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Messages != nil {
		return wrapped, validateMessages(wrapped)
	}
	var bare []Message
	if err := json.Unmarshal(raw, &bare); err == nil {
		ds := MessagesDataset{Messages: bare}
		return ds, validateMessages(ds)
	}
	return MessagesDataset{}, fmt.Errorf("messages_dataset is not a message list")
}

func validateMessages(d MessagesDataset) error {
	for i, m := range d.Messages {
		switch m.Type {
		case MessageHuman, MessageAI, MessageTool:
		case "":
			return fmt.Errorf("message %d missing type", i)
		default:
			// Other trace formats use system/function types; tolerated.
		}
	}
	return nil
}
