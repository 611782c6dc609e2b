package protocol

import "encoding/json"

// Role identifies the sender of a conversation message.
type Role string

// RoleTool marks a tool result message.
const RoleTool Role = "tool"

// ToolCall is a single tool invocation requested by the model.
// Fields are flat; UnmarshalJSON also accepts the nested LLM API format
// (function.name, function.arguments) so provider payloads decode directly.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// MarshalJSON serializes to the nested LLM API format ({type, function: {name, arguments}}).
func (tc ToolCall) MarshalJSON() ([]byte, error) {
	type function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	}
	return json.Marshal(struct {
		ID       string   `json:"id"`
		Type     string   `json:"type"`
		Function function `json:"function"`
	}{
		ID:       tc.ID,
		Type:     "function",
		Function: function{Name: tc.Name, Arguments: tc.Arguments},
	})
}

// UnmarshalJSON handles both the nested LLM API format and the flat format.
func (tc *ToolCall) UnmarshalJSON(data []byte) error {
	var nested struct {
		ID       string `json:"id"`
		Function struct {
			Name      string `json:"name"`
			Arguments string `json:"arguments"`
		} `json:"function"`
	}
	if err := json.Unmarshal(data, &nested); err != nil {
		return err
	}

	if nested.Function.Name != "" {
		tc.ID = nested.ID
		tc.Name = nested.Function.Name
		tc.Arguments = nested.Function.Arguments
		return nil
	}

	type plain ToolCall
	return json.Unmarshal(data, (*plain)(tc))
}

// RawArguments returns the call arguments as raw JSON. Models occasionally
// omit arguments for parameterless tools; an empty object is returned then.
func (tc ToolCall) RawArguments() json.RawMessage {
	if tc.Arguments == "" {
		return json.RawMessage(`{}`)
	}
	return json.RawMessage(tc.Arguments)
}

// Message is a conversation message. reviewkit only produces tool result
// messages, which carry the ToolCallID of the call they answer.
type Message struct {
	Role       Role   `json:"role"`
	Content    string `json:"content"`
	ToolCallID string `json:"tool_call_id,omitempty"`
}

// NewToolMessage creates the tool result message answering call.
func NewToolMessage(call ToolCall, content string) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: call.ID}
}
