// Package protocol defines the wire-level shapes exchanged between an agent
// runtime and reviewkit: tool definitions, tool calls, and tool result messages.
package protocol

// Tool defines a function that can be called by the LLM.
// Parameters uses JSON Schema format to describe the function's input and is
// also what the tools registry validates call arguments against.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Required returns the names listed in the schema's "required" keyword.
func (t Tool) Required() []string {
	switch v := t.Parameters["required"].(type) {
	case []string:
		return v
	case []any:
		names := make([]string, 0, len(v))
		for _, n := range v {
			if s, ok := n.(string); ok {
				names = append(names, s)
			}
		}
		return names
	default:
		return nil
	}
}
