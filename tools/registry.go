// Package tools is the invocation framework agents call into. A Registry maps
// tool names to handlers and validates call arguments against each tool's
// JSON Schema before a handler runs, so handlers never see malformed input.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tailored-agentic-units/reviewkit/core/protocol"
	"github.com/tailored-agentic-units/reviewkit/observability"
)

// Registry event types.
const (
	EventExecute          observability.EventType = "tools.execute"
	EventInvalidArguments observability.EventType = "tools.invalid_arguments"
)

// Handler is the function signature for tool implementations.
// Handlers receive the request context and schema-valid JSON arguments.
type Handler func(ctx context.Context, args json.RawMessage) (Result, error)

// Result is the tool output that feeds back into the next LLM turn.
// IsError signals to the LLM that the tool invocation failed.
type Result struct {
	Content string `json:"content"`
	IsError bool   `json:"is_error"`
}

type entry struct {
	tool    protocol.Tool
	schema  *jsonschema.Schema
	handler Handler
}

// Registry holds tool definitions and their handlers. Safe for concurrent use.
type Registry struct {
	entries  map[string]entry
	observer observability.Observer
	mu       sync.RWMutex
}

// Option configures a Registry.
type Option func(*Registry)

// WithObserver sets the observer receiving registry events.
func WithObserver(o observability.Observer) Option {
	return func(r *Registry) { r.observer = o }
}

// NewRegistry creates an empty Registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		entries:  make(map[string]entry),
		observer: observability.NoOpObserver{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a new tool. The tool's Parameters must compile as a JSON
// Schema. Returns ErrAlreadyExists if the name is taken.
func (r *Registry) Register(tool protocol.Tool, handler Handler) error {
	e, err := newEntry(tool, handler)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[tool.Name]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, tool.Name)
	}

	r.entries[tool.Name] = e
	return nil
}

func newEntry(tool protocol.Tool, handler Handler) (entry, error) {
	if tool.Name == "" {
		return entry{}, ErrEmptyName
	}

	schema, err := compileSchema(tool)
	if err != nil {
		return entry{}, err
	}

	return entry{tool: tool, schema: schema, handler: handler}, nil
}

// Get retrieves a tool definition by name.
func (r *Registry) Get(name string) (protocol.Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, exists := r.entries[name]
	return e.tool, exists
}

// List returns the definitions of all registered tools sorted by name.
func (r *Registry) List() []protocol.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]protocol.Tool, 0, len(r.entries))
	for _, e := range r.entries {
		tools = append(tools, e.tool)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })
	return tools
}

// Validate checks args against the named tool's schema without running it.
func (r *Registry) Validate(name string, args json.RawMessage) error {
	r.mu.RLock()
	e, exists := r.entries[name]
	r.mu.RUnlock()

	if !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return validateArgs(name, e.schema, args)
}

// Execute validates args and dispatches the call to the registered handler.
// Schema violations return an error wrapping ErrInvalidArguments and the
// handler is not invoked. Handler errors are wrapped with the tool name.
// The registry lock is not held while the handler runs.
func (r *Registry) Execute(ctx context.Context, name string, args json.RawMessage) (Result, error) {
	r.mu.RLock()
	e, exists := r.entries[name]
	r.mu.RUnlock()

	if !exists {
		return Result{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	if err := validateArgs(name, e.schema, args); err != nil {
		observability.Emit(ctx, r.observer, observability.Event{
			Type:   EventInvalidArguments,
			Level:  observability.LevelWarning,
			Source: "tools.Registry",
			Data:   map[string]any{"name": name, "error": err.Error()},
		})
		return Result{}, err
	}

	observability.Emit(ctx, r.observer, observability.Event{
		Type:   EventExecute,
		Level:  observability.LevelVerbose,
		Source: "tools.Registry",
		Data:   map[string]any{"name": name},
	})

	result, err := e.handler(ctx, args)
	if err != nil {
		return Result{}, fmt.Errorf("tool %s execution failed: %w", name, err)
	}

	return result, nil
}
