// Package suggestion implements the suggest_change tool. A code-review agent
// calls it with a file path, a comment, and an optional line range; the tool
// validates the call, builds a comment payload, posts it once through a
// platform.Collaborator, and reports the outcome as a single string.
//
// Platform failures are reported to the agent as text, never returned as Go
// errors. Only invalid arguments surface as errors, and those are rejected
// before anything is posted.
package suggestion

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tailored-agentic-units/reviewkit/core/protocol"
	"github.com/tailored-agentic-units/reviewkit/observability"
	"github.com/tailored-agentic-units/reviewkit/platform"
	"github.com/tailored-agentic-units/reviewkit/tools"
)

// ToolName is the name agents call the tool by.
const ToolName = "suggest_change"

const toolDescription = "Posts a specific suggestion or comment on a particular file line or range. " +
	"You should ONLY do this on files with actionable problems. If a file is fine you CANNOT use this tool " +
	"otherwise the user will not trust you again. If there are multiple changes to make in line numbers " +
	"which are close to each other, you should make all the changes in ONE comment. In that case the line " +
	"numbers will encompass all the lines that need to be changed."

const commentDescription = "The review comment for the actionable change or changes. It should be in the format of: " +
	"{{ a short description of why the user MUST make the change }} ```suggestion\n" +
	"{{ directly include the lines and the code snippet that needs to be adjusted or replaced in the file }}\n```"

// Tool posts review suggestions through a platform collaborator. It holds no
// per-invocation state and is safe for concurrent use.
type Tool struct {
	platform platform.Collaborator
	observer observability.Observer
}

// Option configures a Tool.
type Option func(*Tool)

// WithObserver sets the observer receiving suggestion events.
func WithObserver(o observability.Observer) Option {
	return func(t *Tool) { t.observer = o }
}

// New creates a Tool that posts through p.
func New(p platform.Collaborator, opts ...Option) *Tool {
	t := &Tool{
		platform: p,
		observer: observability.NoOpObserver{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Definition returns the tool definition advertised to agents.
func (t *Tool) Definition() protocol.Tool {
	return protocol.Tool{
		Name:        ToolName,
		Description: toolDescription,
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"filePath": map[string]any{
					"type":        "string",
					"minLength":   1,
					"description": "The absolute path to the file you are suggesting changes to.",
				},
				"comment": map[string]any{
					"type":        "string",
					"minLength":   1,
					"description": commentDescription,
				},
				"startLine": map[string]any{
					"type":        "integer",
					"minimum":     1,
					"description": "The line number to start the comment at.",
				},
				"endLine": map[string]any{
					"type":        "integer",
					"minimum":     1,
					"description": "The line number to end the comment at.",
				},
			},
			"required": []string{"filePath", "comment"},
		},
	}
}

// Register installs the tool in r.
func (t *Tool) Register(r *tools.Registry) error {
	return r.Register(t.Definition(), t.Handle)
}

// Handle is the registry handler. Invalid arguments return an error wrapping
// tools.ErrInvalidArguments and nothing is posted. Every other path returns
// a nil error with the outcome text as content; IsError marks a failed post.
func (t *Tool) Handle(ctx context.Context, raw json.RawMessage) (tools.Result, error) {
	req, err := ParseRequest(raw)
	if err != nil {
		observability.Emit(ctx, t.observer, observability.Event{
			Type:   EventRejected,
			Level:  observability.LevelWarning,
			Source: eventSource,
			Data:   map[string]any{"error": err.Error()},
		})
		return tools.Result{}, err
	}

	outcome := t.Suggest(ctx, req)
	return tools.Result{Content: outcome.String(), IsError: outcome.IsError()}, nil
}

// Suggest posts req exactly once and maps the result to an Outcome. It never
// retries, and a panic inside the collaborator is reported as a failure.
// req must come from NewRequest or ParseRequest; a zero Request is reported
// as Failed without dispatching.
func (t *Tool) Suggest(ctx context.Context, req Request) Outcome {
	if req.filePath == "" || req.comment == "" {
		return t.failed(ctx, outcomeFor(req.filePath, "", ErrUnvalidatedRequest))
	}

	payload := BuildPayload(req)

	observability.Emit(ctx, t.observer, observability.Event{
		Type:   EventDispatch,
		Level:  observability.LevelVerbose,
		Source: eventSource,
		Data: map[string]any{
			"file_path":  payload.FilePath,
			"start_line": payload.StartLine,
			"end_line":   payload.EndLine,
		},
	})

	ref, err := t.dispatch(ctx, payload)
	outcome := outcomeFor(req.FilePath(), ref, err)
	if outcome.IsError() {
		return t.failed(ctx, outcome)
	}

	result := ref
	if result == "" {
		result = "No URL"
	}
	observability.Emit(ctx, t.observer, observability.Event{
		Type:   EventPosted,
		Level:  observability.LevelInfo,
		Source: eventSource,
		Data:   map[string]any{"file_path": req.FilePath(), "result": result},
	})
	return outcome
}

func (t *Tool) failed(ctx context.Context, outcome Outcome) Outcome {
	observability.Emit(ctx, t.observer, observability.Event{
		Type:   EventFailed,
		Level:  observability.LevelError,
		Source: eventSource,
		Data:   map[string]any{"file_path": outcome.FilePath, "error": outcome.Message},
	})
	return outcome
}

func (t *Tool) dispatch(ctx context.Context, p Payload) (ref string, err error) {
	if t.platform == nil {
		return "", fmt.Errorf("no platform configured")
	}
	defer func() {
		if r := recover(); r != nil {
			ref, err = "", fmt.Errorf("platform panic: %v", r)
		}
	}()
	return t.platform.PostReviewComment(ctx, p.CommentRequest())
}
