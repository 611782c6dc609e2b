package suggestion

import "github.com/tailored-agentic-units/reviewkit/observability"

// Event types emitted by Tool.
const (
	EventRejected observability.EventType = "suggestion.rejected"
	EventDispatch observability.EventType = "suggestion.dispatch"
	EventPosted   observability.EventType = "suggestion.posted"
	EventFailed   observability.EventType = "suggestion.failed"
)

const eventSource = "suggestion.Tool"
