// Package observability is the logging sink for reviewkit. Subsystems emit
// events to an Observer; the default observer writes them through log/slog.
// Level values align with OpenTelemetry SeverityNumbers.
//
// Events carry no control-flow significance: dropping every event (NoOpObserver)
// must never change what a tool returns.
package observability

import (
	"context"
	"log/slog"
	"time"
)

// Level represents event severity aligned with OTel SeverityNumber ranges.
type Level int

const (
	LevelVerbose Level = 5  // OTel DEBUG
	LevelInfo    Level = 9  // OTel INFO
	LevelWarning Level = 13 // OTel WARN
	LevelError   Level = 17 // OTel ERROR
)

// String returns the OTel severity text for the level.
func (l Level) String() string {
	switch {
	case l <= 4:
		return "TRACE"
	case l <= 8:
		return "DEBUG"
	case l <= 12:
		return "INFO"
	case l <= 16:
		return "WARN"
	case l <= 20:
		return "ERROR"
	default:
		return "FATAL"
	}
}

// SlogLevel maps this level to the corresponding slog.Level.
func (l Level) SlogLevel() slog.Level {
	switch {
	case l <= 8:
		return slog.LevelDebug
	case l <= 12:
		return slog.LevelInfo
	case l <= 16:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// EventType identifies the kind of event, e.g. "suggestion.posted".
type EventType string

// Event is emitted by subsystems. InvocationID correlates every event of a
// single tool invocation and is empty outside of one.
type Event struct {
	Type         EventType
	Level        Level
	Timestamp    time.Time
	Source       string
	InvocationID string
	Data         map[string]any
}

// Observer receives events for logging, tracing, or metrics.
type Observer interface {
	OnEvent(ctx context.Context, event Event)
}

// Emit fills in Timestamp and InvocationID (from ctx) and forwards the event
// to obs. A nil observer discards the event.
func Emit(ctx context.Context, obs Observer, event Event) {
	if obs == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.InvocationID == "" {
		event.InvocationID = InvocationID(ctx)
	}
	obs.OnEvent(ctx, event)
}

type invocationKey struct{}

// WithInvocationID returns a context carrying the tool invocation id.
func WithInvocationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, invocationKey{}, id)
}

// InvocationID returns the invocation id carried by ctx, or "".
func InvocationID(ctx context.Context) string {
	id, _ := ctx.Value(invocationKey{}).(string)
	return id
}
