package observability

import (
	"fmt"
	"log/slog"
	"sort"
)

var observers = map[string]func(*slog.Logger) Observer{
	"noop": func(*slog.Logger) Observer { return NoOpObserver{} },
	"slog": func(l *slog.Logger) Observer { return NewSlogObserver(l) },
}

// New builds the named observer bound to logger. A nil logger uses
// slog.Default().
func New(name string, logger *slog.Logger) (Observer, error) {
	factory, exists := observers[name]
	if !exists {
		return nil, fmt.Errorf("unknown observer: %s (available: %v)", name, Names())
	}
	if logger == nil {
		logger = slog.Default()
	}
	return factory(logger), nil
}

// Names returns the observer names accepted by New in sorted order.
func Names() []string {
	names := make([]string, 0, len(observers))
	for name := range observers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
