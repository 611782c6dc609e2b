package platform

import (
	"fmt"
	"sort"
	"sync"
)

// Factory builds a Collaborator from backend-specific configuration.
// Backends type-assert cfg to their own config type.
type Factory func(cfg any) (Collaborator, error)

var (
	factories = map[string]Factory{}
	mutex     sync.RWMutex
)

// Register adds or replaces a named backend factory.
func Register(name string, factory Factory) {
	mutex.Lock()
	defer mutex.Unlock()

	factories[name] = factory
}

// New builds the named backend.
func New(name string, cfg any) (Collaborator, error) {
	mutex.RLock()
	factory, exists := factories[name]
	mutex.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownPlatform, name, Names())
	}
	return factory(cfg)
}

// Names returns registered backend names in sorted order.
func Names() []string {
	mutex.RLock()
	defer mutex.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
