package chat

import (
	"fmt"
	"sort"
	"sync"

	domain "github.com/example/ezcomm-chat/domain/chat"
)

// UserRegistry tracks the user names currently in use across all rooms.
type UserRegistry struct {
	names map[string]struct{}
	mu    sync.RWMutex
}

// NewUserRegistry creates an empty UserRegistry.
func NewUserRegistry() *UserRegistry {
	return &UserRegistry{
		names: make(map[string]struct{}),
	}
}

// IsNameTaken reports whether name is registered. Names are case-sensitive.
func (r *UserRegistry) IsNameTaken(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.names[name]
	return ok
}

// Register claims name, failing with ErrNameConflict if it is already held.
func (r *UserRegistry) Register(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.names[name]; ok {
		return fmt.Errorf("register %q: %w", name, domain.ErrNameConflict)
	}
	r.names[name] = struct{}{}
	return nil
}

// Unregister frees name. Unknown names are ignored.
func (r *UserRegistry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.names, name)
}

// Count returns the number of registered names.
func (r *UserRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.names)
}

// Names returns the registered names in sorted order.
func (r *UserRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.names))
	for name := range r.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
