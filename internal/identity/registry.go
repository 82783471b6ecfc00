// internal/identity/registry.go
package identity

import (
	"errors"
	"sync"
)

// ErrNameTaken is returned by Claim when the name is already held by a
// connected session.
var ErrNameTaken = errors.New("name already taken")

// Registry tracks the display names currently claimed by connected sessions.
// A name is held from a successful Claim until Release on disconnect, so the
// set never contains duplicates.
type Registry struct {
	mu    sync.Mutex
	names map[string]struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		names: make(map[string]struct{}),
	}
}

// Claim reserves name for the caller. Fails with ErrNameTaken if some other
// session already holds it.
func (r *Registry) Claim(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.names[name]; taken {
		return ErrNameTaken
	}
	r.names[name] = struct{}{}
	return nil
}

// Release frees name. Idempotent: releasing an absent name is a no-op, which
// keeps the disconnect cascade safe for sessions that never claimed one.
func (r *Registry) Release(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.names, name)
}

// Snapshot returns the currently claimed names, for the online-players
// broadcast that follows every claim or release.
func (r *Registry) Snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.names))
	for name := range r.names {
		out = append(out, name)
	}
	return out
}
