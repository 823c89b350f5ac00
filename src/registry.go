package otpgen

import (
	"fmt"
	"sync"
	"time"
)

// Entry is a point-in-time view of one registered engine.
type Entry struct {
	Name      string
	Engine    *Engine
	Code      string
	Remaining uint32
}

type entry struct {
	engine    *Engine
	code      string
	remaining uint32
}

// Registry holds named engines and the code each produced at the last
// refresh. Names keep the order in which they were first registered.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]*entry
	clock   func() time.Time
}

type RegistryOption func(*Registry)

// WithClock replaces time.Now as the source used to seed new entries.
func WithClock(clock func() time.Time) RegistryOption {
	return func(r *Registry) {
		if clock != nil {
			r.clock = clock
		}
	}
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		entries: make(map[string]*entry),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds engine under name, replacing any engine already there.
// A replaced entry keeps its position.
func (r *Registry) Register(name string, engine *Engine) error {
	if engine == nil {
		return fmt.Errorf("%w: nil engine for %q", ErrInvalidParameter, name)
	}
	now := unixSeconds(r.clock())

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[name]; !ok {
		r.order = append(r.order, name)
	}
	r.entries[name] = &entry{
		engine:    engine,
		code:      engine.CodeAt(now),
		remaining: engine.SecondsRemaining(now),
	}
	return nil
}

// Remove deletes name and reports whether it was present.
func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[name]; !ok {
		return false
	}
	delete(r.entries, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Refresh recomputes every cached code for now.
func (r *Registry) Refresh(now time.Time) {
	sec := unixSeconds(now)

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		e.code = e.engine.CodeAt(sec)
		e.remaining = e.engine.SecondsRemaining(sec)
	}
}

// Get returns the code cached for name at the last refresh.
func (r *Registry) Get(name string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return e.code, nil
}

// Engine returns the engine registered under name.
func (r *Registry) Engine(name string) (*Engine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return e.engine, nil
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Entries returns a snapshot of all entries in registration order.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, 0, len(r.order))
	for _, name := range r.order {
		e := r.entries[name]
		out = append(out, Entry{
			Name:      name,
			Engine:    e.engine,
			Code:      e.code,
			Remaining: e.remaining,
		})
	}
	return out
}

// WindowProgress returns the elapsed fraction of the step containing now,
// in [0, 1).
func (r *Registry) WindowProgress(now time.Time, step uint32) float64 {
	return WindowProgress(now, step)
}

func WindowProgress(now time.Time, step uint32) float64 {
	if step == 0 {
		return 0
	}
	elapsed := unixSeconds(now) % uint64(step)
	return float64(elapsed) / float64(step)
}
