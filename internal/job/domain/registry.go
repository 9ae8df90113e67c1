package domain

import "sync"

// Factory constructs a fresh JobKind instance ready for exactly one run.
// The Registry calls it once per Lookup so every dispatch, resume, and
// restore gets its own instance: a kind that accumulates per-run output in
// struct fields (rather than JobState.Data) would otherwise leak one run's
// output into the next, or race with a sibling run of the same kind under
// MaxConcurrentPerKind > 1, if instances were shared.
type Factory func() JobKind

// Registry resolves job kind names to a Factory for their JobKind
// implementation. It is built once at startup by registering every known
// kind and is safe for concurrent reads thereafter; it mirrors the DI
// container's lazy-singleton shape but keyed by name instead of by type,
// since job kinds are plugged in by the binary's cmd/ entrypoint rather
// than constructed from config.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	restored  bool
}

// NewRegistry returns an empty registry ready for Register calls.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds factory under the Name() of the JobKind it produces. It
// returns ErrJobKindAlreadyRegistered on a duplicate name and
// ErrRegisteredAfterRestore once MarkRestored has been called. factory is
// invoked once here, only to read the name; the instance it returns is
// discarded, since every real run gets its own fresh instance via Lookup.
func (r *Registry) Register(factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.restored {
		return ErrRegisteredAfterRestore
	}
	name := factory().Name()
	if _, exists := r.factories[name]; exists {
		return ErrJobKindAlreadyRegistered
	}
	r.factories[name] = factory
	return nil
}

// MarkRestored closes the registry for further Register calls. A
// JobManager calls this once, right before it restores persisted
// JobReports, so the set of known kinds is frozen while restoration runs.
func (r *Registry) MarkRestored() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.restored = true
}

// Lookup constructs and returns a fresh JobKind instance for name, or
// ErrUnknownJobName. Each call produces a new instance: callers must reuse
// the one returned value for the lifetime of a single job run rather than
// calling Lookup again mid-run.
func (r *Registry) Lookup(name string) (JobKind, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrUnknownJobName
	}
	return factory(), nil
}

// Names returns every registered job kind name, for diagnostics.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	return names
}
