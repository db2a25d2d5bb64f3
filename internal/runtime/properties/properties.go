// Package properties implements the ordinal-ranked configuration layers the
// synthesized channel settings slot into. A Resolver consults its Sources from
// highest ordinal to lowest, so explicit user configuration (environment,
// application file) always wins over the synthesized overlay, which in turn
// wins over hard-coded defaults.
package properties

import (
	"sort"
	"sync"
)

// Ordinals of the built-in tiers. Higher wins.
const (
	OrdinalEnvironment = 300
	OrdinalApplication = 250
	OrdinalOverlay     = 200
	OrdinalDevService  = 150
	OrdinalDefaults    = 100
)

// Source is a named, ordinal-ranked property layer. Absence of a key simply
// delegates to the next tier; a Source never errors on lookup.
type Source interface {
	Name() string
	Ordinal() int
	Properties() map[string]string
	PropertyNames() []string
	Value(key string) (string, bool)
}

// Resolver is an ordered collection of Sources. Adding sources and resolving
// values may happen concurrently during startup.
type Resolver struct {
	mu      sync.RWMutex
	sources []Source
}

// NewResolver returns a Resolver over the given sources, kept sorted by
// descending ordinal.
func NewResolver(sources ...Source) *Resolver {
	r := &Resolver{}
	for _, s := range sources {
		r.Add(s)
	}
	return r
}

// Add inserts a source, keeping the highest-ordinal source first. Nil sources
// are ignored.
func (r *Resolver) Add(s Source) {
	if s == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources = append(r.sources, s)
	sort.SliceStable(r.sources, func(i, j int) bool {
		return r.sources[i].Ordinal() > r.sources[j].Ordinal()
	})
}

// Value returns the value for key from the highest-ordinal source that
// supplies it.
func (r *Resolver) Value(key string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.sources {
		if v, ok := s.Value(key); ok {
			return v, true
		}
	}
	return "", false
}

// HasNonBlank reports whether key resolves to a non-empty value.
func (r *Resolver) HasNonBlank(key string) bool {
	v, ok := r.Value(key)
	return ok && v != ""
}

// Names returns the sorted union of all property names across sources.
func (r *Resolver) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]struct{})
	for _, s := range r.sources {
		for _, name := range s.PropertyNames() {
			seen[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns the effective key/value view after tier resolution.
func (r *Resolver) Snapshot() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string)
	// Iterate lowest ordinal first so higher tiers overwrite.
	for i := len(r.sources) - 1; i >= 0; i-- {
		for k, v := range r.sources[i].Properties() {
			out[k] = v
		}
	}
	return out
}

// Sources returns the resolver's sources ordered by descending ordinal.
func (r *Resolver) Sources() []Source {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Source, len(r.sources))
	copy(out, r.sources)
	return out
}

// MapSource is a fixed key/value Source.
type MapSource struct {
	name    string
	ordinal int
	values  map[string]string
}

// NewMapSource wraps values as a Source. The map is copied.
func NewMapSource(name string, ordinal int, values map[string]string) *MapSource {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return &MapSource{name: name, ordinal: ordinal, values: copied}
}

func (m *MapSource) Name() string { return m.name }

func (m *MapSource) Ordinal() int { return m.ordinal }

func (m *MapSource) Properties() map[string]string {
	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

func (m *MapSource) PropertyNames() []string {
	names := make([]string, 0, len(m.values))
	for k := range m.values {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (m *MapSource) Value(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}
