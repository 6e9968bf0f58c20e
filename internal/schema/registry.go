package schema

import (
	"strings"
	"sync"
)

// Registry is the in-memory catalog of table definitions.
//
// Names are matched the way SQLite matches identifiers: ASCII letters are
// case-insensitive. Iteration order is registration order.
//
// Thread-safety: Registry is safe for concurrent use. Registered Table values
// are immutable and may be shared freely.
type Registry struct {
	mu     sync.RWMutex
	tables map[string]Table
	order  []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tables: make(map[string]Table)}
}

// Register adds t unless a table with the same name is already present.
// Returns the registered definition and whether t was newly added.
func (r *Registry) Register(t Table) (Table, bool) {
	key := foldName(t.Name)

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.tables[key]; ok {
		return existing, false
	}
	r.tables[key] = t
	r.order = append(r.order, key)
	return t, true
}

// Lookup returns the definition registered under name.
func (r *Registry) Lookup(name string) (Table, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tables[foldName(name)]
	return t, ok
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Tables returns a snapshot of all definitions in registration order.
func (r *Registry) Tables() []Table {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Table, len(r.order))
	for i, key := range r.order {
		out[i] = r.tables[key]
	}
	return out
}

// Names returns the registered table names in registration order.
func (r *Registry) Names() []string {
	tables := r.Tables()
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.Name
	}
	return names
}

// Len returns the number of registered tables.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// foldName lower-cases ASCII letters only, matching SQLite identifier rules.
func foldName(name string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, name)
}
