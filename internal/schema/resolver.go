package schema

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// Map is the resolved column name for every role of one family. Every role has
// a name; roles without a match carry their conventional default.
type Map struct {
	Family  Family          `json:"family" yaml:"family"`
	Columns map[Role]string `json:"columns" yaml:"columns"`
	// Missing lists tables that yielded no columns (absent or unreachable).
	Missing []string `json:"missing_tables,omitempty" yaml:"missing_tables,omitempty"`
	// Defaulted lists roles that fell back to a conventional name.
	Defaulted []Role `json:"defaulted_roles,omitempty" yaml:"defaulted_roles,omitempty"`
}

// Get returns the column for role, or the role's conventional default when the
// map does not carry it.
func (m Map) Get(r Role) string {
	if c, ok := m.Columns[r]; ok && c != "" {
		return c
	}
	for _, ru := range rulesFor(m.Family) {
		if ru.role == r {
			return ru.fallback
		}
	}
	return string(r)
}

// Has reports whether role was matched against a live column rather than
// defaulted.
func (m Map) Has(r Role) bool {
	if _, ok := m.Columns[r]; !ok {
		return false
	}
	for _, d := range m.Defaulted {
		if d == r {
			return false
		}
	}
	return true
}

// Conventional is the map produced when nothing can be introspected.
func Conventional(f Family) Map {
	return resolveColumns(f, nil)
}

// ColumnLister returns the live column names of a table in declaration order.
type ColumnLister interface {
	Columns(ctx context.Context, table string) ([]string, error)
}

// Resolver maps roles to physical columns. Results are cached per family until
// Invalidate is called.
type Resolver struct {
	lister    ColumnLister
	overrides Overrides
	log       *slog.Logger

	mu    sync.Mutex
	cache map[Family]Map
}

func NewResolver(lister ColumnLister, overrides Overrides, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{
		lister:    lister,
		overrides: overrides,
		log:       log.With("component", "schema"),
		cache:     map[Family]Map{},
	}
}

// Resolve never fails: tables that cannot be read resolve to conventional names.
func (r *Resolver) Resolve(ctx context.Context, f Family) Map {
	r.mu.Lock()
	if m, ok := r.cache[f]; ok {
		r.mu.Unlock()
		return m.clone()
	}
	r.mu.Unlock()

	cols := map[string][]string{}
	for _, table := range Tables(f) {
		names, err := r.lister.Columns(ctx, table)
		if err != nil {
			r.log.Warn("schema_introspection_failed", "family", f, "table", table, "error", err)
			names = nil
		}
		cols[table] = names
	}

	m := resolveColumns(f, cols)
	r.overrides.apply(&m)
	if len(m.Defaulted) > 0 {
		r.log.Debug("schema_roles_defaulted", "family", f, "roles", m.Defaulted)
	}

	r.mu.Lock()
	r.cache[f] = m
	r.mu.Unlock()
	return m.clone()
}

func (r *Resolver) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = map[Family]Map{}
}

// resolveColumns is the pure part of resolution: the same column lists always
// give the same map.
func resolveColumns(f Family, cols map[string][]string) Map {
	m := Map{Family: f, Columns: map[Role]string{}}

	for _, table := range Tables(f) {
		if len(cols[table]) == 0 {
			m.Missing = append(m.Missing, table)
		}
	}

	for _, ru := range rulesFor(f) {
		name, ok := findColumn(cols[ru.table], ru)
		if !ok {
			m.Defaulted = append(m.Defaulted, ru.role)
		}
		m.Columns[ru.role] = name
	}
	return m
}

// findColumn reports false when the conventional fallback was used.
func findColumn(columns []string, ru rule) (string, bool) {
	for _, want := range ru.exact {
		for _, c := range columns {
			if c == want {
				return c, true
			}
		}
	}
	for _, parts := range ru.contains {
		for _, c := range columns {
			if containsAll(strings.ToLower(c), parts) {
				return c, true
			}
		}
	}
	if ru.firstColumn && len(columns) > 0 {
		return columns[0], true
	}
	return ru.fallback, false
}

func containsAll(s string, parts []string) bool {
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}

func (m Map) clone() Map {
	out := Map{Family: m.Family, Columns: make(map[Role]string, len(m.Columns))}
	for k, v := range m.Columns {
		out.Columns[k] = v
	}
	out.Missing = append([]string(nil), m.Missing...)
	out.Defaulted = append([]Role(nil), m.Defaulted...)
	return out
}
