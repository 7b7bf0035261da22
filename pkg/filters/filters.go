// Package filters implements the SQL-oriented filter library. Filters are
// engine-neutral functions registered into whichever template engine adapter
// is in use; both the gonja and pongo2 adapters wrap them at construction.
package filters

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Func is an engine-neutral filter: it receives the piped-in value plus any
// positional arguments and returns the transformed value. Degenerate inputs
// return sentinel values ("NaN", "0", "NULL") rather than errors wherever
// the contract allows, so a preview render never explodes on a half-filled
// context.
type Func func(in any, args ...any) (any, error)

// Registry holds named filters. Built-ins are installed at construction;
// additional registration is additive and process-safe.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Func
}

// NewRegistry constructs a registry with the full built-in filter set.
func NewRegistry() *Registry {
	r := &Registry{funcs: make(map[string]Func)}
	r.registerBuiltins()
	return r
}

// Register adds a filter. Registering an existing name is an error; the
// registry is append-only by design.
func (r *Registry) Register(name string, fn Func) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || fn == nil {
		return fmt.Errorf("filters: name and function required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.funcs[trimmed]; exists {
		return fmt.Errorf("filters: %q already registered", trimmed)
	}
	r.funcs[trimmed] = fn
	return nil
}

// Get returns the named filter.
func (r *Registry) Get(name string) (Func, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[name]
	return fn, ok
}

// Names returns the registered filter names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Each invokes fn for every registered filter. Used by engine adapters to
// wire the registry into their own filter tables.
func (r *Registry) Each(fn func(name string, filter Func)) {
	for _, name := range r.Names() {
		if filter, ok := r.Get(name); ok {
			fn(name, filter)
		}
	}
}

func (r *Registry) registerBuiltins() {
	builtins := map[string]Func{
		// SQL safety
		"sql_quote":      filterSQLQuote,
		"sql_identifier": filterSQLIdentifier,
		"sql_date":       filterSQLDate,
		"sql_datetime":   filterSQLDateTime,
		"sql_in":         filterSQLIn,

		// numeric / string coercion
		"int":    filterInt,
		"float":  filterFloat,
		"string": filterString,
		"bool":   filterBool,
		"abs":    filterAbs,
		"round":  filterRound,

		// collections
		"length":  filterLength,
		"join":    filterJoin,
		"first":   filterFirst,
		"last":    filterLast,
		"unique":  filterUnique,
		"reverse": filterReverse,
		"slice":   filterSlice,
		"sum":     filterSum,
		"min":     filterMin,
		"max":     filterMax,

		// text
		"upper":      filterUpper,
		"lower":      filterLower,
		"title":      filterTitle,
		"capitalize": filterCapitalize,
		"trim":       filterTrim,
		"striptags":  filterStripTags,
		"truncate":   filterTruncate,
		"wordwrap":   filterWordwrap,
		"urlencode":  filterURLEncode,

		// structural
		"default":        filterDefault,
		"dictsort":       filterDictSort,
		"tojson":         filterToJSON,
		"equalto":        filterEqualTo,
		"filesizeformat": filterFileSizeFormat,
	}
	for name, fn := range builtins {
		r.funcs[name] = fn
	}
}
