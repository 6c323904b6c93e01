// Package dumper provides a pluggable system of database dialects.
// Dumpers render loaded objects, lists and dicts in a text format (yaml,
// json, console).
package dumper

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/artpar/racksdb/core/dberr"
)

// Dumper renders database values in a specific format.
type Dumper interface {
	// Name returns the format name (e.g., "yaml", "json").
	Name() string

	// Description returns a human-readable description.
	Description() string

	// Dump writes v to w.
	Dump(w io.Writer, v any, opts Options) error
}

// Options configures dumping behavior.
type Options struct {
	// ObjectsMap replaces object attributes by one of their properties to
	// break reference cycles. Keys are a class name, matched against the
	// class of the attribute value, or "Class.property", matched against the
	// attribute of an object of that class. The latter wins. An empty target
	// drops the attribute.
	ObjectsMap map[string]string

	// Fold renders expandable objects as declared, with their range and
	// rangeid literals, instead of one entry per expanded object.
	Fold bool

	// ShowTypes tags YAML mappings with the class of the objects.
	ShowTypes bool

	// Reloadable drops back references and computed properties, and renders
	// references as the value of their target property, so the output loads
	// again with the same schema.
	Reloadable bool

	// Compact minimizes whitespace (for json).
	Compact bool

	// MaxDepth bounds the nesting of represented objects (0 = 64).
	MaxDepth int
}

// Registry manages registered dumpers.
type Registry struct {
	mu      sync.RWMutex
	dumpers map[string]Dumper
}

// NewRegistry creates a new dumper registry.
func NewRegistry() *Registry {
	return &Registry{dumpers: make(map[string]Dumper)}
}

// Register adds a dumper to the registry.
func (r *Registry) Register(d Dumper) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.dumpers[d.Name()]; exists {
		return fmt.Errorf("dumper %q already registered", d.Name())
	}
	r.dumpers[d.Name()] = d
	return nil
}

// Get returns the dumper of the format, or a DumperError for an unknown
// format.
func (r *Registry) Get(format string) (Dumper, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.dumpers[format]
	if !ok {
		return nil, dberr.Dumperf("Unsupported DB dump format %s", format)
	}
	return d, nil
}

// List returns the registered format names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.dumpers))
	for name := range r.dumpers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global dumper registry.
var DefaultRegistry = NewRegistry()

// Register adds a dumper to the default registry.
func Register(d Dumper) error {
	return DefaultRegistry.Register(d)
}

// Get returns a dumper from the default registry.
func Get(format string) (Dumper, error) {
	return DefaultRegistry.Get(format)
}

// List returns the format names of the default registry.
func List() []string {
	return DefaultRegistry.List()
}

// Dump writes v to w in the format, using the default registry.
func Dump(w io.Writer, format string, v any, opts Options) error {
	d, err := Get(format)
	if err != nil {
		return err
	}
	return d.Dump(w, v, opts)
}
