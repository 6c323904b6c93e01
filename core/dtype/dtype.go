// Package dtype provides defined types: named scalar types whose literal
// form is a string matched by a regular expression and converted into a
// native value (dimensions, byte quantities, rack widths, colors...).
package dtype

import (
	"fmt"
	"regexp"
	"sort"
	"sync"

	"github.com/artpar/racksdb/core/dberr"
)

// Native is the kind of value a defined type parses into.
type Native int

const (
	NativeInt Native = iota + 1
	NativeFloat
	NativeString
	// NativeRGBA is a 4-tuple of floats in [0,1].
	NativeRGBA
)

// String returns the native kind name.
func (n Native) String() string {
	switch n {
	case NativeInt:
		return "int"
	case NativeFloat:
		return "float"
	case NativeString:
		return "str"
	case NativeRGBA:
		return "rgba"
	}
	return "unknown"
}

// RGBA is the native value of color types.
type RGBA [4]float64

// DefinedType converts literals into native values.
type DefinedType interface {
	// Name is the identifier used in schemas after the "~" sigil.
	Name() string

	// Pattern is the regular expression a literal must fully match.
	Pattern() string

	// Native is the kind of the parsed value.
	Native() Native

	// Parse matches literal and converts it.
	Parse(literal string) (any, error)
}

// ConvertFunc converts the submatches of a fully matched literal.
// m[0] is the whole literal.
type ConvertFunc func(m []string) (any, error)

// Type is a DefinedType backed by a compiled pattern and a converter.
type Type struct {
	name    string
	pattern string
	native  Native
	re      *regexp.Regexp
	convert ConvertFunc
}

// New compiles a defined type. The pattern is anchored on both ends.
func New(name, pattern string, native Native, convert ConvertFunc) (*Type, error) {
	re, err := regexp.Compile(`^(?:` + pattern + `)$`)
	if err != nil {
		return nil, dberr.Schemaf("invalid pattern for defined type %s: %v", name, err)
	}
	if convert == nil {
		convert = func(m []string) (any, error) { return m[0], nil }
	}
	return &Type{name: name, pattern: pattern, native: native, re: re, convert: convert}, nil
}

// MustNew is New for patterns known at compile time.
func MustNew(name, pattern string, native Native, convert ConvertFunc) *Type {
	t, err := New(name, pattern, native, convert)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Type) Name() string    { return t.name }
func (t *Type) Pattern() string { return t.pattern }
func (t *Type) Native() Native  { return t.native }

// String returns the schema notation of the type.
func (t *Type) String() string { return "~" + t.name }

// Parse matches literal in full and converts it.
func (t *Type) Parse(literal string) (any, error) {
	m := t.re.FindStringSubmatch(literal)
	if m == nil {
		return nil, dberr.Formatf("Unable to match ~%s pattern with value %s", t.name, literal)
	}
	return t.convert(m)
}

// Registry holds defined types by name.
type Registry struct {
	mu    sync.RWMutex
	types map[string]DefinedType
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]DefinedType)}
}

// Register adds a defined type. Names are unique.
func (r *Registry) Register(t DefinedType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.types[t.Name()]; exists {
		return fmt.Errorf("defined type %q already registered", t.Name())
	}
	r.types[t.Name()] = t
	return nil
}

// Get returns a defined type by name.
func (r *Registry) Get(name string) (DefinedType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.types[name]
	return t, ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.types)
}

// Coerce accepts v when it already is a value of t's native kind. It lets a
// dumped native value (55 for "55g") load again.
func Coerce(t DefinedType, v any) (any, bool) {
	switch t.Native() {
	case NativeInt:
		if i, ok := v.(int); ok {
			return i, true
		}
	case NativeFloat:
		switch n := v.(type) {
		case float64:
			return n, true
		case int:
			return float64(n), true
		}
	case NativeString:
		if s, ok := v.(string); ok {
			return s, true
		}
	case NativeRGBA:
		switch c := v.(type) {
		case RGBA:
			return c, true
		case []any:
			if len(c) != 4 {
				return nil, false
			}
			var out RGBA
			for i, item := range c {
				switch n := item.(type) {
				case float64:
					out[i] = n
				case int:
					out[i] = float64(n)
				default:
					return nil, false
				}
			}
			return out, true
		}
	}
	return nil, false
}
