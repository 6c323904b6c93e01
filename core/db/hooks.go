package db

import (
	"reflect"
	"sort"
	"strings"

	"github.com/artpar/racksdb/core/dberr"
)

// Criteria are the named arguments of a filter. A nil value is ignored.
type Criteria map[string]any

// FilterFunc tells whether obj matches the criteria. It returns a
// RequestError for criteria it does not know.
type FilterFunc func(obj *Object, c Criteria) (bool, error)

// AttrFunc computes the value of a property of obj.
type AttrFunc func(obj *Object) any

// Hooks provides the domain behaviour of classes: filters for the
// containers of their objects and attributes computed from the object graph.
type Hooks struct {
	filters map[string]FilterFunc
	attrs   map[string]map[string]AttrFunc
}

// NewHooks returns an empty set of hooks.
func NewHooks() *Hooks {
	return &Hooks{
		filters: make(map[string]FilterFunc),
		attrs:   make(map[string]map[string]AttrFunc),
	}
}

// Filter sets the filter of the class.
func (h *Hooks) Filter(class string, fn FilterFunc) *Hooks {
	h.filters[class] = fn
	return h
}

// Attr sets the attribute of the class.
func (h *Hooks) Attr(class, name string, fn AttrFunc) *Hooks {
	if h.attrs[class] == nil {
		h.attrs[class] = make(map[string]AttrFunc)
	}
	h.attrs[class][name] = fn
	return h
}

func (h *Hooks) attr(class, name string) (AttrFunc, bool) {
	if h == nil {
		return nil, false
	}
	fn, ok := h.attrs[class][name]
	return fn, ok
}

func (h *Hooks) filter(class string) (FilterFunc, bool) {
	if h == nil {
		return nil, false
	}
	fn, ok := h.filters[class]
	return fn, ok
}

// Check returns a RequestError naming the first criterion, in lexical order,
// that is not allowed.
func (c Criteria) Check(class string, allowed ...string) error {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		found := false
		for _, a := range allowed {
			if a == name {
				found = true
				break
			}
		}
		if !found {
			return dberr.Requestf("Unsupported filter %s on %s objects, supported filters: %s",
				name, class, strings.Join(allowed, ", "))
		}
	}
	return nil
}

// Strings returns the criterion as a list of strings. A single string is a
// list of one element.
func (c Criteria) Strings(name string) []string {
	switch v := c[name].(type) {
	case string:
		return []string{v}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func (d *Database) match(obj *Object, c Criteria) (bool, error) {
	if fn, ok := d.hooks.filter(obj.class.Name); ok {
		return fn(obj, c)
	}
	return defaultFilter(obj, c)
}

// defaultFilter matches criteria named after the properties of the class. A
// criterion matches when equal to the property value or, for list values,
// contained in the list. A list of criterion values must all match.
func defaultFilter(obj *Object, c Criteria) (bool, error) {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if _, ok := obj.class.Prop(name); !ok {
			return false, dberr.Requestf("Unsupported filter %s on %s objects", name, obj.class.Name)
		}
		want := c[name]
		if want == nil {
			continue
		}
		got, _ := obj.Get(name)
		if !matchValue(got, want) {
			return false, nil
		}
	}
	return true, nil
}

func matchValue(got, want any) bool {
	switch w := want.(type) {
	case []string:
		for _, item := range w {
			if !matchValue(got, item) {
				return false
			}
		}
		return true
	case []any:
		for _, item := range w {
			if !matchValue(got, item) {
				return false
			}
		}
		return true
	}

	if l, ok := got.(*List); ok {
		for _, item := range l.Items() {
			if equal(item, want) {
				return true
			}
		}
		return false
	}
	return equal(got, want)
}

// equal compares loaded values, integers and floats by numeric value and
// objects by their key.
func equal(a, b any) bool {
	switch x := a.(type) {
	case int:
		switch y := b.(type) {
		case int:
			return x == y
		case float64:
			return float64(x) == y
		}
	case float64:
		switch y := b.(type) {
		case int:
			return x == float64(y)
		case float64:
			return x == y
		}
	case *Object:
		if y, ok := b.(*Object); ok {
			return x == y
		}
		if k, ok := x.Key(); ok {
			return equal(k, b)
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}
