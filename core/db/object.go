package db

import (
	"fmt"
	"sync"

	"github.com/artpar/racksdb/core/dberr"
	"github.com/artpar/racksdb/core/nodeset"
	"github.com/artpar/racksdb/core/schema"
)

// noParent is the parent id of the root object.
const noParent = -1

// Range is the loaded value of an expandable property.
type Range struct {
	set *nodeset.Set
}

// NewRange parses a range expression.
func NewRange(pattern string) (Range, error) {
	set, err := nodeset.Parse(pattern)
	if err != nil {
		return Range{}, err
	}
	return Range{set: set}, nil
}

// String returns the range expression as declared.
func (r Range) String() string { return r.set.String() }

// Len returns the number of names of the range.
func (r Range) Len() int { return r.set.Len() }

// Expand returns the names of the range in order.
func (r Range) Expand() []string { return r.set.Expand() }

// Contains reports whether name is one of the names of the range.
func (r Range) Contains(name string) bool { return r.set.Contains(name) }

// RangeID is the loaded value of a rangeid property: the identifier of the
// first expanded object.
type RangeID struct {
	Start int
}

// At returns the identifier of the i-th expanded object.
func (r RangeID) At(i int) int { return r.Start + i }

// Object is a loaded instance of a schema class.
//
// Objects live in the arena of their Database and point to their parent by
// arena id. An object of an expandable class holds the Range and RangeID
// values; Objects returns its expansion, made of sibling objects that hold
// the i-th name and identifier instead.
type Object struct {
	db     *Database
	class  *schema.Class
	id     int
	parent int
	names  []string
	values map[string]any

	// origin is the expandable object a sibling is expanded from, first the
	// sibling built for the first name of the range.
	origin *Object
	first  *Object

	once     sync.Once
	siblings []*Object
}

// Class returns the schema class of the object.
func (o *Object) Class() *schema.Class { return o.class }

// Database returns the database the object belongs to.
func (o *Object) Database() *Database { return o.db }

// ID returns the arena id of the object. Expanded siblings share the id of
// the object they are expanded from.
func (o *Object) ID() int {
	if o.origin != nil {
		return o.origin.id
	}
	return o.id
}

// Parent returns the object holding o, nil for the root object.
func (o *Object) Parent() *Object {
	if o.parent == noParent {
		return nil
	}
	return o.db.objects[o.parent]
}

// Ancestor returns the nearest object of class c walking up from o, o
// included.
func (o *Object) Ancestor(c *schema.Class) *Object {
	for cur := o; cur != nil; cur = cur.Parent() {
		if cur.class == c {
			return cur
		}
	}
	return nil
}

// Names returns the names of the loaded properties, in input order followed
// by back references and defaults in schema order.
func (o *Object) Names() []string {
	return append([]string(nil), o.names...)
}

// Loaded returns the value read from the database for the property.
func (o *Object) Loaded(name string) (any, bool) {
	v, ok := o.values[name]
	return v, ok
}

// Get returns the value of the property. Attribute hooks registered for the
// class take precedence over the loaded values.
func (o *Object) Get(name string) (any, bool) {
	if fn, ok := o.db.hooks.attr(o.class.Name, name); ok {
		return fn(o), true
	}
	return o.Loaded(name)
}

// Has reports whether the property has a value.
func (o *Object) Has(name string) bool {
	_, ok := o.Get(name)
	return ok
}

// Str returns the property as a string, empty when absent.
func (o *Object) Str(name string) string {
	v, _ := o.Get(name)
	s, _ := v.(string)
	return s
}

// Int returns the property as an int, zero when absent.
func (o *Object) Int(name string) int {
	v, _ := o.Get(name)
	i, _ := v.(int)
	return i
}

// Float returns the property as a float64, zero when absent. Integer values
// are converted.
func (o *Object) Float(name string) float64 {
	v, _ := o.Get(name)
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	}
	return 0
}

// Bool returns the property as a bool, false when absent.
func (o *Object) Bool(name string) bool {
	v, _ := o.Get(name)
	b, _ := v.(bool)
	return b
}

// Object returns the property as an object, nil when absent.
func (o *Object) Object(name string) *Object {
	v, _ := o.Get(name)
	obj, _ := v.(*Object)
	return obj
}

// List returns the property as a list. An absent property is an empty list.
func (o *Object) List(name string) *List {
	v, _ := o.Get(name)
	if l, ok := v.(*List); ok {
		return l
	}
	return &List{}
}

// Dict returns the property as a dict. An absent property is an empty dict.
func (o *Object) Dict(name string) *Dict {
	v, _ := o.Get(name)
	if d, ok := v.(*Dict); ok {
		return d
	}
	return newDict()
}

// Key returns the value of the key property. For an expandable object it is
// the Range.
func (o *Object) Key() (any, bool) {
	p, ok := o.class.KeyProperty()
	if !ok {
		return nil, false
	}
	return o.Loaded(p.Name)
}

// IsExpandable reports whether o holds a range to expand. Expanded siblings
// are not expandable.
func (o *Object) IsExpandable() bool {
	return o.class.Expandable && o.origin == nil
}

// First returns the first sibling of the expansion o belongs to, o itself
// when it does not come from an expansion.
func (o *Object) First() *Object {
	if o.first != nil {
		return o.first
	}
	return o
}

// Origin returns the expandable object a sibling is expanded from, nil for
// other objects.
func (o *Object) Origin() *Object { return o.origin }

// Objects returns the expansion of an expandable object, a single element
// slice with o otherwise. The expansion is built once.
func (o *Object) Objects() []*Object {
	if !o.IsExpandable() {
		return []*Object{o}
	}
	o.once.Do(o.expand)
	return append([]*Object(nil), o.siblings...)
}

// Len returns the number of objects of the expansion.
func (o *Object) Len() int {
	if r, ok := o.rangeValue(); ok {
		return r.Len()
	}
	return 1
}

// GetObject returns the sibling whose expandable property is key.
func (o *Object) GetObject(key string) (*Object, error) {
	r, ok := o.rangeValue()
	if !ok {
		if k, ok := o.Key(); ok && fmt.Sprint(k) == key {
			return o, nil
		}
		return nil, dberr.NotFoundf("key '%s' not found in %s", key, o)
	}
	i, ok := r.set.Index(key)
	if !ok {
		return nil, dberr.NotFoundf("key '%s' not found in range %s", key, r)
	}
	o.once.Do(o.expand)
	return o.siblings[i], nil
}

func (o *Object) rangeValue() (Range, bool) {
	if !o.IsExpandable() {
		return Range{}, false
	}
	p, ok := o.class.ExpandableProperty()
	if !ok {
		return Range{}, false
	}
	r, ok := o.values[p.Name].(Range)
	return r, ok
}

func (o *Object) expand() {
	r, ok := o.rangeValue()
	if !ok {
		o.siblings = []*Object{o}
		return
	}
	p, _ := o.class.ExpandableProperty()

	names := r.Expand()
	o.siblings = make([]*Object, len(names))
	for i, name := range names {
		s := &Object{
			db:     o.db,
			class:  o.class,
			id:     o.id,
			parent: o.parent,
			names:  o.names,
			values: make(map[string]any, len(o.values)),
			origin: o,
		}
		for k, v := range o.values {
			if id, ok := v.(RangeID); ok {
				s.values[k] = id.At(i)
				continue
			}
			s.values[k] = v
		}
		s.values[p.Name] = name
		if i == 0 {
			s.first = s
		} else {
			s.first = o.siblings[0]
		}
		o.siblings[i] = s
	}
}

func (o *Object) set(name string, v any) {
	if _, exists := o.values[name]; !exists {
		o.names = append(o.names, name)
	}
	o.values[name] = v
}

// String returns the class and key of the object: "SchemaApple(golden)".
func (o *Object) String() string {
	if k, ok := o.Key(); ok {
		return fmt.Sprintf("%s(%v)", o.class, k)
	}
	return o.class.String()
}
