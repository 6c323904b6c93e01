package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/artpar/racksdb/core/dberr"
	"github.com/artpar/racksdb/core/dtype"
	"github.com/artpar/racksdb/core/tree"
)

// ContentClass is the name of the root class.
const ContentClass = "_content"

// Property is a declared field of a class.
type Property struct {
	Name     string
	Type     *ValueType
	Required bool
	Key      bool

	// Computed properties are never read from a database, their value is
	// provided by an attribute hook.
	Computed bool

	// Default is the literal assigned when the property is absent. It is
	// loaded like any database literal. HasDefault tells a nil default from
	// no default.
	Default    any
	HasDefault bool

	Example     any
	Description string
}

// String returns "required|optional [key ]<type>[ (<default>)]".
func (p *Property) String() string {
	var b strings.Builder
	if p.Required {
		b.WriteString("required ")
	} else {
		b.WriteString("optional ")
	}
	if p.Key {
		b.WriteString("key ")
	}
	b.WriteString(p.Type.String())
	if p.HasDefault && p.Default != nil {
		b.WriteString(" (" + literal(p.Default) + ")")
	}
	return b.String()
}

func literal(v any) string {
	switch v.(type) {
	case *tree.Map, []any:
		data, err := json.Marshal(v)
		if err == nil {
			return string(data)
		}
	}
	return fmt.Sprint(v)
}

// Class is a declared object class.
type Class struct {
	Name        string
	Description string
	Properties  []*Property

	// Expandable is set when one property has the expandable type.
	Expandable bool

	refs    []*Class
	subobjs []*Class
}

// String returns "Schema<Name>", with a trailing "+" for expandable classes.
func (c *Class) String() string {
	if c.Expandable {
		return "Schema" + c.Name + "+"
	}
	return "Schema" + c.Name
}

// Prop returns the property named name.
func (c *Class) Prop(name string) (*Property, bool) {
	for _, p := range c.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// HasKey reports whether the class has a key property.
func (c *Class) HasKey() bool {
	_, ok := c.KeyProperty()
	return ok
}

// KeyProperty returns the key property.
func (c *Class) KeyProperty() (*Property, bool) {
	for _, p := range c.Properties {
		if p.Key {
			return p, true
		}
	}
	return nil, false
}

// ExpandableProperty returns the property of type expandable.
func (c *Class) ExpandableProperty() (*Property, bool) {
	for _, p := range c.Properties {
		if p.Type.Kind == KindExpandable {
			return p, true
		}
	}
	return nil, false
}

// Refs returns the classes referenced by the class properties, recursively
// through nested classes.
func (c *Class) Refs() []*Class { return append([]*Class(nil), c.refs...) }

// Subobjs returns the classes nested in the class properties, recursively.
func (c *Class) Subobjs() []*Class { return append([]*Class(nil), c.subobjs...) }

// HasSubobj reports whether other is nested in c.
func (c *Class) HasSubobj(other *Class) bool { return contains(c.subobjs, other) }

// RecursiveDefaults returns a map of the class properties that have a
// default, each set to a copy of its default.
func (c *Class) RecursiveDefaults() *tree.Map {
	m := tree.NewMap()
	for _, p := range c.Properties {
		if p.HasDefault && p.Default != nil {
			m.Set(p.Name, tree.DeepCopy(p.Default))
		}
	}
	return m
}

func (c *Class) addRef(other *Class) {
	if !contains(c.refs, other) {
		c.refs = append(c.refs, other)
	}
}

func (c *Class) addSubobj(other *Class) {
	if !contains(c.subobjs, other) {
		c.subobjs = append(c.subobjs, other)
	}
}

func contains(set []*Class, c *Class) bool {
	for _, item := range set {
		if item == c {
			return true
		}
	}
	return false
}

// Schema is a parsed schema.
type Schema struct {
	Version string
	Content *Class

	types   *dtype.Registry
	classes map[string]*Class
	order   []string
}

// Class returns the class named name.
func (s *Schema) Class(name string) (*Class, bool) {
	c, ok := s.classes[name]
	return c, ok
}

// LookupClass returns the class named name or a schema error.
func (s *Schema) LookupClass(name string) (*Class, error) {
	c, ok := s.classes[name]
	if !ok {
		return nil, dberr.Schemaf("Definition of object %s not found in schema", name)
	}
	return c, nil
}

// Classes returns the classes in declaration order. The root class is not
// included.
func (s *Schema) Classes() []*Class {
	out := make([]*Class, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.classes[name])
	}
	return out
}

// Types returns the defined type registry the schema was parsed with.
func (s *Schema) Types() *dtype.Registry { return s.types }
