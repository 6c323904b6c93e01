package schema

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/artpar/racksdb/core/dberr"
	"github.com/artpar/racksdb/core/dtype"
	"github.com/artpar/racksdb/core/tree"
)

var (
	patternObject  = regexp.MustCompile(`^:(\w+)$`)
	patternDefined = regexp.MustCompile(`^~(\w+)$`)
	patternRef     = regexp.MustCompile(`^\$(\w+)\.(\w+)$`)
	patternBackRef = regexp.MustCompile(`^\^(\w+)(\.(\w+))?$`)
	patternList    = regexp.MustCompile(`^list\[(.+)\]$`)
)

// Option configures parsing.
type Option func(*parser)

// WithLogger sets the logger used for debug traces.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *parser) {
		p.logger = logger
	}
}

// ParseFile parses the schema file at path, overlaid with the extensions
// file when extensions is not empty and the file exists.
func ParseFile(path, extensions string, types *dtype.Registry, opts ...Option) (*Schema, error) {
	p := newParser(types, opts)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, dberr.Schemaf("Schema path %s does not exist", path)
		}
		return nil, fmt.Errorf("read schema %s: %w", path, err)
	}

	var ext []byte
	if extensions != "" {
		ext, err = os.ReadFile(extensions)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			p.logger.Debug().Str("path", extensions).Msg("schema extensions file not found, skipping extensions")
		case err != nil:
			return nil, fmt.Errorf("read schema extensions %s: %w", extensions, err)
		default:
			p.logger.Debug().Str("path", extensions).Msg("loading schema extensions file")
		}
	}

	return p.parseBytes(data, ext)
}

// ParseBytes parses a schema document and an optional extensions document.
func ParseBytes(data, extensions []byte, types *dtype.Registry, opts ...Option) (*Schema, error) {
	return newParser(types, opts).parseBytes(data, extensions)
}

// Parse builds a schema from a decoded document. When ext is not nil it is
// merged into a copy of doc first, see Extend.
func Parse(doc, ext *tree.Map, types *dtype.Registry, opts ...Option) (*Schema, error) {
	return newParser(types, opts).parse(doc, ext)
}

func decodeDocument(data []byte, what string) (*tree.Map, error) {
	v, err := tree.ParseYAML(data)
	if err != nil {
		return nil, &dberr.Error{Kind: dberr.KindSchema, Msg: "parse " + what, Err: err}
	}
	if v == nil {
		return tree.NewMap(), nil
	}
	m, ok := v.(*tree.Map)
	if !ok {
		return nil, dberr.Schemaf("%s document must be a mapping", what)
	}
	return m, nil
}

type parser struct {
	logger  zerolog.Logger
	types   *dtype.Registry
	objects *tree.Map
	schema  *Schema
}

func newParser(types *dtype.Registry, opts []Option) *parser {
	if types == nil {
		types = dtype.Builtins()
	}
	p := &parser{
		logger: zerolog.Nop(),
		types:  types,
		schema: &Schema{types: types, classes: make(map[string]*Class)},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *parser) parseBytes(data, extensions []byte) (*Schema, error) {
	doc, err := decodeDocument(data, "schema")
	if err != nil {
		return nil, err
	}
	var ext *tree.Map
	if len(extensions) > 0 {
		ext, err = decodeDocument(extensions, "schema extensions")
		if err != nil {
			return nil, err
		}
	}
	return p.parse(doc, ext)
}

func (p *parser) parse(doc, ext *tree.Map) (*Schema, error) {
	if ext != nil {
		doc = doc.Clone()
		if err := Extend(doc, ext, p.logger); err != nil {
			return nil, err
		}
	}

	version, ok := doc.Get("_version")
	if !ok || version == nil {
		return nil, dberr.Schemaf("Version must be defined in schema")
	}
	p.schema.Version = fmt.Sprint(version)

	if objects, ok := doc.Get("_objects"); ok && objects != nil {
		m, ok := objects.(*tree.Map)
		if !ok {
			return nil, dberr.Schemaf("Objects must be a mapping in schema")
		}
		p.objects = m
	}

	content, ok := doc.Get("_content")
	if !ok || content == nil {
		return nil, dberr.Schemaf("Content must be defined in schema")
	}
	root, err := p.parseClass(ContentClass, content)
	if err != nil {
		return nil, err
	}
	p.schema.Content = root

	// classes unreachable from the root are parsed too, so that every
	// declared class is validated and exposed
	for _, name := range p.objects.Keys() {
		if _, err := p.findClass(name); err != nil {
			return nil, err
		}
		p.schema.order = append(p.schema.order, name)
	}

	return p.schema, nil
}

func (p *parser) findClass(name string) (*Class, error) {
	if c, ok := p.schema.classes[name]; ok {
		return c, nil
	}
	def, ok := p.objects.Get(name)
	if !ok {
		return nil, dberr.Schemaf("Definition of object %s not found in schema", name)
	}
	return p.parseClass(name, def)
}

func (p *parser) parseClass(name string, def any) (*Class, error) {
	p.logger.Debug().Str("class", name).Msg("loading class")

	m, ok := def.(*tree.Map)
	if !ok {
		return nil, dberr.Schemaf("Definition of object %s must be a mapping", name)
	}

	c := &Class{Name: name}
	if d, ok := m.Get("description"); ok && d != nil {
		s, ok := d.(string)
		if !ok {
			return nil, dberr.Schemaf("Description of object %s must be a string", name)
		}
		c.Description = s
	}

	// registered before its properties are parsed, so that back references
	// to a class being parsed resolve
	if name != ContentClass {
		p.schema.classes[name] = c
	}

	props := tree.NewMap()
	if v, ok := m.Get("properties"); ok && v != nil {
		props, ok = v.(*tree.Map)
		if !ok {
			return nil, dberr.Schemaf("Properties of object %s must be a mapping", name)
		}
	}

	hasKey := false
	for _, key := range props.Keys() {
		spec, _ := props.Get(key)
		prop, err := p.property(name, key, spec)
		if err != nil {
			return nil, err
		}

		if prop.Type.Kind == KindObject && prop.Type.Class.Expandable {
			return nil, dberr.Schemaf("Expandable object %s must be in a list, it cannot be member of object such as %s", prop.Type.Class, name)
		}
		if prop.Type.Kind == KindExpandable {
			if c.Expandable {
				return nil, dberr.Schemaf("Expandable object %s cannot contain more than one expandable property", name)
			}
			c.Expandable = true
		}
		if prop.Key {
			if hasKey {
				return nil, dberr.Schemaf("Object %s cannot contain more than one key", name)
			}
			hasKey = true
		}

		if !prop.Computed {
			link(c, prop.Type)
		}
		c.Properties = append(c.Properties, prop)
	}

	p.logger.Debug().
		Str("class", name).
		Strs("refs", classNames(c.refs)).
		Strs("subobjs", classNames(c.subobjs)).
		Msg("class loaded")
	return c, nil
}

// link records on c the classes t references and nests.
func link(c *Class, t *ValueType) {
	for t.Kind == KindList {
		t = t.Elem
	}
	switch t.Kind {
	case KindRef:
		c.addRef(t.Class)
	case KindObject:
		for _, ref := range t.Class.refs {
			c.addRef(ref)
		}
		c.addSubobj(t.Class)
		for _, sub := range t.Class.subobjs {
			c.addSubobj(sub)
		}
	}
}

func classNames(classes []*Class) []string {
	names := make([]string, len(classes))
	for i, c := range classes {
		names[i] = c.Name
	}
	return names
}

type modifiers struct {
	key, computed, optional bool
	hasDefault              bool
	defaultValue            any
}

func (p *parser) property(class, name string, spec any) (*Property, error) {
	prop := &Property{Name: name}
	var mods modifiers
	var typeSpec string

	switch s := spec.(type) {
	case string:
		typeSpec = s
	case *tree.Map:
		for _, field := range s.Keys() {
			v, _ := s.Get(field)
			switch field {
			case "type":
				str, ok := v.(string)
				if !ok {
					return nil, dberr.Schemaf("Type of property %s of object %s must be a string", name, class)
				}
				typeSpec = str
			case "optional", "key", "computed":
				flag, ok := v.(bool)
				if !ok {
					return nil, dberr.Schemaf("Field %s of property %s of object %s must be a boolean", field, name, class)
				}
				switch field {
				case "optional":
					mods.optional = flag
				case "key":
					mods.key = flag
				case "computed":
					mods.computed = flag
				}
			case "default":
				mods.hasDefault = true
				mods.defaultValue = v
			case "example":
				prop.Example = v
			case "description":
				str, ok := v.(string)
				if !ok {
					return nil, dberr.Schemaf("Description of property %s of object %s must be a string", name, class)
				}
				prop.Description = str
			default:
				return nil, dberr.Schemaf("Unknown field %s in definition of property %s of object %s", field, name, class)
			}
		}
		if typeSpec == "" {
			return nil, dberr.Schemaf("Type of property %s of object %s must be defined", name, class)
		}
	default:
		return nil, dberr.Schemaf("Invalid definition of property %s of object %s", name, class)
	}

	typeStr, err := parseModifiers(typeSpec, &mods)
	if err != nil {
		return nil, err
	}
	t, err := p.valueType(typeStr)
	if err != nil {
		return nil, err
	}

	prop.Type = t
	prop.Key = mods.key
	prop.Computed = mods.computed
	prop.Required = !mods.optional && !mods.hasDefault
	prop.HasDefault = mods.hasDefault
	prop.Default = mods.defaultValue

	if prop.HasDefault && t.Kind == KindObject && prop.Default == ":recursive" {
		prop.Default = t.Class.RecursiveDefaults()
	}
	if err := checkDefault(prop); err != nil {
		return nil, err
	}
	return prop, nil
}

// parseModifiers consumes the key, computed, optional and default prefixes
// of a string specification, returning its type part.
func parseModifiers(spec string, mods *modifiers) (string, error) {
	fields := strings.Fields(spec)
	if len(fields) == 0 {
		return "", dberr.Schemaf("Unable to parse value type '%s'", spec)
	}
	typeStr := fields[len(fields)-1]
	prefix := fields[:len(fields)-1]
	for i := 0; i < len(prefix); i++ {
		switch prefix[i] {
		case "key":
			mods.key = true
		case "computed":
			mods.computed = true
		case "optional":
			mods.optional = true
		case "default":
			raw := strings.Join(prefix[i+1:], " ")
			if raw == "" {
				return "", dberr.Schemaf("Missing default value in '%s'", spec)
			}
			v, err := tree.ParseYAML([]byte(raw))
			if err != nil {
				return "", dberr.Schemaf("Invalid default value in '%s': %v", spec, err)
			}
			mods.hasDefault = true
			mods.defaultValue = v
			return typeStr, nil
		default:
			return "", dberr.Schemaf("Unable to parse value type '%s'", spec)
		}
	}
	return typeStr, nil
}

func (p *parser) valueType(spec string) (*ValueType, error) {
	if n, ok := natives[spec]; ok {
		return &ValueType{Kind: KindNative, Native: n}, nil
	}
	switch spec {
	case "expandable":
		return &ValueType{Kind: KindExpandable}, nil
	case "rangeid":
		return &ValueType{Kind: KindRangeID}, nil
	}

	if m := patternList.FindStringSubmatch(spec); m != nil {
		elem, err := p.valueType(m[1])
		if err != nil {
			return nil, err
		}
		return &ValueType{Kind: KindList, Elem: elem}, nil
	}
	if m := patternObject.FindStringSubmatch(spec); m != nil {
		c, err := p.findClass(m[1])
		if err != nil {
			return nil, err
		}
		return &ValueType{Kind: KindObject, Class: c}, nil
	}
	if m := patternDefined.FindStringSubmatch(spec); m != nil {
		dt, ok := p.types.Get(m[1])
		if !ok {
			return nil, dberr.Schemaf("Definition of defined type %s not found", m[1])
		}
		return &ValueType{Kind: KindDefined, Defined: dt}, nil
	}
	if m := patternRef.FindStringSubmatch(spec); m != nil {
		c, err := p.findClass(m[1])
		if err != nil {
			return nil, err
		}
		if _, ok := c.Prop(m[2]); !ok {
			return nil, dberr.Schemaf("Reference %s to undefined %s object property", spec, c)
		}
		return &ValueType{Kind: KindRef, Class: c, Prop: m[2]}, nil
	}
	if m := patternBackRef.FindStringSubmatch(spec); m != nil {
		p.logger.Debug().Str("class", m[1]).Msg("loading back reference")
		c, err := p.findClass(m[1])
		if err != nil {
			return nil, err
		}
		return &ValueType{Kind: KindBackRef, Class: c, Prop: m[3]}, nil
	}
	return nil, dberr.Schemaf("Unable to parse value type '%s'", spec)
}

func checkDefault(prop *Property) error {
	if !prop.HasDefault || prop.Default == nil {
		return nil
	}
	if prop.Type.Kind == KindBackRef {
		return dberr.Schemaf("Back reference %s cannot have a default value", prop.Name)
	}
	if !validLiteral(prop.Type, prop.Default) {
		return dberr.Schemaf("Default value %s of property %s is not a valid %s", literal(prop.Default), prop.Name, prop.Type)
	}
	return nil
}

// validLiteral checks the shape of a default literal. References cannot be
// resolved before a database is loaded, any scalar is accepted for them.
func validLiteral(t *ValueType, v any) bool {
	switch t.Kind {
	case KindNative:
		return NativeOf(v) == t.Native
	case KindDefined:
		if s, ok := v.(string); ok {
			_, err := t.Defined.Parse(s)
			return err == nil
		}
		_, ok := dtype.Coerce(t.Defined, v)
		return ok
	case KindExpandable:
		_, ok := v.(string)
		return ok
	case KindRangeID:
		_, ok := v.(int)
		return ok
	case KindList:
		items, ok := v.([]any)
		if !ok {
			return false
		}
		for _, item := range items {
			if !validLiteral(t.Elem, item) {
				return false
			}
		}
		return true
	case KindObject:
		_, ok := v.(*tree.Map)
		return ok
	case KindRef:
		switch v.(type) {
		case *tree.Map, []any:
			return false
		}
		return true
	}
	return false
}

// NativeOf returns the native kind of a tree scalar, or 0.
func NativeOf(v any) Native {
	switch v.(type) {
	case string:
		return NativeStr
	case int:
		return NativeInt
	case float64:
		return NativeFloat
	case bool:
		return NativeBool
	}
	return 0
}
