package db

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/artpar/racksdb/core/dberr"
	"github.com/artpar/racksdb/core/dtype"
	"github.com/artpar/racksdb/core/schema"
	"github.com/artpar/racksdb/core/tree"
)

func (d *Database) newObject(class *schema.Class, parent *Object) *Object {
	obj := &Object{
		db:     d,
		class:  class,
		id:     len(d.objects),
		parent: noParent,
		values: make(map[string]any),
	}
	if parent != nil {
		obj.parent = parent.id
	}
	d.objects = append(d.objects, obj)
	return obj
}

func (d *Database) loadObject(token string, literal any, class *schema.Class, parent *Object) (*Object, error) {
	var m *tree.Map
	switch v := literal.(type) {
	case nil:
		m = tree.NewMap()
	case *tree.Map:
		m = v
	default:
		return nil, dberr.Formatf("token %s %s must be a mapping", token, class)
	}

	obj := d.newObject(class, parent)
	d.logger.Debug().Str("class", class.Name).Str("token", token).Int("id", obj.id).Msg("loading object")

	// back references point to ancestors whose needed properties are set
	// before their sub-objects are loaded
	if err := d.loadBackReferences(obj); err != nil {
		return nil, err
	}
	if err := d.loadAttributes(obj, m); err != nil {
		return nil, err
	}
	if err := d.loadDefaults(obj); err != nil {
		return nil, err
	}
	obj.sortNames(m.Keys())

	if err := d.registerKey(obj); err != nil {
		return nil, err
	}
	d.index[class.Name] = append(d.index[class.Name], obj)
	d.markLoaded(class)
	return obj, nil
}

func (d *Database) loadAttributes(obj *Object, m *tree.Map) error {
	pending := m.Keys()
	for pass := 1; len(pending) > 0; pass++ {
		var deferred []string
		for _, token := range pending {
			prop, err := tokenProperty(token, obj.class)
			if err != nil {
				return err
			}
			if !d.loadable(obj, prop, pass) {
				deferred = append(deferred, token)
				continue
			}
			literal, _ := m.Get(token)
			v, err := d.loadType(token, literal, prop.Type, obj)
			if err != nil {
				return err
			}
			obj.set(prop.Name, v)
			if c, ok := prop.Type.ObjectClass(); ok {
				d.markLoaded(c)
			}
		}
		if len(deferred) == len(pending) {
			return dberr.Formatf("Unable to load %s %s after %d passes, probably because of circular references",
				pending[len(pending)-1], obj.class.Name, pass)
		}
		pending = deferred
	}
	return nil
}

// tokenProperty resolves a token of the database to a property of the class.
func tokenProperty(token string, class *schema.Class) (*schema.Property, error) {
	name := token
	expandable := false
	if strings.HasSuffix(token, "[]") {
		name = strings.TrimSuffix(token, "[]")
		expandable = true
	}
	prop, ok := class.Prop(name)
	if !ok || (expandable && prop.Type.Kind != schema.KindExpandable) {
		return nil, dberr.Formatf("Property %s is not defined in schema for object %s", token, class)
	}
	if prop.Computed {
		return nil, dberr.Formatf("%s>%s is a computed property, thus it cannot be defined in database.", class.Name, name)
	}
	return prop, nil
}

// loadable reports whether the property can be loaded during this pass.
func (d *Database) loadable(obj *Object, prop *schema.Property, pass int) bool {
	if target, ok := refTarget(prop.Type); ok && !d.loaded[target] {
		d.logger.Debug().Str("class", obj.class.Name).Str("property", prop.Name).Int("pass", pass).
			Str("waiting", target.Name).Msg("property deferred")
		return false
	}

	c, ok := prop.Type.ObjectClass()
	if !ok {
		return true
	}
	for _, ref := range c.Refs() {
		if c.HasSubobj(ref) || d.loaded[ref] {
			continue
		}
		d.logger.Debug().Str("class", obj.class.Name).Str("property", prop.Name).Int("pass", pass).
			Str("waiting", ref.Name).Msg("property deferred")
		return false
	}

	for _, k := range append([]*schema.Class{c}, c.Subobjs()...) {
		for _, p := range k.Properties {
			if p.Type.Kind != schema.KindBackRef || p.Type.Prop == "" {
				continue
			}
			ancestor := obj.Ancestor(p.Type.Class)
			if ancestor == nil || ancestor.Has(p.Type.Prop) {
				continue
			}
			d.logger.Debug().Str("class", obj.class.Name).Str("property", prop.Name).Int("pass", pass).
				Str("waiting", p.Type.Class.Name+"."+p.Type.Prop).Msg("property deferred")
			return false
		}
	}
	return true
}

// refTarget returns the class targeted by a reference or list of references.
func refTarget(t *schema.ValueType) (*schema.Class, bool) {
	for t.Kind == schema.KindList {
		t = t.Elem
	}
	if t.Kind == schema.KindRef {
		return t.Class, true
	}
	return nil, false
}

func (d *Database) markLoaded(c *schema.Class) {
	d.loaded[c] = true
	for _, sub := range c.Subobjs() {
		d.loaded[sub] = true
	}
}

func (d *Database) loadType(token string, literal any, t *schema.ValueType, parent *Object) (any, error) {
	switch t.Kind {
	case schema.KindNative:
		if schema.NativeOf(literal) != t.Native {
			return nil, dberr.Formatf("%s %v is not a valid %s", token, literal, t.Native)
		}
		return literal, nil
	case schema.KindDefined:
		return loadDefined(literal, t.Defined)
	case schema.KindExpandable:
		s, ok := literal.(string)
		if !ok {
			return nil, dberr.Formatf("token %s of expandable is not a valid expandable str", token)
		}
		return NewRange(s)
	case schema.KindRangeID:
		i, ok := literal.(int)
		if !ok {
			return nil, dberr.Formatf("token %s of rangeid is not a valid rangeid integer", token)
		}
		return RangeID{Start: i}, nil
	case schema.KindList:
		return d.loadList(token, literal, t, parent)
	case schema.KindObject:
		return d.loadObject(token, literal, t.Class, parent)
	case schema.KindRef:
		return d.loadReference(token, literal, t)
	case schema.KindBackRef:
		return nil, dberr.Formatf("Back reference %s cannot be defined in database for object %s", token, t)
	}
	return nil, dberr.Formatf("token %s has unsupported type %s", token, t)
}

// loadDefined parses the literal with the defined type. Literals that are
// not strings are matched on their textual form, and accepted as is when
// already of the native kind of the type.
func loadDefined(literal any, t dtype.DefinedType) (any, error) {
	if s, ok := literal.(string); ok {
		return t.Parse(s)
	}
	switch literal.(type) {
	case *tree.Map, []any, nil:
	default:
		if v, err := t.Parse(fmt.Sprint(literal)); err == nil {
			return v, nil
		}
	}
	if v, ok := dtype.Coerce(t, literal); ok {
		return v, nil
	}
	return t.Parse(fmt.Sprint(literal))
}

func (d *Database) loadList(token string, literal any, t *schema.ValueType, parent *Object) (any, error) {
	elemClass, isObject := t.Elem.ObjectClass()
	if isObject && t.Elem.Kind != schema.KindObject {
		isObject = false
	}
	var keyProp *schema.Property
	if isObject {
		keyProp, _ = elemClass.KeyProperty()
	}

	items, ok := literal.([]any)
	if !ok {
		m, isMap := literal.(*tree.Map)
		if !isMap || keyProp == nil {
			return nil, dberr.Formatf("token %s %s must be a list", token, t)
		}
		d.logger.Debug().Str("token", token).Str("class", elemClass.Name).Msg("converting keyed map to list")
		items = keyedItems(m, keyProp)
	}

	if keyProp == nil {
		l := &List{}
		for _, item := range items {
			v, err := d.loadType(token, item, t.Elem, parent)
			if err != nil {
				return nil, err
			}
			l.append(v)
		}
		return l, nil
	}

	dict := newDict()
	for _, item := range items {
		v, err := d.loadType(token, item, t.Elem, parent)
		if err != nil {
			return nil, err
		}
		obj := v.(*Object)
		k, _ := obj.Key()
		dict.add(k, obj)
	}
	return dict, nil
}

// keyedItems converts a map of key to object body to a list of objects with
// the key injected. A key set in the body wins.
func keyedItems(m *tree.Map, keyProp *schema.Property) []any {
	items := make([]any, 0, m.Len())
	for _, k := range m.Keys() {
		item := tree.NewMap()
		item.Set(keyProp.Name, keyLiteral(k, keyProp))
		if body, ok := m.Get(k); ok {
			if bm, ok := body.(*tree.Map); ok {
				for _, bk := range bm.Keys() {
					bv, _ := bm.Get(bk)
					item.Set(bk, bv)
				}
			}
		}
		items = append(items, item)
	}
	return items
}

func keyLiteral(k string, p *schema.Property) any {
	if p.Type.Kind == schema.KindNative && p.Type.Native == schema.NativeInt {
		if i, err := strconv.Atoi(k); err == nil {
			return i
		}
	}
	return k
}

func (d *Database) loadReference(token string, literal any, t *schema.ValueType) (any, error) {
	objs, ok := d.FindObjects(t.Class.Name, true)
	if !ok {
		return nil, dberr.Formatf("Unable to find %s %v reference because objects %s are missing in DB indexes",
			token, literal, t.Class.Name)
	}
	for _, obj := range objs {
		if v, ok := obj.Get(t.Prop); ok && equal(v, literal) {
			d.logger.Debug().Str("token", token).Str("class", t.Class.Name).Msg("reference resolved")
			return obj, nil
		}
	}
	return nil, dberr.Formatf("Unable to find %s reference with value %v", token, literal)
}

func (d *Database) loadBackReferences(obj *Object) error {
	for _, p := range obj.class.Properties {
		if p.Type.Kind != schema.KindBackRef {
			continue
		}
		ancestor := obj.Ancestor(p.Type.Class)
		if ancestor == nil {
			return dberr.Formatf("Unable to find back reference %s of object %s", p.Type, obj.class)
		}
		if p.Type.Prop == "" {
			obj.set(p.Name, ancestor)
			continue
		}
		v, ok := ancestor.Get(p.Type.Prop)
		if !ok {
			return dberr.Formatf("Unable to resolve back reference %s of object %s, property %s is not loaded",
				p.Type, obj.class, p.Type.Prop)
		}
		obj.set(p.Name, v)
	}
	return nil
}

func (d *Database) loadDefaults(obj *Object) error {
	for _, p := range obj.class.Properties {
		if p.Computed || p.Type.Kind == schema.KindBackRef {
			continue
		}
		if _, ok := obj.values[p.Name]; ok {
			continue
		}
		if p.HasDefault && p.Default != nil {
			v, err := d.loadType(p.Name, tree.DeepCopy(p.Default), p.Type, obj)
			if err != nil {
				return err
			}
			d.logger.Debug().Str("class", obj.class.Name).Str("property", p.Name).Msg("default assigned")
			obj.set(p.Name, v)
			continue
		}
		if p.Required {
			return dberr.Formatf("Property %s is required in schema for object %s", p.Name, obj.class)
		}
	}
	return nil
}

// registerKey checks the key of obj, every name of its range for an
// expandable object, is unique among the objects of its class.
func (d *Database) registerKey(obj *Object) error {
	k, ok := obj.Key()
	if !ok {
		return nil
	}
	var values []any
	if r, isRange := k.(Range); isRange {
		for _, name := range r.Expand() {
			values = append(values, name)
		}
	} else {
		values = []any{k}
	}

	seen := d.keys[obj.class.Name]
	if seen == nil {
		seen = make(map[any]bool)
		d.keys[obj.class.Name] = seen
	}
	for _, v := range values {
		if seen[v] {
			return dberr.Formatf("Key value %v of %s is not unique", v, obj.class)
		}
	}
	for _, v := range values {
		seen[v] = true
	}
	return nil
}

// sortNames orders the property names as the tokens of the input, followed
// by the other properties in schema order.
func (o *Object) sortNames(tokens []string) {
	order := make([]string, 0, len(o.names))
	placed := make(map[string]bool, len(o.names))
	for _, token := range tokens {
		name := strings.TrimSuffix(token, "[]")
		if _, ok := o.values[name]; ok && !placed[name] {
			order = append(order, name)
			placed[name] = true
		}
	}
	for _, p := range o.class.Properties {
		if _, ok := o.values[p.Name]; ok && !placed[p.Name] {
			order = append(order, p.Name)
			placed[p.Name] = true
		}
	}
	o.names = order
}
