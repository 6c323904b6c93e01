package db

import (
	"fmt"

	"github.com/artpar/racksdb/core/dberr"
)

// List is a loaded list. Raw accessors see the declared elements, the other
// accessors see expandable objects as their expansion.
type List struct {
	items []any
}

// NewList returns a list of the given elements.
func NewList(items ...any) *List {
	return &List{items: append([]any(nil), items...)}
}

// RawLen returns the number of declared elements.
func (l *List) RawLen() int { return len(l.items) }

// Len returns the number of elements once expandable objects are expanded.
func (l *List) Len() int {
	n := 0
	for _, item := range l.items {
		if obj, ok := item.(*Object); ok {
			n += obj.Len()
			continue
		}
		n++
	}
	return n
}

// Values returns the declared elements.
func (l *List) Values() []any {
	return append([]any(nil), l.items...)
}

// Items returns the elements, expandable objects expanded.
func (l *List) Items() []any {
	out := make([]any, 0, len(l.items))
	for _, item := range l.items {
		if obj, ok := item.(*Object); ok && obj.IsExpandable() {
			for _, s := range obj.Objects() {
				out = append(out, s)
			}
			continue
		}
		out = append(out, item)
	}
	return out
}

// Objects returns the object elements, expandable objects expanded.
func (l *List) Objects() []*Object {
	var out []*Object
	for _, item := range l.items {
		if obj, ok := item.(*Object); ok {
			out = append(out, obj.Objects()...)
		}
	}
	return out
}

// Index returns the i-th element of the expanded list.
func (l *List) Index(i int) (any, error) {
	items := l.Items()
	if i < 0 || i >= len(items) {
		return nil, dberr.NotFoundf("index %d out of range of list of %d items", i, len(items))
	}
	return items[i], nil
}

// First returns the first object of the expanded list.
func (l *List) First() (*Object, bool) {
	for _, item := range l.items {
		if obj, ok := item.(*Object); ok {
			return obj.Objects()[0], true
		}
	}
	return nil, false
}

// Filter returns a list of the expanded objects accepted by the filter of
// their class.
func (l *List) Filter(c Criteria) (*List, error) {
	out := &List{}
	for _, obj := range l.Objects() {
		ok, err := obj.db.match(obj, c)
		if err != nil {
			return nil, err
		}
		if ok {
			out.items = append(out.items, obj)
		}
	}
	return out, nil
}

func (l *List) append(v any) { l.items = append(l.items, v) }

// Dict is a loaded list of keyed objects. The key of an expandable object
// is its Range, lookups of the names of a range return the matching sibling.
type Dict struct {
	keys    []any
	objects map[any]*Object
}

func newDict() *Dict {
	return &Dict{objects: make(map[any]*Object)}
}

// NewDict returns a dict of the given objects, keyed by their key property.
func NewDict(objs ...*Object) *Dict {
	d := newDict()
	for _, obj := range objs {
		k, _ := obj.Key()
		d.add(k, obj)
	}
	return d
}

func (d *Dict) add(key any, obj *Object) {
	k := dictKey(key)
	if _, exists := d.objects[k]; !exists {
		d.keys = append(d.keys, k)
	}
	d.objects[k] = obj
}

// dictKey returns a comparable form of a key: ranges are keyed by their
// expression.
func dictKey(key any) any {
	switch k := key.(type) {
	case Range:
		return rangeKey(k.String())
	case nil:
		return nil
	}
	return key
}

type rangeKey string

// RawLen returns the number of declared objects.
func (d *Dict) RawLen() int { return len(d.keys) }

// Len returns the number of objects once expandable objects are expanded.
func (d *Dict) Len() int {
	n := 0
	for _, k := range d.keys {
		n += d.objects[k].Len()
	}
	return n
}

// Get returns the object of the key. A name of a range declared as key
// returns the matching expanded sibling.
func (d *Dict) Get(key any) (*Object, bool) {
	if obj, ok := d.objects[key]; ok {
		return obj, true
	}
	name, ok := key.(string)
	if !ok {
		return nil, false
	}
	for _, k := range d.keys {
		if _, ok := k.(rangeKey); !ok {
			continue
		}
		obj := d.objects[k]
		if s, err := obj.GetObject(name); err == nil {
			return s, true
		}
	}
	return nil, false
}

// Contains reports whether Get finds the key.
func (d *Dict) Contains(key any) bool {
	_, ok := d.Get(key)
	return ok
}

// Lookup is Get returning a NotFoundError for a missing key.
func (d *Dict) Lookup(key any) (*Object, error) {
	obj, ok := d.Get(key)
	if !ok {
		return nil, dberr.NotFoundf("Unable to find key %v in dict", key)
	}
	return obj, nil
}

// Keys returns the keys of the expanded objects in order.
func (d *Dict) Keys() []string {
	var out []string
	for _, obj := range d.Objects() {
		k, _ := obj.Key()
		out = append(out, fmt.Sprint(k))
	}
	return out
}

// Values returns the declared objects in order.
func (d *Dict) Values() []*Object {
	out := make([]*Object, 0, len(d.keys))
	for _, k := range d.keys {
		out = append(out, d.objects[k])
	}
	return out
}

// Objects returns the objects, expandable objects expanded.
func (d *Dict) Objects() []*Object {
	var out []*Object
	for _, k := range d.keys {
		out = append(out, d.objects[k].Objects()...)
	}
	return out
}

// First returns the first expanded object.
func (d *Dict) First() (*Object, bool) {
	if len(d.keys) == 0 {
		return nil, false
	}
	return d.objects[d.keys[0]].Objects()[0], true
}

// Filter returns a dict of the expanded objects accepted by the filter of
// their class.
func (d *Dict) Filter(c Criteria) (*Dict, error) {
	out := newDict()
	for _, obj := range d.Objects() {
		ok, err := obj.db.match(obj, c)
		if err != nil {
			return nil, err
		}
		if ok {
			k, _ := obj.Key()
			out.add(k, obj)
		}
	}
	return out, nil
}
