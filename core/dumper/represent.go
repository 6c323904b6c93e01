package dumper

import (
	"strings"

	"github.com/artpar/racksdb/core/db"
	"github.com/artpar/racksdb/core/dberr"
	"github.com/artpar/racksdb/core/dtype"
	"github.com/artpar/racksdb/core/schema"
	"github.com/artpar/racksdb/core/tree"
)

const (
	defaultMaxDepth = 64
	// lastObjects is the number of classes reported on recursion overflow.
	lastObjects = 8
)

// representer converts database values into tree values ready to encode.
type representer struct {
	opts  Options
	depth int
	last  []string
}

// Represent converts v into a tree value: objects become ordered maps,
// lists and dicts become sequences, ranges and rangeids their literals and
// defined type values their native form.
func Represent(v any, opts Options) (any, error) {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = defaultMaxDepth
	}
	r := &representer{opts: opts}
	return r.value(v)
}

func (r *representer) value(v any) (any, error) {
	switch t := v.(type) {
	case *db.Database:
		return r.object(t.Root())
	case *db.Object:
		if t.IsExpandable() && !r.opts.Fold {
			return r.objects(t.Objects())
		}
		return r.object(t)
	case []*db.Object:
		return r.objects(t)
	case *db.List:
		if r.opts.Fold {
			return r.sequence(t.Values())
		}
		return r.sequence(t.Items())
	case *db.Dict:
		if r.opts.Fold {
			return r.objects(t.Values())
		}
		return r.objects(t.Objects())
	case db.Range:
		return t.String(), nil
	case db.RangeID:
		return t.Start, nil
	case dtype.RGBA:
		return []any{t[0], t[1], t[2], t[3]}, nil
	case *tree.Map:
		return t, nil
	case []any:
		return r.sequence(t)
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out, nil
	case nil, string, int, float64, bool:
		return t, nil
	}
	return nil, dberr.Dumperf("Unsupported type %T for DB dump", v)
}

func (r *representer) sequence(items []any) (any, error) {
	out := make([]any, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(*db.Object); ok && obj.IsExpandable() && !r.opts.Fold {
			for _, s := range obj.Objects() {
				v, err := r.object(s)
				if err != nil {
					return nil, err
				}
				out = append(out, v)
			}
			continue
		}
		v, err := r.value(item)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (r *representer) objects(objs []*db.Object) (any, error) {
	items := make([]any, len(objs))
	for i, obj := range objs {
		items[i] = obj
	}
	return r.sequence(items)
}

func (r *representer) object(obj *db.Object) (any, error) {
	r.last = append(r.last, obj.Class().Name)
	if len(r.last) > lastObjects {
		r.last = r.last[len(r.last)-lastObjects:]
	}
	r.depth++
	defer func() { r.depth-- }()
	if r.depth > r.opts.MaxDepth {
		return nil, dberr.Dumperf("Recursion loop detected during dump, last represented objects:\n→ %s",
			strings.Join(r.last, "\n→ "))
	}

	m := tree.NewMap()
	if r.opts.ShowTypes {
		m.Tag = obj.Class().Name
	}
	for _, name := range r.names(obj) {
		prop, _ := obj.Class().Prop(name)
		v, keep := r.attribute(obj, prop, name)
		if !keep {
			continue
		}
		rv, err := r.value(v)
		if err != nil {
			return nil, err
		}
		m.Set(name, rv)
	}
	return m, nil
}

// names returns the loaded properties of obj followed, unless the dump is
// reloadable, by the computed properties that have a value.
func (r *representer) names(obj *db.Object) []string {
	names := obj.Names()
	if r.opts.Reloadable {
		return names
	}
	for _, p := range obj.Class().Properties {
		if p.Computed && obj.Has(p.Name) {
			names = append(names, p.Name)
		}
	}
	return names
}

// attribute returns the value to represent for the property of obj, and
// false when the attribute is dropped.
func (r *representer) attribute(obj *db.Object, prop *schema.Property, name string) (any, bool) {
	if r.opts.Reloadable {
		if prop == nil || prop.Computed || prop.Type.Kind == schema.KindBackRef {
			return nil, false
		}
		v, _ := obj.Loaded(name)
		return reloadable(v, prop.Type), true
	}

	v, _ := obj.Get(name)
	if target, ok := r.opts.ObjectsMap[obj.Class().Name+"."+name]; ok {
		return mapped(v, target)
	}
	if ref, ok := v.(*db.Object); ok {
		if target, ok := r.opts.ObjectsMap[ref.Class().Name]; ok {
			return mapped(v, target)
		}
	}
	return v, true
}

func mapped(v any, target string) (any, bool) {
	if target == "" {
		return nil, false
	}
	if obj, ok := v.(*db.Object); ok {
		mv, _ := obj.Get(target)
		return mv, true
	}
	return v, true
}

// reloadable renders references as the value of their target property.
func reloadable(v any, t *schema.ValueType) any {
	switch t.Kind {
	case schema.KindRef:
		if obj, ok := v.(*db.Object); ok {
			target, _ := obj.Loaded(t.Prop)
			return target
		}
	case schema.KindList:
		if t.Elem.Kind == schema.KindRef {
			if l, ok := v.(*db.List); ok {
				items := l.Values()
				out := make([]any, len(items))
				for i, item := range items {
					out[i] = reloadable(item, t.Elem)
				}
				return out
			}
		}
	}
	return v
}
