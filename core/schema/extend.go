package schema

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/artpar/racksdb/core/dberr"
	"github.com/artpar/racksdb/core/tree"
)

// Extend merges an extensions document into a schema document.
// _content.properties entries are added to the root class. Entries of
// _objects extend the properties of existing classes or declare new ones.
// Redeclaring an existing property is accepted only with the same type.
func Extend(doc, ext *tree.Map, logger zerolog.Logger) error {
	if v, ok := ext.Get("_content"); ok && v != nil {
		logger.Debug().Msg("updating schema with additional content found in extensions")
		content, err := section(doc, "_content")
		if err != nil {
			return err
		}
		if err := mergeClass(content, v, ContentClass); err != nil {
			return err
		}
	}

	v, ok := ext.Get("_objects")
	if !ok || v == nil {
		return nil
	}
	extObjects, ok := v.(*tree.Map)
	if !ok {
		return dberr.Schemaf("Objects must be a mapping in schema extensions")
	}
	objects, err := section(doc, "_objects")
	if err != nil {
		return err
	}
	for _, name := range extObjects.Keys() {
		def, _ := extObjects.Get(name)
		existing, ok := objects.Get(name)
		if !ok {
			logger.Debug().Str("class", name).Msg("additional object class found in extensions")
			objects.Set(name, tree.DeepCopy(def))
			continue
		}
		logger.Debug().Str("class", name).Msg("updating object class with properties found in extensions")
		target, ok := existing.(*tree.Map)
		if !ok {
			return dberr.Schemaf("Definition of object %s must be a mapping", name)
		}
		if err := mergeClass(target, def, name); err != nil {
			return err
		}
	}
	return nil
}

// section returns the map stored under key in doc, creating it if absent.
func section(doc *tree.Map, key string) (*tree.Map, error) {
	v, ok := doc.Get(key)
	if !ok || v == nil {
		m := tree.NewMap()
		doc.Set(key, m)
		return m, nil
	}
	m, ok := v.(*tree.Map)
	if !ok {
		return nil, dberr.Schemaf("%s must be a mapping in schema", key)
	}
	return m, nil
}

func mergeClass(target *tree.Map, def any, class string) error {
	m, ok := def.(*tree.Map)
	if !ok {
		return dberr.Schemaf("Definition of object %s must be a mapping in schema extensions", class)
	}
	v, ok := m.Get("properties")
	if !ok || v == nil {
		return nil
	}
	extProps, ok := v.(*tree.Map)
	if !ok {
		return dberr.Schemaf("Properties of object %s must be a mapping in schema extensions", class)
	}
	props, err := section(target, "properties")
	if err != nil {
		return err
	}
	for _, name := range extProps.Keys() {
		spec, _ := extProps.Get(name)
		if current, exists := props.Get(name); exists {
			if specType(current) != specType(spec) {
				return dberr.Schemaf("Property %s of object %s cannot be redefined with type %s in extensions, it is already defined with type %s",
					name, class, specType(spec), specType(current))
			}
		}
		props.Set(name, tree.DeepCopy(spec))
	}
	return nil
}

// specType extracts the type part of a property specification.
func specType(spec any) string {
	var s string
	switch t := spec.(type) {
	case string:
		s = t
	case *tree.Map:
		v, _ := t.Get("type")
		s, _ = v.(string)
	}
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}
