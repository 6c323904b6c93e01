package dumper

import (
	"io"

	"github.com/artpar/racksdb/core/schema"
	"github.com/artpar/racksdb/core/tree"
)

// RepresentSchema converts a schema into a tree: its version, the patterns
// of the defined types, the properties of every class and of the content.
func RepresentSchema(s *schema.Schema) *tree.Map {
	out := tree.NewMap()
	out.Set("version", s.Version)

	types := tree.NewMap()
	for _, name := range s.Types().Names() {
		t, _ := s.Types().Get(name)
		types.Set(name, t.Pattern())
	}
	out.Set("types", types)

	objects := tree.NewMap()
	for _, c := range s.Classes() {
		objects.Set(c.Name, properties(c))
	}
	out.Set("objects", objects)
	out.Set("content", properties(s.Content))
	return out
}

func properties(c *schema.Class) *tree.Map {
	m := tree.NewMap()
	for _, p := range c.Properties {
		m.Set(p.Name, p.String())
	}
	return m
}

// DumpSchema writes the schema as YAML.
func DumpSchema(w io.Writer, s *schema.Schema) error {
	return encodeYAML(w, RepresentSchema(s))
}
