package tree

import (
	"errors"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/artpar/racksdb/core/dberr"
)

// maxDepth bounds alias expansion so self referencing anchors fail
// instead of recursing forever.
const maxDepth = 1000

// A document may produce aliasSlack nodes plus aliasRatio times its own
// node count. Nested anchors beyond that are rejected.
const (
	aliasSlack = 10000
	aliasRatio = 10
)

// ParseYAML decodes the first document of data. An empty document yields
// nil. JSON input is accepted since JSON is a subset of YAML.
func ParseYAML(data []byte) (any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, dberr.Wrap(dberr.KindFormat, err)
	}
	return FromYAML(&doc)
}

// DecodeYAML reads the first document from r.
func DecodeYAML(r io.Reader) (any, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, dberr.Wrap(dberr.KindFormat, err)
	}
	return FromYAML(&doc)
}

// FromYAML converts a yaml.v3 node into a tree value, keeping mapping key
// order. Aliases are resolved and "<<" merge keys are applied, explicit
// keys winning over merged ones. A key repeated in a mapping is a
// FormatError.
func FromYAML(n *yaml.Node) (any, error) {
	d := &decoder{budget: aliasSlack + aliasRatio*countNodes(n)}
	return d.node(n, 0)
}

type decoder struct {
	// budget is the number of nodes left to produce
	budget int
}

// countNodes counts the nodes of n without following aliases.
func countNodes(n *yaml.Node) int {
	count := 0
	stack := []*yaml.Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		count++
		stack = append(stack, cur.Content...)
	}
	return count
}

func (d *decoder) node(n *yaml.Node, depth int) (any, error) {
	if depth > maxDepth {
		return nil, dberr.Formatf("line %d: document nested too deeply", n.Line)
	}
	d.budget--
	if d.budget < 0 {
		return nil, dberr.Formatf("line %d: document expands too many aliases", n.Line)
	}
	switch n.Kind {
	case 0:
		return nil, nil
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return d.node(n.Content[0], depth+1)
	case yaml.AliasNode:
		return d.node(n.Alias, depth+1)
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := d.node(item, depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.MappingNode:
		return d.mapping(n, depth)
	case yaml.ScalarNode:
		return fromScalar(n)
	}
	return nil, dberr.Formatf("line %d: unsupported YAML node", n.Line)
}

func (d *decoder) mapping(n *yaml.Node, depth int) (*Map, error) {
	explicit := make(map[string]bool)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i]
		if isMerge(key) {
			continue
		}
		if explicit[key.Value] {
			return nil, dberr.Formatf("line %d: mapping key %s already defined", key.Line, key.Value)
		}
		explicit[key.Value] = true
	}

	out := NewMap()
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], n.Content[i+1]
		if isMerge(key) {
			if err := d.merge(out, value, explicit, depth); err != nil {
				return nil, err
			}
			continue
		}
		v, err := d.node(value, depth+1)
		if err != nil {
			return nil, err
		}
		out.Set(key.Value, v)
	}
	return out, nil
}

func isMerge(key *yaml.Node) bool {
	return key.Kind == yaml.ScalarNode && key.Value == "<<" && (key.Tag == "!!merge" || key.Tag == "")
}

func (d *decoder) merge(out *Map, value *yaml.Node, explicit map[string]bool, depth int) error {
	sources := []*yaml.Node{value}
	if resolved := resolveAlias(value); resolved.Kind == yaml.SequenceNode {
		sources = resolved.Content
	}
	for _, src := range sources {
		v, err := d.node(src, depth+1)
		if err != nil {
			return err
		}
		m, ok := v.(*Map)
		if !ok {
			return dberr.Formatf("line %d: merge key value is not a mapping", src.Line)
		}
		for _, k := range m.keys {
			if explicit[k] || out.Has(k) {
				continue
			}
			out.Set(k, m.values[k])
		}
	}
	return nil
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func fromScalar(n *yaml.Node) (any, error) {
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, dberr.Wrap(dberr.KindFormat, err)
	}
	switch t := v.(type) {
	case time.Time:
		// timestamps stay literal, no schema type maps to them
		return n.Value, nil
	case int64:
		return int(t), nil
	case uint64:
		return int(t), nil
	}
	return v, nil
}
