package metadata

import (
	"github.com/artpar/racksdb/core/schema"
)

// ClassInfo describes a class for introspection.
type ClassInfo struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Expandable  bool           `json:"expandable,omitempty"`
	Properties  []PropertyInfo `json:"properties"`
}

// PropertyInfo describes a property for introspection.
type PropertyInfo struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Key         bool   `json:"key,omitempty"`
	Computed    bool   `json:"computed,omitempty"`
	Default     any    `json:"default,omitempty"`
	Example     any    `json:"example,omitempty"`
	Description string `json:"description,omitempty"`
}

// SchemaInfo describes a whole schema.
type SchemaInfo struct {
	Version string            `json:"version"`
	Types   map[string]string `json:"types"`
	Content ClassInfo         `json:"content"`
	Classes []ClassInfo       `json:"classes"`
}

// Describe returns the introspection records of the schema, classes in
// declaration order.
func Describe(s *schema.Schema) SchemaInfo {
	info := SchemaInfo{
		Version: s.Version,
		Types:   make(map[string]string),
		Content: describeClass(s.Content),
	}
	for _, name := range s.Types().Names() {
		t, _ := s.Types().Get(name)
		info.Types[name] = t.Pattern()
	}
	for _, c := range s.Classes() {
		info.Classes = append(info.Classes, describeClass(c))
	}
	return info
}

func describeClass(c *schema.Class) ClassInfo {
	ci := ClassInfo{
		Name:        c.Name,
		Description: c.Description,
		Expandable:  c.Expandable,
		Properties:  make([]PropertyInfo, 0, len(c.Properties)),
	}
	for _, p := range c.Properties {
		pi := PropertyInfo{
			Name:        p.Name,
			Type:        p.Type.Spec(),
			Required:    p.Required,
			Key:         p.Key,
			Computed:    p.Computed,
			Example:     p.Example,
			Description: p.Description,
		}
		if p.HasDefault {
			pi.Default = p.Default
		}
		ci.Properties = append(ci.Properties, pi)
	}
	return ci
}

// ViewInfo describes a view for API generators.
type ViewInfo struct {
	Path        string       `json:"path"`
	Description string       `json:"description"`
	Object      string       `json:"object"`
	Filters     []FilterInfo `json:"filters"`
}

// FilterInfo describes a filter of a view.
type FilterInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Array       bool   `json:"array,omitempty"`
}

// Views returns the descriptors of the views, in order.
func Views(views []View) []ViewInfo {
	out := make([]ViewInfo, 0, len(views))
	for _, v := range views {
		vi := ViewInfo{
			Path:        "/" + v.Content,
			Description: v.Description,
			Object:      v.Object,
			Filters:     make([]FilterInfo, 0, len(v.Filters)),
		}
		for _, f := range v.Filters {
			vi.Filters = append(vi.Filters, FilterInfo{Name: f.Name, Description: f.Description, Array: f.Array})
		}
		out = append(out, vi)
	}
	return out
}
