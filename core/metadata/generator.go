// Package metadata generates API descriptions from a schema: OpenAPI 3.0
// component schemas for every class, view paths with their filters, and
// JSON introspection records of classes and properties.
package metadata

import (
	"encoding/json"
	"fmt"

	"github.com/artpar/racksdb/core/dberr"
	"github.com/artpar/racksdb/core/dtype"
	"github.com/artpar/racksdb/core/schema"
)

// Spec represents an OpenAPI 3.0 specification.
type Spec struct {
	OpenAPI    string              `json:"openapi"`
	Info       Info                `json:"info"`
	Paths      map[string]PathItem `json:"paths"`
	Components Components          `json:"components"`
}

// Info provides API metadata.
type Info struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Version     string `json:"version"`
}

// PathItem contains the operations of a path. Views are read only.
type PathItem struct {
	Get *Operation `json:"get,omitempty"`
}

// Operation represents an API operation.
type Operation struct {
	Description string              `json:"description,omitempty"`
	Parameters  []Parameter         `json:"parameters,omitempty"`
	Responses   map[string]Response `json:"responses,omitempty"`
}

// Parameter represents a query parameter.
type Parameter struct {
	Name            string  `json:"name"`
	In              string  `json:"in"`
	Description     string  `json:"description,omitempty"`
	Required        bool    `json:"required"`
	Schema          *Schema `json:"schema"`
	Style           string  `json:"style,omitempty"`
	Explode         *bool   `json:"explode,omitempty"`
	AllowEmptyValue bool    `json:"allowEmptyValue,omitempty"`
}

// Response represents an API response.
type Response struct {
	Description string               `json:"description"`
	Content     map[string]MediaType `json:"content,omitempty"`
}

// MediaType represents a media type.
type MediaType struct {
	Schema *Schema `json:"schema,omitempty"`
}

// Schema represents a JSON Schema.
type Schema struct {
	Type        string             `json:"type,omitempty"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
	Ref         string             `json:"$ref,omitempty"`
	Default     any                `json:"default,omitempty"`
	Example     any                `json:"example,omitempty"`
}

// Components contains reusable schemas.
type Components struct {
	Schemas map[string]*Schema `json:"schemas"`
}

// View describes a root aggregation served at /<Content>.
type View struct {
	Content     string
	Description string
	// Object is the class of the objects of the view.
	Object  string
	Filters []Filter
}

// Filter is a query filter of a view.
type Filter struct {
	Name        string
	Description string
	// Array filters accept several values.
	Array bool
}

// ViewParameter is a parameter accepted by every view.
type ViewParameter struct {
	Name        string
	Description string
	// Flag parameters have no value.
	Flag    bool
	Default string
	Choices []string
}

// Generator generates OpenAPI specs from a schema.
type Generator struct {
	schema *schema.Schema
	info   Info
}

// NewGenerator creates a new OpenAPI generator.
func NewGenerator(s *schema.Schema) *Generator {
	return &Generator{
		schema: s,
		info: Info{
			Title:   "RacksDB REST API",
			Version: s.Version,
		},
	}
}

// SetInfo sets the API info.
func (g *Generator) SetInfo(info Info) {
	g.info = info
}

// Generate creates the specification of the views and the components of
// every class.
func (g *Generator) Generate(views []View, params []ViewParameter) (*Spec, error) {
	components, err := g.Components()
	if err != nil {
		return nil, err
	}

	spec := &Spec{
		OpenAPI:    "3.0.0",
		Info:       g.info,
		Paths:      make(map[string]PathItem, len(views)),
		Components: Components{Schemas: components},
	}
	for _, view := range views {
		if _, ok := g.schema.Class(view.Object); !ok {
			return nil, dberr.Metadataf("Unable to find class %s of view %s in schema", view.Object, view.Content)
		}
		op := &Operation{
			Description: view.Description,
			Responses:   viewResponses(view.Object),
		}
		for _, f := range view.Filters {
			op.Parameters = append(op.Parameters, filterParameter(f))
		}
		for _, p := range params {
			op.Parameters = append(op.Parameters, viewParameter(p))
		}
		spec.Paths["/"+view.Content] = PathItem{Get: op}
	}
	return spec, nil
}

// ToJSON renders the spec as indented JSON.
func (s *Spec) ToJSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

func filterParameter(f Filter) Parameter {
	p := Parameter{
		Name:        f.Name,
		In:          "query",
		Description: f.Description,
		Schema:      &Schema{Type: "string"},
	}
	if f.Array {
		explode := false
		p.Schema = &Schema{Type: "array", Items: &Schema{Type: "string"}}
		p.Style = "form"
		p.Explode = &explode
	}
	return p
}

func viewParameter(vp ViewParameter) Parameter {
	p := Parameter{
		Name:        vp.Name,
		In:          "query",
		Description: vp.Description,
		Schema:      &Schema{Type: "string"},
	}
	if vp.Flag {
		p.Schema = &Schema{}
		p.AllowEmptyValue = true
	}
	if vp.Default != "" {
		p.Schema.Default = vp.Default
	}
	if len(vp.Choices) > 0 {
		p.Schema.Enum = vp.Choices
	}
	return p
}

func viewResponses(class string) map[string]Response {
	list := &Schema{Type: "array", Items: &Schema{Ref: ref(class)}}
	return map[string]Response{
		"200": {
			Description: "successful operation",
			Content: map[string]MediaType{
				"application/json":   {Schema: list},
				"application/x-yaml": {Schema: list},
			},
		},
	}
}

func ref(class string) string {
	return "#/components/schemas/" + class
}

// Components returns the schema of every class.
func (g *Generator) Components() (map[string]*Schema, error) {
	out := make(map[string]*Schema)
	for _, c := range g.schema.Classes() {
		s, err := g.objectSchema(c)
		if err != nil {
			return nil, err
		}
		out[c.Name] = s
	}
	return out, nil
}

func (g *Generator) objectSchema(c *schema.Class) (*Schema, error) {
	s := &Schema{
		Type:        "object",
		Description: c.Description,
		Properties:  make(map[string]*Schema, len(c.Properties)),
	}
	for _, p := range c.Properties {
		ps, err := g.propertySchema(p)
		if err != nil {
			return nil, err
		}
		s.Properties[p.Name] = ps
	}
	return s, nil
}

func (g *Generator) propertySchema(p *schema.Property) (*Schema, error) {
	s := &Schema{Description: p.Description}
	example, err := propertyExample(p)
	if err != nil {
		return nil, err
	}
	s.Example = example

	t := p.Type
	switch t.Kind {
	case schema.KindObject:
		s.Ref = ref(t.Class.Name)
	case schema.KindExpandable:
		s.Type = "string"
	case schema.KindRangeID:
		s.Type = "integer"
	case schema.KindBackRef, schema.KindRef:
		if t.Prop == "" {
			s.Ref = ref(t.Class.Name)
			break
		}
		target, err := targetProperty(t)
		if err != nil {
			return nil, err
		}
		ts, err := g.propertySchema(target)
		if err != nil {
			return nil, err
		}
		// the target schema overrides description and example
		return ts, nil
	case schema.KindList:
		items, err := g.typeSchema(t.Elem)
		if err != nil {
			return nil, err
		}
		s.Type = "array"
		s.Items = items
	default:
		ts, err := g.typeSchema(t)
		if err != nil {
			return nil, err
		}
		s.Type, s.Items = ts.Type, ts.Items
	}
	return s, nil
}

// typeSchema returns the schema of a list element or of a scalar type.
func (g *Generator) typeSchema(t *schema.ValueType) (*Schema, error) {
	switch t.Kind {
	case schema.KindObject:
		return &Schema{Ref: ref(t.Class.Name)}, nil
	case schema.KindNative:
		switch t.Native {
		case schema.NativeStr:
			return &Schema{Type: "string"}, nil
		case schema.NativeInt:
			return &Schema{Type: "integer"}, nil
		case schema.NativeFloat:
			return &Schema{Type: "number"}, nil
		case schema.NativeBool:
			return &Schema{Type: "boolean"}, nil
		}
	case schema.KindDefined:
		switch t.Defined.Native() {
		case dtype.NativeString:
			return &Schema{Type: "string"}, nil
		case dtype.NativeInt:
			return &Schema{Type: "integer"}, nil
		case dtype.NativeFloat:
			return &Schema{Type: "number"}, nil
		case dtype.NativeRGBA:
			return &Schema{Type: "array", Items: &Schema{Type: "number"}}, nil
		}
	case schema.KindExpandable:
		return &Schema{Type: "string"}, nil
	case schema.KindRangeID:
		return &Schema{Type: "integer"}, nil
	case schema.KindRef:
		target, err := targetProperty(t)
		if err != nil {
			return nil, err
		}
		return g.typeSchema(target.Type)
	case schema.KindList:
		items, err := g.typeSchema(t.Elem)
		if err != nil {
			return nil, err
		}
		return &Schema{Type: "array", Items: items}, nil
	}
	return nil, dberr.Metadataf("Unable to generate schema of type %s", t)
}

func targetProperty(t *schema.ValueType) (*schema.Property, error) {
	p, ok := t.Class.Prop(t.Prop)
	if !ok {
		return nil, dberr.Metadataf("Unable to find property %s of object %s", t.Prop, t.Class.Name)
	}
	return p, nil
}

// propertyExample returns the example of the property, parsed through its
// defined type. References borrow the example of their target property.
func propertyExample(p *schema.Property) (any, error) {
	if p.Example != nil {
		if p.Type.Kind != schema.KindDefined {
			return p.Example, nil
		}
		v, err := p.Type.Defined.Parse(fmt.Sprint(p.Example))
		if err != nil {
			return nil, &dberr.Error{
				Kind: dberr.KindSchemaMetadata,
				Msg:  fmt.Sprintf("Unable to parse example of property %s", p.Name),
				Err:  err,
			}
		}
		if c, ok := v.(dtype.RGBA); ok {
			return c[:], nil
		}
		return v, nil
	}
	if (p.Type.Kind == schema.KindRef || p.Type.Kind == schema.KindBackRef) && p.Type.Prop != "" {
		target, err := targetProperty(p.Type)
		if err != nil {
			return nil, err
		}
		return propertyExample(target)
	}
	return nil, nil
}
