package metadata

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/artpar/racksdb/core/dberr"
	"github.com/artpar/racksdb/core/dbtest"
	"github.com/artpar/racksdb/core/schema"
)

func TestComponents(t *testing.T) {
	components, err := NewGenerator(dbtest.Schema(t, false)).Components()
	if err != nil {
		t.Fatalf("Components failed: %v", err)
	}
	if len(components) != 6 {
		t.Errorf("components = %d, want 6", len(components))
	}

	apple := components["Apple"]
	if apple == nil {
		t.Fatal("Apple component missing")
	}
	if apple.Type != "object" || apple.Description != "Apples of the orchard" {
		t.Errorf("Apple = %+v", apple)
	}

	tests := []struct {
		class, prop string
		typ         string
		ref         string
		example     any
	}{
		{"Apple", "name", "string", "", nil},
		{"Apple", "color", "string", "", "red"},
		{"Apple", "weight", "integer", "", 55},
		{"AppleCrate", "name", "string", "", nil},
		{"AppleCrate", "id", "integer", "", nil},
		{"AppleCrate", "species", "string", "", nil},
		{"AppleStock", "total", "integer", "", nil},
		{"Banana", "origin", "string", "", nil},
		{"Banana", "producer", "", "#/components/schemas/BananaOrigin", nil},
		{"BananaOrigin", "market_share", "number", "", nil},
		{"Banana", "edible", "boolean", "", nil},
	}

	for _, tt := range tests {
		s := components[tt.class].Properties[tt.prop]
		if s == nil {
			t.Errorf("%s.%s missing", tt.class, tt.prop)
			continue
		}
		if s.Type != tt.typ || s.Ref != tt.ref || s.Example != tt.example {
			t.Errorf("%s.%s = %+v, want type %q ref %q example %v", tt.class, tt.prop, s, tt.typ, tt.ref, tt.example)
		}
	}

	species := components["BananaOrigin"].Properties["species"]
	if species.Type != "array" || species.Items == nil || species.Items.Ref != "#/components/schemas/Banana" {
		t.Errorf("species = %+v", species)
	}
	if got := apple.Properties["color"].Description; got != "Color of the skin" {
		t.Errorf("color description = %q", got)
	}
}

func TestComponentsBadExample(t *testing.T) {
	s, err := schema.ParseBytes([]byte(`
_version: "1"
_content:
  properties:
    pear: ":Pear"
_objects:
  Pear:
    properties:
      weight:
        type: "~weight"
        example: heavy
`), nil, dbtest.Types())
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}
	if _, err := NewGenerator(s).Components(); !errors.Is(err, dberr.ErrSchemaMetadata) {
		t.Errorf("error = %v, want schema metadata error", err)
	}
}

func TestGenerate(t *testing.T) {
	g := NewGenerator(dbtest.Schema(t, false))
	g.SetInfo(Info{Title: "Fruits", Version: "1.0"})

	views := []View{{
		Content:     "apples",
		Description: "Get information about apples",
		Object:      "Apple",
		Filters: []Filter{
			{Name: "name", Description: "Filter apples by name"},
			{Name: "tags", Description: "Filter apples by tag", Array: true},
		},
	}}
	params := []ViewParameter{
		{Name: "list", Description: "Get list of names", Flag: true},
		{Name: "format", Description: "Select output format", Choices: []string{"yaml", "json"}},
	}

	spec, err := g.Generate(views, params)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if spec.Info.Title != "Fruits" {
		t.Errorf("Title = %s, want Fruits", spec.Info.Title)
	}
	op := spec.Paths["/apples"].Get
	if op == nil {
		t.Fatal("GET /apples missing")
	}
	if len(op.Parameters) != 4 {
		t.Fatalf("parameters = %d, want 4", len(op.Parameters))
	}
	if tags := op.Parameters[1]; tags.Schema.Type != "array" || tags.Style != "form" || *tags.Explode {
		t.Errorf("tags parameter = %+v", tags)
	}
	if list := op.Parameters[2]; !list.AllowEmptyValue || list.Schema.Type != "" {
		t.Errorf("list parameter = %+v", list)
	}
	if format := op.Parameters[3]; strings.Join(format.Schema.Enum, ",") != "yaml,json" {
		t.Errorf("format parameter = %+v", format)
	}
	items := op.Responses["200"].Content["application/json"].Schema.Items
	if items.Ref != "#/components/schemas/Apple" {
		t.Errorf("response items = %+v", items)
	}

	data, err := spec.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if doc["openapi"] != "3.0.0" {
		t.Errorf("openapi = %v", doc["openapi"])
	}

	views[0].Object = "Plum"
	if _, err := g.Generate(views, nil); !errors.Is(err, dberr.ErrSchemaMetadata) {
		t.Errorf("unknown view class error = %v, want schema metadata error", err)
	}
}

func TestDescribe(t *testing.T) {
	info := Describe(dbtest.Schema(t, true))

	if info.Version != "1" {
		t.Errorf("Version = %s, want 1", info.Version)
	}
	if info.Types["weight"] != `(\d+)g` {
		t.Errorf("weight pattern = %q", info.Types["weight"])
	}
	if len(info.Classes) != 7 || info.Classes[0].Name != "Apple" {
		t.Fatalf("classes = %+v", info.Classes)
	}

	name := info.Classes[0].Properties[0]
	if name.Name != "name" || name.Type != "str" || !name.Required || !name.Key {
		t.Errorf("Apple.name = %+v", name)
	}

	byName := make(map[string]ClassInfo)
	for _, c := range info.Classes {
		byName[c.Name] = c
	}
	if !byName["AppleCrate"].Expandable {
		t.Error("AppleCrate is not expandable")
	}
	color := byName["Pear"].Properties[0]
	if color.Default != "yellow" || color.Required {
		t.Errorf("Pear.color = %+v", color)
	}
	total := byName["AppleStock"].Properties[1]
	if !total.Computed || total.Type != "int" {
		t.Errorf("AppleStock.total = %+v", total)
	}
	if _, ok := byName["Plum"]; !ok {
		t.Error("extension class Plum missing")
	}

	var plums PropertyInfo
	for _, p := range info.Content.Properties {
		if p.Name == "plums" {
			plums = p
		}
	}
	if plums.Type != "list[:Plum]" {
		t.Errorf("content plums = %+v", plums)
	}
}

func TestViews(t *testing.T) {
	infos := Views([]View{
		{
			Content:     "apples",
			Description: "Get information about apples",
			Object:      "Apple",
			Filters: []Filter{
				{Name: "name", Description: "Filter apples by name"},
				{Name: "tags", Array: true},
			},
		},
		{Content: "pears", Object: "Pear"},
	})
	if len(infos) != 2 {
		t.Fatalf("views = %d, want 2", len(infos))
	}
	if infos[0].Path != "/apples" {
		t.Errorf("Path = %s, want /apples", infos[0].Path)
	}
	if len(infos[0].Filters) != 2 || !infos[0].Filters[1].Array || infos[0].Filters[0].Array {
		t.Errorf("Filters = %+v, want name and array tags", infos[0].Filters)
	}
	if infos[1].Filters == nil {
		t.Error("Filters of a view without filters should be empty, not nil")
	}

	data, err := json.Marshal(infos[1])
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"filters":[]`) {
		t.Errorf("json = %s, want empty filters array", data)
	}
}
