package racks

import (
	"github.com/artpar/racksdb/core/db"
	"github.com/artpar/racksdb/core/dberr"
	"github.com/artpar/racksdb/core/metadata"
)

// View is a root aggregation of the inventory with the filters it accepts
// and the objects map used to dump it.
type View struct {
	Content     string
	Object      string
	Description string
	Filters     []metadata.Filter
	// ObjectsMap maps classes and "Class.property" attributes to the
	// property representing them in dumps, the empty string dropping them.
	ObjectsMap map[string]string

	collect func(*DB) any
}

// ViewSet is the ordered set of views of the inventory.
type ViewSet []View

var views = ViewSet{
	{
		Content:     "datacenters",
		Object:      "Datacenter",
		Description: "Get information about datacenters",
		Filters: []metadata.Filter{
			{Name: "name", Description: "Filter datacenters by name"},
			{Name: "tags", Description: "Filter datacenters by tag", Array: true},
		},
		ObjectsMap: map[string]string{
			"Datacenter":     "",
			"DatacenterRoom": "name",
			"RacksRow":       "name",
			"Rack":           "name",
			"Rack.nodes":     "",
		},
		collect: func(d *DB) any { return d.Datacenters() },
	},
	{
		Content:     "infrastructures",
		Object:      "Infrastructure",
		Description: "Get information about infrastructures",
		Filters: []metadata.Filter{
			{Name: "name", Description: "Filter infrastructures by name"},
			{Name: "tags", Description: "Filter infrastructures by tag", Array: true},
		},
		ObjectsMap: map[string]string{
			"Datacenter":     "name",
			"DatacenterRoom": "name",
			"Rack":           "name",
			"Infrastructure": "",
		},
		collect: func(d *DB) any { return d.Infrastructures() },
	},
	{
		Content:     "nodes",
		Object:      "Node",
		Description: "Get information about nodes",
		Filters: []metadata.Filter{
			{Name: "name", Description: "Filter nodes by name"},
			{Name: "infrastructure", Description: "Filter nodes by infrastructure"},
			{Name: "tags", Description: "Filter nodes by tag", Array: true},
		},
		ObjectsMap: map[string]string{
			"Datacenter":     "name",
			"DatacenterRoom": "name",
			"RacksRow":       "name",
			"Infrastructure": "name",
			"Rack.nodes":     "",
		},
		collect: func(d *DB) any { return d.Nodes() },
	},
	{
		Content:     "racks",
		Object:      "Rack",
		Description: "Get information about racks",
		Filters: []metadata.Filter{
			{Name: "name", Description: "Filter racks by name"},
		},
		ObjectsMap: map[string]string{
			"Datacenter":     "name",
			"DatacenterRoom": "name",
			"RacksRow":       "name",
			"Rack":           "",
			"NodeType":       "id",
			"Infrastructure": "name",
		},
		collect: func(d *DB) any { return d.Racks() },
	},
}

// Parameters are accepted by every view.
var Parameters = []metadata.ViewParameter{
	{Name: "list", Description: "Get list of object names instead of full objects", Flag: true},
	{Name: "fold", Description: "Fold expandable objects", Flag: true},
	{Name: "with_objects_types", Description: "Report object types in YAML dumps", Flag: true},
	{Name: "format", Description: "Select output format", Choices: []string{"yaml", "json"}},
}

// Views returns the views of the inventory.
func Views() ViewSet {
	return append(ViewSet(nil), views...)
}

// Get returns the view serving content.
func (s ViewSet) Get(content string) (View, error) {
	for _, v := range s {
		if v.Content == content {
			return v, nil
		}
	}
	return View{}, dberr.NotFoundf("Unable to find view %s", content)
}

// Metadata returns the descriptors of the views for API generators.
func (s ViewSet) Metadata() []metadata.View {
	out := make([]metadata.View, len(s))
	for i, v := range s {
		out[i] = metadata.View{
			Content:     v.Content,
			Description: v.Description,
			Object:      v.Object,
			Filters:     v.Filters,
		}
	}
	return out
}

// FilterNames returns the names of the filters of the view.
func (v View) FilterNames() []string {
	names := make([]string, len(v.Filters))
	for i, f := range v.Filters {
		names[i] = f.Name
	}
	return names
}

// ViewResult holds the objects selected by a view.
type ViewResult struct {
	View View
	// Data is a *db.Dict or a *db.List of the selected objects.
	Data any
}

// View returns the objects of the view content matching the criteria.
func (d *DB) View(content string, c db.Criteria) (*ViewResult, error) {
	v, err := views.Get(content)
	if err != nil {
		return nil, err
	}
	if err := c.Check(v.Object, v.FilterNames()...); err != nil {
		return nil, err
	}

	data := v.collect(d)
	if len(c) > 0 {
		switch t := data.(type) {
		case *db.Dict:
			data, err = t.Filter(c)
		case *db.List:
			data, err = t.Filter(c)
		}
		if err != nil {
			return nil, err
		}
	}
	return &ViewResult{View: v, Data: data}, nil
}

// Objects returns the selected objects, expanded.
func (r *ViewResult) Objects() []*db.Object {
	switch t := r.Data.(type) {
	case *db.Dict:
		return t.Objects()
	case *db.List:
		return t.Objects()
	}
	return nil
}

// Names returns the names of the selected objects, expanded.
func (r *ViewResult) Names() []string {
	objs := r.Objects()
	names := make([]string, len(objs))
	for i, obj := range objs {
		names[i] = obj.Str("name")
	}
	return names
}
