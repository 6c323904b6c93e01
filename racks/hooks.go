package racks

import (
	"github.com/artpar/racksdb/core/db"
	"github.com/artpar/racksdb/core/dberr"
)

// equipments are the properties of infrastructure parts holding objects
// placed in racks.
var equipments = []string{"nodes", "storage", "network", "misc"}

// Hooks returns the filters and computed attributes of the inventory
// classes.
func Hooks() *db.Hooks {
	return db.NewHooks().
		Attr("Datacenter", "tags", loadedTags).
		Filter("Datacenter", filterNamed("name", "tags")).
		Attr("Infrastructure", "tags", loadedTags).
		Attr("Infrastructure", "nodes", infrastructureNodes).
		Filter("Infrastructure", filterNamed("name", "tags")).
		Attr("Node", "tags", nodeTags).
		Filter("Node", filterNode).
		Attr("Rack", "nodes", rackNodes).
		Attr("Rack", "fillrate", rackFillrate).
		Filter("Rack", filterNamed("name"))
}

func loadedTags(obj *db.Object) any {
	v, ok := obj.Loaded("tags")
	if l, isList := v.(*db.List); ok && isList {
		return l
	}
	return db.NewList()
}

// nodeTags returns the tags of the infrastructure part of the node followed
// by its own tags.
func nodeTags(obj *db.Object) any {
	var tags []any
	if part := obj.Parent(); part != nil {
		if l, ok := part.Loaded("tags"); ok {
			tags = append(tags, l.(*db.List).Values()...)
		}
	}
	if l, ok := obj.Loaded("tags"); ok {
		tags = append(tags, l.(*db.List).Values()...)
	}
	return db.NewList(tags...)
}

func infrastructureNodes(obj *db.Object) any {
	var nodes []*db.Object
	for _, part := range obj.List("layout").Objects() {
		nodes = append(nodes, part.Dict("nodes").Values()...)
	}
	return db.NewDict(nodes...)
}

// placed returns the equipments of the infrastructure parts placed in the
// rack, from the given part properties.
func placed(rack *db.Object, props ...string) []*db.Object {
	var out []*db.Object
	for _, infra := range rack.Database().Dict("infrastructures").Values() {
		for _, part := range infra.List("layout").Objects() {
			if !inRack(rack, part.Object("rack")) {
				continue
			}
			for _, prop := range props {
				out = append(out, part.Dict(prop).Values()...)
			}
		}
	}
	return out
}

// inRack reports whether target is the rack, or one of the racks of an
// expandable rack.
func inRack(rack, target *db.Object) bool {
	if target == nil {
		return false
	}
	name := target.Str("name")
	if r, ok := rack.Loaded("name"); ok {
		if rng, isRange := r.(db.Range); isRange {
			return rng.Contains(name)
		}
	}
	return rack.Str("name") == name
}

func rackNodes(obj *db.Object) any {
	nodes := placed(obj, "nodes")
	items := make([]any, len(nodes))
	for i, n := range nodes {
		items[i] = n
	}
	return db.NewList(items...)
}

// rackFillrate returns the ratio of the rack slots used by the equipments
// placed in the rack, each weighted by the width of its type.
func rackFillrate(obj *db.Object) any {
	t := obj.Object("type")
	if t == nil || t.Int("slots") == 0 {
		return 0.0
	}
	var used float64
	for _, eq := range placed(obj, equipments...) {
		et := eq.Object("type")
		if et == nil {
			continue
		}
		used += float64(eq.Len()) * et.Float("height") * et.Float("width")
	}
	slots := float64(t.Int("slots"))
	if obj.IsExpandable() {
		slots *= float64(obj.Len())
	}
	return used / slots
}

// filterNamed returns a filter accepting criteria on the name and tags of
// objects.
func filterNamed(allowed ...string) db.FilterFunc {
	return func(obj *db.Object, c db.Criteria) (bool, error) {
		if err := c.Check(obj.Class().Name, allowed...); err != nil {
			return false, err
		}
		if name, ok := c["name"].(string); ok && name != obj.Str("name") {
			return false, nil
		}
		return hasTags(obj, c)
	}
}

func filterNode(obj *db.Object, c db.Criteria) (bool, error) {
	if err := c.Check(obj.Class().Name, "infrastructure", "name", "tags"); err != nil {
		return false, err
	}
	if name, ok := c["name"].(string); ok && name != obj.Str("name") {
		return false, nil
	}
	if infra, ok := c["infrastructure"].(string); ok {
		if i := obj.Object("infrastructure"); i == nil || i.Str("name") != infra {
			return false, nil
		}
	}
	return hasTags(obj, c)
}

// hasTags reports whether obj has every tag of the tags criterion. A tags
// criterion without any tag is a request error.
func hasTags(obj *db.Object, c db.Criteria) (bool, error) {
	if c["tags"] == nil {
		return true, nil
	}
	want := c.Strings("tags")
	if len(want) == 0 {
		return false, dberr.Requestf("At least one tag is required to filter %s objects", obj.Class().Name)
	}
	tags := obj.List("tags").Items()
	for _, tag := range want {
		found := false
		for _, t := range tags {
			if t == tag {
				found = true
				break
			}
		}
		if !found {
			return false, nil
		}
	}
	return true, nil
}
