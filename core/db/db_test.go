package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/artpar/racksdb/core/dberr"
	"github.com/artpar/racksdb/core/dbtest"
	"github.com/artpar/racksdb/core/schema"
	"github.com/artpar/racksdb/core/source"
)

func loadFruits(t *testing.T, content string, opts ...Option) *Database {
	t.Helper()
	d, err := Load(dbtest.Schema(t, false), source.StringLoader{Content: content}, opts...)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return d
}

func TestLoad(t *testing.T) {
	d := loadFruits(t, dbtest.DatabaseYAML)

	apples := d.Dict("apples")
	if apples.Len() != 2 {
		t.Fatalf("apples Len = %d, want 2", apples.Len())
	}
	golden, ok := apples.Get("golden")
	if !ok {
		t.Fatal("apple golden not found")
	}
	if got := golden.Int("weight"); got != 55 {
		t.Errorf("golden weight = %d, want 55", got)
	}
	if got := golden.Str("color"); got != "yellow" {
		t.Errorf("golden color = %s, want yellow", got)
	}
	if got, want := golden.Names(), []string{"name", "color", "weight"}; !reflect.DeepEqual(got, want) {
		t.Errorf("golden Names = %v, want %v", got, want)
	}
	if got := golden.String(); got != "SchemaApple(golden)" {
		t.Errorf("String = %s, want SchemaApple(golden)", got)
	}
	if golden.Parent() != d.Root() {
		t.Error("apple parent is not the root object")
	}
	if d.Root().Parent() != nil {
		t.Error("root object has a parent")
	}

	pear := d.Object("pear")
	if pear == nil {
		t.Fatal("pear not loaded")
	}
	if got := pear.Str("color"); got != "green" {
		t.Errorf("pear color = %s, want green", got)
	}
	if got := pear.Int("weight"); got != 60 {
		t.Errorf("pear weight = %d, want 60", got)
	}
}

func TestDefaults(t *testing.T) {
	d := loadFruits(t, `
apples: []
pear: {weight: 60g, variety: williams}
stock: {content: []}
`)
	if got := d.Object("pear").Str("color"); got != "yellow" {
		t.Errorf("pear color = %s, want default yellow", got)
	}
	if _, ok := d.Get("bananas"); ok {
		t.Error("optional bananas without default is set")
	}
	if d.List("bananas").Len() != 0 {
		t.Error("absent list is not empty")
	}
}

func TestBackReferences(t *testing.T) {
	d := loadFruits(t, dbtest.DatabaseYAML)

	origins := d.List("bananas").Objects()
	if len(origins) != 2 {
		t.Fatalf("banana origins = %d, want 2", len(origins))
	}

	tests := []struct {
		origin  *Object
		species string
		want    string
	}{
		{origins[0], "cavendish", "ecuador"},
		// species are declared before origin, loaded in a later pass
		{origins[1], "plantain", "ghana"},
	}

	for _, tt := range tests {
		banana, ok := tt.origin.Dict("species").Get(tt.species)
		if !ok {
			t.Fatalf("banana %s not found", tt.species)
		}
		if got := banana.Str("origin"); got != tt.want {
			t.Errorf("%s origin = %s, want %s", tt.species, got, tt.want)
		}
		if banana.Object("producer") != tt.origin {
			t.Errorf("%s producer is not its origin object", tt.species)
		}
		if !banana.Bool("edible") {
			t.Errorf("%s edible = false, want default true", tt.species)
		}
		if got, want := banana.Names(), []string{"name", "color", "origin", "producer", "edible"}; !reflect.DeepEqual(got, want) {
			t.Errorf("%s Names = %v, want %v", tt.species, got, want)
		}
	}
}

func TestReferences(t *testing.T) {
	d := loadFruits(t, dbtest.DatabaseYAML)

	golden, _ := d.Dict("apples").Get("golden")
	granny, _ := d.Dict("apples").Get("granny smith")
	crates := d.Object("stock").List("content").Values()

	if got := crates[0].(*Object).Object("species"); got != golden {
		t.Errorf("first crates species = %v, want %v", got, golden)
	}
	if got := crates[1].(*Object).Object("species"); got != granny {
		t.Errorf("second crates species = %v, want %v", got, granny)
	}
}

func TestExpansion(t *testing.T) {
	d := loadFruits(t, dbtest.DatabaseYAML)
	content := d.Object("stock").List("content")

	if content.RawLen() != 2 {
		t.Errorf("RawLen = %d, want 2", content.RawLen())
	}
	if content.Len() != 20 {
		t.Errorf("Len = %d, want 20", content.Len())
	}

	crates := content.Objects()
	if len(crates) != 20 {
		t.Fatalf("Objects = %d, want 20", len(crates))
	}

	tests := []struct {
		index int
		name  string
		id    int
		first string
	}{
		{0, "crate01", 101, "crate01"},
		{4, "crate05", 105, "crate01"},
		{9, "crate10", 110, "crate01"},
		{10, "crate11", 111, "crate11"},
		{19, "crate20", 120, "crate11"},
	}

	for _, tt := range tests {
		crate := crates[tt.index]
		if got := crate.Str("name"); got != tt.name {
			t.Errorf("crate %d name = %s, want %s", tt.index, got, tt.name)
		}
		if got := crate.Int("id"); got != tt.id {
			t.Errorf("crate %d id = %d, want %d", tt.index, got, tt.id)
		}
		if got := crate.First().Str("name"); got != tt.first {
			t.Errorf("crate %d first = %s, want %s", tt.index, got, tt.first)
		}
		if crate.IsExpandable() {
			t.Errorf("crate %d is expandable", tt.index)
		}
	}

	declared := content.Values()[1].(*Object)
	if !declared.IsExpandable() {
		t.Fatal("declared crate is not expandable")
	}
	r, _ := declared.Loaded("name")
	if got := r.(Range).String(); got != "crate[11-20]" {
		t.Errorf("range = %s, want crate[11-20]", got)
	}
	crate, err := declared.GetObject("crate13")
	if err != nil {
		t.Fatalf("GetObject failed: %v", err)
	}
	if crate.Int("id") != 113 || crate.Origin() != declared {
		t.Errorf("GetObject(crate13) = %v id %d", crate, crate.Int("id"))
	}
	if _, err := declared.GetObject("crate01"); !errors.Is(err, dberr.ErrNotFound) {
		t.Errorf("GetObject(crate01) error = %v, want not found", err)
	}

	first, ok := content.First()
	if !ok || first.Str("name") != "crate01" {
		t.Errorf("First = %v", first)
	}
	item, err := content.Index(12)
	if err != nil || item.(*Object).Str("name") != "crate13" {
		t.Errorf("Index(12) = %v, %v", item, err)
	}
	if _, err := content.Index(20); !errors.Is(err, dberr.ErrNotFound) {
		t.Errorf("Index(20) error = %v, want not found", err)
	}
}

func TestFindObjects(t *testing.T) {
	d := loadFruits(t, dbtest.DatabaseYAML)

	tests := []struct {
		class  string
		expand bool
		want   int
		found  bool
	}{
		{"Apple", false, 2, true},
		{"AppleCrate", false, 2, true},
		{"AppleCrate", true, 20, true},
		{"Banana", true, 2, true},
		{"BananaOrigin", false, 2, true},
		{"Plum", false, 0, false},
	}

	for _, tt := range tests {
		objs, ok := d.FindObjects(tt.class, tt.expand)
		if ok != tt.found || len(objs) != tt.want {
			t.Errorf("FindObjects(%s, %v) = %d, %v, want %d, %v", tt.class, tt.expand, len(objs), ok, tt.want, tt.found)
		}
	}
}

func TestRangeKeys(t *testing.T) {
	s, err := schema.ParseBytes([]byte(`
_version: "1"
_content:
  properties:
    racks: "list[:Rack]"
_objects:
  Rack:
    properties:
      name: key expandable
      slot: rangeid
`), nil, nil)
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}

	d, err := Load(s, source.StringLoader{Content: `
racks:
  - name: r[1-3]
    slot: 1
  - name: r4
    slot: 10
`})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	racks := d.Dict("racks")
	if racks.RawLen() != 2 || racks.Len() != 4 {
		t.Errorf("RawLen, Len = %d, %d, want 2, 4", racks.RawLen(), racks.Len())
	}
	if got, want := racks.Keys(), []string{"r1", "r2", "r3", "r4"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Keys = %v, want %v", got, want)
	}

	tests := []struct {
		key  string
		slot int
	}{
		{"r2", 2},
		{"r3", 3},
		{"r4", 10},
	}
	for _, tt := range tests {
		rack, ok := racks.Get(tt.key)
		if !ok {
			t.Errorf("Get(%s) not found", tt.key)
			continue
		}
		if got := rack.Int("slot"); got != tt.slot {
			t.Errorf("Get(%s) slot = %d, want %d", tt.key, got, tt.slot)
		}
	}
	if racks.Contains("r5") {
		t.Error("Contains(r5) = true")
	}
	if _, err := racks.Lookup("r5"); !errors.Is(err, dberr.ErrNotFound) {
		t.Errorf("Lookup(r5) error = %v, want not found", err)
	}

	_, err = Load(s, source.StringLoader{Content: "racks:\n  - {name: \"r[1-3]\", slot: 1}\n  - {name: r2, slot: 5}\n"})
	if err == nil || err.Error() != "Key value r2 of SchemaRack+ is not unique" {
		t.Errorf("duplicate range key error = %v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	const apple = "apples: [{name: golden, color: yellow, weight: 55g}]\n"
	const pear = "pear: {weight: 60g, variety: williams}\n"
	const stock = "stock: {content: []}\n"

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			"duplicate key",
			"apples: [{name: golden, color: yellow, weight: 55g}, {name: golden, color: red, weight: 50g}]\n" + pear + stock,
			"Key value golden of SchemaApple is not unique",
		},
		{
			"duplicate key in map form",
			"apples:\n  golden: {color: yellow, weight: 55g}\n  golden: {color: red, weight: 50g}\n" + pear + stock,
			"line 3: mapping key golden already defined",
		},
		{
			"required property",
			"apples: [{name: golden, weight: 55g}]\n" + pear + stock,
			"Property color is required in schema for object SchemaApple",
		},
		{
			"required root property",
			apple + stock,
			"Property pear is required in schema for object Schema_content",
		},
		{
			"invalid str",
			"apples: [{name: golden, color: 0, weight: 55g}]\n" + pear + stock,
			"color 0 is not a valid str",
		},
		{
			"int is not a float",
			apple + pear + stock + "bananas: [{origin: ghana, market_share: 1, species: []}]\n",
			"market_share 1 is not a valid float",
		},
		{
			"not a list",
			apple + pear + stock + "bananas: {origin: ghana, market_share: 0.2, species: []}\n",
			"token bananas list[SchemaBananaOrigin] must be a list",
		},
		{
			"not a mapping",
			apple + "pear: green\n" + stock,
			"token pear SchemaPear must be a mapping",
		},
		{
			"undefined property",
			"apples: [{name: golden, color: yellow, weight: 55g, taste: sweet}]\n" + pear + stock,
			"Property taste is not defined in schema for object SchemaApple",
		},
		{
			"expandable token on plain property",
			"apples: [{\"name[]\": golden, color: yellow, weight: 55g}]\n" + pear + stock,
			"Property name[] is not defined in schema for object SchemaApple",
		},
		{
			"defined type mismatch",
			"apples: [{name: golden, color: yellow, weight: heavy}]\n" + pear + stock,
			"Unable to match ~weight pattern with value heavy",
		},
		{
			"reference not found",
			apple + pear + "stock: {content: [{name: \"c[1-2]\", id: 1, species: fuji, quantity: 1}]}\n",
			"Unable to find species reference with value fuji",
		},
		{
			"reference into empty index",
			"apples: []\n" + pear + "stock: {content: [{name: \"c[1-2]\", id: 1, species: golden, quantity: 1}]}\n",
			"Unable to find species golden reference because objects Apple are missing in DB indexes",
		},
		{
			"back reference in input",
			apple + pear + stock + "bananas: [{origin: ghana, market_share: 0.2, species: [{name: plantain, color: green, origin: peru}]}]\n",
			"Back reference origin cannot be defined in database for object ^SchemaBananaOrigin.origin",
		},
		{
			"computed property in input",
			apple + pear + "stock: {content: [], total: 3}\n",
			"AppleStock>total is a computed property, thus it cannot be defined in database.",
		},
		{
			"invalid expandable",
			apple + pear + "stock: {content: [{name: 12, id: 1, species: golden, quantity: 1}]}\n",
			"token name of expandable is not a valid expandable str",
		},
		{
			"invalid rangeid",
			apple + pear + "stock: {content: [{name: \"c[1-2]\", id: one, species: golden, quantity: 1}]}\n",
			"token id of rangeid is not a valid rangeid integer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(dbtest.Schema(t, false), source.StringLoader{Content: tt.content})
			if err == nil {
				t.Fatal("Load succeeded, want error")
			}
			if !errors.Is(err, dberr.ErrFormat) {
				t.Errorf("error kind = %v, want format error", err)
			}
			if err.Error() != tt.want {
				t.Errorf("error = %q, want %q", err.Error(), tt.want)
			}
		})
	}
}

func TestInvertedRange(t *testing.T) {
	_, err := Load(dbtest.Schema(t, false), source.StringLoader{Content: `
apples: []
pear: {weight: 60g, variety: williams}
stock: {content: [{name: "c[5-1]", id: 1, species: golden, quantity: 1}]}
`})
	if !errors.Is(err, dberr.ErrFormat) {
		t.Errorf("error = %v, want format error", err)
	}
}

func TestCircularReferences(t *testing.T) {
	s, err := schema.ParseBytes([]byte(`
_version: "1"
_content:
  properties:
    as: "list[:A]"
    bs: "list[:B]"
_objects:
  A:
    properties:
      name: key str
      b: "$B.name"
  B:
    properties:
      name: key str
      a: "$A.name"
`), nil, nil)
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}

	_, err = Load(s, source.StringLoader{Content: "as: [{name: x, b: y}]\nbs: [{name: y, a: x}]\n"})
	want := "Unable to load bs _content after 1 passes, probably because of circular references"
	if err == nil || err.Error() != want {
		t.Errorf("error = %v, want %q", err, want)
	}
}

func TestDeferredReference(t *testing.T) {
	// stock refers to apples declared after it
	d := loadFruits(t, `
stock:
  content:
    - {name: "c[1-2]", id: 1, species: golden, quantity: 1}
pear: {weight: 60g, variety: williams}
apples: [{name: golden, color: yellow, weight: 55g}]
`)
	crate, _ := d.Object("stock").List("content").First()
	if crate.Object("species").Str("name") != "golden" {
		t.Errorf("species = %v, want golden apple", crate.Object("species"))
	}
	if got, want := d.Root().Names(), []string{"stock", "pear", "apples"}; !reflect.DeepEqual(got, want) {
		t.Errorf("root Names = %v, want %v", got, want)
	}
}

func TestDefinedTypeNative(t *testing.T) {
	// a weight written as its native value loads again
	d := loadFruits(t, `
apples: [{name: golden, color: yellow, weight: 55}]
pear: {weight: 60g, variety: williams}
stock: {content: []}
`)
	golden, _ := d.Dict("apples").Get("golden")
	if got := golden.Int("weight"); got != 55 {
		t.Errorf("weight = %d, want 55", got)
	}
}

func TestKeyedMapForm(t *testing.T) {
	d := loadFruits(t, `
apples:
  golden: {color: yellow, weight: 55g}
  granny smith: {color: green, weight: 63g}
pear: {weight: 60g, variety: williams}
stock: {content: []}
`)
	if got, want := d.Dict("apples").Keys(), []string{"golden", "granny smith"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Keys = %v, want %v", got, want)
	}
}

func TestFilter(t *testing.T) {
	d := loadFruits(t, dbtest.DatabaseYAML)

	green, err := d.Dict("apples").Filter(Criteria{"color": "green"})
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}
	if got, want := green.Keys(), []string{"granny smith"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Keys = %v, want %v", got, want)
	}

	all, err := d.Dict("apples").Filter(Criteria{"color": nil})
	if err != nil || all.Len() != 2 {
		t.Errorf("Filter(nil criterion) = %v, %v", all, err)
	}

	crates, err := d.Object("stock").List("content").Filter(Criteria{"quantity": 10})
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}
	if crates.Len() != 10 {
		t.Errorf("crates of 10 = %d, want 10", crates.Len())
	}

	if _, err := d.Dict("apples").Filter(Criteria{"taste": "sweet"}); !errors.Is(err, dberr.ErrRequest) {
		t.Errorf("unknown criterion error = %v, want request error", err)
	}
}

func TestHooks(t *testing.T) {
	hooks := NewHooks().
		Filter("AppleCrate", func(obj *Object, c Criteria) (bool, error) {
			if err := c.Check("AppleCrate", "quantity_min"); err != nil {
				return false, err
			}
			floor, _ := c["quantity_min"].(int)
			return obj.Int("quantity") >= floor, nil
		}).
		Attr("AppleStock", "total", func(obj *Object) any {
			total := 0
			for _, crate := range obj.List("content").Objects() {
				total += crate.Int("quantity")
			}
			return total
		}).
		Attr("Apple", "color", func(obj *Object) any { return "red" })

	d := loadFruits(t, dbtest.DatabaseYAML, WithHooks(hooks))

	if got := d.Object("stock").Int("total"); got != 400 {
		t.Errorf("total = %d, want 400", got)
	}

	golden, _ := d.Dict("apples").Get("golden")
	if got := golden.Str("color"); got != "red" {
		t.Errorf("Get color = %s, want red", got)
	}
	if got, _ := golden.Loaded("color"); got != "yellow" {
		t.Errorf("Loaded color = %v, want yellow", got)
	}

	full, err := d.Object("stock").List("content").Filter(Criteria{"quantity_min": 20})
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}
	if full.Len() != 10 {
		t.Errorf("crates with at least 20 = %d, want 10", full.Len())
	}
	if _, err := d.Object("stock").List("content").Filter(Criteria{"color": "red"}); !errors.Is(err, dberr.ErrRequest) {
		t.Errorf("unsupported criterion error = %v, want request error", err)
	}

	red, err := d.Dict("apples").Filter(Criteria{"color": "red"})
	if err != nil || red.Len() != 2 {
		t.Errorf("red apples = %v, %v, want 2", red, err)
	}
}

func TestExtensions(t *testing.T) {
	d, err := Load(dbtest.Schema(t, true), source.StringLoader{
		Content: dbtest.DatabaseYAML,
		Initial: map[string]any{"pear": map[string]any{"juiciness": 0.8}},
	})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := d.Object("pear").Float("juiciness"); got != 0.8 {
		t.Errorf("juiciness = %v, want 0.8", got)
	}
	plums, ok := d.Get("plums")
	if !ok {
		t.Fatal("plums default not assigned")
	}
	if plums.(*List).Len() != 0 {
		t.Errorf("plums = %d, want empty", plums.(*List).Len())
	}

	_, err = Load(dbtest.Schema(t, false), source.StringLoader{
		Content: dbtest.DatabaseYAML,
		Initial: map[string]any{"pear": map[string]any{"juiciness": 0.8}},
	})
	if err == nil || err.Error() != "Property juiciness is not defined in schema for object SchemaPear" {
		t.Errorf("error = %v", err)
	}
}

func TestSplitDatabase(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"apples.l/01.yml":          "name: golden\ncolor: yellow\nweight: 55g\n",
		"apples.l/02.json":         `{"name": "granny smith", "color": "green", "weight": "63g"}`,
		"pear.yml":                 "color: green\nweight: 60g\nvariety: williams\n",
		"stock/content.l/01.yml":   "name: crate[01-10]\nid: 101\nspecies: golden\nquantity: 30\n",
		"stock/content.l/02.toml":  "name = \"crate[11-20]\"\nid = 111\nspecies = \"granny smith\"\nquantity = 10\n",
		"bananas.l/01-ecuador.yml": "origin: ecuador\nmarket_share: 0.3\nspecies:\n  cavendish:\n    color: yellow\n",
		"bananas.l/02-ghana.yml":   "species:\n  plantain:\n    color: green\norigin: ghana\nmarket_share: 0.2\n",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	split, err := Load(dbtest.Schema(t, false), source.SplitLoader{Path: dir, Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	single := loadFruits(t, dbtest.DatabaseYAML)

	for _, class := range []string{"Apple", "AppleCrate", "Banana", "BananaOrigin", "Pear"} {
		a, _ := split.FindObjects(class, true)
		b, _ := single.FindObjects(class, true)
		if len(a) != len(b) {
			t.Errorf("%s objects = %d, want %d", class, len(a), len(b))
			continue
		}
		for i := range a {
			if a[i].String() != b[i].String() {
				t.Errorf("%s object %d = %s, want %s", class, i, a[i], b[i])
			}
		}
	}
	if got, want := split.Dict("apples").Keys(), single.Dict("apples").Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("apples = %v, want %v", got, want)
	}
}

type recorder struct {
	stats []LoadStats
}

func (r *recorder) ObserveLoad(stats LoadStats) { r.stats = append(r.stats, stats) }

type sequence struct{ n int }

func (s *sequence) New() string {
	s.n++
	return fmt.Sprintf("load-%d", s.n)
}

func TestObserverAndLoadID(t *testing.T) {
	rec := &recorder{}
	ids := &sequence{}

	d := loadFruits(t, dbtest.DatabaseYAML, WithObserver(rec), WithIDGenerator(ids), WithLogger(zerolog.Nop()))
	if d.LoadID() != "load-1" {
		t.Errorf("LoadID = %s, want load-1", d.LoadID())
	}

	_, err := Load(dbtest.Schema(t, false), source.StringLoader{Content: "pear: green"},
		WithObserver(rec), WithIDGenerator(ids))
	if err == nil {
		t.Fatal("Load succeeded, want error")
	}

	if len(rec.stats) != 2 {
		t.Fatalf("observed loads = %d, want 2", len(rec.stats))
	}
	ok, failed := rec.stats[0], rec.stats[1]
	if ok.ID != "load-1" || ok.Err != nil {
		t.Errorf("first load = %+v", ok)
	}
	if ok.Objects["AppleCrate"] != 20 || ok.Objects["Apple"] != 2 || ok.Objects["Banana"] != 2 {
		t.Errorf("objects = %v", ok.Objects)
	}
	if failed.ID != "load-2" || failed.Err == nil || failed.Objects != nil {
		t.Errorf("failed load = %+v", failed)
	}
}

func TestLoadIDWithoutGenerator(t *testing.T) {
	d := loadFruits(t, dbtest.DatabaseYAML)
	if d.LoadID() != "" {
		t.Errorf("LoadID = %q, want empty", d.LoadID())
	}
}

func TestMatchValue(t *testing.T) {
	tags := NewList("a", "b", "c")

	tests := []struct {
		name string
		got  any
		want any
		ok   bool
	}{
		{"equal str", "x", "x", true},
		{"different str", "x", "y", false},
		{"int float", 2, 2.0, true},
		{"list contains", tags, "b", true},
		{"list misses", tags, "d", false},
		{"list contains all", tags, []string{"a", "c"}, true},
		{"list misses one", tags, []any{"a", "d"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchValue(tt.got, tt.want); got != tt.ok {
				t.Errorf("matchValue(%v, %v) = %v, want %v", tt.got, tt.want, got, tt.ok)
			}
		})
	}
}
