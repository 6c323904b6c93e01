// Package db loads a database tree into typed objects following a schema.
//
// Loading is a bounded recursive procedure. Properties of an object are read
// in several passes: a property whose objects refer to classes not loaded
// yet, or to back references not set yet on an ancestor, is deferred to the
// next pass. A pass that makes no progress fails the load.
//
// Once loaded, a Database is read-only and may be shared between goroutines.
package db

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/artpar/racksdb/core/schema"
	"github.com/artpar/racksdb/core/source"
	"github.com/artpar/racksdb/core/tree"
	"github.com/artpar/racksdb/ports"
)

// Database is a loaded object graph.
type Database struct {
	schema *schema.Schema
	hooks  *Hooks
	logger zerolog.Logger
	loadID string

	objects []*Object
	root    *Object

	// index lists the objects of each class in load order.
	index map[string][]*Object
	// keys registers the key values of each keyed class.
	keys map[string]map[any]bool
	// loaded holds the classes references may target.
	loaded map[*schema.Class]bool
}

// LoadStats describes a finished load.
type LoadStats struct {
	ID       string
	Duration time.Duration
	// Objects counts the expanded objects of each indexed class.
	Objects map[string]int
	Err     error
}

// Observer is notified of every load.
type Observer interface {
	ObserveLoad(stats LoadStats)
}

type options struct {
	hooks    *Hooks
	logger   zerolog.Logger
	observer Observer
	ids      ports.IDGenerator
}

// Option configures Load.
type Option func(*options)

// WithHooks sets the filter and attribute hooks of the classes.
func WithHooks(h *Hooks) Option {
	return func(o *options) { o.hooks = h }
}

// WithLogger sets the logger of the load.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithObserver sets the observer notified when the load ends.
func WithObserver(obs Observer) Option {
	return func(o *options) { o.observer = obs }
}

// WithIDGenerator sets the generator of load identifiers. Without one the
// load identifier is empty.
func WithIDGenerator(g ports.IDGenerator) Option {
	return func(o *options) { o.ids = g }
}

// Load reads the database provided by loader and builds its objects.
func Load(s *schema.Schema, loader source.Loader, opts ...Option) (*Database, error) {
	cfg := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	start := time.Now()
	var id string
	if cfg.ids != nil {
		id = cfg.ids.New()
	}
	logger := cfg.logger.With().Str("load_id", id).Logger()

	data, err := loader.Load()
	var d *Database
	if err == nil {
		d, err = build(s, data, id, cfg.hooks, logger)
	}

	if cfg.observer != nil {
		stats := LoadStats{ID: id, Duration: time.Since(start), Err: err}
		if err == nil {
			stats.Objects = d.counts()
		}
		cfg.observer.ObserveLoad(stats)
	}
	if err != nil {
		logger.Debug().Err(err).Msg("database load failed")
		return nil, err
	}
	logger.Debug().Int("objects", len(d.objects)).Dur("duration", time.Since(start)).Msg("database loaded")
	return d, nil
}

// FromTree builds the objects of an already parsed database tree.
func FromTree(s *schema.Schema, data *tree.Map, opts ...Option) (*Database, error) {
	return Load(s, treeLoader{data}, opts...)
}

type treeLoader struct{ m *tree.Map }

func (l treeLoader) Load() (*tree.Map, error) {
	if l.m == nil {
		return tree.NewMap(), nil
	}
	return l.m, nil
}

func build(s *schema.Schema, data *tree.Map, id string, hooks *Hooks, logger zerolog.Logger) (*Database, error) {
	d := &Database{
		schema: s,
		hooks:  hooks,
		logger: logger,
		loadID: id,
		index:  make(map[string][]*Object),
		keys:   make(map[string]map[any]bool),
		loaded: make(map[*schema.Class]bool),
	}
	root, err := d.loadObject("_content", data, s.Content, nil)
	if err != nil {
		return nil, err
	}
	d.root = root
	return d, nil
}

func (d *Database) counts() map[string]int {
	out := make(map[string]int, len(d.index))
	for class, objs := range d.index {
		n := 0
		for _, obj := range objs {
			n += obj.Len()
		}
		out[class] = n
	}
	return out
}

// Schema returns the schema of the database.
func (d *Database) Schema() *schema.Schema { return d.schema }

// LoadID returns the identifier of the load that built the database.
func (d *Database) LoadID() string { return d.loadID }

// Root returns the object of the content class.
func (d *Database) Root() *Object { return d.root }

// Len returns the number of objects built by the load, expansions excluded.
func (d *Database) Len() int { return len(d.objects) }

// Get returns a property of the root object.
func (d *Database) Get(name string) (any, bool) { return d.root.Get(name) }

// Object returns an object property of the root object.
func (d *Database) Object(name string) *Object { return d.root.Object(name) }

// List returns a list property of the root object.
func (d *Database) List(name string) *List { return d.root.List(name) }

// Dict returns a dict property of the root object.
func (d *Database) Dict(name string) *Dict { return d.root.Dict(name) }

// FindObjects returns the objects of the class in load order, expanded when
// expand is set. It reports false when no object of the class is indexed.
func (d *Database) FindObjects(class string, expand bool) ([]*Object, bool) {
	objs, ok := d.index[class]
	if !ok {
		return nil, false
	}
	if !expand {
		return append([]*Object(nil), objs...), true
	}
	var out []*Object
	for _, obj := range objs {
		out = append(out, obj.Objects()...)
	}
	return out, true
}
