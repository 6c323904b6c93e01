// Package racks models datacenter inventories: datacenters made of rooms,
// rows and racks, and infrastructures whose nodes and equipments are placed
// in those racks.
//
// The inventory is a database of the core loader driven by the racksdb
// schema embedded in this package, which an installed schema file and an
// extensions file may replace or extend.
package racks

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/rs/zerolog"

	"github.com/artpar/racksdb/adapters/idgen"
	"github.com/artpar/racksdb/core/db"
	"github.com/artpar/racksdb/core/dtype"
	"github.com/artpar/racksdb/core/schema"
	"github.com/artpar/racksdb/core/source"
	"github.com/artpar/racksdb/ports"
)

// Default locations of the schema, extensions and database.
const (
	DefaultSchema     = "/usr/share/racksdb/schemas/racksdb.yml"
	DefaultExtensions = "/etc/racksdb/extensions.yml"
	DefaultDatabase   = "/var/lib/racksdb"
)

//go:embed schemas/racksdb.yml
var embeddedSchema []byte

// EmbeddedSchema returns the racksdb schema document shipped with the
// package.
func EmbeddedSchema() []byte {
	return append([]byte(nil), embeddedSchema...)
}

// Options locate the files of an inventory.
type Options struct {
	// Schema is the schema file. An empty path, a missing or an empty file
	// selects the embedded schema.
	Schema string
	// Extensions is the optional schema extensions file.
	Extensions string
	// Database is the database file or directory.
	Database string

	Logger   zerolog.Logger
	Observer db.Observer
	IDs      ports.IDGenerator
}

// DefaultOptions returns the options of the default installation paths.
func DefaultOptions() Options {
	return Options{
		Schema:     DefaultSchema,
		Extensions: DefaultExtensions,
		Database:   DefaultDatabase,
		Logger:     zerolog.Nop(),
	}
}

// DB is a loaded inventory.
type DB struct {
	*db.Database
}

// Load reads the schema and the database located by opts.
func Load(opts Options) (*DB, error) {
	if opts.Database == "" {
		opts.Database = DefaultDatabase
	}

	s, err := LoadSchema(opts.Schema, opts.Extensions, opts.Logger)
	if err != nil {
		return nil, err
	}
	loader, err := source.Open(opts.Database, opts.Logger)
	if err != nil {
		return nil, err
	}

	dbOpts := []db.Option{db.WithLogger(opts.Logger)}
	if opts.Observer != nil {
		dbOpts = append(dbOpts, db.WithObserver(opts.Observer))
	}
	if opts.IDs != nil {
		dbOpts = append(dbOpts, db.WithIDGenerator(opts.IDs))
	}
	return New(s, loader, dbOpts...)
}

// New loads the database provided by loader with the inventory hooks. Load
// identifiers are UUIDs unless opts set another generator.
func New(s *schema.Schema, loader source.Loader, opts ...db.Option) (*DB, error) {
	base := []db.Option{db.WithHooks(Hooks()), db.WithIDGenerator(idgen.UUID{})}
	d, err := db.Load(s, loader, append(base, opts...)...)
	if err != nil {
		return nil, err
	}
	return &DB{Database: d}, nil
}

// LoadSchema parses the schema file at path, overlaid with the extensions
// file when it exists.
func LoadSchema(path, extensions string, logger zerolog.Logger) (*schema.Schema, error) {
	data, err := readOptional(path)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		logger.Debug().Str("path", path).Msg("schema file not found or empty, using embedded schema")
		data = embeddedSchema
	}

	ext, err := readOptional(extensions)
	if err != nil {
		return nil, fmt.Errorf("read schema extensions %s: %w", extensions, err)
	}
	if ext == nil && extensions != "" {
		logger.Debug().Str("path", extensions).Msg("schema extensions file not found, skipping extensions")
	}

	return schema.ParseBytes(data, ext, dtype.Builtins(), schema.WithLogger(logger))
}

// readOptional returns the content of the file, nil when path is empty or
// the file does not exist.
func readOptional(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return data, err
}

// Types returns the equipment and rack types.
func (d *DB) Types() *db.Object { return d.Object("types") }

// Datacenters returns the datacenters by name.
func (d *DB) Datacenters() *db.Dict { return d.Dict("datacenters") }

// Infrastructures returns the infrastructures by name.
func (d *DB) Infrastructures() *db.Dict { return d.Dict("infrastructures") }

// Nodes returns the nodes of every infrastructure by name.
func (d *DB) Nodes() *db.Dict {
	var nodes []*db.Object
	for _, infra := range d.Infrastructures().Values() {
		nodes = append(nodes, infra.Dict("nodes").Values()...)
	}
	return db.NewDict(nodes...)
}

// Racks returns the racks of every row of every room of every datacenter.
func (d *DB) Racks() *db.List {
	var racks []any
	for _, dc := range d.Datacenters().Values() {
		for _, room := range dc.Dict("rooms").Values() {
			for _, row := range room.Dict("rows").Values() {
				for _, rack := range row.Dict("racks").Values() {
					racks = append(racks, rack)
				}
			}
		}
	}
	return db.NewList(racks...)
}
