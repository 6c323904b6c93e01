// Package source provides the loaders that read a database into the
// normalized data tree: a single file, a split directory hierarchy, layers
// of in-memory dictionaries, a stream or a string.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"

	"github.com/artpar/racksdb/core/dberr"
	"github.com/artpar/racksdb/core/tree"
)

// Loader produces the root map of a database.
type Loader interface {
	Load() (*tree.Map, error)
}

// root checks the decoded document is a mapping. An empty document is an
// empty database.
func root(v any, origin string) (*tree.Map, error) {
	if v == nil {
		return tree.NewMap(), nil
	}
	m, ok := v.(*tree.Map)
	if !ok {
		return nil, dberr.Formatf("DB content of %s must be a mapping", origin)
	}
	return m, nil
}

// decode parses data according to the extension of name.
func decode(name string, data []byte) (any, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".toml":
		var doc map[string]any
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, &dberr.Error{Kind: dberr.KindFormat, Msg: "parse " + name, Err: err}
		}
		return tree.FromNative(doc), nil
	default:
		v, err := tree.ParseYAML(data)
		if err != nil {
			return nil, &dberr.Error{Kind: dberr.KindFormat, Msg: "parse " + name, Err: err}
		}
		return v, nil
	}
}

// FileLoader reads a single YAML, JSON or TOML file.
type FileLoader struct {
	Path string
}

// Load reads and parses the file.
func (l FileLoader) Load() (*tree.Map, error) {
	data, err := os.ReadFile(l.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, dberr.Formatf("DB path %s does not exist", l.Path)
		}
		return nil, fmt.Errorf("read %s: %w", l.Path, err)
	}
	v, err := decode(l.Path, data)
	if err != nil {
		return nil, err
	}
	return root(v, l.Path)
}

// ReaderLoader reads a YAML document from a stream.
type ReaderLoader struct {
	R io.Reader
}

// StdinLoader reads the database from the standard input.
func StdinLoader() ReaderLoader {
	return ReaderLoader{R: os.Stdin}
}

// Load decodes the first document of the stream.
func (l ReaderLoader) Load() (*tree.Map, error) {
	v, err := tree.DecodeYAML(l.R)
	if err != nil {
		return nil, err
	}
	return root(v, "stream")
}

// StringLoader parses a YAML payload. Initial, when set, is merged beneath
// the payload: the payload wins on conflicting keys.
type StringLoader struct {
	Content string
	Initial map[string]any
}

// Load parses the payload and merges it over Initial.
func (l StringLoader) Load() (*tree.Map, error) {
	v, err := tree.ParseYAML([]byte(l.Content))
	if err != nil {
		return nil, err
	}
	m, err := root(v, "string")
	if err != nil {
		return nil, err
	}
	if len(l.Initial) == 0 {
		return m, nil
	}
	base := tree.FromNative(l.Initial).(*tree.Map)
	tree.Merge(base, m)
	return base, nil
}

// DictsLoader merges layers of in-memory dictionaries, each layer
// overriding the previous ones recursively at map keys. It loads databases
// made only of defaults, or provided by other means than files. Key order of
// Go maps is lost, keys are sorted.
type DictsLoader struct {
	Dicts []map[string]any
}

// NewDictsLoader returns a loader for the given layers.
func NewDictsLoader(dicts ...map[string]any) DictsLoader {
	return DictsLoader{Dicts: dicts}
}

// Load merges the layers.
func (l DictsLoader) Load() (*tree.Map, error) {
	merged := map[string]any{}
	for i, dict := range l.Dicts {
		// layers are copied so merging never alters the caller maps
		layer, _ := tree.ToNative(tree.FromNative(dict)).(map[string]any)
		if err := mergo.Merge(&merged, layer, mergo.WithOverride); err != nil {
			return nil, dberr.Wrap(dberr.KindFormat, fmt.Errorf("merge dict %d: %w", i, err))
		}
	}
	return tree.FromNative(merged).(*tree.Map), nil
}

// Open returns the loader for path: a SplitLoader for a directory, a
// FileLoader otherwise.
func Open(path string, logger zerolog.Logger) (Loader, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, dberr.Formatf("DB path %s does not exist", path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return SplitLoader{Path: path, Logger: logger}, nil
	}
	return FileLoader{Path: path}, nil
}

// bytesLoader parses an in-memory document named after a file.
type bytesLoader struct {
	name string
	data []byte
}

// Bytes returns a loader for an in-memory document, parsed according to the
// extension of name.
func Bytes(name string, data []byte) Loader {
	return bytesLoader{name: name, data: bytes.Clone(data)}
}

func (l bytesLoader) Load() (*tree.Map, error) {
	v, err := decode(l.name, l.data)
	if err != nil {
		return nil, err
	}
	return root(v, l.name)
}
