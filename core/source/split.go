package source

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/artpar/racksdb/core/dberr"
	"github.com/artpar/racksdb/core/tree"
)

// extensions recognized for leaf files of a split database.
var extensions = map[string]bool{
	".yml":  true,
	".yaml": true,
	".json": true,
	".toml": true,
}

// SplitLoader reads a database split over a directory hierarchy:
//
//   - a directory is a map keyed by the names of its entries, stripped of
//     their extension
//   - a directory whose name ends with ".l" is a list of its entries
//   - a file is its parsed content
//
// Entries are read in lexical order and hidden entries are skipped.
type SplitLoader struct {
	Path   string
	Logger zerolog.Logger
}

// Load walks the hierarchy.
func (l SplitLoader) Load() (*tree.Map, error) {
	v, err := l.load(l.Path)
	if err != nil {
		return nil, err
	}
	return root(v, l.Path)
}

func (l SplitLoader) load(path string) (any, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, dberr.Formatf("DB path %s does not exist", path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	if !info.IsDir() {
		if !extensions[strings.ToLower(filepath.Ext(path))] {
			return nil, dberr.Formatf("DB contains file %s with unsupported extension", path)
		}
		l.Logger.Debug().Str("path", path).Msg("loading DB file")
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		return decode(path, data)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", path, err)
	}

	l.Logger.Debug().Str("path", path).Msg("loading DB directory")
	isList := strings.HasSuffix(info.Name(), ".l")
	var list []any
	m := tree.NewMap()
	seen := make(map[string]string)

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		key := stem(name)
		if other, dup := seen[key]; dup {
			return nil, dberr.Formatf("DB directory %s contains entries %s and %s with the same name %s", path, other, name, key)
		}
		seen[key] = name

		v, err := l.load(filepath.Join(path, name))
		if err != nil {
			return nil, err
		}
		if isList {
			list = append(list, v)
		} else {
			m.Set(key, v)
		}
	}

	if isList {
		if list == nil {
			list = []any{}
		}
		return list, nil
	}
	return m, nil
}

// stem strips the last extension of name.
func stem(name string) string {
	if ext := filepath.Ext(name); ext != "" && ext != name {
		return strings.TrimSuffix(name, ext)
	}
	return name
}
