package dumper

import (
	"fmt"
	"io"
	"strings"

	"github.com/artpar/racksdb/core/dberr"
	"github.com/artpar/racksdb/core/nodeset"
)

// ConsoleDumper prints lists of names, one per line or folded in a range
// expression.
type ConsoleDumper struct{}

// NewConsoleDumper creates a new console dumper.
func NewConsoleDumper() *ConsoleDumper {
	return &ConsoleDumper{}
}

// Name returns the format name.
func (d *ConsoleDumper) Name() string {
	return "console"
}

// Description returns the dumper description.
func (d *ConsoleDumper) Description() string {
	return "Lists of names for terminals"
}

// Dump writes a list of strings. Any other value is a DumperError.
func (d *ConsoleDumper) Dump(w io.Writer, v any, opts Options) error {
	var names []string
	switch t := v.(type) {
	case []string:
		names = t
	case []any:
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return dberr.Dumperf("Unsupported type '%T' for console dump", item)
			}
			names = append(names, s)
		}
	default:
		return dberr.Dumperf("Unsupported type '%T' for console dump", v)
	}

	var out string
	if opts.Fold {
		out = nodeset.Fold(names)
	} else {
		out = strings.Join(names, "\n")
	}
	if out == "" {
		return nil
	}
	_, err := fmt.Fprintln(w, out)
	return err
}

func init() {
	if err := Register(NewConsoleDumper()); err != nil {
		fmt.Printf("failed to register console dumper: %v\n", err)
	}
}
