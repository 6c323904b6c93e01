package dumper

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/artpar/racksdb/core/tree"
)

// JSONDumper dumps values as JSON.
type JSONDumper struct{}

// NewJSONDumper creates a new JSON dumper.
func NewJSONDumper() *JSONDumper {
	return &JSONDumper{}
}

// Name returns the format name.
func (d *JSONDumper) Name() string {
	return "json"
}

// Description returns the dumper description.
func (d *JSONDumper) Description() string {
	return "JSON output format"
}

// Dump writes v as JSON. Type tags are not represented.
func (d *JSONDumper) Dump(w io.Writer, v any, opts Options) error {
	opts.ShowTypes = false
	rv, err := Represent(v, opts)
	if err != nil {
		return err
	}
	data, err := tree.EncodeJSON(rv)
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	var buf bytes.Buffer
	if opts.Compact {
		err = json.Compact(&buf, data)
	} else {
		err = json.Indent(&buf, data, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	buf.WriteByte('\n')
	_, err = buf.WriteTo(w)
	return err
}

func init() {
	if err := Register(NewJSONDumper()); err != nil {
		fmt.Printf("failed to register json dumper: %v\n", err)
	}
}
