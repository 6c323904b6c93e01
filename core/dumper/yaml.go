package dumper

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/artpar/racksdb/core/tree"
)

// YAMLDumper dumps values as YAML.
type YAMLDumper struct{}

// NewYAMLDumper creates a new YAML dumper.
func NewYAMLDumper() *YAMLDumper {
	return &YAMLDumper{}
}

// Name returns the format name.
func (d *YAMLDumper) Name() string {
	return "yaml"
}

// Description returns the dumper description.
func (d *YAMLDumper) Description() string {
	return "YAML output format"
}

// Dump writes v as a YAML document.
func (d *YAMLDumper) Dump(w io.Writer, v any, opts Options) error {
	rv, err := Represent(v, opts)
	if err != nil {
		return err
	}
	return encodeYAML(w, rv)
}

func encodeYAML(w io.Writer, v any) error {
	node, err := tree.EncodeYAML(v)
	if err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(node); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return encoder.Close()
}

func init() {
	if err := Register(NewYAMLDumper()); err != nil {
		fmt.Printf("failed to register yaml dumper: %v\n", err)
	}
}
