// Package dbtest provides a small fruit inventory schema and database used
// by the tests of the core packages.
package dbtest

import (
	"strconv"
	"testing"

	"github.com/artpar/racksdb/core/dtype"
	"github.com/artpar/racksdb/core/schema"
)

// SchemaYAML declares apples, a pear, banana producers and an apple stock
// made of crate ranges.
const SchemaYAML = `
_version: "1"
_content:
  properties:
    apples: "list[:Apple]"
    pear: ":Pear"
    bananas: "optional list[:BananaOrigin]"
    stock: ":AppleStock"
_objects:
  Apple:
    description: Apples of the orchard
    properties:
      name: key str
      color:
        type: str
        description: Color of the skin
        example: red
      weight:
        type: "~weight"
        example: 55g
  Pear:
    properties:
      color: default yellow str
      weight: "~weight"
      variety: str
  BananaOrigin:
    description: Bananas producers
    properties:
      origin: str
      market_share: float
      species: "list[:Banana]"
  Banana:
    properties:
      name: key str
      color: str
      origin: "^BananaOrigin.origin"
      producer: "^BananaOrigin"
      edible: default true bool
  AppleStock:
    properties:
      content: "list[:AppleCrate]"
      total: computed int
  AppleCrate:
    properties:
      name: expandable
      id: rangeid
      species: "$Apple.name"
      quantity: int
`

// ExtensionsYAML adds plums and the juiciness of pears.
const ExtensionsYAML = `
_content:
  properties:
    plums: "default [] list[:Plum]"
_objects:
  Pear:
    properties:
      juiciness: optional float
  Plum:
    properties:
      species: str
`

// DatabaseYAML is a database valid under SchemaYAML. The species of the
// second banana producer come before its origin so that loading them is
// deferred to a second pass.
const DatabaseYAML = `
apples:
  - name: golden
    color: yellow
    weight: 55g
  - name: granny smith
    color: green
    weight: 63g
pear:
  color: green
  weight: 60g
  variety: williams
bananas:
  - origin: ecuador
    market_share: 0.3
    species:
      cavendish:
        color: yellow
  - species:
      plantain:
        color: green
    origin: ghana
    market_share: 0.2
stock:
  content:
    - name: crate[01-10]
      id: 101
      species: golden
      quantity: 30
    - name: crate[11-20]
      id: 111
      species: granny smith
      quantity: 10
`

// Weight is the "(\d+)g" defined type.
func Weight() dtype.DefinedType {
	return dtype.MustNew("weight", `(\d+)g`, dtype.NativeInt, func(m []string) (any, error) {
		return strconv.Atoi(m[1])
	})
}

// Types returns the builtin defined types plus Weight.
func Types() *dtype.Registry {
	reg := dtype.Builtins()
	// weight is not a builtin name
	_ = reg.Register(Weight())
	return reg
}

// Schema parses SchemaYAML, overlaid with ExtensionsYAML when ext is set.
func Schema(tb testing.TB, ext bool) *schema.Schema {
	tb.Helper()
	var extensions []byte
	if ext {
		extensions = []byte(ExtensionsYAML)
	}
	s, err := schema.ParseBytes([]byte(SchemaYAML), extensions, Types())
	if err != nil {
		tb.Fatalf("parse schema: %v", err)
	}
	return s
}
