/*
Package schema defines the classes, properties and value types of a
database, and parses them from a schema document.

# Schema Document

	_version: "1"
	_content:
	  properties:
	    apples: list[:Apple]
	    pear:   { type: ":Pear" }
	_objects:
	  Apple:
	    properties:
	      name:   key str
	      color:  { type: str, default: red }
	      weight: optional ~weight
	  Pear:
	    properties:
	      variety: str

_content declares the root class, whose properties are the top level keys
of a database. _objects declares every other class.

# Property Specifications

A property is declared either by a string or by a map. The string form is

	[key] [computed] [optional | default <literal>] <type>

and the map form carries the fields type, optional, key, computed, default,
example and description. A property without default is required unless
marked optional.

# Value Types

  - str, int, float, bool: native scalars
  - expandable:            a range string such as "rack[01-10]"
  - rangeid:               an integer incremented along a range
  - ~name:                 a defined type
  - :Class:                a nested object
  - list[type]:            a sequence
  - $Class.prop:           a reference to the object whose prop equals the value
  - ^Class[.prop]:         the nearest ancestor of Class, or its prop

An extensions document using the same layout may add properties to
existing classes, add classes and add root properties.
*/
package schema
