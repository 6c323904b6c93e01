package schema

import (
	"github.com/artpar/racksdb/core/dtype"
)

// Kind is the variant of a ValueType.
type Kind int

const (
	KindNative Kind = iota + 1
	KindDefined
	KindObject
	KindList
	KindExpandable
	KindRangeID
	KindRef
	KindBackRef
)

// Native is a native scalar kind.
type Native int

const (
	NativeStr Native = iota + 1
	NativeInt
	NativeFloat
	NativeBool
)

// String returns the schema keyword of the scalar.
func (n Native) String() string {
	switch n {
	case NativeStr:
		return "str"
	case NativeInt:
		return "int"
	case NativeFloat:
		return "float"
	case NativeBool:
		return "bool"
	}
	return "unknown"
}

var natives = map[string]Native{
	"str":   NativeStr,
	"int":   NativeInt,
	"float": NativeFloat,
	"bool":  NativeBool,
}

// ValueType is the type of a property value.
type ValueType struct {
	Kind Kind

	// Native is set for KindNative.
	Native Native

	// Defined is set for KindDefined.
	Defined dtype.DefinedType

	// Class is the nested class for KindObject and the target class for
	// KindRef and KindBackRef.
	Class *Class

	// Elem is the element type for KindList.
	Elem *ValueType

	// Prop is the target property for KindRef, and optionally KindBackRef.
	Prop string
}

// String returns the type named after runtime classes, as used in error
// messages: "list[SchemaApple]", "$SchemaApple.name", "~weight".
func (t *ValueType) String() string {
	switch t.Kind {
	case KindNative:
		return t.Native.String()
	case KindDefined:
		return "~" + t.Defined.Name()
	case KindObject:
		return t.Class.String()
	case KindList:
		return "list[" + t.Elem.String() + "]"
	case KindExpandable:
		return "expandable"
	case KindRangeID:
		return "rangeid"
	case KindRef:
		return "$" + t.Class.String() + "." + t.Prop
	case KindBackRef:
		s := "^" + t.Class.String()
		if t.Prop != "" {
			s += "." + t.Prop
		}
		return s
	}
	return "unknown"
}

// Spec returns the type in schema grammar: "list[:Apple]", "$Apple.name".
func (t *ValueType) Spec() string {
	switch t.Kind {
	case KindDefined:
		return "~" + t.Defined.Name()
	case KindObject:
		return ":" + t.Class.Name
	case KindList:
		return "list[" + t.Elem.Spec() + "]"
	case KindRef:
		return "$" + t.Class.Name + "." + t.Prop
	case KindBackRef:
		s := "^" + t.Class.Name
		if t.Prop != "" {
			s += "." + t.Prop
		}
		return s
	}
	return t.String()
}

// ObjectClass returns the class of objects held by the type: the nested
// class of an object type or of a list of objects, at any list depth.
func (t *ValueType) ObjectClass() (*Class, bool) {
	for t.Kind == KindList {
		t = t.Elem
	}
	if t.Kind == KindObject {
		return t.Class, true
	}
	return nil, false
}

// IsList reports whether the type is a list.
func (t *ValueType) IsList() bool { return t.Kind == KindList }
