// Package types holds the marker values understood by the encoder, and the helpers it uses
// to name and walk Go types.
package types

import (
	"reflect"
	"strings"
)

// Descriptor stands for one or more types without carrying a value of them.
// It encodes to a single Type token whose type annotation lists the type names.
type Descriptor struct {
	types []reflect.Type
}

// For returns a Descriptor for T.
func For[T any]() Descriptor {
	return Descriptor{types: []reflect.Type{reflect.TypeOf((*T)(nil)).Elem()}}
}

// Of returns a Descriptor for the dynamic types of values.
// A nil value contributes a nil type, named "nil".
func Of(values ...any) Descriptor {
	d := Descriptor{types: make([]reflect.Type, len(values))}
	for i, v := range values {
		d.types[i] = reflect.TypeOf(v)
	}
	return d
}

// Types returns a Descriptor for the given types.
func Types(ts ...reflect.Type) Descriptor {
	return Descriptor{types: append([]reflect.Type(nil), ts...)}
}

// Types returns the described types.
func (d Descriptor) Types() []reflect.Type {
	return append([]reflect.Type(nil), d.types...)
}

// String returns the type names, comma separated.
func (d Descriptor) String() string {
	names := make([]string, len(d.types))
	for i, t := range d.types {
		names[i] = Name(t)
	}
	return strings.Join(names, ", ")
}

// Noise is a value that contributes nothing to the output.
// It lets a caller keep an argument list's shape while hiding an element.
type Noise struct{}

// Tuple is a fixed group of heterogeneous values, encoded between TupleBegin and TupleEnd.
type Tuple []any

// NewTuple returns a Tuple of elems.
func NewTuple(elems ...any) Tuple {
	return Tuple(elems)
}

var (
	DescriptorType = reflect.TypeOf(Descriptor{})
	NoiseType      = reflect.TypeOf(Noise{})
	TupleType      = reflect.TypeOf(Tuple{})
)

// Name returns the name used to annotate tokens produced by values of t.
func Name(t reflect.Type) string {
	if t == nil {
		return "nil"
	}
	return t.String()
}
