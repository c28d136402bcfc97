package encode

import (
	"fmt"
	"reflect"

	"github.com/Viatorus/compile-time-printer/encio"
)

// NewPointer returns a new pointer Encodable.
func NewPointer(ty reflect.Type, src Source) Encodable {
	if ty.Kind() != reflect.Ptr {
		panic(encio.NewError(encio.ErrBadType, fmt.Sprintf("%v is not a pointer", ty), 0))
	}

	elem := src.NewEncodable(ty.Elem(), nil)
	if u := elemFailure(ty, elem, "element"); u != nil {
		return u
	}

	return &Pointer{
		ty:   ty,
		elem: elem,
	}
}

// Pointer encodes the value pointed to.
// A nil pointer is the empty tuple.
type Pointer struct {
	ty   reflect.Type
	elem *Encodable
}

// Type implements Encodable.
func (e *Pointer) Type() reflect.Type { return e.ty }

// Encode implements Encodable.
func (e *Pointer) Encode(v reflect.Value, s *Stream) error {
	if v.IsNil() {
		return encodeEmptyTuple(s)
	}
	if err := s.descend(); err != nil {
		return err
	}
	defer s.ascend()
	return (*e.elem).Encode(v.Elem(), s)
}

// NewInterface returns a new interface Encodable.
func NewInterface(ty reflect.Type, src Source) *Interface {
	if ty.Kind() != reflect.Interface {
		panic(encio.NewError(encio.ErrBadType, fmt.Sprintf("%v is not an interface", ty), 0))
	}

	return &Interface{
		ty:     ty,
		source: src,
	}
}

// Interface encodes the dynamic value held by an interface,
// resolving the value's type at encode time.
// A nil interface is the empty tuple.
type Interface struct {
	ty     reflect.Type
	source Source
}

// Type implements Encodable.
func (e *Interface) Type() reflect.Type { return e.ty }

// Encode implements Encodable.
func (e *Interface) Encode(v reflect.Value, s *Stream) error {
	if v.IsNil() {
		return encodeEmptyTuple(s)
	}
	if err := s.descend(); err != nil {
		return err
	}
	defer s.ascend()
	return EncodeDynamic(e.source, v.Elem(), s)
}

// EncodeDynamic encodes v with the Encodable src generates for v's type.
// An invalid v, as obtained from a nil interface, is the empty tuple.
func EncodeDynamic(src Source, v reflect.Value, s *Stream) error {
	if !v.IsValid() {
		return encodeEmptyTuple(s)
	}
	enc, err := Resolve(src, v.Type())
	if err != nil {
		return err
	}
	return enc.Encode(v, s)
}
