package encode

import (
	"fmt"
	"reflect"

	"github.com/Viatorus/compile-time-printer/encio"
	"github.com/Viatorus/compile-time-printer/token"
	"github.com/Viatorus/compile-time-printer/types"
)

// NewStruct returns an Encodable for structs.
func NewStruct(ty reflect.Type, src Source) Encodable {
	if ty.Kind() != reflect.Struct {
		panic(encio.NewError(encio.ErrBadType, fmt.Sprintf("%v is not a struct", ty), 0))
	}

	e := &Struct{ty: ty}
	for _, field := range types.StructFields(ty) {
		enc := src.NewEncodable(field.Type, nil)
		if u := elemFailure(ty, enc, "field "+field.Name); u != nil {
			return u
		}
		e.fields = append(e.fields, structField{
			index: field.Index,
			enc:   enc,
		})
	}
	return e
}

// Struct encodes structs as a tuple of their exported fields, in declaration order.
// Fields tagged `ctp:"-"` are skipped.
type Struct struct {
	ty     reflect.Type
	fields []structField
}

type structField struct {
	index []int
	enc   *Encodable
}

// Type implements Encodable.
func (e *Struct) Type() reflect.Type { return e.ty }

// Encode implements Encodable.
func (e *Struct) Encode(v reflect.Value, s *Stream) error {
	if err := s.Open(token.TupleBegin); err != nil {
		return err
	}
	for _, f := range e.fields {
		if err := (*f.enc).Encode(v.FieldByIndex(f.index), s); err != nil {
			return err
		}
	}
	s.Close()
	return nil
}

// NewTuple returns an Encodable for types.Tuple.
func NewTuple(src Source) *Tuple {
	return &Tuple{src: src}
}

// Tuple encodes types.Tuple as TupleBegin, each element by its dynamic type, TupleEnd.
type Tuple struct {
	src Source
}

// Type implements Encodable.
func (e *Tuple) Type() reflect.Type { return types.TupleType }

// Encode implements Encodable.
func (e *Tuple) Encode(v reflect.Value, s *Stream) error {
	if err := s.Open(token.TupleBegin); err != nil {
		return err
	}
	for i := 0; i < v.Len(); i++ {
		if err := EncodeDynamic(e.src, v.Index(i).Elem(), s); err != nil {
			return err
		}
	}
	s.Close()
	return nil
}

// NewComplex returns an Encodable for complex kinds.
func NewComplex(ty reflect.Type) *Complex {
	var part reflect.Type
	switch ty.Kind() {
	case reflect.Complex64:
		part = reflect.TypeOf(float32(0))
	case reflect.Complex128:
		part = reflect.TypeOf(float64(0))
	default:
		panic(encio.NewError(encio.ErrBadType, fmt.Sprintf("%v is not complex", ty), 0))
	}
	return &Complex{
		ty:   ty,
		part: NewFloat(part),
	}
}

// Complex encodes complex numbers as the tuple (real, imag).
type Complex struct {
	ty   reflect.Type
	part *Float
}

// Type implements Encodable.
func (e *Complex) Type() reflect.Type { return e.ty }

// Encode implements Encodable.
func (e *Complex) Encode(v reflect.Value, s *Stream) error {
	c := v.Complex()
	if err := s.Open(token.TupleBegin); err != nil {
		return err
	}
	if err := e.part.Encode(reflect.ValueOf(real(c)).Convert(e.part.ty), s); err != nil {
		return err
	}
	if err := e.part.Encode(reflect.ValueOf(imag(c)).Convert(e.part.ty), s); err != nil {
		return err
	}
	s.Close()
	return nil
}

// NewNil returns the Encodable of untyped nil.
func NewNil() *Nil {
	return &Nil{}
}

// Nil encodes an absent value as the empty tuple.
type Nil struct{}

// Type implements Encodable.
func (e *Nil) Type() reflect.Type { return nil }

// Encode implements Encodable.
func (e *Nil) Encode(_ reflect.Value, s *Stream) error {
	return encodeEmptyTuple(s)
}

func encodeEmptyTuple(s *Stream) error {
	if err := s.Open(token.TupleBegin); err != nil {
		return err
	}
	s.Close()
	return nil
}
