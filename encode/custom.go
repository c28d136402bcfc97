package encode

import (
	"reflect"

	"github.com/Viatorus/compile-time-printer/formatter"
	"github.com/Viatorus/compile-time-printer/token"
)

// NewCustom returns an Encodable applying the user formatter fn to values of ty.
func NewCustom(ty reflect.Type, fn formatter.Func, src Source) *Custom {
	return &Custom{
		ty:     ty,
		fn:     fn,
		source: src,
	}
}

// Custom encodes values through a user formatter as
// CustomFormatBegin, the tuple (template, fields...), CustomFormatEnd.
// Fields are encoded by their dynamic types.
type Custom struct {
	ty     reflect.Type
	fn     formatter.Func
	source Source
}

// Type implements Encodable.
func (e *Custom) Type() reflect.Type { return e.ty }

// Encode implements Encodable.
// Nil pointers and interfaces encode as the empty tuple; the formatter never sees them.
func (e *Custom) Encode(v reflect.Value, s *Stream) error {
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			return encodeEmptyTuple(s)
		}
	}

	template, fields := e.fn(v.Interface())

	if err := s.Open(token.CustomFormatBegin); err != nil {
		return err
	}
	if err := s.Open(token.TupleBegin); err != nil {
		return err
	}
	if err := EncodeString(template, s); err != nil {
		return err
	}
	for _, field := range fields {
		if err := EncodeDynamic(e.source, reflect.ValueOf(field), s); err != nil {
			return err
		}
	}
	s.Close()
	s.Close()
	return nil
}
