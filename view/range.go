package view

import "reflect"

// Range is the normalized form the encoder walks; an element type, a count, and indexed access.
type Range interface {
	Len() int
	Index(i int) reflect.Value
	Elem() reflect.Type
}

var (
	rangeType = reflect.TypeOf((*Range)(nil)).Elem()
	runeType  = reflect.TypeOf(rune(0))
)

// ElemType returns the element type of sequences of type t.
// Arrays, slices and Range implementers hold their element type, strings hold runes.
// The second result is false for any other type.
func ElemType(t reflect.Type) (reflect.Type, bool) {
	if t.Implements(rangeType) {
		if t.Kind() == reflect.Ptr || t.Kind() == reflect.Interface {
			return nil, false
		}
		return reflect.Zero(t).Interface().(Range).Elem(), true
	}

	switch t.Kind() {
	case reflect.Array, reflect.Slice:
		return t.Elem(), true
	case reflect.String:
		return runeType, true
	}
	return nil, false
}

// Normalize returns a Range over v's elements.
// The second result is false if ElemType doesn't accept v's type.
func Normalize(v reflect.Value) (Range, bool) {
	t := v.Type()
	if t.Implements(rangeType) {
		if t.Kind() == reflect.Ptr || t.Kind() == reflect.Interface {
			return nil, false
		}
		if !v.CanInterface() {
			return nil, false
		}
		return v.Interface().(Range), true
	}

	switch t.Kind() {
	case reflect.Array, reflect.Slice:
		return valueRange{v: v}, true
	case reflect.String:
		return valueRange{v: reflect.ValueOf([]rune(v.String()))}, true
	}
	return nil, false
}

type valueRange struct {
	v reflect.Value
}

func (r valueRange) Len() int                  { return r.v.Len() }
func (r valueRange) Index(i int) reflect.Value { return r.v.Index(i) }
func (r valueRange) Elem() reflect.Type        { return r.v.Type().Elem() }
