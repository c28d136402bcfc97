package encode

import (
	"fmt"
	"math"
	"reflect"
	"sort"

	"github.com/Viatorus/compile-time-printer/encio"
	"github.com/Viatorus/compile-time-printer/token"
	"github.com/Viatorus/compile-time-printer/view"
)

// NewArray returns an Encodable for arrays, slices and view.Range implementers.
func NewArray(ty reflect.Type, src Source) Encodable {
	elemType, ok := view.ElemType(ty)
	if !ok || ty.Kind() == reflect.String {
		panic(encio.NewError(encio.ErrBadType, fmt.Sprintf("%v is not array-like", ty), 0))
	}

	elem := src.NewEncodable(elemType, nil)
	if u := elemFailure(ty, elem, "element"); u != nil {
		return u
	}

	return &Array{
		ty:   ty,
		elem: elem,
	}
}

// Array encodes array-likes as ArrayBegin, each element in index order, ArrayEnd.
// Nil slices are empty arrays.
type Array struct {
	ty   reflect.Type
	elem *Encodable
}

// Type implements Encodable.
func (e *Array) Type() reflect.Type { return e.ty }

// Encode implements Encodable.
func (e *Array) Encode(v reflect.Value, s *Stream) error {
	r, ok := view.Normalize(v)
	if !ok {
		return encio.NewError(encio.ErrBadType, fmt.Sprintf("cannot view %v", e.ty), 0)
	}

	if err := s.Open(token.ArrayBegin); err != nil {
		return err
	}
	for i := 0; i < r.Len(); i++ {
		if err := (*e.elem).Encode(r.Index(i), s); err != nil {
			return err
		}
	}
	s.Close()
	return nil
}

// NewMap returns an Encodable for maps with integer, float, string or bool keys.
func NewMap(ty reflect.Type, src Source) Encodable {
	if ty.Kind() != reflect.Map {
		panic(encio.NewError(encio.ErrBadType, fmt.Sprintf("%v is not a map", ty), 0))
	}

	less := keyOrder(ty.Key())
	if less == nil {
		return NewUnsupported(ty, fmt.Sprintf("map keys of type %v cannot be ordered", ty.Key()))
	}

	key := src.NewEncodable(ty.Key(), nil)
	if u := elemFailure(ty, key, "key"); u != nil {
		return u
	}
	elem := src.NewEncodable(ty.Elem(), nil)
	if u := elemFailure(ty, elem, "element"); u != nil {
		return u
	}

	return &Map{
		ty:   ty,
		key:  key,
		elem: elem,
		less: less,
	}
}

// Map encodes maps as an array of (key, value) tuples, sorted by key.
type Map struct {
	ty   reflect.Type
	key  *Encodable
	elem *Encodable
	less func(a, b reflect.Value) bool
}

// Type implements Encodable.
func (e *Map) Type() reflect.Type { return e.ty }

// Encode implements Encodable.
func (e *Map) Encode(v reflect.Value, s *Stream) error {
	// NaN keys can't be looked up again, so entries are taken with their values.
	entries := make([][2]reflect.Value, 0, v.Len())
	for iter := v.MapRange(); iter.Next(); {
		entries = append(entries, [2]reflect.Value{iter.Key(), iter.Value()})
	}
	sort.Slice(entries, func(i, j int) bool {
		return e.less(entries[i][0], entries[j][0])
	})

	if err := s.Open(token.ArrayBegin); err != nil {
		return err
	}
	for _, entry := range entries {
		if err := s.Open(token.TupleBegin); err != nil {
			return err
		}
		if err := (*e.key).Encode(entry[0], s); err != nil {
			return err
		}
		if err := (*e.elem).Encode(entry[1], s); err != nil {
			return err
		}
		s.Close()
	}
	s.Close()
	return nil
}

// keyOrder returns the ordering of map keys of type ty, or nil if they can't be ordered.
// NaN keys sort first.
func keyOrder(ty reflect.Type) func(a, b reflect.Value) bool {
	switch ty.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(a, b reflect.Value) bool { return a.Int() < b.Int() }
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return func(a, b reflect.Value) bool { return a.Uint() < b.Uint() }
	case reflect.Float32, reflect.Float64:
		return func(a, b reflect.Value) bool {
			x, y := a.Float(), b.Float()
			if math.IsNaN(x) {
				return !math.IsNaN(y)
			}
			return x < y
		}
	case reflect.String:
		return func(a, b reflect.Value) bool { return a.String() < b.String() }
	case reflect.Bool:
		return func(a, b reflect.Value) bool { return !a.Bool() && b.Bool() }
	}
	return nil
}
