// Package view provides a non-owning window over contiguous elements.
//
// A View is built from a fixed array, a slice, a pointer and a length, a pair of pointers,
// any aggregate exposing Len and Data, or another View.
// Whatever it was built from, a View reports exactly its element count and visits
// its elements once each, in index order.
//
// A View does not keep the memory it looks at alive in any meaningful sense;
// it must not be used after the backing storage is reused.
package view

import (
	"fmt"
	"reflect"
	"unsafe"
)

// View is a {begin, length} descriptor over elements of type T.
// The zero View is empty.
type View[T any] struct {
	begin  *T
	length int
}

// Sequence is an aggregate that exposes a length and a pointer to its first element.
type Sequence[T any] interface {
	Len() int
	Data() *T
}

// Of returns a View over s.
// Fixed arrays are viewed with Of(arr[:]).
func Of[T any](s []T) View[T] {
	if len(s) == 0 {
		return View[T]{}
	}
	return View[T]{begin: &s[0], length: len(s)}
}

// FromArray returns a View over arr, which must be an array of T or a pointer to one.
// An array passed by value is viewed through a private copy.
// It panics if arr is neither.
func FromArray[T any](arr any) View[T] {
	v := reflect.ValueOf(arr)
	elem := reflect.TypeOf((*T)(nil)).Elem()

	if v.Kind() == reflect.Ptr && v.Type().Elem().Kind() == reflect.Array {
		if v.IsNil() {
			return View[T]{}
		}
		v = v.Elem()
	} else if v.Kind() == reflect.Array {
		cp := reflect.New(v.Type()).Elem()
		cp.Set(v)
		v = cp
	} else {
		panic(fmt.Sprintf("view.FromArray: %T is not an array or pointer to array", arr))
	}

	if v.Type().Elem() != elem {
		panic(fmt.Sprintf("view.FromArray: %v holds %v, not %v", v.Type(), v.Type().Elem(), elem))
	}
	if v.Len() == 0 {
		return View[T]{}
	}
	return View[T]{begin: (*T)(v.Index(0).Addr().UnsafePointer()), length: v.Len()}
}

// FromPtrLen returns a View over the n elements starting at p.
// It panics if n is negative, or if p is nil and n isn't zero.
func FromPtrLen[T any](p *T, n int) View[T] {
	if n < 0 {
		panic(fmt.Sprintf("view.FromPtrLen: negative length %v", n))
	}
	if n == 0 {
		return View[T]{}
	}
	if p == nil {
		panic("view.FromPtrLen: nil pointer with non-zero length")
	}
	return View[T]{begin: p, length: n}
}

// FromPtrs returns a View over [first, last), where last points one past the final element.
// Both pointers must point into the same allocation.
// It panics if last is before first.
func FromPtrs[T any](first, last *T) View[T] {
	if first == last {
		return View[T]{}
	}
	if first == nil || last == nil {
		panic("view.FromPtrs: nil pointer")
	}

	size := unsafe.Sizeof(*first)
	lo, hi := uintptr(unsafe.Pointer(first)), uintptr(unsafe.Pointer(last))
	if hi < lo {
		panic("view.FromPtrs: last is before first")
	}
	if size == 0 {
		return View[T]{}
	}
	if (hi-lo)%size != 0 {
		panic(fmt.Sprintf("view.FromPtrs: distance %v is not a multiple of element size %v", hi-lo, size))
	}
	return View[T]{begin: first, length: int((hi - lo) / size)}
}

// FromSequence returns a View over the elements of s.
func FromSequence[T any](s Sequence[T]) View[T] {
	return FromPtrLen(s.Data(), s.Len())
}

// FromView returns v.
func FromView[T any](v View[T]) View[T] {
	return v
}

// Len returns the number of elements.
func (v View[T]) Len() int {
	return v.length
}

// At returns the i'th element. It panics if i is out of range.
func (v View[T]) At(i int) T {
	return v.Slice()[i]
}

// Slice returns the elements as a slice sharing the viewed memory.
func (v View[T]) Slice() []T {
	if v.length == 0 {
		return nil
	}
	return unsafe.Slice(v.begin, v.length)
}

// All returns an iterator over the index and value of each element, in index order.
func (v View[T]) All() func(yield func(int, T) bool) {
	return func(yield func(int, T) bool) {
		for i, e := range v.Slice() {
			if !yield(i, e) {
				return
			}
		}
	}
}

// Index implements Range.
func (v View[T]) Index(i int) reflect.Value {
	return reflect.ValueOf(v.Slice()).Index(i)
}

// Elem implements Range.
func (v View[T]) Elem() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// String implements fmt.Stringer.
func (v View[T]) String() string {
	return fmt.Sprint(v.Slice())
}
