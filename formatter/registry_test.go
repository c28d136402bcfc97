package formatter_test

import (
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/maxatome/go-testdeep/td"

	"github.com/Viatorus/compile-time-printer/formatter"
)

type fooBar struct {
	I, J int
}

type celsius struct {
	Degrees float64
}

func (c celsius) FormatCTP() (string, []any) {
	return "{}°C", []any{c.Degrees}
}

type shape interface {
	Area() float64
}

func TestRegister(t *testing.T) {
	r := formatter.NewRegistry()

	err := formatter.Register(r, func(f fooBar) (string, []any) {
		return ".i = {}, .j = {}", []any{f.I, f.J}
	})
	td.Require(t).CmpNoError(err)

	fn, ok := r.Lookup(reflect.TypeOf(fooBar{}))
	td.Require(t).True(ok)

	template, fields := fn(fooBar{I: 1, J: 2})
	td.Cmp(t, template, ".i = {}, .j = {}")
	td.Cmp(t, fields, []any{1, 2})

	t.Run("duplicate", func(t *testing.T) {
		err := r.Register(fooBar{}, func(any) (string, []any) { return "", nil })
		td.CmpErrorIs(t, err, formatter.ErrAlreadyRegistered)
		td.Cmp(t, err.Error(), td.Contains("formatter_test.fooBar"))
	})

	t.Run("pointer is a distinct type", func(t *testing.T) {
		_, ok := r.Lookup(reflect.TypeOf(&fooBar{}))
		td.CmpFalse(t, ok)
	})

	t.Run("by reflect.Type", func(t *testing.T) {
		err := r.Register(reflect.TypeOf(""), func(v any) (string, []any) {
			return "<{}>", []any{v}
		})
		td.CmpNoError(t, err)
	})

	t.Run("nil", func(t *testing.T) {
		td.CmpError(t, r.Register(nil, func(any) (string, []any) { return "", nil }))
		td.CmpError(t, formatter.Register[int](r, nil))
	})

	var names []string
	for _, ty := range r.Types() {
		names = append(names, ty.String())
	}
	td.Cmp(t, names, []string{"formatter_test.fooBar", "string"})
}

func TestFormattable(t *testing.T) {
	r := formatter.NewRegistry()

	fn, ok := r.Lookup(reflect.TypeOf(celsius{}))
	td.Require(t).True(ok)
	template, fields := fn(celsius{21.5})
	td.Cmp(t, template, "{}°C")
	td.Cmp(t, fields, []any{21.5})

	_, ok = r.Lookup(reflect.TypeOf((*shape)(nil)).Elem())
	td.CmpFalse(t, ok)

	err := formatter.Register(r, func(c celsius) (string, []any) {
		return "{} degrees", []any{c.Degrees}
	})
	td.Require(t).CmpNoError(err)

	fn, _ = r.Lookup(reflect.TypeOf(celsius{}))
	template, _ = fn(celsius{3})
	td.Cmp(t, template, "{} degrees", "registered formatter wins")
}

func TestFreeze(t *testing.T) {
	r := formatter.NewRegistry()
	td.CmpFalse(t, r.Frozen())

	r.Freeze()
	td.CmpTrue(t, r.Frozen())

	err := formatter.Register(r, func(int) (string, []any) { return "", nil })
	td.CmpErrorIs(t, err, formatter.ErrFrozen)
	td.CmpLen(t, r.Types(), 0)
}

func TestConcurrentRegister(t *testing.T) {
	r := formatter.NewRegistry()
	types := []any{int8(0), int16(0), int32(0), int64(0), uint8(0), uint16(0), uint32(0), uint64(0)}

	var wg sync.WaitGroup
	for _, ty := range types {
		wg.Add(1)
		go func(ty any) {
			defer wg.Done()
			err := r.Register(ty, func(v any) (string, []any) { return fmt.Sprint(v), nil })
			td.CmpNoError(t, err)
		}(ty)
	}
	wg.Wait()

	td.CmpLen(t, r.Types(), len(types))
}
