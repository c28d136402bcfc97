package ctp

import (
	"fmt"
	"reflect"

	"github.com/Viatorus/compile-time-printer/encio"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Forward evaluates exprFunc eagerly so a print can sit where only a value is allowed,
// such as a variable initializer or a condition.
//
// If exprFunc is a function it is called with args and its first result is returned.
// A trailing error result is returned as the error.
// Otherwise exprFunc is returned unchanged; passing args with it is an error wrapping encio.ErrBadType.
//
//	var _, _ = ctp.Forward(ctp.Printf, "loaded {} plugins", len(plugins))
func Forward(exprFunc any, args ...any) (any, error) {
	fn := reflect.ValueOf(exprFunc)
	if fn.Kind() != reflect.Func {
		if len(args) > 0 {
			return nil, encio.NewError(encio.ErrBadType, fmt.Sprintf("cannot pass arguments to %T; it is not a function", exprFunc), 0)
		}
		return exprFunc, nil
	}
	if fn.IsNil() {
		return nil, encio.NewError(encio.ErrNilPointer, "cannot call a nil function", 0)
	}

	in, err := callArgs(fn.Type(), args)
	if err != nil {
		return nil, err
	}

	var out []reflect.Value
	if fn.Type().IsVariadic() {
		out = fn.CallSlice(in)
	} else {
		out = fn.Call(in)
	}

	if n := len(out); n > 0 && fn.Type().Out(n-1) == errorType {
		if e := out[n-1].Interface(); e != nil {
			err = e.(error)
		}
		out = out[:n-1]
	}

	if len(out) == 0 {
		return nil, err
	}
	return out[0].Interface(), err
}

// ForwardAs is Forward with the result asserted to R.
// A nil result yields the zero R.
func ForwardAs[R any](exprFunc any, args ...any) (R, error) {
	var r R
	v, err := Forward(exprFunc, args...)
	if v == nil {
		return r, err
	}

	r, ok := v.(R)
	if !ok {
		return r, encio.NewError(encio.ErrBadType, fmt.Sprintf("result is %T, not %v", v, reflect.TypeOf(&r).Elem()), 0)
	}
	return r, err
}

// callArgs converts args to the parameters of ft.
// For variadic functions the trailing arguments are gathered into a slice, for use with CallSlice.
func callArgs(ft reflect.Type, args []any) ([]reflect.Value, error) {
	fixed := ft.NumIn()
	if ft.IsVariadic() {
		fixed--
		if len(args) < fixed {
			return nil, encio.NewError(encio.ErrBadType, fmt.Sprintf("%v needs at least %v arguments, got %v", ft, fixed, len(args)), 1)
		}
	} else if len(args) != fixed {
		return nil, encio.NewError(encio.ErrBadType, fmt.Sprintf("%v needs %v arguments, got %v", ft, fixed, len(args)), 1)
	}

	in := make([]reflect.Value, 0, ft.NumIn())
	for i := 0; i < fixed; i++ {
		v, err := argValue(args[i], ft.In(i), i)
		if err != nil {
			return nil, err
		}
		in = append(in, v)
	}

	if ft.IsVariadic() {
		st := ft.In(fixed)
		rest := reflect.MakeSlice(st, 0, len(args)-fixed)
		for i := fixed; i < len(args); i++ {
			v, err := argValue(args[i], st.Elem(), i)
			if err != nil {
				return nil, err
			}
			rest = reflect.Append(rest, v)
		}
		in = append(in, rest)
	}

	return in, nil
}

func argValue(arg any, want reflect.Type, i int) (reflect.Value, error) {
	if arg == nil {
		switch want.Kind() {
		case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
			return reflect.Zero(want), nil
		}
		return reflect.Value{}, encio.NewError(encio.ErrBadType, fmt.Sprintf("argument %v is nil, but needs %v", i, want), 2)
	}

	v := reflect.ValueOf(arg)
	if !v.Type().AssignableTo(want) {
		return reflect.Value{}, encio.NewError(encio.ErrBadType, fmt.Sprintf("argument %v is %v, but needs %v", i, v.Type(), want), 2)
	}
	return v, nil
}
