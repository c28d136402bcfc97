package encode

import (
	"fmt"
	"math/big"
	"reflect"

	"github.com/cockroachdb/apd/v3"

	"github.com/Viatorus/compile-time-printer/encio"
	"github.com/Viatorus/compile-time-printer/token"
	"github.com/Viatorus/compile-time-printer/types"
)

// NewInteger returns an Encodable for integer and boolean kinds.
func NewInteger(ty reflect.Type) *Integer {
	if !isInteger(ty.Kind()) {
		panic(encio.NewError(encio.ErrBadType, fmt.Sprintf("%v is not an integer", ty), 0))
	}

	name := types.Name(ty)
	if ty.Kind() == reflect.Bool {
		name = "bool"
	}

	return &Integer{
		ty:   ty,
		name: name,
	}
}

// Integer encodes integers as PositiveInteger or NegativeInteger carrying the magnitude.
// Booleans encode as 0 or 1, annotated "bool".
type Integer struct {
	ty   reflect.Type
	name string
}

// Type implements Encodable.
func (e *Integer) Type() reflect.Type { return e.ty }

// Encode implements Encodable.
func (e *Integer) Encode(v reflect.Value, s *Stream) error {
	switch e.ty.Kind() {
	case reflect.Bool:
		n := uint64(0)
		if v.Bool() {
			n = 1
		}
		s.Emit(token.Uint(token.PositiveInteger, n, e.name))

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		s.Emit(token.Uint(token.PositiveInteger, v.Uint(), e.name))

	default:
		i := v.Int()
		if i < 0 {
			// Negating math.MinInt64 overflows; its magnitude is one more than MaxInt64.
			s.Emit(token.Uint(token.NegativeInteger, uint64(-(i+1))+1, e.name))
		} else {
			s.Emit(token.Uint(token.PositiveInteger, uint64(i), e.name))
		}
	}
	return nil
}

// NewBigInt returns an Encodable for big.Int and apd.BigInt.
func NewBigInt(ty reflect.Type) *BigInt {
	if ty != bigIntType && ty != apdBigIntType {
		panic(encio.NewError(encio.ErrBadType, fmt.Sprintf("%v is not a big integer", ty), 0))
	}
	return &BigInt{
		ty:   ty,
		name: types.Name(ty),
	}
}

// BigInt encodes arbitrary precision integers.
type BigInt struct {
	ty   reflect.Type
	name string
}

// Type implements Encodable.
func (e *BigInt) Type() reflect.Type { return e.ty }

// Encode implements Encodable.
func (e *BigInt) Encode(v reflect.Value, s *Stream) error {
	n := new(apd.BigInt)
	switch p := addressOf(v).(type) {
	case *big.Int:
		n.SetMathBigInt(p)
	case *apd.BigInt:
		n.Set(p)
	}
	emitSigned(s, n, e.name)
	return nil
}

// emitSigned emits n as a PositiveInteger or NegativeInteger token.
func emitSigned(s *Stream, n *apd.BigInt, name string) {
	tag := token.PositiveInteger
	if n.Sign() < 0 {
		tag = token.NegativeInteger
		n = new(apd.BigInt).Abs(n)
	}
	s.Emit(token.WithPayload(tag, n, name))
}

// addressOf returns a pointer to v's value as an interface.
// Values that aren't addressable are copied first.
func addressOf(v reflect.Value) any {
	if v.CanAddr() && v.Addr().CanInterface() {
		return v.Addr().Interface()
	}
	cp := reflect.New(v.Type())
	cp.Elem().Set(v)
	return cp.Interface()
}
