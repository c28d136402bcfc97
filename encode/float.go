package encode

import (
	"fmt"
	"math"
	"reflect"
	"strconv"

	"github.com/cockroachdb/apd/v3"

	"github.com/Viatorus/compile-time-printer/encio"
	"github.com/Viatorus/compile-time-printer/token"
	"github.com/Viatorus/compile-time-printer/types"
)

// FractionDigits is the number of decimal digits carried by FractionFloat tokens.
const FractionDigits = 18

// NewFloat returns an Encodable for float32 and float64 kinds.
func NewFloat(ty reflect.Type) *Float {
	if ty.Kind() != reflect.Float32 && ty.Kind() != reflect.Float64 {
		panic(encio.NewError(encio.ErrBadType, fmt.Sprintf("%v is not a float", ty), 0))
	}
	return &Float{
		ty:   ty,
		name: types.Name(ty),
	}
}

// Float encodes binary floating-point values.
//
// Finite values are split into their integer part and the first FractionDigits digits of their fraction,
// taken from the shortest decimal representation that reads back as the same value at the type's own size.
type Float struct {
	ty   reflect.Type
	name string
}

// Type implements Encodable.
func (e *Float) Type() reflect.Type { return e.ty }

// Encode implements Encodable.
func (e *Float) Encode(v reflect.Value, s *Stream) error {
	f := v.Float()
	switch {
	case math.IsNaN(f):
		s.Emit(token.Token{Tag: token.NaNFloat, Type: e.name})
		return nil
	case math.IsInf(f, 1):
		s.Emit(token.Token{Tag: token.PositiveInfinityFloat, Type: e.name})
		return nil
	case math.IsInf(f, -1):
		s.Emit(token.Token{Tag: token.NegativeInfinityFloat, Type: e.name})
		return nil
	}

	d, _, err := new(apd.Decimal).SetString(strconv.FormatFloat(f, 'e', -1, e.ty.Bits()))
	if err != nil {
		return encio.NewError(err, fmt.Sprintf("converting %v to decimal", f), 0)
	}
	emitDecimal(s, d, e.name)
	return nil
}

// NewDecimal returns an Encodable for apd.Decimal.
func NewDecimal(ty reflect.Type) *Decimal {
	if ty != apdDecimalType {
		panic(encio.NewError(encio.ErrBadType, fmt.Sprintf("%v is not apd.Decimal", ty), 0))
	}
	return &Decimal{
		ty:   ty,
		name: types.Name(ty),
	}
}

// Decimal encodes arbitrary precision decimals the same way Float encodes binary floats.
type Decimal struct {
	ty   reflect.Type
	name string
}

// Type implements Encodable.
func (e *Decimal) Type() reflect.Type { return e.ty }

// Encode implements Encodable.
func (e *Decimal) Encode(v reflect.Value, s *Stream) error {
	d := addressOf(v).(*apd.Decimal)
	switch d.Form {
	case apd.NaN, apd.NaNSignaling:
		s.Emit(token.Token{Tag: token.NaNFloat, Type: e.name})
	case apd.Infinite:
		if d.Negative {
			s.Emit(token.Token{Tag: token.NegativeInfinityFloat, Type: e.name})
		} else {
			s.Emit(token.Token{Tag: token.PositiveInfinityFloat, Type: e.name})
		}
	default:
		emitDecimal(s, d, e.name)
	}
	return nil
}

// emitDecimal emits the integer part of the finite d, then its truncated scaled fraction.
// Negative zero is emitted as positive.
func emitDecimal(s *Stream, d *apd.Decimal, name string) {
	integer, fraction := SplitDecimal(d)

	tag := token.PositiveFloat
	if d.Negative && !d.IsZero() {
		tag = token.NegativeFloat
	}

	s.Emit(token.WithPayload(tag, integer, name))
	s.Emit(token.WithPayload(token.FractionFloat, fraction, name))
}

// SplitDecimal returns the magnitude of the integer part of the finite d,
// and the magnitude of its fractional part scaled by 10^FractionDigits and truncated.
func SplitDecimal(d *apd.Decimal) (integer, fraction *apd.BigInt) {
	var abs, integ, frac apd.Decimal
	abs.Abs(d)
	abs.Modf(&integ, &frac)

	return scaleTrunc(&integ.Coeff, integ.Exponent), scaleTrunc(&frac.Coeff, frac.Exponent+FractionDigits)
}

var bigTen = apd.NewBigInt(10)

// scaleTrunc returns coeff × 10^exp, truncated towards zero.
func scaleTrunc(coeff *apd.BigInt, exp int32) *apd.BigInt {
	n := new(apd.BigInt).Abs(coeff)
	if exp == 0 {
		return n
	}

	e := int64(exp)
	if e < 0 {
		e = -e
	}
	pow := new(apd.BigInt).Exp(bigTen, apd.NewBigInt(e), nil)

	if exp > 0 {
		return n.Mul(n, pow)
	}
	return n.Quo(n, pow)
}
