package encode

import (
	"math/big"
	"reflect"

	"github.com/cockroachdb/apd/v3"

	"github.com/Viatorus/compile-time-printer/formatter"
	"github.com/Viatorus/compile-time-printer/types"
	"github.com/Viatorus/compile-time-printer/view"
)

var (
	bigIntType     = reflect.TypeOf(big.Int{})
	apdBigIntType  = reflect.TypeOf(apd.BigInt{})
	apdDecimalType = reflect.TypeOf(apd.Decimal{})
	rangeType      = reflect.TypeOf((*view.Range)(nil)).Elem()
)

// New returns the default Source; a CachingSource over the encoding rules,
// consulting registry for user formatters. A nil registry disables formatters.
func New(registry *formatter.Registry) *CachingSource {
	return NewCachingSource(Rules(registry))
}

// Rules returns the uncached Source applying the encoding rules.
// Use New unless the types encoded are never recursive.
func Rules(registry *formatter.Registry) Source {
	return SourceFromFunc(func(ty reflect.Type, src Source) Encodable {
		if ty == nil {
			return NewNil()
		}

		kind := ty.Kind()
		switch {
		// Markers
		case ty == types.DescriptorType:
			return NewDescriptor()
		case ty == types.NoiseType:
			return NewNoise()

		// Integral scalars
		case isInteger(kind):
			return NewInteger(ty)
		case ty == bigIntType, ty == apdBigIntType:
			return NewBigInt(ty)

		// Floating-point scalars
		case kind == reflect.Float32, kind == reflect.Float64:
			return NewFloat(ty)
		case ty == apdDecimalType:
			return NewDecimal(ty)
		}

		// User formatters
		if registry != nil {
			if fn, ok := registry.Lookup(ty); ok {
				return NewCustom(ty, fn, src)
			}
		}

		switch {
		// Indirection
		case kind == reflect.Ptr:
			return NewPointer(ty, src)
		case kind == reflect.Interface:
			return NewInterface(ty, src)

		// String-like
		case kind == reflect.String:
			return NewString(ty)

		// Array-like
		case ty == types.TupleType:
			return NewTuple(src)
		case ty.Implements(rangeType), kind == reflect.Array, kind == reflect.Slice:
			return NewArray(ty, src)
		case kind == reflect.Map:
			return NewMap(ty, src)

		// Tuple-like
		case kind == reflect.Struct:
			return NewStruct(ty, src)
		case kind == reflect.Complex64, kind == reflect.Complex128:
			return NewComplex(ty)
		}

		return NewUnsupported(ty, "matches no encoding rule")
	})
}

func isInteger(kind reflect.Kind) bool {
	switch kind {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}
