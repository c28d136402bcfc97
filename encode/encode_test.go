package encode_test

import (
	"math"
	"math/big"
	"reflect"
	"sync"
	"testing"
	"unsafe"

	"github.com/cockroachdb/apd/v3"
	"github.com/maxatome/go-testdeep/td"

	"github.com/Viatorus/compile-time-printer/encio"
	"github.com/Viatorus/compile-time-printer/encode"
	"github.com/Viatorus/compile-time-printer/formatter"
	"github.com/Viatorus/compile-time-printer/token"
	"github.com/Viatorus/compile-time-printer/types"
	"github.com/Viatorus/compile-time-printer/view"
)

func encodeText(src encode.Source, v any) ([]string, error) {
	s := encode.NewStream(0)
	if err := encode.EncodeDynamic(src, reflect.ValueOf(v), s); err != nil {
		return nil, err
	}
	text := []string{}
	for _, t := range s.Tokens() {
		text = append(text, t.String())
	}
	return text, nil
}

func runeToken(r rune) string {
	return (token.Uint(token.PositiveInteger, uint64(r), encode.RuneType)).String()
}

func str(s string) []string {
	out := []string{"StringBegin"}
	for _, r := range s {
		out = append(out, runeToken(r))
	}
	return append(out, "StringEnd")
}

func join(parts ...any) []string {
	out := []string{}
	for _, p := range parts {
		switch p := p.(type) {
		case string:
			out = append(out, p)
		case []string:
			out = append(out, p...)
		}
	}
	return out
}

type point struct {
	X, Y int
}

type labelled struct {
	Label  string
	hidden int
	Skip   bool `ctp:"-"`
	Quiet  types.Noise
	Value  float32
}

type fooBar struct {
	I int
}

type node struct {
	V    int
	Next *node
}

func TestEncode(t *testing.T) {
	src := encode.New(nil)

	testCases := []struct {
		desc  string
		value any
		want  []string
	}{
		{desc: "int", value: 5, want: join(`PositiveInteger(5) "int"`)},
		{desc: "negative int8", value: int8(-3), want: join(`NegativeInteger(3) "int8"`)},
		{desc: "min int64", value: int64(math.MinInt64), want: join(`NegativeInteger(9223372036854775808) "int64"`)},
		{desc: "max uint64", value: uint64(math.MaxUint64), want: join(`PositiveInteger(18446744073709551615) "uint64"`)},
		{desc: "bool", value: true, want: join(`PositiveInteger(1) "bool"`)},
		{desc: "false", value: false, want: join(`PositiveInteger(0) "bool"`)},
		{desc: "rune is int32", value: 'a', want: join(`PositiveInteger(97) "int32"`)},
		{
			desc:  "big.Int",
			value: new(big.Int).Lsh(big.NewInt(-1), 70),
			want:  join(`NegativeInteger(1180591620717411303424) "big.Int"`),
		},
		{desc: "apd.BigInt", value: apd.NewBigInt(42), want: join(`PositiveInteger(42) "apd.BigInt"`)},
		{
			desc:  "float64",
			value: 2.5,
			want:  join(`PositiveFloat(2) "float64"`, `FractionFloat(500000000000000000) "float64"`),
		},
		{
			desc:  "negative float64",
			value: -1.25,
			want:  join(`NegativeFloat(1) "float64"`, `FractionFloat(250000000000000000) "float64"`),
		},
		{
			desc:  "negative fraction only",
			value: -0.5,
			want:  join(`NegativeFloat(0) "float64"`, `FractionFloat(500000000000000000) "float64"`),
		},
		{
			desc:  "negative zero",
			value: math.Copysign(0, -1),
			want:  join(`PositiveFloat(0) "float64"`, `FractionFloat(0) "float64"`),
		},
		{
			desc:  "float32 shortest form",
			value: float32(0.1),
			want:  join(`PositiveFloat(0) "float32"`, `FractionFloat(100000000000000000) "float32"`),
		},
		{
			desc:  "large float",
			value: 1e20,
			want:  join(`PositiveFloat(100000000000000000000) "float64"`, `FractionFloat(0) "float64"`),
		},
		{
			desc:  "tiny float truncates",
			value: 1e-20,
			want:  join(`PositiveFloat(0) "float64"`, `FractionFloat(0) "float64"`),
		},
		{desc: "NaN", value: math.NaN(), want: join(`NaNFloat "float64"`)},
		{desc: "+Inf", value: math.Inf(1), want: join(`PositiveInfinityFloat "float64"`)},
		{desc: "-Inf", value: float32(math.Inf(-1)), want: join(`NegativeInfinityFloat "float32"`)},
		{
			desc:  "apd.Decimal",
			value: apd.New(-314159, -5),
			want:  join(`NegativeFloat(3) "apd.Decimal"`, `FractionFloat(141590000000000000) "apd.Decimal"`),
		},
		{desc: "string", value: "hé", want: str("hé")},
		{desc: "empty string", value: "", want: str("")},
		{
			desc:  "slice",
			value: []int{1, 2},
			want:  join("ArrayBegin", `PositiveInteger(1) "int"`, `PositiveInteger(2) "int"`, "ArrayEnd"),
		},
		{desc: "nil slice", value: []int(nil), want: join("ArrayBegin", "ArrayEnd")},
		{desc: "empty array", value: [0]int{}, want: join("ArrayBegin", "ArrayEnd")},
		{desc: "bytes", value: []byte("A"), want: join("ArrayBegin", `PositiveInteger(65) "uint8"`, "ArrayEnd")},
		{desc: "view", value: view.Of([]uint16{7}), want: join("ArrayBegin", `PositiveInteger(7) "uint16"`, "ArrayEnd")},
		{
			desc:  "array of strings",
			value: [2]string{"a", ""},
			want:  join("ArrayBegin", str("a"), str(""), "ArrayEnd"),
		},
		{
			desc:  "map sorted by key",
			value: map[string]int{"b": 2, "a": 1},
			want: join(
				"ArrayBegin",
				"TupleBegin", str("a"), `PositiveInteger(1) "int"`, "TupleEnd",
				"TupleBegin", str("b"), `PositiveInteger(2) "int"`, "TupleEnd",
				"ArrayEnd",
			),
		},
		{
			desc:  "struct",
			value: point{X: 1, Y: -2},
			want:  join("TupleBegin", `PositiveInteger(1) "int"`, `NegativeInteger(2) "int"`, "TupleEnd"),
		},
		{
			desc:  "struct fields",
			value: labelled{Label: "x", hidden: 3, Skip: true, Value: 1.5},
			want: join(
				"TupleBegin",
				str("x"),
				`PositiveFloat(1) "float32"`, `FractionFloat(500000000000000000) "float32"`,
				"TupleEnd",
			),
		},
		{
			desc:  "tuple",
			value: types.NewTuple(1, "a", nil),
			want:  join("TupleBegin", `PositiveInteger(1) "int"`, str("a"), "TupleBegin", "TupleEnd", "TupleEnd"),
		},
		{
			desc:  "complex",
			value: complex(1, -2),
			want: join(
				"TupleBegin",
				`PositiveFloat(1) "float64"`, `FractionFloat(0) "float64"`,
				`NegativeFloat(2) "float64"`, `FractionFloat(0) "float64"`,
				"TupleEnd",
			),
		},
		{desc: "nil pointer", value: (*int)(nil), want: join("TupleBegin", "TupleEnd")},
		{desc: "pointer", value: &point{}, want: join("TupleBegin", `PositiveInteger(0) "int"`, `PositiveInteger(0) "int"`, "TupleEnd")},
		{desc: "untyped nil", value: nil, want: join("TupleBegin", "TupleEnd")},
		{desc: "nil interface slice", value: []any{nil, 1}, want: join("ArrayBegin", "TupleBegin", "TupleEnd", `PositiveInteger(1) "int"`, "ArrayEnd")},
		{
			desc:  "map with NaN key",
			value: map[float64]int{math.NaN(): 1, 2: 3},
			want: join(
				"ArrayBegin",
				"TupleBegin", `NaNFloat "float64"`, `PositiveInteger(1) "int"`, "TupleEnd",
				"TupleBegin", `PositiveFloat(2) "float64"`, `FractionFloat(0) "float64"`, `PositiveInteger(3) "int"`, "TupleEnd",
				"ArrayEnd",
			),
		},
		{desc: "type descriptor", value: types.For[map[string]int](), want: join(`Type "map[string]int"`)},
		{desc: "type descriptors", value: types.Of(1, ""), want: join(`Type "int, string"`)},
		{desc: "noise", value: types.Noise{}, want: join()},
		{
			desc:  "recursive type",
			value: &node{V: 1, Next: &node{V: 2}},
			want: join(
				"TupleBegin", `PositiveInteger(1) "int"`,
				"TupleBegin", `PositiveInteger(2) "int"`, "TupleBegin", "TupleEnd", "TupleEnd",
				"TupleEnd",
			),
		},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			got, err := encodeText(src, tC.value)
			td.Require(t).CmpNoError(err)
			td.Cmp(t, got, tC.want)
		})
	}
}

func TestUnsupported(t *testing.T) {
	src := encode.New(nil)

	testCases := []struct {
		desc string
		ty   reflect.Type
	}{
		{desc: "chan", ty: reflect.TypeOf(make(chan int))},
		{desc: "func", ty: reflect.TypeOf(func() {})},
		{desc: "unsafe pointer", ty: reflect.TypeOf(unsafe.Pointer(nil))},
		{desc: "struct field", ty: reflect.TypeOf(struct{ C chan int }{})},
		{desc: "slice element", ty: reflect.TypeOf([]func(){})},
		{desc: "pointer element", ty: reflect.TypeOf(new(chan bool))},
		{desc: "map key", ty: reflect.TypeOf(map[[2]int]int{})},
		{desc: "map element", ty: reflect.TypeOf(map[int]chan int{})},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			_, err := encode.Resolve(src, tC.ty)
			td.CmpErrorIs(t, err, encio.ErrUnsupportedValueKind)
			td.Cmp(t, err.Error(), td.Contains(tC.ty.String()))
		})
	}

	t.Run("dynamic", func(t *testing.T) {
		_, err := encodeText(src, types.NewTuple(1, make(chan int)))
		td.CmpErrorIs(t, err, encio.ErrUnsupportedValueKind)
	})
}

func TestFormatter(t *testing.T) {
	r := formatter.NewRegistry()
	td.Require(t).CmpNoError(formatter.Register(r, func(f fooBar) (string, []any) {
		return ".i = {}", []any{f.I}
	}))
	td.Require(t).CmpNoError(formatter.Register(r, func(i int) (string, []any) {
		return "never", nil
	}))
	src := encode.New(r)

	custom := join(
		"CustomFormatBegin", "TupleBegin",
		str(".i = {}"), `PositiveInteger(7) "int"`,
		"TupleEnd", "CustomFormatEnd",
	)

	t.Run("replaces tuple rule", func(t *testing.T) {
		got, err := encodeText(src, fooBar{I: 7})
		td.CmpNoError(t, err)
		td.Cmp(t, got, custom)
	})

	t.Run("through pointer", func(t *testing.T) {
		got, err := encodeText(src, &fooBar{I: 7})
		td.CmpNoError(t, err)
		td.Cmp(t, got, custom)
	})

	t.Run("inside array", func(t *testing.T) {
		got, err := encodeText(src, []fooBar{{I: 7}})
		td.CmpNoError(t, err)
		td.Cmp(t, got, join("ArrayBegin", custom, "ArrayEnd"))
	})

	t.Run("scalars keep their rule", func(t *testing.T) {
		got, err := encodeText(src, 7)
		td.CmpNoError(t, err)
		td.Cmp(t, got, join(`PositiveInteger(7) "int"`))
	})
}

func TestDepth(t *testing.T) {
	src := encode.New(nil)

	cycle := &node{V: 1}
	cycle.Next = cycle

	s := encode.NewStream(8)
	err := encode.EncodeDynamic(src, reflect.ValueOf(cycle), s)
	td.CmpErrorIs(t, err, encio.ErrTooDeep)

	type self *self
	var p self
	p = &p
	err = encode.EncodeDynamic(src, reflect.ValueOf(p), encode.NewStream(16))
	td.CmpErrorIs(t, err, encio.ErrTooDeep)

	s = encode.NewStream(2)
	td.CmpNoError(t, encode.EncodeDynamic(src, reflect.ValueOf([][]int{{1}}), s))
	td.Cmp(t, s.Depth(), 0)
	td.CmpErrorIs(t, encode.EncodeDynamic(src, reflect.ValueOf([][][]int{{{1}}}), s), encio.ErrTooDeep)
}

func TestStream(t *testing.T) {
	s := encode.NewStream(0)
	td.CmpNoError(t, s.Open(token.StartOut))
	td.CmpNoError(t, s.Open(token.ArrayBegin))
	td.Cmp(t, s.Depth(), 2)
	s.Close()
	s.Close()
	td.Cmp(t, s.Len(), 4)
	td.CmpNoError(t, token.Validate(s.Tokens()))

	td.CmpPanic(t, func() { s.Close() }, td.Contains("without an open bracket"))
	td.CmpPanic(t, func() { _ = s.Open(token.PositiveInteger) }, td.Contains("opens nothing"))

	s.Reset()
	td.Cmp(t, s.Len(), 0)
}

func TestCachingSource(t *testing.T) {
	src := encode.New(nil)

	enc, err := encode.Resolve(src, reflect.TypeOf(node{}))
	td.Require(t).CmpNoError(err)
	td.Cmp(t, enc.Type(), reflect.TypeOf(node{}))
	td.Cmp(t, src.Len(), 3, "node, *node and int")

	again, err := encode.Resolve(src, reflect.TypeOf(node{}))
	td.Require(t).CmpNoError(err)
	td.CmpTrue(t, again == enc)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := encodeText(src, map[int][]point{1: {{X: 1}}})
			td.CmpNoError(t, err)
			td.CmpLen(t, got, 11)
		}()
	}
	wg.Wait()
}

func TestSplitDecimal(t *testing.T) {
	testCases := []struct {
		desc     string
		in       string
		integer  string
		fraction string
	}{
		{desc: "whole", in: "12", integer: "12", fraction: "0"},
		{desc: "fraction", in: "0.000000000000000001", integer: "0", fraction: "1"},
		{desc: "beyond precision", in: "0.0000000000000000019", integer: "0", fraction: "1"},
		{desc: "exponent", in: "1.5e3", integer: "1500", fraction: "0"},
		{desc: "negative", in: "-7.75", integer: "7", fraction: "750000000000000000"},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			d, _, err := apd.NewFromString(tC.in)
			td.Require(t).CmpNoError(err)

			integer, fraction := encode.SplitDecimal(d)
			td.Cmp(t, integer.String(), tC.integer)
			td.Cmp(t, fraction.String(), tC.fraction)
		})
	}
}
