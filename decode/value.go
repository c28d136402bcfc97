package decode

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/cockroachdb/apd/v3"
)

// Value is a decoded argument.
//
// String renders the value the way it is printed at the top level of a statement,
// Repr the way it is printed inside an array or tuple. Strings are quoted by Repr only.
type Value interface {
	String() string
	Repr() string
}

// Int is a decoded integer.
type Int struct {
	V *apd.BigInt
}

func (v Int) String() string { return v.V.String() }
func (v Int) Repr() string   { return v.String() }

// Bool is a decoded bool.
type Bool bool

func (v Bool) String() string {
	if v {
		return "True"
	}
	return "False"
}
func (v Bool) Repr() string { return v.String() }

// Char is a decoded character outside of a string.
type Char rune

func (v Char) String() string { return string(rune(v)) }
func (v Char) Repr() string   { return quote(v.String()) }

// Float is a decoded floating-point number; V may be NaN or infinite.
type Float struct {
	V *apd.Decimal
}

// String renders v exactly, with at least one fractional digit.
func (v Float) String() string {
	switch v.V.Form {
	case apd.NaN, apd.NaNSignaling:
		return "nan"
	case apd.Infinite:
		if v.V.Negative {
			return "-inf"
		}
		return "inf"
	}

	s := v.V.Text('f')
	if strings.IndexByte(s, '.') < 0 {
		return s + ".0"
	}
	s = strings.TrimRight(s, "0")
	if strings.HasSuffix(s, ".") {
		s += "0"
	}
	return s
}
func (v Float) Repr() string { return v.String() }

// String is a decoded string.
type String string

func (v String) String() string { return string(v) }
func (v String) Repr() string   { return quote(string(v)) }

// TypeName is a decoded type descriptor.
type TypeName string

func (v TypeName) String() string { return string(v) }
func (v TypeName) Repr() string   { return quote(string(v)) }

// Custom is the output of a user formatter, with its fields already substituted.
type Custom string

func (v Custom) String() string { return string(v) }
func (v Custom) Repr() string   { return quote(string(v)) }

// Array is a decoded array.
type Array []Value

func (v Array) String() string { return "[" + reprs(v) + "]" }
func (v Array) Repr() string   { return v.String() }

// Tuple is a decoded tuple.
type Tuple []Value

func (v Tuple) String() string {
	if len(v) == 1 {
		return "(" + v[0].Repr() + ",)"
	}
	return "(" + reprs(v) + ")"
}
func (v Tuple) Repr() string { return v.String() }

func reprs(vs []Value) string {
	var sb strings.Builder
	for i, v := range vs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(v.Repr())
	}
	return sb.String()
}

// quote quotes s with single quotes, or double quotes if s holds only single quotes.
func quote(s string) string {
	q := '\''
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		q = '"'
	}

	var sb strings.Builder
	sb.WriteRune(q)
	for _, r := range s {
		switch {
		case r == q || r == '\\':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case r == '\n':
			sb.WriteString(`\n`)
		case r == '\r':
			sb.WriteString(`\r`)
		case r == '\t':
			sb.WriteString(`\t`)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&sb, `\x%02x`, r)
		case !unicode.IsPrint(r) && r != ' ':
			switch {
			case r <= 0xff:
				fmt.Fprintf(&sb, `\x%02x`, r)
			case r <= 0xffff:
				fmt.Fprintf(&sb, `\u%04x`, r)
			default:
				fmt.Fprintf(&sb, `\U%08x`, r)
			}
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteRune(q)
	return sb.String()
}
