// Package decode reads token streams back into print statements.
//
// A Decoder reduces the tokens of each frame into Values, and a Statement renders them the way
// the frame's call asked for: raw statements as their arguments separated by spaces,
// formatted statements by substituting the arguments into the template with Format.
package decode

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/apd/v3"

	"github.com/Viatorus/compile-time-printer/encio"
	"github.com/Viatorus/compile-time-printer/token"
)

var (
	// ErrVersionMismatch is returned when a stream's Version handshake names another protocol version.
	ErrVersionMismatch = errors.New("incompatible ctp versions")

	// ErrNoOutput is returned by a Decoder whose stream ended without any ctp token.
	ErrNoOutput = errors.New("no ctp output found")
)

// Destination is the output a statement is printed to.
type Destination int

// Destinations.
const (
	Stdout Destination = 1
	Stderr Destination = 2
)

func (d Destination) String() string {
	switch d {
	case Stdout:
		return "stdout"
	case Stderr:
		return "stderr"
	default:
		return fmt.Sprintf("Destination(%v)", int(d))
	}
}

// Statement is a decoded frame.
// Formatted statements hold their template as the first argument.
type Statement struct {
	Destination Destination
	Formatted   bool
	Args        []Value
}

// Message renders s.
// Raw statements are their arguments' String forms separated by spaces, with a trailing newline.
// Formatted statements are their template with the remaining arguments substituted; no newline is added.
func (s *Statement) Message() (string, error) {
	if !s.Formatted {
		var sb strings.Builder
		for i, arg := range s.Args {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(arg.String())
		}
		sb.WriteByte('\n')
		return sb.String(), nil
	}

	if len(s.Args) == 0 {
		return "", formatErr("formatted statement has no template")
	}
	template, ok := s.Args[0].(String)
	if !ok {
		return "", formatErr("template %v is not a string", s.Args[0].Repr())
	}
	return Format(string(template), s.Args[1:])
}

// Options configures a Decoder.
type Options struct {
	// Prettifier is applied to type names. May be nil.
	Prettifier *Prettifier
}

// NewDecoder returns a Decoder reading tokens from src. opts may be nil.
func NewDecoder(src TokenSource, opts *Options) *Decoder {
	d := &Decoder{src: src}
	if opts != nil {
		d.prettifier = opts.Prettifier
	}
	return d
}

// Decoder reads Statements from a token stream.
// Several printers may share a stream, so a Version token may appear before any frame.
type Decoder struct {
	src        TokenSource
	prettifier *Prettifier
	seen       bool
}

// Next returns the next Statement.
// It returns io.EOF at the end of the stream, or an error wrapping ErrNoOutput if the stream held no tokens at all.
func (d *Decoder) Next() (*Statement, error) {
	for {
		t, err := d.src.Decode()
		if err == io.EOF {
			if !d.seen {
				return nil, encio.NewError(ErrNoOutput, "", 0)
			}
			return nil, io.EOF
		}
		if err != nil {
			return nil, err
		}
		d.seen = true

		switch {
		case t.Tag == token.Version:
			if t.Payload == nil || !t.Payload.IsInt64() || t.Payload.Int64() != token.ProtocolVersion {
				return nil, encio.NewError(
					ErrVersionMismatch,
					fmt.Sprintf("stream speaks v%v, decoder speaks v%v", t.Payload, token.ProtocolVersion),
					0,
				)
			}
		case t.Tag.IsStart():
			return d.statement(t.Tag)
		default:
			return nil, malformed("%v outside a frame", t)
		}
	}
}

// All returns every remaining Statement.
func (d *Decoder) All() ([]*Statement, error) {
	var statements []*Statement
	for {
		s, err := d.Next()
		if err == io.EOF {
			return statements, nil
		}
		if err != nil {
			return statements, err
		}
		statements = append(statements, s)
	}
}

func malformed(format string, args ...any) error {
	return encio.NewError(encio.ErrMalformed, fmt.Sprintf(format, args...), 1)
}

var fractionScale = new(apd.BigInt).Exp(apd.NewBigInt(10), apd.NewBigInt(18), nil)

// float is the integer half of a float waiting for its FractionFloat.
type float struct {
	negative bool
	integer  *apd.BigInt
}

// statement reduces the tokens of one frame.
func (d *Decoder) statement(start token.Tag) (*Statement, error) {
	s := &Statement{
		Destination: Stdout,
		Formatted:   start.IsFormat(),
	}
	if start.IsErr() {
		s.Destination = Stderr
	}

	levels := [][]Value{nil}
	var open []token.Tag
	var pending *float

	push := func(v Value) {
		levels[len(levels)-1] = append(levels[len(levels)-1], v)
	}

	for {
		t, err := d.src.Decode()
		if err == io.EOF {
			return nil, malformed("stream ends inside a frame")
		}
		if err != nil {
			return nil, err
		}

		if pending != nil && t.Tag != token.FractionFloat {
			return nil, malformed("%v follows the integer part of a float", t)
		}

		switch t.Tag {
		case token.End:
			if len(open) > 0 {
				return nil, malformed("frame ends with %v open", open[len(open)-1])
			}
			s.Args = levels[0]
			return s, nil

		case token.NaNFloat:
			push(Float{V: &apd.Decimal{Form: apd.NaN}})
		case token.PositiveInfinityFloat:
			push(Float{V: &apd.Decimal{Form: apd.Infinite}})
		case token.NegativeInfinityFloat:
			push(Float{V: &apd.Decimal{Form: apd.Infinite, Negative: true}})

		case token.PositiveFloat, token.NegativeFloat:
			pending = &float{negative: t.Tag == token.NegativeFloat, integer: t.Payload}
		case token.FractionFloat:
			if pending == nil {
				return nil, malformed("%v without an integer part", t)
			}
			if t.Payload.Cmp(fractionScale) >= 0 {
				return nil, malformed("fraction %v is not below 10^18", t.Payload)
			}
			f := new(apd.Decimal)
			f.Coeff.Mul(pending.integer, fractionScale)
			f.Coeff.Add(&f.Coeff, t.Payload)
			f.Exponent = -18
			f.Negative = pending.negative && !f.IsZero()
			push(Float{V: f})
			pending = nil

		case token.PositiveInteger:
			push(integer(t))
		case token.NegativeInteger:
			push(Int{V: new(apd.BigInt).Neg(t.Payload)})

		case token.Type:
			push(TypeName(d.prettifier.Prettify(t.Type)))

		case token.ArrayBegin, token.StringBegin, token.TupleBegin, token.CustomFormatBegin:
			open = append(open, t.Tag)
			levels = append(levels, nil)

		case token.ArrayEnd, token.StringEnd, token.TupleEnd, token.CustomFormatEnd:
			if len(open) == 0 {
				return nil, malformed("%v without a matching opener", t)
			}
			if closer, _ := open[len(open)-1].Closer(); closer != t.Tag {
				return nil, malformed("%v closes %v", t, open[len(open)-1])
			}
			open = open[:len(open)-1]

			elems := levels[len(levels)-1]
			levels = levels[:len(levels)-1]
			v, err := reduce(t.Tag, elems)
			if err != nil {
				return nil, err
			}
			push(v)

		default:
			return nil, malformed("%v inside a frame", t)
		}
	}
}

func integer(t token.Token) Value {
	switch t.Type {
	case "bool":
		return Bool(t.Payload.Sign() != 0)
	case "rune":
		if t.Payload.IsInt64() && t.Payload.Int64() <= utf8.MaxRune {
			return Char(t.Payload.Int64())
		}
	}
	return Int{V: t.Payload}
}

func reduce(closer token.Tag, elems []Value) (Value, error) {
	switch closer {
	case token.ArrayEnd:
		return Array(elems), nil
	case token.TupleEnd:
		return Tuple(elems), nil

	case token.StringEnd:
		var sb strings.Builder
		for _, e := range elems {
			switch e := e.(type) {
			case Char:
				sb.WriteRune(rune(e))
			case Int:
				if !e.V.IsInt64() || e.V.Int64() < 0 || e.V.Int64() > utf8.MaxRune {
					return nil, malformed("string holds %v, which is not a character", e)
				}
				sb.WriteRune(rune(e.V.Int64()))
			default:
				return nil, malformed("string holds %v, which is not a character", e.Repr())
			}
		}
		return String(sb.String()), nil

	case token.CustomFormatEnd:
		if len(elems) != 1 {
			return nil, malformed("custom format holds %v values instead of one tuple", len(elems))
		}
		tuple, ok := elems[0].(Tuple)
		if !ok || len(tuple) == 0 {
			return nil, malformed("custom format holds %v instead of a (template, fields...) tuple", elems[0].Repr())
		}
		template, ok := tuple[0].(String)
		if !ok {
			return nil, malformed("custom format template %v is not a string", tuple[0].Repr())
		}
		s, err := Format(string(template), tuple[1:])
		if err != nil {
			return nil, err
		}
		return Custom(s), nil
	}

	panic(fmt.Sprintf("decode: %v is not a closer", closer))
}
