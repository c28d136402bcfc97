package decode

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cockroachdb/apd/v3"

	"github.com/Viatorus/compile-time-printer/encio"
)

// ErrFormat is returned when a template can't be applied to its fields.
var ErrFormat = errors.New("bad format")

func formatErr(format string, args ...any) error {
	return encio.NewError(ErrFormat, fmt.Sprintf(format, args...), 1)
}

// Format substitutes the replacement fields of template with args.
//
// Replacement fields are written as in Python's str.format:
// "{}" takes the next argument, "{N}" the N'th, and "{{" and "}}" are literal braces.
// A field may index into arrays, tuples and strings ("{0[1]}"), convert its value with "!r" or "!s",
// and carry a format spec after a colon ("{:>8.3f}").
// Automatic and manual numbering can't be mixed.
func Format(template string, args []Value) (string, error) {
	f := formatter{args: args}
	var sb strings.Builder

	for i := 0; i < len(template); {
		switch c := template[i]; c {
		case '{':
			if i+1 < len(template) && template[i+1] == '{' {
				sb.WriteByte('{')
				i += 2
				continue
			}
			end := strings.IndexByte(template[i:], '}')
			if end < 0 {
				return "", formatErr("single '{' encountered in %q", template)
			}
			field := template[i+1 : i+end]
			if strings.IndexByte(field, '{') >= 0 {
				return "", formatErr("nested replacement field in %q", template)
			}
			s, err := f.replace(field)
			if err != nil {
				return "", err
			}
			sb.WriteString(s)
			i += end + 1
		case '}':
			if i+1 < len(template) && template[i+1] == '}' {
				sb.WriteByte('}')
				i += 2
				continue
			}
			return "", formatErr("single '}' encountered in %q", template)
		default:
			sb.WriteByte(c)
			i++
		}
	}

	return sb.String(), nil
}

type numbering int

const (
	unnumbered numbering = iota
	automatic
	manual
)

type formatter struct {
	args []Value
	next int
	mode numbering
}

func (f *formatter) replace(field string) (string, error) {
	spec := ""
	if i := strings.IndexByte(field, ':'); i >= 0 {
		field, spec = field[:i], field[i+1:]
	}
	conversion := byte(0)
	if i := strings.IndexByte(field, '!'); i >= 0 {
		if len(field) != i+2 {
			return "", formatErr("bad conversion in field %q", field)
		}
		field, conversion = field[:i], field[i+1]
	}

	name := field
	accessors := ""
	if i := strings.IndexAny(field, "[."); i >= 0 {
		name, accessors = field[:i], field[i:]
	}

	v, err := f.arg(name)
	if err != nil {
		return "", err
	}

	for accessors != "" {
		if accessors[0] == '.' {
			return "", formatErr("attribute access in field %q", field)
		}
		end := strings.IndexByte(accessors, ']')
		if end < 0 {
			return "", formatErr("missing ']' in field %q", field)
		}
		n, err := strconv.Atoi(accessors[1:end])
		if err != nil {
			return "", formatErr("index %q in field %q is not an integer", accessors[1:end], field)
		}
		if v, err = index(v, n); err != nil {
			return "", err
		}
		accessors = accessors[end+1:]
	}

	switch conversion {
	case 0:
	case 's':
		v = String(v.String())
	case 'r', 'a':
		v = String(v.Repr())
	default:
		return "", formatErr("unknown conversion %q", conversion)
	}

	return FormatValue(v, spec)
}

func (f *formatter) arg(name string) (Value, error) {
	var n int
	if name == "" {
		if f.mode == manual {
			return nil, formatErr("cannot switch from manual field numbering to automatic")
		}
		f.mode = automatic
		n = f.next
		f.next++
	} else {
		if f.mode == automatic {
			return nil, formatErr("cannot switch from automatic field numbering to manual")
		}
		f.mode = manual
		var err error
		if n, err = strconv.Atoi(name); err != nil || n < 0 {
			return nil, formatErr("field %q is not an argument index", name)
		}
	}

	if n >= len(f.args) {
		return nil, formatErr("replacement index %v out of range for %v arguments", n, len(f.args))
	}
	return f.args[n], nil
}

func index(v Value, n int) (Value, error) {
	var elems []Value
	switch v := v.(type) {
	case Array:
		elems = v
	case Tuple:
		elems = v
	case String:
		for _, r := range string(v) {
			elems = append(elems, String(string(r)))
		}
	default:
		return nil, formatErr("%v is not indexable", v.Repr())
	}
	if n >= len(elems) {
		return nil, formatErr("index %v out of range for %v", n, v.Repr())
	}
	return elems[n], nil
}

// spec is a parsed format spec; [[fill]align][sign][z][#][0][width][grouping][.precision][type].
type spec struct {
	fill      rune
	align     rune
	sign      rune
	alt       bool
	width     int
	grouping  rune
	precision int
	verb      rune
}

func parseSpec(s string) (spec, error) {
	sp := spec{fill: ' ', precision: -1}
	rs := []rune(s)
	i := 0

	isAlign := func(r rune) bool { return r == '<' || r == '>' || r == '^' || r == '=' }
	switch {
	case len(rs) >= 2 && isAlign(rs[1]):
		sp.fill, sp.align = rs[0], rs[1]
		i = 2
	case len(rs) >= 1 && isAlign(rs[0]):
		sp.align = rs[0]
		i = 1
	}

	if i < len(rs) && (rs[i] == '+' || rs[i] == '-' || rs[i] == ' ') {
		sp.sign = rs[i]
		i++
	}
	if i < len(rs) && rs[i] == 'z' {
		i++
	}
	if i < len(rs) && rs[i] == '#' {
		sp.alt = true
		i++
	}
	if i < len(rs) && rs[i] == '0' {
		if sp.align == 0 {
			sp.fill, sp.align = '0', '='
		}
		i++
	}

	start := i
	for i < len(rs) && rs[i] >= '0' && rs[i] <= '9' {
		i++
	}
	if i > start {
		width, err := specNumber(rs[start:i], "width", s)
		if err != nil {
			return sp, err
		}
		sp.width = width
	}

	if i < len(rs) && (rs[i] == ',' || rs[i] == '_') {
		sp.grouping = rs[i]
		i++
	}

	if i < len(rs) && rs[i] == '.' {
		i++
		start = i
		for i < len(rs) && rs[i] >= '0' && rs[i] <= '9' {
			i++
		}
		if i == start {
			return sp, formatErr("format spec %q is missing a precision", s)
		}
		precision, err := specNumber(rs[start:i], "precision", s)
		if err != nil {
			return sp, err
		}
		sp.precision = precision
	}

	if i < len(rs) {
		sp.verb = rs[i]
		i++
	}
	if i != len(rs) {
		return sp, formatErr("invalid format spec %q", s)
	}
	return sp, nil
}

// FormatValue formats v according to a Python format spec.
// maxSpecNumber bounds widths and precisions read from a format spec.
const maxSpecNumber = 1 << 16

func specNumber(digits []rune, what, s string) (int, error) {
	n, err := strconv.Atoi(string(digits))
	if err != nil || n > maxSpecNumber {
		return 0, formatErr("format spec %q has a %v above %v", s, what, maxSpecNumber)
	}
	return n, nil
}

// An empty spec yields v.String().
func FormatValue(v Value, s string) (string, error) {
	if s == "" {
		return v.String(), nil
	}

	sp, err := parseSpec(s)
	if err != nil {
		return "", err
	}

	switch v := v.(type) {
	case String, TypeName, Custom, Char:
		return sp.text(v.String())
	case Bool:
		n := int64(0)
		if v {
			n = 1
		}
		return sp.integer(apd.NewBigInt(n))
	case Int:
		return sp.integer(v.V)
	case Float:
		return sp.float(v)
	default:
		return "", formatErr("format spec %q given for %v", s, v.Repr())
	}
}

func (sp spec) text(s string) (string, error) {
	if sp.verb != 0 && sp.verb != 's' {
		return "", formatErr("unknown format code %q for a string", sp.verb)
	}
	if sp.sign != 0 || sp.alt || sp.grouping != 0 {
		return "", formatErr("sign, '#' and grouping are not allowed for strings")
	}
	if sp.align == '=' {
		return "", formatErr("'=' alignment is not allowed for strings")
	}
	if sp.precision >= 0 && utf8.RuneCountInString(s) > sp.precision {
		s = string([]rune(s)[:sp.precision])
	}
	return sp.pad("", s, '<'), nil
}

func (sp spec) integer(n *apd.BigInt) (string, error) {
	switch sp.verb {
	case 'e', 'E', 'f', 'F', 'g', 'G', '%':
		return sp.float(Float{V: apd.NewWithBigInt(n, 0)})
	}
	if sp.precision >= 0 {
		return "", formatErr("precision is not allowed for integers")
	}

	abs := new(apd.BigInt).Abs(n)
	prefix := ""
	var digits string
	switch sp.verb {
	case 0, 'd', 'n':
		digits = group(abs.String(), sp.grouping, 3)
	case 'x', 'X', 'o', 'b':
		base := map[rune]int{'x': 16, 'X': 16, 'o': 8, 'b': 2}[sp.verb]
		digits = abs.Text(base)
		if sp.verb == 'X' {
			digits = strings.ToUpper(digits)
		}
		if sp.grouping == '_' {
			digits = group(digits, '_', 4)
		} else if sp.grouping != 0 {
			return "", formatErr("cannot use %q with %q", sp.grouping, sp.verb)
		}
		if sp.alt {
			prefix = "0" + string(sp.verb)
		}
	case 'c':
		if !abs.IsInt64() || abs.Int64() > utf8.MaxRune {
			return "", formatErr("%v is out of range for %%c", n)
		}
		if sp.sign != 0 {
			return "", formatErr("sign is not allowed with %%c")
		}
		return sp.pad("", string(rune(n.Int64())), '<'), nil
	default:
		return "", formatErr("unknown format code %q for an integer", sp.verb)
	}

	return sp.pad(sp.signOf(n.Sign() < 0)+prefix, digits, '>'), nil
}

func (sp spec) float(v Float) (string, error) {
	d := v.V
	neg := d.Negative && !(d.Form == apd.Finite && d.IsZero())
	upper := sp.verb == 'F' || sp.verb == 'E' || sp.verb == 'G'

	var body string
	switch d.Form {
	case apd.NaN, apd.NaNSignaling:
		body, neg = "nan", false
	case apd.Infinite:
		body = "inf"
	}
	if body != "" {
		if upper {
			body = strings.ToUpper(body)
		}
		if sp.verb == '%' {
			body += "%"
		}
		return sp.pad(sp.signOf(neg), body, '>'), nil
	}

	abs := new(apd.Decimal).Abs(d)
	prec := sp.precision
	switch sp.verb {
	case 'f', 'F', '%':
		if prec < 0 {
			prec = 6
		}
		if sp.verb == '%' {
			abs.Exponent += 2
		}
		q, err := quantize(abs, prec)
		if err != nil {
			return "", err
		}
		body = groupFraction(q.Text('f'), sp.grouping)
		if prec == 0 && sp.alt {
			body += "."
		}
		if sp.verb == '%' {
			body += "%"
		}
	case 'e', 'E', 'g', 'G', 0:
		if sp.verb == 0 && prec < 0 {
			body = groupFraction(Float{V: abs}.String(), sp.grouping)
			break
		}
		f, err := abs.Float64()
		if err != nil {
			return "", formatErr("%v does not fit a float64: %v", abs, err)
		}
		verb := byte(unicode.ToLower(sp.verb))
		if sp.verb == 0 {
			verb = 'g'
		}
		if prec < 0 {
			prec = 6
		}
		if verb == 'g' && prec == 0 {
			prec = 1
		}
		body = strconv.FormatFloat(f, verb, prec, 64)
		if sp.verb == 0 && !strings.ContainsAny(body, ".e") {
			body += ".0"
		}
		if upper {
			body = strings.ToUpper(body)
		}
	default:
		return "", formatErr("unknown format code %q for a float", sp.verb)
	}

	return sp.pad(sp.signOf(neg), body, '>'), nil
}

// quantize rounds d half-even to prec fractional digits.
func quantize(d *apd.Decimal, prec int) (*apd.Decimal, error) {
	digits := d.NumDigits() + int64(prec) + 2
	if d.Exponent > 0 {
		digits += int64(d.Exponent)
	}
	ctx := apd.BaseContext.WithPrecision(uint32(digits))
	ctx.Rounding = apd.RoundHalfEven

	q := new(apd.Decimal)
	if _, err := ctx.Quantize(q, d, -int32(prec)); err != nil {
		return nil, formatErr("rounding %v to %v digits: %v", d, prec, err)
	}
	return q, nil
}

func (sp spec) signOf(neg bool) string {
	switch {
	case neg:
		return "-"
	case sp.sign == '+':
		return "+"
	case sp.sign == ' ':
		return " "
	default:
		return ""
	}
}

// pad aligns prefix+body in sp.width runes; '=' alignment pads between them.
func (sp spec) pad(prefix, body string, defaultAlign rune) string {
	n := sp.width - utf8.RuneCountInString(prefix) - utf8.RuneCountInString(body)
	if n <= 0 {
		return prefix + body
	}

	align := sp.align
	if align == 0 {
		align = defaultAlign
	}
	fill := func(n int) string { return strings.Repeat(string(sp.fill), n) }

	switch align {
	case '<':
		return prefix + body + fill(n)
	case '^':
		return fill(n/2) + prefix + body + fill(n-n/2)
	case '=':
		return prefix + fill(n) + body
	default:
		return fill(n) + prefix + body
	}
}

// group separates digits into groups of size from the right.
func group(digits string, sep rune, size int) string {
	if sep == 0 || len(digits) <= size {
		return digits
	}
	var sb strings.Builder
	first := len(digits) % size
	if first == 0 {
		first = size
	}
	sb.WriteString(digits[:first])
	for i := first; i < len(digits); i += size {
		sb.WriteRune(sep)
		sb.WriteString(digits[i : i+size])
	}
	return sb.String()
}

// groupFraction groups the integer part of a decimal text.
func groupFraction(s string, sep rune) string {
	integer, fraction, found := strings.Cut(s, ".")
	integer = group(integer, sep, 3)
	if found {
		return integer + "." + fraction
	}
	return integer
}
