package token

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"

	"github.com/Viatorus/compile-time-printer/encio"
)

// Token is a single protocol unit.
// Payload is the unsigned magnitude carried by numeric tags and is nil for structural tags.
// Type optionally names the Go type that produced the token.
//
// Tokens are never modified after they are emitted; share them freely.
type Token struct {
	Tag     Tag
	Payload *apd.BigInt
	Type    string
}

// New returns a token without a payload.
func New(tag Tag) Token {
	return Token{Tag: tag}
}

// WithPayload returns a token carrying n.
// It panics if n is negative; magnitudes are always unsigned.
func WithPayload(tag Tag, n *apd.BigInt, typ string) Token {
	if n.Sign() < 0 {
		panic(fmt.Sprintf("negative payload %v for %v", n, tag))
	}
	return Token{Tag: tag, Payload: n, Type: typ}
}

// Uint returns a token carrying n.
func Uint(tag Tag, n uint64, typ string) Token {
	return Token{Tag: tag, Payload: new(apd.BigInt).SetUint64(n), Type: typ}
}

// VersionToken returns the handshake token.
func VersionToken() Token {
	return Uint(Version, ProtocolVersion, "")
}

// Equal returns true if t and o carry the same tag, magnitude and type name.
func (t Token) Equal(o Token) bool {
	if t.Tag != o.Tag || t.Type != o.Type {
		return false
	}
	if t.Payload == nil || o.Payload == nil {
		return t.Payload == nil && o.Payload == nil
	}
	return t.Payload.Cmp(o.Payload) == 0
}

// String returns the text form of t; `Tag(payload) "type"`, omitting absent parts.
func (t Token) String() string {
	var sb strings.Builder
	sb.WriteString(t.Tag.String())
	if t.Payload != nil {
		sb.WriteByte('(')
		sb.WriteString(t.Payload.String())
		sb.WriteByte(')')
	}
	if t.Type != "" {
		sb.WriteByte(' ')
		sb.WriteString(strconv.Quote(t.Type))
	}
	return sb.String()
}

// ErrSyntax is returned by Parse for text that is not a token.
var ErrSyntax = errors.New("invalid token syntax")

// Parse reads a token from its text form, as written by Token.String.
func Parse(s string) (Token, error) {
	s = strings.TrimSpace(s)

	name := s
	rest := ""
	if i := strings.IndexAny(s, "( "); i >= 0 {
		name, rest = s[:i], s[i:]
	}

	tag, ok := tagsByName[name]
	if !ok {
		return Token{}, encio.NewError(ErrSyntax, fmt.Sprintf("unknown tag %q", name), 0)
	}
	t := Token{Tag: tag}

	if strings.HasPrefix(rest, "(") {
		end := strings.IndexByte(rest, ')')
		if end < 0 {
			return Token{}, encio.NewError(ErrSyntax, fmt.Sprintf("unterminated payload in %q", s), 0)
		}
		n, ok := new(apd.BigInt).SetString(rest[1:end], 10)
		if !ok || n.Sign() < 0 {
			return Token{}, encio.NewError(ErrSyntax, fmt.Sprintf("bad payload in %q", s), 0)
		}
		t.Payload = n
		rest = rest[end+1:]
	}

	if rest = strings.TrimSpace(rest); rest != "" {
		typ, err := strconv.Unquote(rest)
		if err != nil {
			return Token{}, encio.NewError(ErrSyntax, fmt.Sprintf("bad type name in %q", s), 0)
		}
		t.Type = typ
	}

	if tag.HasPayload() != (t.Payload != nil) {
		return Token{}, encio.NewError(ErrSyntax, fmt.Sprintf("%v payload mismatch in %q", tag, s), 0)
	}

	return t, nil
}
