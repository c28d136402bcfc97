package decode

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/Viatorus/compile-time-printer/encio"
	"github.com/Viatorus/compile-time-printer/token"
)

// TokenSource yields tokens until io.EOF. *wire.Decoder implements it.
type TokenSource interface {
	Decode() (token.Token, error)
}

// Tokens returns a TokenSource yielding tokens in order.
func Tokens(tokens []token.Token) TokenSource {
	return &sliceSource{tokens: tokens}
}

type sliceSource struct {
	tokens []token.Token
}

func (s *sliceSource) Decode() (token.Token, error) {
	if len(s.tokens) == 0 {
		return token.Token{}, io.EOF
	}
	t := s.tokens[0]
	s.tokens = s.tokens[1:]
	return t, nil
}

// NewTextSource returns a TokenSource reading one token per line in the form written by Token.String.
//
// Lines that are not tokens are copied to log, so a program's own stderr output survives being decoded.
// If log is nil they are an error wrapping encio.ErrMalformed.
func NewTextSource(r io.Reader, log io.Writer) *TextSource {
	return &TextSource{
		scanner: bufio.NewScanner(r),
		log:     log,
	}
}

// TextSource reads tokens in their text form.
type TextSource struct {
	scanner *bufio.Scanner
	log     io.Writer
	line    int
}

// Decode implements TokenSource.
func (s *TextSource) Decode() (token.Token, error) {
	for s.scanner.Scan() {
		s.line++
		line := s.scanner.Text()

		t, err := token.Parse(line)
		if err == nil {
			return t, nil
		}

		switch {
		case s.log != nil:
			if _, err := fmt.Fprintln(s.log, line); err != nil {
				return token.Token{}, encio.NewIOError(err, s.log, "copying log line", 0)
			}
		case strings.TrimSpace(line) == "":
		default:
			return token.Token{}, encio.NewIOError(encio.ErrMalformed, s, fmt.Sprintf("line %v: %v", s.line, err), 0)
		}
	}

	if err := s.scanner.Err(); err != nil {
		return token.Token{}, encio.NewIOError(err, s, fmt.Sprintf("after line %v", s.line), 0)
	}
	return token.Token{}, io.EOF
}
