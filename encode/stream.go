package encode

import (
	"fmt"

	"github.com/Viatorus/compile-time-printer/encio"
	"github.com/Viatorus/compile-time-printer/token"
)

// DefaultMaxDepth is the bracket depth limit of streams created with a non-positive limit.
const DefaultMaxDepth = 1024

// NewStream returns an empty Stream allowing maxDepth open brackets.
func NewStream(maxDepth int) *Stream {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Stream{maxDepth: maxDepth}
}

// Stream collects the tokens of a frame before they are handed to a sink.
// It is not safe for concurrent use.
type Stream struct {
	tokens   []token.Token
	open     []token.Tag
	maxDepth int
	indirect int
}

// Emit appends t.
func (s *Stream) Emit(t token.Token) {
	s.tokens = append(s.tokens, t)
}

// Open appends a bracket opening tag.
// It returns an error wrapping encio.ErrTooDeep if the depth limit would be exceeded.
func (s *Stream) Open(tag token.Tag) error {
	if _, ok := tag.Closer(); !ok {
		panic(fmt.Sprintf("encode: %v opens nothing", tag))
	}
	if len(s.open) >= s.maxDepth {
		return encio.NewError(encio.ErrTooDeep, fmt.Sprintf("more than %v nested brackets", s.maxDepth), 1)
	}
	s.open = append(s.open, tag)
	s.tokens = append(s.tokens, token.New(tag))
	return nil
}

// Close appends the tag closing the innermost open bracket.
func (s *Stream) Close() {
	if len(s.open) == 0 {
		panic("encode: Close without an open bracket")
	}
	closer, _ := s.open[len(s.open)-1].Closer()
	s.open = s.open[:len(s.open)-1]
	s.tokens = append(s.tokens, token.New(closer))
}

// descend records following a pointer or interface; cycles without brackets are cut by the same limit.
func (s *Stream) descend() error {
	if s.indirect >= s.maxDepth {
		return encio.NewError(encio.ErrTooDeep, fmt.Sprintf("more than %v nested indirections", s.maxDepth), 1)
	}
	s.indirect++
	return nil
}

func (s *Stream) ascend() {
	s.indirect--
}

// Depth returns the number of open brackets.
func (s *Stream) Depth() int {
	return len(s.open)
}

// Len returns the number of tokens collected.
func (s *Stream) Len() int {
	return len(s.tokens)
}

// Tokens returns the collected tokens.
func (s *Stream) Tokens() []token.Token {
	return s.tokens
}

// Reset empties s, keeping its depth limit.
func (s *Stream) Reset() {
	s.tokens = s.tokens[:0]
	s.open = s.open[:0]
	s.indirect = 0
}
