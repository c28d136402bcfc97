package token

import (
	"errors"
	"fmt"

	"github.com/Viatorus/compile-time-printer/encio"
)

var (
	// ErrUnbalanced is returned when brackets or frames are left open, or closed by the wrong tag.
	ErrUnbalanced = errors.New("unbalanced tokens")

	// ErrUnexpected is returned when a token appears where the protocol doesn't allow it.
	ErrUnexpected = errors.New("unexpected token")
)

// Validate checks that tokens form a well-formed stream;
// an optional leading Version, then frames, each opened by a Start tag and closed by End,
// with every bracket inside properly nested and every payload where it belongs.
func Validate(tokens []Token) error {
	v := Validator{}
	for _, t := range tokens {
		if err := v.Next(t); err != nil {
			return err
		}
	}
	return v.Finish()
}

// Validator checks a stream token by token.
// The zero value is ready to use.
type Validator struct {
	// Shared accepts a Version before any frame, not only at the start.
	// Streams written by several printers, like a program's stderr, look like that.
	Shared bool

	stack []Tag
	index int
}

// InFrame returns true if a frame is open.
func (v *Validator) InFrame() bool {
	return len(v.stack) > 0
}

// Next checks the next token of the stream.
func (v *Validator) Next(t Token) error {
	i := v.index
	v.index++

	if !t.Tag.Valid() {
		return encio.NewError(ErrUnexpected, fmt.Sprintf("token %v has unknown tag %v", i, t.Tag), 1)
	}
	if t.Tag.HasPayload() != (t.Payload != nil) {
		return encio.NewError(ErrUnexpected, fmt.Sprintf("token %v (%v) payload mismatch", i, t), 1)
	}

	switch {
	case t.Tag == Version:
		if v.Shared && !v.InFrame() {
			return nil
		}
		if i != 0 {
			return encio.NewError(ErrUnexpected, fmt.Sprintf("Version at token %v; it may only lead the stream", i), 1)
		}
		return nil

	case t.Tag.IsStart():
		if v.InFrame() {
			return encio.NewError(ErrUnbalanced, fmt.Sprintf("%v at token %v opens a frame inside a frame", t.Tag, i), 1)
		}
		v.stack = append(v.stack, t.Tag)
		return nil

	case !v.InFrame():
		return encio.NewError(ErrUnexpected, fmt.Sprintf("%v at token %v is outside of a frame", t.Tag, i), 1)

	case t.Tag.IsBegin():
		v.stack = append(v.stack, t.Tag)
		return nil

	case t.Tag.IsEnd():
		open := v.stack[len(v.stack)-1]
		if closer, _ := open.Closer(); closer != t.Tag {
			return encio.NewError(ErrUnbalanced, fmt.Sprintf("%v at token %v closes %v", t.Tag, i, open), 1)
		}
		v.stack = v.stack[:len(v.stack)-1]
		return nil
	}

	return nil
}

// Finish returns an error if a frame or bracket is still open.
func (v *Validator) Finish() error {
	if v.InFrame() {
		return encio.NewError(ErrUnbalanced, fmt.Sprintf("stream ends with %v left open", v.stack[len(v.stack)-1]), 1)
	}
	return nil
}
