package encode

import (
	"fmt"
	"reflect"

	"github.com/Viatorus/compile-time-printer/encio"
	"github.com/Viatorus/compile-time-printer/token"
)

// RuneType is the type annotation of the characters of encoded strings.
const RuneType = "rune"

// NewString returns an Encodable for string kinds.
func NewString(ty reflect.Type) *String {
	if ty.Kind() != reflect.String {
		panic(encio.NewError(encio.ErrBadType, fmt.Sprintf("%v is not a string", ty), 0))
	}
	return &String{ty: ty}
}

// String encodes strings as StringBegin, one PositiveInteger per rune, StringEnd.
// Invalid UTF-8 is encoded as utf8.RuneError.
type String struct {
	ty reflect.Type
}

// Type implements Encodable.
func (e *String) Type() reflect.Type { return e.ty }

// Encode implements Encodable.
func (e *String) Encode(v reflect.Value, s *Stream) error {
	return EncodeString(v.String(), s)
}

// EncodeString appends the tokens of str to s.
func EncodeString(str string, s *Stream) error {
	if err := s.Open(token.StringBegin); err != nil {
		return err
	}
	for _, r := range str {
		s.Emit(token.Uint(token.PositiveInteger, uint64(r), RuneType))
	}
	s.Close()
	return nil
}
