// Package encode turns Go values into protocol tokens.
//
// Every Go type the encoder meets is resolved to an Encodable by a Source before any value of it is encoded.
// The default Source, returned by New, walks a fixed rule list and picks the first rule matching the type:
// integral scalars, floating-point scalars, strings, array-likes, tuple-likes, type descriptors,
// noise markers and finally user formatters, with formatters taking precedence over the
// string, array-like and tuple-like rules.
// Types no rule accepts resolve to an Unsupported Encodable, which Resolve reports as ErrUnsupportedValueKind.
package encode

import (
	"fmt"
	"reflect"

	"github.com/Viatorus/compile-time-printer/encio"
)

// Encodable appends the tokens of values of a single type to a Stream.
type Encodable interface {
	// Type returns the type the Encodable encodes.
	Type() reflect.Type

	// Encode appends the tokens for v, which must be of Type(), to s.
	Encode(v reflect.Value, s *Stream) error
}

// Source is a generator of Encodables. Compound Encodables take a Source upon creation,
// and use it to generate the Encodables of their element types, either at creation or at encode time.
type Source interface {
	// NewEncodable returns an Encodable for the given type.
	//
	// It returns a pointer so that a Source can hand out an Encodable that is still being built.
	// Compound Encodables for recursive types receive such a placeholder for themselves,
	// and must not dereference element Encodables until encoding.
	//
	// The Source passed to NewEncodable must be passed on to the Encodables it creates,
	// so wrapping Sources keep control of element Encodable generation.
	NewEncodable(reflect.Type, Source) *Encodable
}

// SourceFromFunc creates a Source from a function.
// It substitutes itself if NewEncodable is called with a nil Source.
func SourceFromFunc(source func(reflect.Type, Source) Encodable) Source {
	return funcSource{newEncodable: source}
}

type funcSource struct {
	newEncodable func(reflect.Type, Source) Encodable
}

func (s funcSource) NewEncodable(ty reflect.Type, source Source) *Encodable {
	if source == nil {
		source = s
	}
	enc := s.newEncodable(ty, source)
	return &enc
}

// Resolve returns the Encodable src generates for ty,
// or an error wrapping encio.ErrUnsupportedValueKind if ty, or a type it statically contains, can't be encoded.
func Resolve(src Source, ty reflect.Type) (Encodable, error) {
	enc := *src.NewEncodable(ty, nil)
	if err := unsupported(enc); err != nil {
		return nil, err
	}
	return enc, nil
}

// NewUnsupported returns an Encodable standing for a type that can't be encoded.
func NewUnsupported(ty reflect.Type, reason string) *Unsupported {
	reason = fmt.Sprintf("%v: %v", typeName(ty), reason)
	return &Unsupported{
		ty:     ty,
		reason: reason,
		err:    encio.NewError(encio.ErrUnsupportedValueKind, reason, 1),
	}
}

// Unsupported is the Encodable of types no rule accepts.
// Its Encode always fails.
type Unsupported struct {
	ty     reflect.Type
	reason string
	err    error
}

// Type implements Encodable.
func (e *Unsupported) Type() reflect.Type { return e.ty }

// Encode implements Encodable.
func (e *Unsupported) Encode(reflect.Value, *Stream) error { return e.err }

// Err returns the reason the type can't be encoded.
func (e *Unsupported) Err() error { return e.err }

// unsupported returns the error of enc if it is Unsupported.
// Placeholders of Encodables still being built are treated as supported.
func unsupported(enc Encodable) error {
	if u, ok := enc.(*Unsupported); ok {
		return u.err
	}
	return nil
}

// elemFailure returns an Unsupported for ty if elem is Unsupported.
func elemFailure(ty reflect.Type, elem *Encodable, what string) *Unsupported {
	if *elem == nil {
		return nil
	}
	if u, ok := (*elem).(*Unsupported); ok {
		reason := fmt.Sprintf("%v %v; %v", typeName(ty), what, u.reason)
		return &Unsupported{
			ty:     ty,
			reason: reason,
			err:    encio.NewError(encio.ErrUnsupportedValueKind, reason, 1),
		}
	}
	return nil
}

func typeName(ty reflect.Type) string {
	if ty == nil {
		return "nil"
	}
	return ty.String()
}
