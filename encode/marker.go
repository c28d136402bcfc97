package encode

import (
	"reflect"

	"github.com/Viatorus/compile-time-printer/token"
	"github.com/Viatorus/compile-time-printer/types"
)

// NewDescriptor returns the Encodable of types.Descriptor.
func NewDescriptor() *Descriptor {
	return &Descriptor{}
}

// Descriptor encodes a types.Descriptor as one Type token, annotated with the described type names.
type Descriptor struct{}

// Type implements Encodable.
func (e *Descriptor) Type() reflect.Type { return types.DescriptorType }

// Encode implements Encodable.
func (e *Descriptor) Encode(v reflect.Value, s *Stream) error {
	d := v.Interface().(types.Descriptor)
	s.Emit(token.Token{Tag: token.Type, Type: d.String()})
	return nil
}

// NewNoise returns the Encodable of types.Noise.
func NewNoise() *Noise {
	return &Noise{}
}

// Noise encodes nothing.
type Noise struct{}

// Type implements Encodable.
func (e *Noise) Type() reflect.Type { return types.NoiseType }

// Encode implements Encodable.
func (e *Noise) Encode(reflect.Value, *Stream) error { return nil }
