package transcode

import (
	"fmt"
	"reflect"
)

// Transcoding is a registered encode/decode rule bound to one runtime type and
// one wire tag name. It is a pure transformation: it owns none of the data
// passed through it and is reused for every matching value.
//
// Encode may return any value, including composites or values of other
// registered types; nested custom values are expanded into envelopes in turn.
// Decode is the inverse and receives data whose own nested envelopes have
// already been restored.
type Transcoding interface {
	// Type is the runtime type this transcoding claims ownership of.
	// Dispatch is by exact type identity, so a named type is not covered by
	// a transcoding for its underlying type.
	Type() reflect.Type

	// Name is the stable wire tag written to the envelope's "_type_" field.
	// It must be unique within a registry.
	Name() string

	// Encode converts a value of Type into a wire-representable value.
	Encode(value any) (any, error)

	// Decode restores a value of Type from its wire representation.
	Decode(data any) (any, error)
}

// NewTranscoding builds a Transcoding for T from a name and an encode/decode
// function pair.
func NewTranscoding[T any](name string, encode func(T) (any, error), decode func(any) (T, error)) Transcoding {
	return &funcTranscoding[T]{
		typ:    reflect.TypeOf((*T)(nil)).Elem(),
		name:   name,
		encode: encode,
		decode: decode,
	}
}

type funcTranscoding[T any] struct {
	typ    reflect.Type
	name   string
	encode func(T) (any, error)
	decode func(any) (T, error)
}

func (f *funcTranscoding[T]) Type() reflect.Type { return f.typ }

func (f *funcTranscoding[T]) Name() string { return f.name }

func (f *funcTranscoding[T]) Encode(value any) (any, error) {
	v, ok := value.(T)
	if !ok {
		return nil, fmt.Errorf("transcode: %s: expected %v, got %T", f.name, f.typ, value)
	}
	return f.encode(v)
}

func (f *funcTranscoding[T]) Decode(data any) (any, error) {
	return f.decode(data)
}
