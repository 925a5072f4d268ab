package dsl

import (
	idxcodec "github.com/reoring/idxcodec"
)

// Buildable is implemented by Builder and by its field steps.
type Buildable interface {
	Build() (*idxcodec.StructSchema, error)
}

// Bind builds the schema and binds it to struct type T by field label
// (free function for Go version compatibility).
func Bind[T any](b Buildable, opts ...idxcodec.Options) (*idxcodec.Codec[T], error) {
	s, err := b.Build()
	if err != nil {
		return nil, err
	}
	return idxcodec.New[T](s, opts...)
}

// MustBind is like Bind but panics on error.
func MustBind[T any](b Buildable, opts ...idxcodec.Options) *idxcodec.Codec[T] {
	c, err := Bind[T](b, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Dynamic builds the schema and returns a codec over map[string]any.
func Dynamic(name string, b Buildable, opts ...idxcodec.Options) (*idxcodec.DynamicCodec, error) {
	s, err := b.Build()
	if err != nil {
		return nil, err
	}
	return idxcodec.NewDynamic(name, s, opts...), nil
}
