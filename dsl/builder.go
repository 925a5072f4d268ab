package dsl

import (
	"reflect"

	idxcodec "github.com/reoring/idxcodec"
)

// Builder collects record directives and fields in declaration order.
type Builder struct {
	rec    idxcodec.RecordDirectives
	fields []idxcodec.FieldDescriptor
	err    error
}

type fieldStep struct {
	b *Builder
	i int
}

// Record creates a new record builder with explicit indexing and offset 0.
func Record() *Builder {
	return &Builder{}
}

// Of returns the reflect.Type of T for Field.
func Of[T any]() reflect.Type { return reflect.TypeFor[T]() }

// Offset sets the value added to every index to form the wire key.
func (b *Builder) Offset(n uint64) *Builder {
	b.rec.Offset = n
	return b
}

// AutoIndex assigns indices sequentially in declaration order.
func (b *Builder) AutoIndex() *Builder {
	b.rec.AutoIndex = true
	return b
}

// Field appends a field. t may be nil for untyped dynamic fields.
func (b *Builder) Field(name string, t reflect.Type) *fieldStep {
	b.fields = append(b.fields, idxcodec.FieldDescriptor{Name: name, Type: t})
	return &fieldStep{b: b, i: len(b.fields) - 1}
}

// Build validates the directives and assigns indices.
func (b *Builder) Build() (*idxcodec.StructSchema, error) {
	if b.err != nil {
		return nil, b.err
	}
	return idxcodec.BuildSchema(b.rec, b.fields)
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() *idxcodec.StructSchema {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}

func (f *fieldStep) dir() *idxcodec.FieldDirectives { return &f.b.fields[f.i].Directives }

// Index sets an explicit index.
func (f *fieldStep) Index(n uint64) *fieldStep {
	f.dir().Index = idxcodec.Index(n)
	return f
}

// Skip removes the field from the wire.
func (f *fieldStep) Skip() *fieldStep {
	f.dir().Skip = true
	return f
}

// NoIncrement keeps a skipped field from consuming an auto-index slot.
func (f *fieldStep) NoIncrement() *fieldStep {
	f.dir().NoIncrement = true
	return f
}

// SkipIf omits the field from an encoded instance when p holds.
func (f *fieldStep) SkipIf(p idxcodec.Predicate) *fieldStep {
	f.dir().SkipIf = p
	return f
}

// SkipIfNamed is SkipIf with a registered predicate.
func (f *fieldStep) SkipIfNamed(name string) *fieldStep {
	f.resolve(idxcodec.NamedDirectives{SkipIf: name}, func(fd idxcodec.FieldDirectives) {
		f.dir().SkipIf = fd.SkipIf
	})
	return f
}

// With sets both custom codec halves.
func (f *fieldStep) With(c idxcodec.FieldCodec) *fieldStep {
	f.dir().With = c
	return f
}

// Codec is With with a registered field codec.
func (f *fieldStep) Codec(name string) *fieldStep {
	f.resolve(idxcodec.NamedDirectives{With: name}, func(fd idxcodec.FieldDirectives) {
		f.dir().With = fd.With
	})
	return f
}

// SerializeWith sets a custom encoder.
func (f *fieldStep) SerializeWith(e idxcodec.EncodeFunc) *fieldStep {
	f.dir().SerializeWith = e
	return f
}

// DeserializeWith sets a custom decoder.
func (f *fieldStep) DeserializeWith(d idxcodec.DecodeFunc) *fieldStep {
	f.dir().DeserializeWith = d
	return f
}

func (f *fieldStep) resolve(n idxcodec.NamedDirectives, apply func(idxcodec.FieldDirectives)) {
	fd, err := n.Resolve(f.b.fields[f.i].Name)
	if err != nil {
		if f.b.err == nil {
			f.b.err = err
		}
		return
	}
	apply(fd)
}

// Builder returns the record builder the step belongs to.
func (f *fieldStep) Builder() *Builder { return f.b }

// Field, Build and MustBuild continue the chain on the record builder.
func (f *fieldStep) Field(name string, t reflect.Type) *fieldStep { return f.b.Field(name, t) }
func (f *fieldStep) Build() (*idxcodec.StructSchema, error)      { return f.b.Build() }
func (f *fieldStep) MustBuild() *idxcodec.StructSchema           { return f.b.MustBuild() }
