package idxcodec

import "reflect"

// Predicate decides, at encode time, whether a field value is omitted.
type Predicate func(v any) bool

// EncodeFunc writes v through w in place of the default value codec. It must
// write exactly one value.
type EncodeFunc func(w ValueWriter, v any) error

// DecodeFunc reads one value from r in place of the default value codec. The
// result must be assignable (or convertible) to the field type.
type DecodeFunc func(r ValueReader) (any, error)

// FieldCodec bundles both halves of a custom field codec (the "with"
// directive).
type FieldCodec interface {
	EncodeField(w ValueWriter, v any) error
	DecodeField(r ValueReader) (any, error)
}

// RecordDirectives are the record-level directives.
type RecordDirectives struct {
	// Offset is added to every field index to form the wire key.
	Offset uint64
	// AutoIndex assigns indices sequentially in declaration order.
	AutoIndex bool
}

// FieldDirectives are the per-field directives.
type FieldDirectives struct {
	// Index is the explicit index. Required unless AutoIndex or Skip is set.
	Index *uint64
	// Skip removes the field from the wire in both directions.
	Skip bool
	// NoIncrement keeps a skipped field from consuming an auto-index slot.
	NoIncrement bool
	// SkipIf omits the field from an encoded instance when it returns true.
	SkipIf Predicate

	SerializeWith   EncodeFunc
	DeserializeWith DecodeFunc
	// With sets both halves at once; exclusive with SerializeWith and
	// DeserializeWith.
	With FieldCodec
}

// FieldDescriptor is one declared field as handed to BuildSchema.
type FieldDescriptor struct {
	Name string
	// Type is opaque to the builder. Dynamic records use it for decode
	// targets and zero values; nil means any.
	Type       reflect.Type
	Directives FieldDirectives
}

// Index returns a pointer to i, for FieldDirectives.Index literals.
func Index(i uint64) *uint64 { return &i }
