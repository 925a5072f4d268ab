package idxcodec

import (
	"math"
	"reflect"
	"strconv"
)

// SkipPolicy says whether a field is never, conditionally, or always left off
// the wire.
type SkipPolicy int

const (
	SkipNever SkipPolicy = iota
	SkipConditional
	SkipAlways
)

func (p SkipPolicy) String() string {
	switch p {
	case SkipConditional:
		return "conditional"
	case SkipAlways:
		return "always"
	default:
		return "never"
	}
}

// FieldSchema is the resolved description of one field. It is immutable.
type FieldSchema struct {
	label       string
	typ         reflect.Type
	index       uint64
	indexed     bool
	skip        SkipPolicy
	predicate   Predicate
	encoder     EncodeFunc
	decoder     DecodeFunc
	noIncrement bool
}

// Label is the field name. It is used for diagnostics only.
func (f FieldSchema) Label() string { return f.label }

// Type is the opaque type identifier from the descriptor (nil means any).
func (f FieldSchema) Type() reflect.Type { return f.typ }

// Index returns the assigned index (without offset). ok is false only for
// fields skipped in both directions.
func (f FieldSchema) Index() (index uint64, ok bool) { return f.index, f.indexed }

// Skip returns the skip policy.
func (f FieldSchema) Skip() SkipPolicy { return f.skip }

// Predicate returns the encode-time omission test of a conditional field.
func (f FieldSchema) Predicate() Predicate { return f.predicate }

// Encoder returns the custom encoder, if any.
func (f FieldSchema) Encoder() EncodeFunc { return f.encoder }

// Decoder returns the custom decoder, if any.
func (f FieldSchema) Decoder() DecodeFunc { return f.decoder }

// AdvancesAutoIndex reports whether the field consumes an auto-index slot.
func (f FieldSchema) AdvancesAutoIndex() bool { return !f.noIncrement }

// StructSchema is the validated, ordered description of a record. It is
// immutable once built and safe for concurrent use.
type StructSchema struct {
	offset    uint64
	autoIndex bool
	fields    []FieldSchema
	byLabel   map[string]int
}

// Offset is added to every index to form the wire key.
func (s *StructSchema) Offset() uint64 { return s.offset }

// AutoIndex reports whether indices were assigned in declaration order.
func (s *StructSchema) AutoIndex() bool { return s.autoIndex }

// Len returns the number of declared fields, skipped ones included.
func (s *StructSchema) Len() int { return len(s.fields) }

// Field returns the i-th field in declaration order.
func (s *StructSchema) Field(i int) FieldSchema { return s.fields[i] }

// Fields returns a copy of the fields in declaration order.
func (s *StructSchema) Fields() []FieldSchema {
	out := make([]FieldSchema, len(s.fields))
	copy(out, s.fields)
	return out
}

// Lookup returns the position of the field with the given label.
func (s *StructSchema) Lookup(label string) (int, bool) {
	i, ok := s.byLabel[label]
	return i, ok
}

// Key returns the wire key (index + offset) of the i-th field.
func (s *StructSchema) Key(i int) (uint64, bool) {
	f := s.fields[i]
	if !f.indexed {
		return 0, false
	}
	return f.index + s.offset, true
}

// BuildSchema validates the directives and assigns indices. It fails on the
// first conflicting field; no partial schema is returned.
func BuildSchema(rec RecordDirectives, fields []FieldDescriptor) (*StructSchema, error) {
	s := &StructSchema{
		offset:    rec.Offset,
		autoIndex: rec.AutoIndex,
		fields:    make([]FieldSchema, 0, len(fields)),
		byLabel:   make(map[string]int, len(fields)),
	}
	owners := make(map[uint64]string, len(fields))
	var next uint64

	for i, fd := range fields {
		if fd.Name == "" {
			return nil, schemaIssue(CodeInvalidSchema, "#"+strconv.Itoa(i), "field name is empty", nil)
		}
		if _, dup := s.byLabel[fd.Name]; dup {
			return nil, schemaIssue(CodeInvalidSchema, fd.Name, "field declared twice", nil)
		}
		if err := checkDirectives(rec, fd); err != nil {
			return nil, err
		}

		d := fd.Directives
		f := FieldSchema{label: fd.Name, typ: fd.Type, noIncrement: d.NoIncrement}
		switch {
		case d.Skip:
			f.skip = SkipAlways
		case d.SkipIf != nil:
			f.skip = SkipConditional
			f.predicate = d.SkipIf
		}
		if d.With != nil {
			f.encoder = d.With.EncodeField
			f.decoder = d.With.DecodeField
		} else {
			f.encoder = d.SerializeWith
			f.decoder = d.DeserializeWith
		}

		switch {
		case d.Skip:
			// no index; the slot is still consumed unless no_increment
		case rec.AutoIndex:
			f.index, f.indexed = next, true
		case d.Index != nil:
			if owner, taken := owners[*d.Index]; taken {
				return nil, schemaIssue(CodeDuplicateIndex, fd.Name,
					"index "+strconv.FormatUint(*d.Index, 10)+" already assigned to '"+owner+"'",
					map[string]any{"index": *d.Index, "owner": owner})
			}
			owners[*d.Index] = fd.Name
			f.index, f.indexed = *d.Index, true
		default:
			return nil, schemaIssue(CodeMissingIndex, fd.Name,
				"field needs an index, skip, or record-level auto_index", nil)
		}
		if f.indexed && f.index > math.MaxUint64-rec.Offset {
			return nil, schemaIssue(CodeInvalidSchema, fd.Name, "index plus offset overflows",
				map[string]any{"index": f.index, "offset": rec.Offset})
		}
		if !d.NoIncrement {
			next++
		}

		s.byLabel[fd.Name] = len(s.fields)
		s.fields = append(s.fields, f)
	}
	return s, nil
}

// MustBuildSchema is like BuildSchema but panics on error.
func MustBuildSchema(rec RecordDirectives, fields []FieldDescriptor) *StructSchema {
	s, err := BuildSchema(rec, fields)
	if err != nil {
		panic(err)
	}
	return s
}

func checkDirectives(rec RecordDirectives, fd FieldDescriptor) error {
	d := fd.Directives
	conflict := func(hint string) error {
		return schemaIssue(CodeConflictingDirective, fd.Name, hint, nil)
	}
	if d.With != nil && isNilValue(d.With) {
		return schemaIssue(CodeInvalidCodec, fd.Name, "with holds a nil codec", nil)
	}
	switch {
	case d.Skip && d.SkipIf != nil:
		return conflict("skip and skip_if cannot be combined")
	case d.NoIncrement && !d.Skip:
		return conflict("no_increment is only valid together with skip")
	case d.Index != nil && d.Skip:
		return conflict("index and skip cannot be combined")
	case d.Index != nil && rec.AutoIndex:
		return conflict("index cannot be combined with the record-level auto_index")
	case d.With != nil && d.SerializeWith != nil:
		return conflict("with cannot be combined with serialize_with")
	case d.With != nil && d.DeserializeWith != nil:
		return conflict("with cannot be combined with deserialize_with")
	case d.Skip && (d.With != nil || d.SerializeWith != nil || d.DeserializeWith != nil):
		return conflict("a skipped field cannot carry a custom codec")
	}
	return nil
}

// isNilValue reports whether a non-nil interface wraps a nil pointer, map,
// slice, channel, or func.
func isNilValue(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
