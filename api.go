package idxcodec

import (
	"reflect"
	"sync"

	"go.uber.org/zap"

	eng "github.com/reoring/idxcodec/internal/engine"
)

// Codec encodes and decodes struct type T as an integer-keyed map. A Codec is
// immutable and safe for concurrent use.
type Codec[T any] struct {
	schema *StructSchema
	plan   *eng.Plan
	fields [][]int
	opt    Options
	name   string
}

// For builds a Codec from the idx struct tags of T.
func For[T any](opts ...Options) (*Codec[T], error) {
	t := reflect.TypeFor[T]()
	rec, fields, err := describeStruct(t)
	if err != nil {
		return nil, err
	}
	descs := make([]FieldDescriptor, len(fields))
	index := make([][]int, len(fields))
	for i, f := range fields {
		descs[i] = f.desc
		index[i] = f.index
	}
	s, err := BuildSchema(rec, descs)
	if err != nil {
		return nil, err
	}
	return newCodec[T](s, index, opts), nil
}

// MustFor is like For but panics on error.
func MustFor[T any](opts ...Options) *Codec[T] {
	c, err := For[T](opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// New binds an existing schema to struct type T. Schema labels are matched
// against ResolveStructLabel of the exported fields; exported fields the
// schema does not name are left untouched. When a schema field carries a
// type, it must equal the struct field type.
func New[T any](s *StructSchema, opts ...Options) (*Codec[T], error) {
	t := reflect.TypeFor[T]()
	if t.Kind() != reflect.Struct {
		return nil, schemaIssue(CodeInvalidSchema, t.String(), "record type must be a struct", nil)
	}
	byLabel := make(map[string]reflect.StructField)
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() || sf.Name == "_" {
			continue
		}
		byLabel[ResolveStructLabel(sf)] = sf
	}
	index := make([][]int, s.Len())
	for i, f := range s.fields {
		sf, ok := byLabel[f.label]
		if !ok {
			return nil, schemaIssue(CodeInvalidSchema, f.label, "no exported field of "+t.String()+" has this label", nil)
		}
		if f.typ != nil && f.typ != sf.Type {
			return nil, schemaIssue(CodeInvalidType, f.label,
				"schema type "+f.typ.String()+" does not match field type "+sf.Type.String(), nil)
		}
		index[i] = sf.Index
	}
	return newCodec[T](s, index, opts), nil
}

func newCodec[T any](s *StructSchema, index [][]int, opts []Options) *Codec[T] {
	c := &Codec[T]{
		schema: s,
		plan:   planFor(s),
		fields: index,
		opt:    lastOptions(opts),
		name:   reflect.TypeFor[T]().String(),
	}
	c.opt.Logger.Debug("idxcodec: schema bound",
		zap.String("record", c.name),
		zap.Int("fields", s.Len()),
		zap.Uint64("offset", s.offset),
		zap.Bool("auto_index", s.autoIndex))
	return c
}

// Schema returns the schema the codec was built from.
func (c *Codec[T]) Schema() *StructSchema { return c.schema }

// Options returns the effective options.
func (c *Codec[T]) Options() Options { return c.opt }

// WithOptions returns a copy of c using opt.
func (c *Codec[T]) WithOptions(opt Options) *Codec[T] {
	cp := *c
	cp.opt = lastOptions([]Options{opt})
	return &cp
}

// Encode writes v to w.
func (c *Codec[T]) Encode(v T, w Writer) error {
	rv := reflect.ValueOf(&v).Elem()
	return toIssues(eng.Encode(c.plan, structRecord{v: rv, fields: c.fields}, w))
}

// Decode reads one record from r. On error the zero T is returned.
func (c *Codec[T]) Decode(r Reader) (T, error) {
	dm, err := c.DecodeWithMeta(r)
	return dm.Value, err
}

// DecodeWithMeta is like Decode and also reports which fields were present on
// the wire.
func (c *Codec[T]) DecodeWithMeta(r Reader) (Decoded[T], error) {
	var v T
	rv := reflect.ValueOf(&v).Elem()
	seen, err := eng.Decode(c.plan, structRecord{v: rv, fields: c.fields}, r, decodeOptions(c.opt, c.name))
	if err != nil {
		return Decoded[T]{}, toIssues(err)
	}
	return Decoded[T]{Value: v, Presence: presenceFrom(c.schema, seen)}, nil
}

// Marshal encodes v with format f.
func (c *Codec[T]) Marshal(f Format, v T) ([]byte, error) {
	return encodeBytes(f, func(w Writer) error { return c.Encode(v, w) })
}

// Unmarshal decodes data, which must hold exactly one map, with format f.
func (c *Codec[T]) Unmarshal(f Format, data []byte) (T, error) {
	var out T
	err := decodeBytes(f, data, func(r Reader) error {
		v, err := c.Decode(r)
		out = v
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// UnmarshalWithMeta is like Unmarshal and also reports which fields were
// present on the wire.
func (c *Codec[T]) UnmarshalWithMeta(f Format, data []byte) (Decoded[T], error) {
	var out Decoded[T]
	err := decodeBytes(f, data, func(r Reader) error {
		dm, err := c.DecodeWithMeta(r)
		out = dm
		return err
	})
	if err != nil {
		return Decoded[T]{}, err
	}
	return out, nil
}

// ---- Convenience wrappers with a per-type codec cache ----

var codecCache sync.Map // reflect.Type -> *Codec[T]

// CodecOf returns the cached tag-derived Codec for T, building it on first use.
func CodecOf[T any]() (*Codec[T], error) {
	t := reflect.TypeFor[T]()
	if c, ok := codecCache.Load(t); ok {
		return c.(*Codec[T]), nil
	}
	c, err := For[T]()
	if err != nil {
		return nil, err
	}
	actual, _ := codecCache.LoadOrStore(t, c)
	return actual.(*Codec[T]), nil
}

// Marshal encodes v with format f using T's cached codec.
func Marshal[T any](f Format, v T) ([]byte, error) {
	c, err := CodecOf[T]()
	if err != nil {
		return nil, err
	}
	return c.Marshal(f, v)
}

// Unmarshal decodes data with format f using T's cached codec.
func Unmarshal[T any](f Format, data []byte) (T, error) {
	c, err := CodecOf[T]()
	if err != nil {
		var zero T
		return zero, err
	}
	return c.Unmarshal(f, data)
}

// ---- plan construction ----

// planFor applies the record offset and wires the hooks of every field.
func planFor(s *StructSchema) *eng.Plan {
	fields := make([]eng.Field, len(s.fields))
	for i, f := range s.fields {
		ef := eng.Field{Label: f.label, Encode: f.encoder, Decode: f.decoder}
		switch f.skip {
		case SkipAlways:
			ef.Mode = eng.Always
		case SkipConditional:
			ef.Mode = eng.Conditional
			ef.Omit = f.predicate
		default:
			ef.Mode = eng.Never
		}
		if f.indexed {
			ef.Key = f.index + s.offset
		}
		fields[i] = ef
	}
	return eng.NewPlan(fields)
}

func decodeOptions(opt Options, record string) eng.DecodeOptions {
	log := opt.Logger
	return eng.DecodeOptions{
		Strict: opt.Unknown == UnknownStrict,
		OnSkip: func(key uint64, kind eng.KeyKind) {
			log.Debug("idxcodec: skipping unknown key",
				zap.String("record", record),
				zap.String("key", eng.FormatKey(key, kind)))
		},
	}
}
