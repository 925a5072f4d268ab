package idxcodec

import (
	"reflect"

	"go.uber.org/zap"

	eng "github.com/reoring/idxcodec/internal/engine"
)

// DynamicCodec encodes and decodes records held as map[string]any keyed by
// field label. Field types come from FieldSchema.Type; untyped fields accept
// and produce whatever the wire format's default codec yields for any.
type DynamicCodec struct {
	schema *StructSchema
	plan   *eng.Plan
	opt    Options
	name   string
}

// NewDynamic builds a DynamicCodec. name identifies the record in logs.
func NewDynamic(name string, s *StructSchema, opts ...Options) *DynamicCodec {
	c := &DynamicCodec{schema: s, plan: planFor(s), opt: lastOptions(opts), name: name}
	c.opt.Logger.Debug("idxcodec: dynamic schema bound",
		zap.String("record", name),
		zap.Int("fields", s.Len()))
	return c
}

// Schema returns the schema the codec was built from.
func (c *DynamicCodec) Schema() *StructSchema { return c.schema }

// WithOptions returns a copy of c using opt.
func (c *DynamicCodec) WithOptions(opt Options) *DynamicCodec {
	cp := *c
	cp.opt = lastOptions([]Options{opt})
	return &cp
}

// Normalize converts the values of m to the declared field types. Labels
// missing from m get their type's zero value; labels the schema does not
// declare are dropped.
func (c *DynamicCodec) Normalize(m map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(c.schema.fields))
	for _, f := range c.schema.fields {
		v, ok := m[f.label]
		if f.typ == nil {
			out[f.label] = v
			continue
		}
		dst := reflect.New(f.typ).Elem()
		if ok {
			if err := assign(dst, v); err != nil {
				return nil, AppendIssues(nil, Issue{Path: f.label, Code: CodeInvalidType, Message: "invalid type", Hint: err.Error(), Cause: err})
			}
		}
		out[f.label] = dst.Interface()
	}
	return out, nil
}

// Encode writes m to w after normalizing it.
func (c *DynamicCodec) Encode(m map[string]any, w Writer) error {
	nm, err := c.Normalize(m)
	if err != nil {
		return err
	}
	return toIssues(eng.Encode(c.plan, newDynamicRecord(nm, c.schema.fields), w))
}

// Decode reads one record from r. Every declared label is present in the
// result.
func (c *DynamicCodec) Decode(r Reader) (map[string]any, error) {
	dm, err := c.DecodeWithMeta(r)
	return dm.Value, err
}

// DecodeWithMeta is like Decode and also reports presence per label.
func (c *DynamicCodec) DecodeWithMeta(r Reader) (Decoded[map[string]any], error) {
	rec := newDynamicRecord(make(map[string]any, len(c.schema.fields)), c.schema.fields)
	seen, err := eng.Decode(c.plan, rec, r, decodeOptions(c.opt, c.name))
	if err != nil {
		return Decoded[map[string]any]{}, toIssues(err)
	}
	rec.commit()
	return Decoded[map[string]any]{Value: rec.m, Presence: presenceFrom(c.schema, seen)}, nil
}

// Marshal encodes m with format f.
func (c *DynamicCodec) Marshal(f Format, m map[string]any) ([]byte, error) {
	return encodeBytes(f, func(w Writer) error { return c.Encode(m, w) })
}

// Unmarshal decodes data, which must hold exactly one map, with format f.
func (c *DynamicCodec) Unmarshal(f Format, data []byte) (map[string]any, error) {
	var out map[string]any
	err := decodeBytes(f, data, func(r Reader) error {
		m, err := c.Decode(r)
		out = m
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UnmarshalWithMeta is like Unmarshal and also reports presence per label.
func (c *DynamicCodec) UnmarshalWithMeta(f Format, data []byte) (Decoded[map[string]any], error) {
	var out Decoded[map[string]any]
	err := decodeBytes(f, data, func(r Reader) error {
		dm, err := c.DecodeWithMeta(r)
		out = dm
		return err
	})
	if err != nil {
		return Decoded[map[string]any]{}, err
	}
	return out, nil
}
