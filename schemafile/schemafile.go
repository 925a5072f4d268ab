// Package schemafile loads idxcodec schemas from YAML descriptor files.
//
// A descriptor names the record, its record-level directives, and its
// fields in declaration order:
//
//	name: some_keys
//	offset: 0
//	auto_index: false
//	unknown: skip        # or strict
//	fields:
//	  - {name: number, type: int32, index: 1}
//	  - {name: bytes, type: "[7]uint8", index: 2}
//	  - {name: option, type: "*uint8", index: 4, skip_if: nil}
//	  - {name: vector, type: "[]int", index: 5}
//
// Hook names (skip_if, with, serialize_with, deserialize_with) are resolved
// against the idxcodec registries when the schema is built.
package schemafile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"

	"gopkg.in/yaml.v3"

	idxcodec "github.com/reoring/idxcodec"
)

// File is a parsed descriptor.
type File struct {
	Name      string  `yaml:"name"`
	Offset    uint64  `yaml:"offset"`
	AutoIndex bool    `yaml:"auto_index"`
	Unknown   string  `yaml:"unknown"`
	Fields    []Field `yaml:"fields"`
}

// Field is one field entry of a descriptor.
type Field struct {
	Name            string  `yaml:"name"`
	Type            string  `yaml:"type"`
	Index           *uint64 `yaml:"index"`
	Skip            bool    `yaml:"skip"`
	NoIncrement     bool    `yaml:"no_increment"`
	SkipIf          string  `yaml:"skip_if"`
	With            string  `yaml:"with"`
	SerializeWith   string  `yaml:"serialize_with"`
	DeserializeWith string  `yaml:"deserialize_with"`

	// Line is the position of the entry in the source, 0 when unknown.
	Line int `yaml:"-"`
}

// UnmarshalYAML records the entry's line and rejects unknown keys.
func (f *Field) UnmarshalYAML(n *yaml.Node) error {
	type plain Field
	var p plain
	if err := decodeStrict(n, &p); err != nil {
		return err
	}
	*f = Field(p)
	f.Line = n.Line
	return nil
}

// decodeStrict decodes n into v rejecting keys v does not declare.
func decodeStrict(n *yaml.Node, v any) error {
	if n.Kind != yaml.MappingNode {
		return n.Decode(v)
	}
	known := make(map[string]struct{})
	t := reflect.TypeOf(v).Elem()
	for i := 0; i < t.NumField(); i++ {
		if tag := t.Field(i).Tag.Get("yaml"); tag != "" && tag != "-" {
			known[tag] = struct{}{}
		}
	}
	for i := 0; i < len(n.Content); i += 2 {
		k := n.Content[i]
		if _, ok := known[k.Value]; !ok {
			return fmt.Errorf("line %d: unknown field key %q", k.Line, k.Value)
		}
	}
	return n.Decode(v)
}

// Parse decodes a descriptor. Unknown keys and duplicate keys are errors.
func Parse(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, parseIssue("empty schema file", err)
		}
		return nil, parseIssue("invalid schema file", err)
	}
	if f.Name == "" {
		return nil, idxcodec.Issues{{Code: idxcodec.CodeInvalidSchema, Path: "name", Message: "schema file needs a name"}}
	}
	return &f, nil
}

// Load reads and parses the descriptor at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func parseIssue(msg string, cause error) error {
	return idxcodec.Issues{{Code: idxcodec.CodeParseError, Message: msg, Hint: cause.Error(), Cause: cause}}
}

// Policy returns the unknown-key policy the file asks for.
func (f *File) Policy() (idxcodec.UnknownPolicy, error) {
	p, ok := idxcodec.ParseUnknownPolicy(f.Unknown)
	if !ok {
		return p, idxcodec.Issues{{Code: idxcodec.CodeInvalidSchema, Path: "unknown", Message: "invalid unknown-key policy", Hint: "got '" + f.Unknown + "', want skip or strict"}}
	}
	return p, nil
}

// Descriptors resolves field types and hook names into builder input.
func (f *File) Descriptors() (idxcodec.RecordDirectives, []idxcodec.FieldDescriptor, error) {
	rec := idxcodec.RecordDirectives{Offset: f.Offset, AutoIndex: f.AutoIndex}
	descs := make([]idxcodec.FieldDescriptor, 0, len(f.Fields))
	for _, fe := range f.Fields {
		var typ reflect.Type
		if fe.Type != "" {
			t, err := ParseType(fe.Type)
			if err != nil {
				return rec, nil, withLine(idxcodec.Issues{{Code: idxcodec.CodeInvalidSchema, Path: fe.Name, Message: "invalid field type", Hint: err.Error(), Cause: err}}, fe.Line)
			}
			typ = t
		}
		dir, err := idxcodec.NamedDirectives{
			Index:           fe.Index,
			Skip:            fe.Skip,
			NoIncrement:     fe.NoIncrement,
			SkipIf:          fe.SkipIf,
			With:            fe.With,
			SerializeWith:   fe.SerializeWith,
			DeserializeWith: fe.DeserializeWith,
		}.Resolve(fe.Name)
		if err != nil {
			return rec, nil, withLine(err, fe.Line)
		}
		descs = append(descs, idxcodec.FieldDescriptor{Name: fe.Name, Type: typ, Directives: dir})
	}
	return rec, descs, nil
}

// Schema builds the StructSchema described by f.
func (f *File) Schema() (*idxcodec.StructSchema, error) {
	rec, descs, err := f.Descriptors()
	if err != nil {
		return nil, err
	}
	s, err := idxcodec.BuildSchema(rec, descs)
	if err != nil {
		return nil, withLine(err, f.lineOf(err))
	}
	return s, nil
}

// Codec builds a DynamicCodec for f. The file's unknown-key policy applies
// unless opt asks for UnknownStrict.
func (f *File) Codec(opt ...idxcodec.Options) (*idxcodec.DynamicCodec, error) {
	s, err := f.Schema()
	if err != nil {
		return nil, err
	}
	p, err := f.Policy()
	if err != nil {
		return nil, err
	}
	var o idxcodec.Options
	if len(opt) > 0 {
		o = opt[len(opt)-1]
	}
	if p == idxcodec.UnknownStrict {
		o.Unknown = idxcodec.UnknownStrict
	}
	return idxcodec.NewDynamic(f.Name, s, o), nil
}

// lineOf returns the line of the field the first issue of err points at.
func (f *File) lineOf(err error) int {
	iss, ok := idxcodec.AsIssues(err)
	if !ok || len(iss) == 0 {
		return 0
	}
	for _, fe := range f.Fields {
		if fe.Name == iss[0].Path {
			return fe.Line
		}
	}
	return 0
}

// withLine adds a line parameter to the issues of err.
func withLine(err error, line int) error {
	iss, ok := idxcodec.AsIssues(err)
	if !ok || line == 0 {
		return err
	}
	out := make(idxcodec.Issues, len(iss))
	for i, is := range iss {
		params := make(map[string]any, len(is.Params)+1)
		for k, v := range is.Params {
			params[k] = v
		}
		params["line"] = line
		is.Params = params
		out[i] = is
	}
	return out
}
