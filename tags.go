package idxcodec

import (
	"reflect"
	"strconv"
	"strings"
)

// TagName is the struct tag read by For and SchemaOf.
//
//	type SomeKeys struct {
//		_      struct{} `idx:"offset=1"`
//		Number int32    `idx:"index=1"`
//		Option *uint8   `idx:"index=2,skip_if=nil"`
//		Cache  []byte   `idx:"skip"`
//	}
//
// Field items: index=N, skip, skip=no_increment, "-" (same as skip),
// skip_if=<predicate>, with=<codec>, serialize_with=<encoder>,
// deserialize_with=<decoder>, name=<label>. Record items, on a blank "_"
// field: offset=N, auto_index.
const TagName = "idx"

// ResolveStructLabel returns the label of a struct field: the name= tag item
// when present, else the Go field name.
func ResolveStructLabel(sf reflect.StructField) string {
	if tag := sf.Tag.Get(TagName); tag != "" {
		for _, p := range strings.Split(tag, ",") {
			p = strings.TrimSpace(p)
			if strings.HasPrefix(p, "name=") {
				return strings.TrimPrefix(p, "name=")
			}
		}
	}
	return sf.Name
}

// ParseFieldTag parses the field items of an idx tag. label is used in
// diagnostics only.
func ParseFieldTag(label, tag string) (NamedDirectives, error) {
	var n NamedDirectives
	seen := map[string]bool{}
	once := func(key string) error {
		if seen[key] {
			return schemaIssue(CodeConflictingDirective, label, "multiple "+key+" directives", nil)
		}
		seen[key] = true
		return nil
	}
	for _, item := range strings.Split(tag, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		key, val, hasVal := strings.Cut(item, "=")
		if item == "-" {
			key, val, hasVal = "skip", "", false
		}
		var err error
		switch key {
		case "name":
			err = once(key)
		case "index":
			if err = once(key); err == nil {
				var i uint64
				i, err = strconv.ParseUint(val, 10, 64)
				if err != nil {
					return n, schemaIssue(CodeInvalidSchema, label, "index must be a non-negative integer, got '"+val+"'", nil)
				}
				n.Index = &i
			}
		case "skip":
			if err = once(key); err == nil {
				n.Skip = true
				switch {
				case !hasVal:
				case val == "no_increment":
					n.NoIncrement = true
				default:
					return n, schemaIssue(CodeInvalidSchema, label, "skip only accepts no_increment, got '"+val+"'", nil)
				}
			}
		case "skip_if":
			if err = once(key); err == nil {
				n.SkipIf = val
			}
		case "with":
			if err = once(key); err == nil {
				n.With = val
			}
		case "serialize_with":
			if err = once(key); err == nil {
				n.SerializeWith = val
			}
		case "deserialize_with":
			if err = once(key); err == nil {
				n.DeserializeWith = val
			}
		default:
			return n, schemaIssue(CodeInvalidSchema, label, "unknown field directive '"+key+"'", nil)
		}
		if err != nil {
			return n, err
		}
		if (key == "skip_if" || key == "with" || key == "serialize_with" || key == "deserialize_with" || key == "name") && val == "" {
			return n, schemaIssue(CodeInvalidSchema, label, key+" needs a value", nil)
		}
	}
	return n, nil
}

// ParseRecordTag parses the record items of an idx tag on a blank field.
func ParseRecordTag(tag string) (RecordDirectives, error) {
	var rec RecordDirectives
	for _, item := range strings.Split(tag, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		key, val, _ := strings.Cut(item, "=")
		switch key {
		case "auto_index":
			rec.AutoIndex = true
		case "offset":
			off, err := strconv.ParseUint(val, 10, 64)
			if err != nil {
				return rec, schemaIssue(CodeInvalidSchema, "_", "offset must be a non-negative integer, got '"+val+"'", nil)
			}
			rec.Offset = off
		default:
			return rec, schemaIssue(CodeInvalidSchema, "_", "unknown record directive '"+key+"'", nil)
		}
	}
	return rec, nil
}

// structField ties a descriptor to its Go field.
type structField struct {
	desc  FieldDescriptor
	index []int
}

// describeStruct walks the exported fields of t in declaration order.
// Unexported fields are not part of the record.
func describeStruct(t reflect.Type) (RecordDirectives, []structField, error) {
	var rec RecordDirectives
	if t.Kind() != reflect.Struct {
		return rec, nil, schemaIssue(CodeInvalidSchema, t.String(), "record type must be a struct", nil)
	}
	var out []structField
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Name == "_" {
			r, err := ParseRecordTag(sf.Tag.Get(TagName))
			if err != nil {
				return rec, nil, err
			}
			rec = r
			continue
		}
		if !sf.IsExported() {
			continue
		}
		label := ResolveStructLabel(sf)
		named, err := ParseFieldTag(label, sf.Tag.Get(TagName))
		if err != nil {
			return rec, nil, err
		}
		d, err := named.Resolve(label)
		if err != nil {
			return rec, nil, err
		}
		out = append(out, structField{
			desc:  FieldDescriptor{Name: label, Type: sf.Type, Directives: d},
			index: sf.Index,
		})
	}
	return rec, out, nil
}

// SchemaOf builds the schema declared by the idx tags of struct type t.
func SchemaOf(t reflect.Type) (*StructSchema, error) {
	rec, fields, err := describeStruct(t)
	if err != nil {
		return nil, err
	}
	descs := make([]FieldDescriptor, len(fields))
	for i, f := range fields {
		descs[i] = f.desc
	}
	return BuildSchema(rec, descs)
}
