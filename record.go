package idxcodec

import (
	"encoding"
	"fmt"
	"math"
	"reflect"
)

// structRecord exposes an addressable struct value to the engine.
type structRecord struct {
	v      reflect.Value
	fields [][]int
}

func (r structRecord) field(i int) reflect.Value { return r.v.FieldByIndex(r.fields[i]) }

func (r structRecord) Get(i int) any    { return r.field(i).Interface() }
func (r structRecord) Target(i int) any { return r.field(i).Addr().Interface() }
func (r structRecord) Set(i int, v any) error {
	return assign(r.field(i), v)
}
func (r structRecord) Zero(i int) { r.field(i).SetZero() }

// dynamicRecord exposes a map[string]any keyed by field label. Values decoded
// by the default codec land in targets and are moved into the map by commit.
type dynamicRecord struct {
	m       map[string]any
	fields  []FieldSchema
	targets []reflect.Value
}

func newDynamicRecord(m map[string]any, fields []FieldSchema) *dynamicRecord {
	return &dynamicRecord{m: m, fields: fields, targets: make([]reflect.Value, len(fields))}
}

func (r *dynamicRecord) typ(i int) reflect.Type {
	if t := r.fields[i].typ; t != nil {
		return t
	}
	return anyType
}

func (r *dynamicRecord) Get(i int) any { return r.m[r.fields[i].label] }

func (r *dynamicRecord) Target(i int) any {
	p := reflect.New(r.typ(i))
	r.targets[i] = p
	return p.Interface()
}

func (r *dynamicRecord) Set(i int, v any) error {
	dst := reflect.New(r.typ(i)).Elem()
	if err := assign(dst, v); err != nil {
		return err
	}
	r.targets[i] = reflect.Value{}
	r.m[r.fields[i].label] = dst.Interface()
	return nil
}

func (r *dynamicRecord) Zero(i int) {
	r.targets[i] = reflect.Value{}
	r.m[r.fields[i].label] = reflect.Zero(r.typ(i)).Interface()
}

func (r *dynamicRecord) commit() {
	for i, p := range r.targets {
		if p.IsValid() {
			r.m[r.fields[i].label] = p.Elem().Interface()
		}
	}
}

var (
	anyType             = reflect.TypeOf((*any)(nil)).Elem()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
)

// assign stores v into dst, converting between numeric kinds and between
// identical kinds when the types differ only by name. Strings are parsed by
// encoding.TextUnmarshaler targets and slices fill arrays of equal length.
func assign(dst reflect.Value, v any) error {
	if v == nil {
		dst.SetZero()
		return nil
	}
	src := reflect.ValueOf(v)
	switch {
	case src.Type().AssignableTo(dst.Type()):
		dst.Set(src)
		return nil
	case src.Kind() == reflect.String && dst.CanAddr() && dst.Addr().Type().Implements(textUnmarshalerType):
		return dst.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(src.String()))
	case src.Kind() == reflect.Slice && dst.Kind() == reflect.Array &&
		src.Type().Elem() == dst.Type().Elem():
		if src.Len() != dst.Len() {
			return fmt.Errorf("cannot use %d elements as %s", src.Len(), dst.Type())
		}
		reflect.Copy(dst, src)
		return nil
	case src.Type().ConvertibleTo(dst.Type()) &&
		(src.Kind() == dst.Kind() || (isNumeric(src.Kind()) && isNumeric(dst.Kind()))):
		if isNumeric(src.Kind()) && !fitsNumeric(src, dst.Type()) {
			return fmt.Errorf("value %v overflows %s", v, dst.Type())
		}
		dst.Set(src.Convert(dst.Type()))
		return nil
	}
	return fmt.Errorf("cannot use %T as %s", v, dst.Type())
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// fitsNumeric reports whether src survives conversion to t unchanged.
func fitsNumeric(src reflect.Value, t reflect.Type) bool {
	if (src.Kind() == reflect.Float32 || src.Kind() == reflect.Float64) && math.IsNaN(src.Float()) {
		return t.Kind() == reflect.Float32 || t.Kind() == reflect.Float64
	}
	conv := src.Convert(t)
	back := conv.Convert(src.Type())
	if !back.Equal(src) {
		return false
	}
	// a negative integer wrapped into an unsigned type round-trips, so check sign
	switch src.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if src.Int() < 0 {
			switch t.Kind() {
			case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
				return false
			}
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		switch t.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if conv.Int() < 0 {
				return false
			}
		}
	case reflect.Float32, reflect.Float64:
		if src.Float() < 0 {
			switch t.Kind() {
			case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
				return false
			}
		}
	}
	return true
}
