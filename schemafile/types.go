package schemafile

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var scalarTypes = map[string]reflect.Type{
	"bool":    reflect.TypeFor[bool](),
	"int":     reflect.TypeFor[int](),
	"int8":    reflect.TypeFor[int8](),
	"int16":   reflect.TypeFor[int16](),
	"int32":   reflect.TypeFor[int32](),
	"int64":   reflect.TypeFor[int64](),
	"uint":    reflect.TypeFor[uint](),
	"uint8":   reflect.TypeFor[uint8](),
	"byte":    reflect.TypeFor[byte](),
	"uint16":  reflect.TypeFor[uint16](),
	"uint32":  reflect.TypeFor[uint32](),
	"uint64":  reflect.TypeFor[uint64](),
	"float32": reflect.TypeFor[float32](),
	"float64": reflect.TypeFor[float64](),
	"string":  reflect.TypeFor[string](),
	"bytes":   reflect.TypeFor[[]byte](),
	"time":    reflect.TypeFor[time.Time](),
	"any":     reflect.TypeFor[any](),
}

// ParseType parses a Go-like type expression:
//
//	bool | int | int8..int64 | uint | uint8..uint64 | byte | float32 | float64
//	string | bytes | time | any | []T | [N]T | *T | map[string]T
//
// A top-level "any" yields nil, the untyped field marker.
func ParseType(expr string) (reflect.Type, error) {
	expr = strings.TrimSpace(expr)
	t, err := parseType(expr)
	if err != nil {
		return nil, err
	}
	if t == scalarTypes["any"] {
		return nil, nil
	}
	return t, nil
}

func parseType(expr string) (reflect.Type, error) {
	switch {
	case expr == "":
		return nil, fmt.Errorf("empty type expression")
	case strings.HasPrefix(expr, "*"):
		elem, err := parseType(expr[1:])
		if err != nil {
			return nil, err
		}
		return reflect.PointerTo(elem), nil
	case strings.HasPrefix(expr, "[]"):
		elem, err := parseType(expr[2:])
		if err != nil {
			return nil, err
		}
		return reflect.SliceOf(elem), nil
	case strings.HasPrefix(expr, "["):
		end := strings.IndexByte(expr, ']')
		if end < 0 {
			return nil, fmt.Errorf("unterminated array length in %q", expr)
		}
		n, err := strconv.Atoi(expr[1:end])
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid array length in %q", expr)
		}
		elem, err := parseType(expr[end+1:])
		if err != nil {
			return nil, err
		}
		return reflect.ArrayOf(n, elem), nil
	case strings.HasPrefix(expr, "map[string]"):
		elem, err := parseType(expr[len("map[string]"):])
		if err != nil {
			return nil, err
		}
		return reflect.MapOf(reflect.TypeFor[string](), elem), nil
	}
	if t, ok := scalarTypes[expr]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("unknown type %q", expr)
}
