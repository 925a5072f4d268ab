package engine

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

// ---- in-memory map reader/writer ----

type entry struct {
	key  uint64
	kind KeyKind
	val  any
}

type memWriter struct {
	size     int
	entries  []entry
	ended    bool
	beginErr error
}

func (w *memWriter) BeginMap(size int) (MapWriter, error) {
	if w.beginErr != nil {
		return nil, w.beginErr
	}
	w.size = size
	return w, nil
}

func (w *memWriter) Entry(key uint64, write func(ValueWriter) error) error {
	c := &capture{}
	if err := write(c); err != nil {
		return err
	}
	w.entries = append(w.entries, entry{key: key, kind: KeyIndex, val: c.v})
	return nil
}

func (w *memWriter) End() error {
	w.ended = true
	return nil
}

type capture struct{ v any }

func (c *capture) Encode(v any) error {
	if v == errValue {
		return errors.New("boom")
	}
	c.v = v
	return nil
}

var errValue = &struct{ bad bool }{true}

type memReader struct {
	entries []entry
	pos     int
	skipped []uint64
}

func (r *memReader) BeginMap() (MapReader, error) { return r, nil }

func (r *memReader) NextKey() (uint64, KeyKind, error) {
	if r.pos >= len(r.entries) {
		return 0, KeyEnd, nil
	}
	e := r.entries[r.pos]
	return e.key, e.kind, nil
}

func (r *memReader) NextValue(dst any) error {
	e := r.entries[r.pos]
	r.pos++
	if err, ok := e.val.(error); ok {
		return err
	}
	reflect.ValueOf(dst).Elem().Set(reflect.ValueOf(e.val))
	return nil
}

func (r *memReader) SkipValue() error {
	r.skipped = append(r.skipped, r.entries[r.pos].key)
	r.pos++
	return nil
}

// sliceRecord holds untyped field values.
type sliceRecord []any

func (r sliceRecord) Get(i int) any { return r[i] }
func (r sliceRecord) Target(i int) any { return &r[i] }
func (r sliceRecord) Set(i int, v any) error { r[i] = v; return nil }
func (r sliceRecord) Zero(i int) { r[i] = nil }

func isNil(v any) bool { return v == nil }

// number:1, bytes:2, option:4 (omitted when nil), vector:5, cache (never on the wire)
func scenarioPlan() *Plan {
	return NewPlan([]Field{
		{Label: "number", Key: 1},
		{Label: "bytes", Key: 2},
		{Label: "option", Key: 4, Mode: Conditional, Omit: isNil},
		{Label: "vector", Key: 5},
		{Label: "cache", Mode: Always},
	})
}

func TestEncode_OmitsConditionalAndSkipped(t *testing.T) {
	w := &memWriter{}
	err := Encode(scenarioPlan(), sliceRecord{-7, "b", nil, []int{42}, "c"}, w)
	require.NoError(t, err)
	require.Equal(t, 3, w.size)
	require.True(t, w.ended)
	require.Equal(t, []entry{
		{key: 1, kind: KeyIndex, val: -7},
		{key: 2, kind: KeyIndex, val: "b"},
		{key: 5, kind: KeyIndex, val: []int{42}},
	}, w.entries)

	w = &memWriter{}
	require.NoError(t, Encode(scenarioPlan(), sliceRecord{-7, "b", 255, []int{42}, "c"}, w))
	require.Equal(t, 4, w.size)
	require.Equal(t, uint64(4), w.entries[2].key)
}

func TestEncode_CustomEncoder(t *testing.T) {
	p := NewPlan([]Field{{Label: "n", Key: 0, Encode: func(w ValueWriter, v any) error {
		return w.Encode(v.(int) * 2)
	}}})
	w := &memWriter{}
	require.NoError(t, Encode(p, sliceRecord{21}, w))
	require.Equal(t, 42, w.entries[0].val)
}

func TestEncode_Errors(t *testing.T) {
	w := &memWriter{}
	err := Encode(scenarioPlan(), sliceRecord{-7, errValue, nil, nil, nil}, w)
	var ie IssueError
	require.ErrorAs(t, err, &ie)
	require.Equal(t, CodeEncodeError, ie.Code)
	require.Equal(t, "bytes", ie.Path)
	require.EqualError(t, errors.Unwrap(err), "boom")
	require.False(t, w.ended)
	require.Len(t, w.entries, 1)

	begin := errors.New("no map")
	err = Encode(scenarioPlan(), sliceRecord{-7, "b", nil, nil, nil}, &memWriter{beginErr: begin})
	require.Same(t, begin, err)
}

func TestDecode_Scenario(t *testing.T) {
	r := &memReader{entries: []entry{
		{key: 5, kind: KeyIndex, val: []int{42}},
		{key: 1, kind: KeyIndex, val: -7},
		{key: 2, kind: KeyIndex, val: "b"},
	}}
	rec := sliceRecord{nil, nil, "stale", nil, "stale"}
	seen, err := Decode(scenarioPlan(), rec, r, DecodeOptions{})
	require.NoError(t, err)
	require.Equal(t, []bool{true, true, false, true, false}, seen)
	require.Equal(t, sliceRecord{-7, "b", nil, []int{42}, nil}, rec)
}

func TestDecode_UnknownKeys(t *testing.T) {
	entries := func() []entry {
		return []entry{
			{key: 1, kind: KeyIndex, val: -7},
			{key: 9, kind: KeyIndex, val: true},
			{kind: KeyForeign, val: "x"},
			{key: 2, kind: KeyIndex, val: "b"},
			{key: 5, kind: KeyIndex, val: 0},
		}
	}

	var skipped []string
	r := &memReader{entries: entries()}
	_, err := Decode(scenarioPlan(), make(sliceRecord, 5), r, DecodeOptions{
		OnSkip: func(key uint64, kind KeyKind) { skipped = append(skipped, FormatKey(key, kind)) },
	})
	require.NoError(t, err)
	require.Equal(t, []string{"9", "<non-index key>"}, skipped)

	_, err = Decode(scenarioPlan(), make(sliceRecord, 5), &memReader{entries: entries()}, DecodeOptions{Strict: true})
	var ie IssueError
	require.ErrorAs(t, err, &ie)
	require.Equal(t, CodeUnknownKey, ie.Code)
	require.Equal(t, "9", ie.Path)
}

func TestDecode_SkippedFieldKeyIsUnknown(t *testing.T) {
	p := NewPlan([]Field{{Label: "a", Key: 0}, {Label: "gone", Key: 0, Mode: Always}})
	r := &memReader{entries: []entry{{key: 0, kind: KeyIndex, val: 1}}}
	rec := make(sliceRecord, 2)
	_, err := Decode(p, rec, r, DecodeOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, rec[0])
}

func TestDecode_Errors(t *testing.T) {
	cases := []struct {
		name    string
		entries []entry
		code    string
		path    string
	}{
		{
			name:    "duplicate",
			entries: []entry{{key: 1, kind: KeyIndex, val: 1}, {key: 1, kind: KeyIndex, val: 2}},
			code:    CodeDuplicateKey,
			path:    "number",
		},
		{
			name:    "missing",
			entries: []entry{{key: 1, kind: KeyIndex, val: 1}, {key: 5, kind: KeyIndex, val: 1}},
			code:    CodeRequired,
			path:    "bytes",
		},
		{
			name:    "bad value",
			entries: []entry{{key: 2, kind: KeyIndex, val: errors.New("type mismatch")}},
			code:    CodeDecodeError,
			path:    "bytes",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(scenarioPlan(), make(sliceRecord, 5), &memReader{entries: tc.entries}, DecodeOptions{})
			var ie IssueError
			require.ErrorAs(t, err, &ie)
			require.Equal(t, tc.code, ie.Code)
			require.Equal(t, tc.path, ie.Path)
		})
	}
}

type typedRecord struct{ n int }

func (r *typedRecord) Get(int) any    { return r.n }
func (r *typedRecord) Target(int) any { return &r.n }
func (r *typedRecord) Set(_ int, v any) error {
	n, ok := v.(int)
	if !ok {
		return errors.New("not an int")
	}
	r.n = n
	return nil
}
func (r *typedRecord) Zero(int) { r.n = 0 }

func TestDecode_CustomDecoder(t *testing.T) {
	half := func(r ValueReader) (any, error) {
		var v any
		if err := r.Decode(&v); err != nil {
			return nil, err
		}
		return v.(int) / 2, nil
	}
	p := NewPlan([]Field{{Label: "n", Key: 3, Decode: half}})
	rec := &typedRecord{}
	_, err := Decode(p, rec, &memReader{entries: []entry{{key: 3, kind: KeyIndex, val: 84}}}, DecodeOptions{})
	require.NoError(t, err)
	require.Equal(t, 42, rec.n)

	str := func(r ValueReader) (any, error) { return "x", r.Decode(new(any)) }
	p = NewPlan([]Field{{Label: "n", Key: 3, Decode: str}})
	_, err = Decode(p, &typedRecord{}, &memReader{entries: []entry{{key: 3, kind: KeyIndex, val: 1}}}, DecodeOptions{})
	var ie IssueError
	require.ErrorAs(t, err, &ie)
	require.Equal(t, CodeInvalidType, ie.Code)
}
