package engine

import "strconv"

// KeyKind classifies a key read from a map.
type KeyKind int

const (
	KeyEnd     KeyKind = iota // The map has no more entries.
	KeyIndex                  // A non-negative integer key.
	KeyForeign                // Any other key (negative, text, ...). Never matches a field.
)

// Writer is the minimal map writer the engine emits into.
type Writer interface {
	// BeginMap opens a map. size is the number of entries that will follow,
	// or -1 when unknown.
	BeginMap(size int) (MapWriter, error)
}

// MapWriter receives entries of an open map.
type MapWriter interface {
	// Entry emits key and lets write produce exactly one value.
	Entry(key uint64, write func(ValueWriter) error) error
	End() error
}

// ValueWriter writes a single value with the format's default codec.
type ValueWriter interface {
	Encode(v any) error
}

// Reader is the minimal map reader the engine consumes.
type Reader interface {
	BeginMap() (MapReader, error)
}

// MapReader yields the entries of an open map. Every key returned with
// KeyIndex or KeyForeign must be followed by exactly one NextValue or
// SkipValue call.
type MapReader interface {
	NextKey() (uint64, KeyKind, error)
	NextValue(dst any) error
	SkipValue() error
}

// ValueReader decodes a single value with the format's default codec.
type ValueReader interface {
	Decode(dst any) error
}

// Mode mirrors the public skip policy.
type Mode int

const (
	Never Mode = iota
	Conditional
	Always
)

// Field is one resolved entry of a Plan. Key already includes the offset.
type Field struct {
	Label  string
	Key    uint64
	Mode   Mode
	Omit   func(v any) bool
	Encode func(w ValueWriter, v any) error
	Decode func(r ValueReader) (any, error)
}

// Plan is the read-only, offset-applied form of a schema.
type Plan struct {
	Fields []Field
	byKey  map[uint64]int
}

// NewPlan indexes fields by wire key. Always fields are not addressable.
// Callers guarantee key uniqueness (the schema builder validates it).
func NewPlan(fields []Field) *Plan {
	p := &Plan{Fields: fields, byKey: make(map[uint64]int, len(fields))}
	for i, f := range fields {
		if f.Mode == Always {
			continue
		}
		p.byKey[f.Key] = i
	}
	return p
}

// Lookup returns the field position for a wire key.
func (p *Plan) Lookup(key uint64) (int, bool) {
	i, ok := p.byKey[key]
	return i, ok
}

// Record is the engine's view of one record instance.
type Record interface {
	// Get returns the current value of field i (encode side).
	Get(i int) any
	// Target returns a pointer the default codec can decode field i into.
	Target(i int) any
	// Set stores a value produced by a custom decoder.
	Set(i int, v any) error
	// Zero resets field i to its type's zero value.
	Zero(i int)
}

// Issue codes produced by the engine.
const (
	CodeRequired     = "required"
	CodeDuplicateKey = "duplicate_key"
	CodeUnknownKey   = "unknown_key"
	CodeEncodeError  = "encode_error"
	CodeDecodeError  = "decode_error"
	CodeInvalidType  = "invalid_type"
)

// SimpleIssue is a minimal issue representation used by the engine.
type SimpleIssue struct {
	Code    string
	Path    string
	Message string
}

// IssueError is a lightweight error carrying a SimpleIssue and its cause.
type IssueError struct {
	SimpleIssue
	Cause error
}

func (e IssueError) Error() string {
	if e.Cause != nil {
		return e.SimpleIssue.Message + ": " + e.Cause.Error()
	}
	return e.SimpleIssue.Message
}

func (e IssueError) Unwrap() error { return e.Cause }

func fieldIssue(code string, f *Field, msg string, cause error) IssueError {
	return IssueError{SimpleIssue: SimpleIssue{Code: code, Path: f.Label, Message: msg}, Cause: cause}
}

// FormatKey renders a wire key for diagnostics.
func FormatKey(key uint64, kind KeyKind) string {
	if kind == KeyForeign {
		return "<non-index key>"
	}
	return strconv.FormatUint(key, 10)
}
