package idxcodec

import "sync"

// Named hooks referenced from struct tags and schema files
// (skip_if=<name>, with=<name>, serialize_with=<name>, deserialize_with=<name>).
var (
	registryMu  sync.RWMutex
	predicates  = map[string]Predicate{"nil": IsNil, "zero": IsZero, "empty": IsEmpty}
	fieldCodecs = map[string]FieldCodec{}
	encoders    = map[string]EncodeFunc{}
	decoders    = map[string]DecodeFunc{}
)

// RegisterPredicate registers a skip_if predicate; nil values are ignored.
func RegisterPredicate(name string, p Predicate) {
	if p == nil {
		return
	}
	registryMu.Lock()
	predicates[name] = p
	registryMu.Unlock()
}

// RegisterFieldCodec registers a codec usable with with=<name>. Its halves
// are also reachable through serialize_with=<name> and deserialize_with=<name>.
func RegisterFieldCodec(name string, c FieldCodec) {
	if c == nil {
		return
	}
	registryMu.Lock()
	fieldCodecs[name] = c
	registryMu.Unlock()
}

// RegisterEncoder registers an encoder usable with serialize_with=<name>.
func RegisterEncoder(name string, e EncodeFunc) {
	if e == nil {
		return
	}
	registryMu.Lock()
	encoders[name] = e
	registryMu.Unlock()
}

// RegisterDecoder registers a decoder usable with deserialize_with=<name>.
func RegisterDecoder(name string, d DecodeFunc) {
	if d == nil {
		return
	}
	registryMu.Lock()
	decoders[name] = d
	registryMu.Unlock()
}

// LookupPredicate returns a registered predicate.
func LookupPredicate(name string) (Predicate, bool) {
	registryMu.RLock()
	p, ok := predicates[name]
	registryMu.RUnlock()
	return p, ok
}

// LookupFieldCodec returns a registered field codec.
func LookupFieldCodec(name string) (FieldCodec, bool) {
	registryMu.RLock()
	c, ok := fieldCodecs[name]
	registryMu.RUnlock()
	return c, ok
}

// LookupEncoder resolves serialize_with=<name>: a registered encoder, or the
// encode half of a registered field codec.
func LookupEncoder(name string) (EncodeFunc, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	if e, ok := encoders[name]; ok {
		return e, true
	}
	if c, ok := fieldCodecs[name]; ok {
		return c.EncodeField, true
	}
	return nil, false
}

// LookupDecoder resolves deserialize_with=<name>: a registered decoder, or the
// decode half of a registered field codec.
func LookupDecoder(name string) (DecodeFunc, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	if d, ok := decoders[name]; ok {
		return d, true
	}
	if c, ok := fieldCodecs[name]; ok {
		return c.DecodeField, true
	}
	return nil, false
}

// NamedDirectives is the textual directive vocabulary shared by struct tags
// and schema files. Resolve turns it into FieldDirectives.
type NamedDirectives struct {
	Index           *uint64
	Skip            bool
	NoIncrement     bool
	SkipIf          string
	With            string
	SerializeWith   string
	DeserializeWith string
}

// Resolve looks up every named hook. label is used in diagnostics.
func (n NamedDirectives) Resolve(label string) (FieldDirectives, error) {
	d := FieldDirectives{Index: n.Index, Skip: n.Skip, NoIncrement: n.NoIncrement}
	if n.With != "" && (n.SerializeWith != "" || n.DeserializeWith != "") {
		return d, schemaIssue(CodeConflictingDirective, label, "with cannot be combined with serialize_with or deserialize_with", nil)
	}
	if n.SkipIf != "" {
		p, ok := LookupPredicate(n.SkipIf)
		if !ok {
			return d, schemaIssue(CodeInvalidCodec, label, "unknown skip_if predicate '"+n.SkipIf+"'", map[string]any{"name": n.SkipIf})
		}
		d.SkipIf = p
	}
	if n.With != "" {
		c, ok := LookupFieldCodec(n.With)
		if !ok {
			return d, schemaIssue(CodeInvalidCodec, label, "unknown codec '"+n.With+"'", map[string]any{"name": n.With})
		}
		d.With = c
	}
	if n.SerializeWith != "" {
		e, ok := LookupEncoder(n.SerializeWith)
		if !ok {
			return d, schemaIssue(CodeInvalidCodec, label, "unknown encoder '"+n.SerializeWith+"'", map[string]any{"name": n.SerializeWith})
		}
		d.SerializeWith = e
	}
	if n.DeserializeWith != "" {
		dec, ok := LookupDecoder(n.DeserializeWith)
		if !ok {
			return d, schemaIssue(CodeInvalidCodec, label, "unknown decoder '"+n.DeserializeWith+"'", map[string]any{"name": n.DeserializeWith})
		}
		d.DeserializeWith = dec
	}
	return d, nil
}
