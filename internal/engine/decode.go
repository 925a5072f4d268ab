package engine

// DecodeOptions controls the handling of keys that match no field.
type DecodeOptions struct {
	// Strict rejects unmatched keys instead of discarding their values.
	Strict bool
	// OnSkip, when set, observes every discarded key.
	OnSkip func(key uint64, kind KeyKind)
}

type decodeState int

const (
	stateInit decodeState = iota
	stateReading
	stateFinalizing
	stateDone
)

// Decode fills rec from the map produced by r. The returned slice reports,
// per field, whether its key was present on the wire. rec is expected to start
// zeroed; on error its contents are unspecified and must be discarded.
func Decode(p *Plan, rec Record, r Reader, opt DecodeOptions) ([]bool, error) {
	var (
		seen  []bool
		m     MapReader
		err   error
		state = stateInit
	)
	for {
		switch state {
		case stateInit:
			seen = make([]bool, len(p.Fields))
			if m, err = r.BeginMap(); err != nil {
				return nil, err
			}
			state = stateReading

		case stateReading:
			key, kind, err := m.NextKey()
			if err != nil {
				return nil, err
			}
			if kind == KeyEnd {
				state = stateFinalizing
				continue
			}
			i, ok := -1, false
			if kind == KeyIndex {
				i, ok = p.Lookup(key)
			}
			if !ok {
				if opt.Strict {
					return nil, IssueError{SimpleIssue: SimpleIssue{
						Code:    CodeUnknownKey,
						Path:    FormatKey(key, kind),
						Message: "unknown key " + FormatKey(key, kind),
					}}
				}
				if opt.OnSkip != nil {
					opt.OnSkip(key, kind)
				}
				if err := m.SkipValue(); err != nil {
					return nil, err
				}
				continue
			}
			f := &p.Fields[i]
			if seen[i] {
				return nil, fieldIssue(CodeDuplicateKey, f, "duplicate field '"+f.Label+"'", nil)
			}
			if err := decodeField(f, i, rec, m); err != nil {
				return nil, err
			}
			seen[i] = true

		case stateFinalizing:
			for i := range p.Fields {
				f := &p.Fields[i]
				switch f.Mode {
				case Never:
					if !seen[i] {
						return nil, fieldIssue(CodeRequired, f, "missing field '"+f.Label+"'", nil)
					}
				case Conditional:
					if !seen[i] {
						rec.Zero(i)
					}
				case Always:
					rec.Zero(i)
				}
			}
			state = stateDone

		case stateDone:
			return seen, nil
		}
	}
}

func decodeField(f *Field, i int, rec Record, m MapReader) error {
	if f.Decode == nil {
		if err := m.NextValue(rec.Target(i)); err != nil {
			return fieldIssue(CodeDecodeError, f, "cannot decode field '"+f.Label+"'", err)
		}
		return nil
	}
	v, err := f.Decode(valueReader{m})
	if err != nil {
		return fieldIssue(CodeDecodeError, f, "cannot decode field '"+f.Label+"'", err)
	}
	if err := rec.Set(i, v); err != nil {
		return fieldIssue(CodeInvalidType, f, "decoded value does not fit field '"+f.Label+"'", err)
	}
	return nil
}

// valueReader hands the pending value of m to a custom decoder. The wire
// readers reject a second read of the same entry.
type valueReader struct{ m MapReader }

func (v valueReader) Decode(dst any) error { return v.m.NextValue(dst) }
