package engine

// Encode writes rec as a map following p. Predicates are evaluated once per
// field; the same decisions drive the size hint and the emitted entries.
// Errors from BeginMap and End are returned as is. A failing entry aborts the
// emission and is reported against its field; whatever the writer already
// accepted stays written.
func Encode(p *Plan, rec Record, w Writer) error {
	emit := make([]bool, len(p.Fields))
	size := 0
	for i := range p.Fields {
		f := &p.Fields[i]
		switch f.Mode {
		case Never:
			emit[i] = true
		case Conditional:
			emit[i] = !f.Omit(rec.Get(i))
		case Always:
			emit[i] = false
		}
		if emit[i] {
			size++
		}
	}

	m, err := w.BeginMap(size)
	if err != nil {
		return err
	}
	for i := range p.Fields {
		if !emit[i] {
			continue
		}
		f := &p.Fields[i]
		v := rec.Get(i)
		write := func(vw ValueWriter) error { return vw.Encode(v) }
		if f.Encode != nil {
			enc := f.Encode
			write = func(vw ValueWriter) error { return enc(vw, v) }
		}
		if err := m.Entry(f.Key, write); err != nil {
			return fieldIssue(CodeEncodeError, f, "cannot encode field '"+f.Label+"'", err)
		}
	}
	return m.End()
}
