// Package json adapts goccy/go-json to the idxcodec map reader/writer SPI.
// Wire keys are written as decimal strings ({"1": ...}); on decode, only
// canonical decimal strings count as index keys.
package json

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	j "github.com/goccy/go-json"

	idxcodec "github.com/reoring/idxcodec"
)

func init() { idxcodec.RegisterFormat(Format) }

// Format is the JSON wire format. It is registered under "json".
var Format idxcodec.Format = format{}

type format struct{}

func (format) NewWriter(w io.Writer) idxcodec.Writer { return NewWriter(w) }
func (format) NewBytes(b []byte) idxcodec.Reader     { return NewReader(b) }
func (format) Name() string                          { return "json" }

// Marshal encodes v with c as a JSON object.
func Marshal[T any](c *idxcodec.Codec[T], v T) ([]byte, error) {
	return c.Marshal(Format, v)
}

// Unmarshal decodes a JSON object held in data with c.
func Unmarshal[T any](c *idxcodec.Codec[T], data []byte) (T, error) {
	return c.Unmarshal(Format, data)
}

// ---- writer ----

// Writer emits JSON objects to an io.Writer.
type Writer struct {
	w io.Writer
}

// NewWriter returns a Writer that writes to w.
func NewWriter(w io.Writer) *Writer { return &Writer{w: w} }

// BeginMap writes the opening brace. JSON needs no length, so a negative
// size only disables the entry count check.
func (w *Writer) BeginMap(size int) (idxcodec.MapWriter, error) {
	if _, err := io.WriteString(w.w, "{"); err != nil {
		return nil, err
	}
	return &mapWriter{w: w.w, size: size}, nil
}

type mapWriter struct {
	w      io.Writer
	size   int
	n      int
	closed bool
}

var errMapClosed = errors.New("json: object already closed")

func (m *mapWriter) Entry(key uint64, write func(idxcodec.ValueWriter) error) error {
	if m.closed {
		return errMapClosed
	}
	if m.size >= 0 && m.n >= m.size {
		return fmt.Errorf("json: object declared %d entries, got more", m.size)
	}
	var head []byte
	if m.n > 0 {
		head = append(head, ',')
	}
	head = append(head, '"')
	head = strconv.AppendUint(head, key, 10)
	head = append(head, '"', ':')
	if _, err := m.w.Write(head); err != nil {
		return err
	}
	vw := &valueWriter{w: m.w}
	if err := write(vw); err != nil {
		return err
	}
	if vw.n != 1 {
		return fmt.Errorf("json: entry %d: expected exactly one value, got %d", key, vw.n)
	}
	m.n++
	return nil
}

func (m *mapWriter) End() error {
	if m.closed {
		return errMapClosed
	}
	m.closed = true
	if m.size >= 0 && m.n != m.size {
		return fmt.Errorf("json: object declared %d entries, got %d", m.size, m.n)
	}
	_, err := io.WriteString(m.w, "}")
	return err
}

type valueWriter struct {
	w io.Writer
	n int
}

func (vw *valueWriter) Encode(v any) error {
	if vw.n > 0 {
		return errors.New("json: entry already has a value")
	}
	b, err := j.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := vw.w.Write(b); err != nil {
		return err
	}
	vw.n++
	return nil
}

// ---- reader ----

// Reader decodes one top-level JSON object from a byte slice. Numbers
// decoded into untyped targets are kept as json.Number.
type Reader struct {
	dec   *j.Decoder
	begun bool
	done  bool
}

// NewReader returns a Reader over data.
func NewReader(data []byte) *Reader {
	dec := j.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return &Reader{dec: dec}
}

// BeginMap consumes the opening brace.
func (r *Reader) BeginMap() (idxcodec.MapReader, error) {
	if r.begun {
		return nil, errors.New("json: object already opened")
	}
	r.begun = true
	tok, err := r.dec.Token()
	if err != nil {
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	if d, ok := tok.(j.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("json: expected object, got %v", tok)
	}
	return &mapReader{r: r}, nil
}

// Finish reports an error unless the object was read to its end and only
// whitespace follows it.
func (r *Reader) Finish() error {
	if !r.done {
		return errors.New("json: object not fully read")
	}
	tok, err := r.dec.Token()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("json: extraneous data after object: %v", tok)
}

type mapReader struct {
	r       *Reader
	pending bool
	done    bool
}

var errPending = errors.New("json: value of previous key not consumed")

func (m *mapReader) NextKey() (uint64, idxcodec.KeyKind, error) {
	if m.pending {
		return 0, idxcodec.KeyEnd, errPending
	}
	if m.done {
		return 0, idxcodec.KeyEnd, nil
	}
	dec := m.r.dec
	if !dec.More() {
		tok, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				return 0, idxcodec.KeyEnd, io.ErrUnexpectedEOF
			}
			return 0, idxcodec.KeyEnd, err
		}
		if d, ok := tok.(j.Delim); !ok || d != '}' {
			return 0, idxcodec.KeyEnd, fmt.Errorf("json: expected end of object, got %v", tok)
		}
		m.done = true
		m.r.done = true
		return 0, idxcodec.KeyEnd, nil
	}
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return 0, idxcodec.KeyEnd, io.ErrUnexpectedEOF
		}
		return 0, idxcodec.KeyEnd, err
	}
	s, ok := tok.(string)
	if !ok {
		return 0, idxcodec.KeyEnd, fmt.Errorf("json: expected object key, got %v", tok)
	}
	m.pending = true
	if k, ok := parseKey(s); ok {
		return k, idxcodec.KeyIndex, nil
	}
	return 0, idxcodec.KeyForeign, nil
}

// parseKey accepts canonical decimal keys only: "01", "+1" and " 1" are
// foreign.
func parseKey(s string) (uint64, bool) {
	k, err := strconv.ParseUint(s, 10, 64)
	if err != nil || strconv.FormatUint(k, 10) != s {
		return 0, false
	}
	return k, true
}

func (m *mapReader) NextValue(dst any) error {
	if !m.pending {
		return errors.New("json: no key awaiting a value")
	}
	m.pending = false
	return m.r.dec.Decode(dst)
}

func (m *mapReader) SkipValue() error {
	var raw j.RawMessage
	return m.NextValue(&raw)
}
