// Package msgpack adapts vmihailenco/msgpack to the idxcodec map
// reader/writer SPI. Integers use the most compact encoding.
package msgpack

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"

	idxcodec "github.com/reoring/idxcodec"
)

func init() { idxcodec.RegisterFormat(Format) }

// Format is the MessagePack wire format. It is registered under "msgpack".
var Format idxcodec.Format = format{}

type format struct{}

func (format) NewWriter(w io.Writer) idxcodec.Writer { return NewWriter(w) }
func (format) NewBytes(b []byte) idxcodec.Reader     { return NewReader(b) }
func (format) Name() string                          { return "msgpack" }

// Marshal encodes v with c as a MessagePack map.
func Marshal[T any](c *idxcodec.Codec[T], v T) ([]byte, error) {
	return c.Marshal(Format, v)
}

// Unmarshal decodes a MessagePack map held in data with c.
func Unmarshal[T any](c *idxcodec.Codec[T], data []byte) (T, error) {
	return c.Unmarshal(Format, data)
}

func newEncoder(w io.Writer) *msgpack.Encoder {
	enc := msgpack.NewEncoder(w)
	enc.UseCompactInts(true)
	return enc
}

// ---- writer ----

// Writer emits MessagePack maps to an io.Writer.
type Writer struct {
	w io.Writer
}

// NewWriter returns a Writer that writes to w.
func NewWriter(w io.Writer) *Writer { return &Writer{w: w} }

// BeginMap writes the map length when size is known and buffers the entries
// until End otherwise.
func (w *Writer) BeginMap(size int) (idxcodec.MapWriter, error) {
	m := &mapWriter{out: w.w, size: size}
	if size >= 0 {
		m.enc = newEncoder(w.w)
		if err := m.enc.EncodeMapLen(size); err != nil {
			return nil, err
		}
	} else {
		m.enc = newEncoder(&m.buf)
	}
	return m, nil
}

type mapWriter struct {
	out    io.Writer
	enc    *msgpack.Encoder
	buf    bytes.Buffer
	size   int
	n      int
	closed bool
}

var errMapClosed = errors.New("msgpack: map already closed")

func (m *mapWriter) Entry(key uint64, write func(idxcodec.ValueWriter) error) error {
	if m.closed {
		return errMapClosed
	}
	if m.size >= 0 && m.n >= m.size {
		return fmt.Errorf("msgpack: map declared %d entries, got more", m.size)
	}
	if err := m.enc.EncodeUint(key); err != nil {
		return err
	}
	vw := &valueWriter{enc: m.enc}
	if err := write(vw); err != nil {
		return err
	}
	if vw.n != 1 {
		return fmt.Errorf("msgpack: entry %d: expected exactly one value, got %d", key, vw.n)
	}
	m.n++
	return nil
}

func (m *mapWriter) End() error {
	if m.closed {
		return errMapClosed
	}
	m.closed = true
	if m.size >= 0 {
		if m.n != m.size {
			return fmt.Errorf("msgpack: map declared %d entries, got %d", m.size, m.n)
		}
		return nil
	}
	if err := newEncoder(m.out).EncodeMapLen(m.n); err != nil {
		return err
	}
	_, err := m.out.Write(m.buf.Bytes())
	return err
}

type valueWriter struct {
	enc *msgpack.Encoder
	n   int
}

func (vw *valueWriter) Encode(v any) error {
	if err := vw.enc.Encode(v); err != nil {
		return err
	}
	vw.n++
	return nil
}

// ---- reader ----

// Reader decodes one top-level MessagePack map from a byte slice.
type Reader struct {
	src   *bytes.Reader
	dec   *msgpack.Decoder
	begun bool
	done  bool
}

// NewReader returns a Reader over data.
func NewReader(data []byte) *Reader {
	src := bytes.NewReader(data)
	return &Reader{src: src, dec: msgpack.NewDecoder(src)}
}

// BeginMap reads the map length. A nil value is not a map.
func (r *Reader) BeginMap() (idxcodec.MapReader, error) {
	if r.begun {
		return nil, errors.New("msgpack: map already opened")
	}
	r.begun = true
	c, err := r.dec.PeekCode()
	if err != nil {
		return nil, err
	}
	if !isMapCode(c) {
		return nil, fmt.Errorf("msgpack: expected map, got code %#x", c)
	}
	n, err := r.dec.DecodeMapLen()
	if err != nil {
		return nil, err
	}
	return &mapReader{r: r, remaining: n}, nil
}

// Finish reports an error unless the map was read to its end and nothing
// follows it.
func (r *Reader) Finish() error {
	if !r.done {
		return errors.New("msgpack: map not fully read")
	}
	if n := r.src.Len(); n > 0 {
		return fmt.Errorf("msgpack: %d bytes of extraneous data after map", n)
	}
	return nil
}

func isMapCode(c byte) bool {
	return msgpcode.IsFixedMap(c) || c == msgpcode.Map16 || c == msgpcode.Map32
}

type mapReader struct {
	r         *Reader
	remaining int
	pending   bool
}

var errPending = errors.New("msgpack: value of previous key not consumed")

func (m *mapReader) NextKey() (uint64, idxcodec.KeyKind, error) {
	if m.pending {
		return 0, idxcodec.KeyEnd, errPending
	}
	if m.remaining == 0 {
		m.r.done = true
		return 0, idxcodec.KeyEnd, nil
	}
	m.remaining--
	dec := m.r.dec
	c, err := dec.PeekCode()
	if err != nil {
		return 0, idxcodec.KeyEnd, err
	}
	m.pending = true
	switch {
	case c <= msgpcode.PosFixedNumHigh || (c >= msgpcode.Uint8 && c <= msgpcode.Uint64):
		k, err := dec.DecodeUint64()
		if err != nil {
			return 0, idxcodec.KeyEnd, err
		}
		return k, idxcodec.KeyIndex, nil
	case c >= msgpcode.Int8 && c <= msgpcode.Int64:
		k, err := dec.DecodeInt64()
		if err != nil {
			return 0, idxcodec.KeyEnd, err
		}
		if k >= 0 {
			return uint64(k), idxcodec.KeyIndex, nil
		}
		return 0, idxcodec.KeyForeign, nil
	default:
		if err := dec.Skip(); err != nil {
			return 0, idxcodec.KeyEnd, err
		}
		return 0, idxcodec.KeyForeign, nil
	}
}

func (m *mapReader) NextValue(dst any) error {
	if !m.pending {
		return errors.New("msgpack: no key awaiting a value")
	}
	m.pending = false
	return m.r.dec.Decode(dst)
}

func (m *mapReader) SkipValue() error {
	if !m.pending {
		return errors.New("msgpack: no key awaiting a value")
	}
	m.pending = false
	return m.r.dec.Skip()
}
