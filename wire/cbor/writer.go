package cbor

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	idxcodec "github.com/reoring/idxcodec"
)

// Writer emits CBOR maps to an io.Writer.
type Writer struct {
	w io.Writer
}

// NewWriter returns a Writer that writes to w.
func NewWriter(w io.Writer) *Writer { return &Writer{w: w} }

// BeginMap writes a definite-length map header when size is known. With a
// negative size the entries are buffered until End so that the header can
// still be definite.
func (w *Writer) BeginMap(size int) (idxcodec.MapWriter, error) {
	m := &mapWriter{out: w.w, size: size}
	if size >= 0 {
		if _, err := w.w.Write(appendHead(nil, majorMap, uint64(size))); err != nil {
			return nil, err
		}
		m.dst = w.w
	} else {
		m.dst = &m.buf
	}
	return m, nil
}

type mapWriter struct {
	out    io.Writer
	dst    io.Writer
	buf    bytes.Buffer
	size   int
	n      int
	closed bool
}

var errMapClosed = errors.New("cbor: map already closed")

func (m *mapWriter) Entry(key uint64, write func(idxcodec.ValueWriter) error) error {
	if m.closed {
		return errMapClosed
	}
	if m.size >= 0 && m.n >= m.size {
		return fmt.Errorf("cbor: map declared %d entries, got more", m.size)
	}
	if _, err := m.dst.Write(appendHead(nil, majorUint, key)); err != nil {
		return err
	}
	vw := &valueWriter{dst: m.dst}
	if err := write(vw); err != nil {
		return err
	}
	if vw.n != 1 {
		return fmt.Errorf("cbor: entry %d: expected exactly one value, got %d", key, vw.n)
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
			return fmt.Errorf("cbor: map declared %d entries, got %d", m.size, m.n)
		}
		return nil
	}
	if _, err := m.out.Write(appendHead(nil, majorMap, uint64(m.n))); err != nil {
		return err
	}
	_, err := m.out.Write(m.buf.Bytes())
	return err
}

type valueWriter struct {
	dst io.Writer
	n   int
}

func (vw *valueWriter) Encode(v any) error {
	b, err := encMode.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := vw.dst.Write(b); err != nil {
		return err
	}
	vw.n++
	return nil
}
