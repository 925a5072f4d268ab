package cbor

import (
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"

	idxcodec "github.com/reoring/idxcodec"
)

// Reader decodes one top-level CBOR map from a byte slice.
type Reader struct {
	data  []byte
	rest  []byte
	begun bool
	done  bool
}

// NewReader returns a Reader over data.
func NewReader(data []byte) *Reader { return &Reader{data: data} }

// BeginMap parses the map header. Both definite and indefinite-length maps
// are accepted.
func (r *Reader) BeginMap() (idxcodec.MapReader, error) {
	if r.begun {
		return nil, errors.New("cbor: map already opened")
	}
	r.begun = true
	major, n, indefinite, size, err := parseHead(r.data)
	if err != nil {
		return nil, err
	}
	if major != majorMap {
		return nil, fmt.Errorf("cbor: expected map, got %s", majorNames[major])
	}
	return &mapReader{r: r, data: r.data[size:], remaining: n, indefinite: indefinite}, nil
}

// Finish reports an error unless the map was read to its end and nothing
// follows it.
func (r *Reader) Finish() error {
	if !r.done {
		return errors.New("cbor: map not fully read")
	}
	if len(r.rest) > 0 {
		return fmt.Errorf("cbor: %d bytes of extraneous data after map", len(r.rest))
	}
	return nil
}

type mapReader struct {
	r          *Reader
	data       []byte
	remaining  uint64
	indefinite bool
	pending    bool
	done       bool
}

var errPending = errors.New("cbor: value of previous key not consumed")

func (m *mapReader) NextKey() (uint64, idxcodec.KeyKind, error) {
	if m.pending {
		return 0, idxcodec.KeyEnd, errPending
	}
	if m.done {
		return 0, idxcodec.KeyEnd, nil
	}
	if m.indefinite {
		if len(m.data) == 0 {
			return 0, idxcodec.KeyEnd, fmt.Errorf("cbor: unexpected end of map: %w", io.ErrUnexpectedEOF)
		}
		if m.data[0] == breakByte {
			m.finish(m.data[1:])
			return 0, idxcodec.KeyEnd, nil
		}
	} else {
		if m.remaining == 0 {
			m.finish(m.data)
			return 0, idxcodec.KeyEnd, nil
		}
		m.remaining--
	}
	if len(m.data) == 0 {
		return 0, idxcodec.KeyEnd, fmt.Errorf("cbor: unexpected end of map: %w", io.ErrUnexpectedEOF)
	}
	if m.data[0]>>5 == majorUint {
		var k uint64
		rest, err := decMode.UnmarshalFirst(m.data, &k)
		if err != nil {
			return 0, idxcodec.KeyEnd, err
		}
		m.data = rest
		m.pending = true
		return k, idxcodec.KeyIndex, nil
	}
	var raw cbor.RawMessage
	rest, err := decMode.UnmarshalFirst(m.data, &raw)
	if err != nil {
		return 0, idxcodec.KeyEnd, err
	}
	m.data = rest
	m.pending = true
	return 0, idxcodec.KeyForeign, nil
}

func (m *mapReader) NextValue(dst any) error {
	if !m.pending {
		return errors.New("cbor: no key awaiting a value")
	}
	rest, err := decMode.UnmarshalFirst(m.data, dst)
	if err != nil {
		return err
	}
	m.data = rest
	m.pending = false
	return nil
}

func (m *mapReader) SkipValue() error {
	var raw cbor.RawMessage
	return m.NextValue(&raw)
}

func (m *mapReader) finish(rest []byte) {
	m.done = true
	m.data = nil
	m.r.done = true
	m.r.rest = rest
}
