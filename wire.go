package idxcodec

import (
	"bytes"
	"io"
	"sort"
	"sync"

	eng "github.com/reoring/idxcodec/internal/engine"
)

// The collaborator SPI. The aliases mirror internal/engine so that wire
// adapters can implement them without importing internal packages.
type (
	// Writer opens maps. BeginMap receives the exact number of entries that
	// will follow; adapters may treat a negative size as unknown.
	Writer = eng.Writer
	// MapWriter receives (key, value) entries and closes the map.
	MapWriter = eng.MapWriter
	// ValueWriter writes one value with the format's default codec.
	ValueWriter = eng.ValueWriter
	// Reader opens the map to decode.
	Reader = eng.Reader
	// MapReader yields keys, values, and a way to discard a value.
	MapReader = eng.MapReader
	// ValueReader decodes one value with the format's default codec.
	ValueReader = eng.ValueReader
	// KeyKind classifies a key returned by MapReader.NextKey.
	KeyKind = eng.KeyKind
)

const (
	KeyEnd     KeyKind = eng.KeyEnd
	KeyIndex   KeyKind = eng.KeyIndex
	KeyForeign KeyKind = eng.KeyForeign
)

// Finisher is implemented by readers that can verify the whole input was
// consumed once the top-level map is decoded.
type Finisher interface {
	Finish() error
}

// Format is a pluggable wire format: a writer over an io.Writer and a reader
// over a complete encoded value.
type Format interface {
	NewWriter(w io.Writer) Writer
	NewBytes(b []byte) Reader
	Name() string
}

var (
	formatMu sync.RWMutex
	formats  = map[string]Format{}
)

// RegisterFormat makes a format available by name; nil values are ignored.
// Wire packages call it from init.
func RegisterFormat(f Format) {
	if f == nil {
		return
	}
	formatMu.Lock()
	formats[f.Name()] = f
	formatMu.Unlock()
}

// LookupFormat returns a registered format.
func LookupFormat(name string) (Format, bool) {
	formatMu.RLock()
	f, ok := formats[name]
	formatMu.RUnlock()
	return f, ok
}

// Formats lists registered format names in sorted order.
func Formats() []string {
	formatMu.RLock()
	names := make([]string, 0, len(formats))
	for n := range formats {
		names = append(names, n)
	}
	formatMu.RUnlock()
	sort.Strings(names)
	return names
}

// encodeBytes runs encode against a fresh writer of f and returns the bytes.
func encodeBytes(f Format, encode func(Writer) error) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(f.NewWriter(&buf)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeBytes runs decode against a reader of f over data and checks that
// nothing follows the top-level map.
func decodeBytes(f Format, data []byte, decode func(Reader) error) error {
	r := f.NewBytes(data)
	if err := decode(r); err != nil {
		return err
	}
	if fin, ok := r.(Finisher); ok {
		return fin.Finish()
	}
	return nil
}
