// Package cbor adapts fxamacker/cbor to the idxcodec map reader/writer SPI.
//
// Values are encoded with Core Deterministic Encoding (RFC 8949 §4.2):
// smallest integer encoding and no indefinite-length items. Map entries are
// written in schema declaration order rather than sorted by key.
package cbor

import (
	"io"

	"github.com/fxamacker/cbor/v2"

	idxcodec "github.com/reoring/idxcodec"
)

// encMode is the encoder for map keys and field values.
var encMode cbor.EncMode

// decMode accepts standard CBOR, including indefinite-length maps.
var decMode cbor.DecMode

func init() {
	var err error

	encOptions := cbor.CoreDetEncOptions()
	encOptions.TextMarshaler = cbor.TextMarshalerTextString
	encMode, err = encOptions.EncMode()
	if err != nil {
		panic("idxcodec/cbor: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		TextUnmarshaler: cbor.TextUnmarshalerTextString,
	}.DecMode()
	if err != nil {
		panic("idxcodec/cbor: CBOR decoder initialization failed: " + err.Error())
	}

	idxcodec.RegisterFormat(Format)
}

// Format is the CBOR wire format. It is registered under "cbor".
var Format idxcodec.Format = format{}

type format struct{}

func (format) NewWriter(w io.Writer) idxcodec.Writer { return NewWriter(w) }
func (format) NewBytes(b []byte) idxcodec.Reader     { return NewReader(b) }
func (format) Name() string                          { return "cbor" }

// RawMessage is a raw encoded CBOR value.
type RawMessage = cbor.RawMessage

// Marshal encodes v with c as a CBOR map.
func Marshal[T any](c *idxcodec.Codec[T], v T) ([]byte, error) {
	return c.Marshal(Format, v)
}

// Unmarshal decodes a CBOR map held in data with c.
func Unmarshal[T any](c *idxcodec.Codec[T], data []byte) (T, error) {
	return c.Unmarshal(Format, data)
}

// Diagnose returns the CBOR diagnostic notation (RFC 8949 §8) for the
// entire contents of data.
func Diagnose(data []byte) (string, error) {
	return cbor.Diagnose(data)
}

// MarshalValue encodes a single value with the package's encoder settings.
func MarshalValue(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// UnmarshalValue decodes a single value with the package's decoder settings.
func UnmarshalValue(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}
