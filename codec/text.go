package codec

import (
	"encoding"
	"fmt"

	idxcodec "github.com/reoring/idxcodec"
)

// Text returns a FieldCodec that writes encoding.TextMarshaler values as text
// strings. Decoding yields the string; fields whose pointer implements
// encoding.TextUnmarshaler parse it on assignment.
func Text() idxcodec.FieldCodec { return textCodec{} }

type textCodec struct{}

func (textCodec) EncodeField(w idxcodec.ValueWriter, v any) error {
	m, ok := v.(encoding.TextMarshaler)
	if !ok {
		return typeIssue(fmt.Sprintf("%T does not implement encoding.TextMarshaler", v), nil)
	}
	b, err := m.MarshalText()
	if err != nil {
		return err
	}
	return w.Encode(string(b))
}

func (textCodec) DecodeField(r idxcodec.ValueReader) (any, error) {
	var s string
	if err := r.Decode(&s); err != nil {
		return nil, err
	}
	return s, nil
}
