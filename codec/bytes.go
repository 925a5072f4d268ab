package codec

import (
	"fmt"
	"reflect"

	idxcodec "github.com/reoring/idxcodec"
)

// ByteSeq returns a FieldCodec that writes byte slices and byte arrays as the
// format's native byte string (CBOR major type 2, MessagePack bin, base64 in
// JSON) instead of an array of integers. Decoding yields []byte; byte array
// fields accept it when the lengths match.
func ByteSeq() idxcodec.FieldCodec { return byteSeqCodec{} }

type byteSeqCodec struct{}

func (byteSeqCodec) EncodeField(w idxcodec.ValueWriter, v any) error {
	b, err := asBytes(v)
	if err != nil {
		return err
	}
	return w.Encode(b)
}

func (byteSeqCodec) DecodeField(r idxcodec.ValueReader) (any, error) {
	var b []byte
	if err := r.Decode(&b); err != nil {
		return nil, err
	}
	return b, nil
}

var byteType = reflect.TypeFor[byte]()

func asBytes(v any) ([]byte, error) {
	if b, ok := v.([]byte); ok {
		return b, nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.Type().Elem() == byteType {
			return rv.Bytes(), nil
		}
	case reflect.Array:
		if rv.Type().Elem() == byteType {
			b := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(b), rv)
			return b, nil
		}
	}
	return nil, typeIssue(fmt.Sprintf("expected a byte slice or array, got %T", v), nil)
}
