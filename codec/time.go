package codec

import (
	"fmt"
	"time"

	idxcodec "github.com/reoring/idxcodec"
)

// TimeRFC3339 returns a FieldCodec that converts between time.Time and RFC
// 3339 strings.
func TimeRFC3339() idxcodec.FieldCodec { return rfc3339Codec{} }

type rfc3339Codec struct{}

func (rfc3339Codec) EncodeField(w idxcodec.ValueWriter, v any) error {
	t, err := asTime(v)
	if err != nil {
		return err
	}
	return w.Encode(formatRFC3339Canonical(t))
}

func (rfc3339Codec) DecodeField(r idxcodec.ValueReader) (any, error) {
	var s string
	if err := r.Decode(&s); err != nil {
		return nil, err
	}
	t, err := parseRFC3339(s)
	if err != nil {
		return nil, typeIssue("invalid RFC3339 time", err)
	}
	return t, nil
}

// UnixTime returns a FieldCodec that converts between time.Time and integer
// seconds since the Unix epoch. Sub-second precision is dropped.
func UnixTime() idxcodec.FieldCodec { return unixCodec{} }

type unixCodec struct{}

func (unixCodec) EncodeField(w idxcodec.ValueWriter, v any) error {
	t, err := asTime(v)
	if err != nil {
		return err
	}
	return w.Encode(t.Unix())
}

func (unixCodec) DecodeField(r idxcodec.ValueReader) (any, error) {
	var sec int64
	if err := r.Decode(&sec); err != nil {
		return nil, err
	}
	return time.Unix(sec, 0).UTC(), nil
}

func asTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case *time.Time:
		if t != nil {
			return *t, nil
		}
	}
	return time.Time{}, typeIssue(fmt.Sprintf("expected time.Time, got %T", v), nil)
}

func parseRFC3339(s string) (time.Time, error) {
	// Accept RFC3339Nano (trailing zeros optional)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}

func formatRFC3339Canonical(t time.Time) string {
	// Normalize to UTC and format using RFC3339Nano (Go trims trailing zeros)
	return t.UTC().Format(time.RFC3339Nano)
}
