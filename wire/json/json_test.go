package json_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	idxcodec "github.com/reoring/idxcodec"
	"github.com/reoring/idxcodec/wire/json"
)

type someKeys struct {
	Number int32   `idx:"index=1"`
	Bytes  [7]byte `idx:"index=2"`
	Option *uint8  `idx:"index=4,skip_if=nil"`
	Vector []int   `idx:"index=5"`
}

func sevens() [7]byte { return [7]byte{37, 37, 37, 37, 37, 37, 37} }

func TestSomeKeys_RoundTrip(t *testing.T) {
	c := idxcodec.MustFor[someKeys]()
	in := someKeys{Number: -7, Bytes: sevens(), Vector: []int{42}}

	data, err := json.Marshal(c, in)
	require.NoError(t, err)
	require.Equal(t, `{"1":-7,"2":[37,37,37,37,37,37,37],"5":[42]}`, string(data))

	out, err := json.Unmarshal(c, data)
	require.NoError(t, err)
	require.Equal(t, in, out)

	ff := uint8(0xff)
	in.Option = &ff
	data, err = json.Marshal(c, in)
	require.NoError(t, err)
	require.Contains(t, string(data), `"4":255`)
	out, err = json.Unmarshal(c, data)
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestDecode_ForeignKeys(t *testing.T) {
	data := []byte(` { "5": [42], "01": true, "name": {"a": [1, 2]}, "-1": 0, "1": -7,
		"2": [37,37,37,37,37,37,37] } `)
	c := idxcodec.MustFor[someKeys]()
	out, err := json.Unmarshal(c, data)
	require.NoError(t, err)
	require.Equal(t, int32(-7), out.Number)

	strict := c.WithOptions(idxcodec.Options{Unknown: idxcodec.UnknownStrict})
	_, err = json.Unmarshal(strict, data)
	require.True(t, idxcodec.HasCode(err, idxcodec.CodeUnknownKey))
}

func TestDecode_Errors(t *testing.T) {
	c := idxcodec.MustFor[someKeys]()

	_, err := json.Unmarshal(c, []byte(`[1]`))
	require.ErrorContains(t, err, "expected object")

	_, err = json.Unmarshal(c, []byte(`{"1":-7,"5":[]}`))
	require.True(t, idxcodec.HasCode(err, idxcodec.CodeRequired))

	_, err = json.Unmarshal(c, []byte(`{"1":-7,"1":-7,"2":[0,0,0,0,0,0,0],"5":[]}`))
	require.True(t, idxcodec.HasCode(err, idxcodec.CodeDuplicateKey))

	_, err = json.Unmarshal(c, []byte(`{"1":"x","2":[0,0,0,0,0,0,0],"5":[]}`))
	require.True(t, idxcodec.HasCode(err, idxcodec.CodeDecodeError))

	_, err = json.Unmarshal(c, []byte(`{"1":-7,"2":[0,0,0,0,0,0,0],"5":[]} {}`))
	require.ErrorContains(t, err, "extraneous")
}

func TestWriter_EmptyAndSized(t *testing.T) {
	var buf bytes.Buffer
	mw, err := json.NewWriter(&buf).BeginMap(0)
	require.NoError(t, err)
	require.NoError(t, mw.End())
	require.Equal(t, `{}`, buf.String())

	buf.Reset()
	mw, err = json.NewWriter(&buf).BeginMap(-1)
	require.NoError(t, err)
	require.NoError(t, mw.Entry(3, func(w idxcodec.ValueWriter) error { return w.Encode("a") }))
	require.NoError(t, mw.Entry(10, func(w idxcodec.ValueWriter) error { return w.Encode(nil) }))
	require.NoError(t, mw.End())
	require.Equal(t, `{"3":"a","10":null}`, buf.String())
}

func TestFormatRegistered(t *testing.T) {
	_, ok := idxcodec.LookupFormat("json")
	require.True(t, ok)
}
