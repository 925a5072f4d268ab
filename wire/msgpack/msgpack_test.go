package msgpack_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	idxcodec "github.com/reoring/idxcodec"
	"github.com/reoring/idxcodec/wire/msgpack"
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

	data, err := msgpack.Marshal(c, in)
	require.NoError(t, err)
	want := []byte{
		0x83,
		0x01, 0xf9,
		0x02, 0xc4, 0x07, 0x25, 0x25, 0x25, 0x25, 0x25, 0x25, 0x25,
		0x05, 0x91, 0x2a,
	}
	require.Equal(t, want, data)

	out, err := msgpack.Unmarshal(c, data)
	require.NoError(t, err)
	require.Equal(t, in, out)

	ff := uint8(0xff)
	in.Option = &ff
	data, err = msgpack.Marshal(c, in)
	require.NoError(t, err)
	require.Equal(t, byte(0x84), data[0])
	require.True(t, bytes.Contains(data, []byte{0x04, 0xcc, 0xff}))
	out, err = msgpack.Unmarshal(c, data)
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestDecode_KeyKinds(t *testing.T) {
	// {1: -7, "x": 1, -1: 2, int8(2): bin, 5: [42]}
	data := []byte{
		0x85,
		0x01, 0xf9,
		0xa1, 'x', 0x01,
		0xff, 0x02,
		0xd0, 0x02, 0xc4, 0x07, 0x25, 0x25, 0x25, 0x25, 0x25, 0x25, 0x25,
		0x05, 0x91, 0x2a,
	}
	c := idxcodec.MustFor[someKeys]()
	out, err := msgpack.Unmarshal(c, data)
	require.NoError(t, err)
	require.Equal(t, sevens(), out.Bytes)

	strict := c.WithOptions(idxcodec.Options{Unknown: idxcodec.UnknownStrict})
	_, err = msgpack.Unmarshal(strict, data)
	require.True(t, idxcodec.HasCode(err, idxcodec.CodeUnknownKey))
}

func TestDecode_Errors(t *testing.T) {
	c := idxcodec.MustFor[someKeys]()

	_, err := msgpack.Unmarshal(c, []byte{0xc0})
	require.ErrorContains(t, err, "expected map")

	_, err = msgpack.Unmarshal(c, []byte{0x82, 0x01, 0xf9, 0x05, 0x90})
	require.True(t, idxcodec.HasCode(err, idxcodec.CodeRequired))

	_, err = msgpack.Unmarshal(c, []byte{0x84, 0x01, 0xf9, 0x01, 0xf9, 0x02, 0xc4, 0x00, 0x05, 0x90})
	require.True(t, idxcodec.HasCode(err, idxcodec.CodeDuplicateKey))

	full := []byte{0x83, 0x01, 0xf9, 0x02, 0xc4, 0x07, 0x25, 0x25, 0x25, 0x25, 0x25, 0x25, 0x25, 0x05, 0x90}
	_, err = msgpack.Unmarshal(c, append(full, 0xc0))
	require.ErrorContains(t, err, "extraneous")
}

func TestWriter_UnknownSize(t *testing.T) {
	var buf bytes.Buffer
	mw, err := msgpack.NewWriter(&buf).BeginMap(-1)
	require.NoError(t, err)
	require.NoError(t, mw.Entry(7, func(w idxcodec.ValueWriter) error { return w.Encode(true) }))
	require.Zero(t, buf.Len())
	require.NoError(t, mw.End())
	require.Equal(t, []byte{0x81, 0x07, 0xc3}, buf.Bytes())
}

func TestFormatRegistered(t *testing.T) {
	_, ok := idxcodec.LookupFormat("msgpack")
	require.True(t, ok)
}
