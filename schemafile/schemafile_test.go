package schemafile_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	idxcodec "github.com/reoring/idxcodec"
	_ "github.com/reoring/idxcodec/codec"
	"github.com/reoring/idxcodec/schemafile"
	"github.com/reoring/idxcodec/wire/cbor"
)

const someKeys = `
name: some_keys
fields:
  - {name: number, type: int32, index: 1}
  - {name: bytes, type: "[7]uint8", index: 2}
  - {name: option, type: "*uint8", index: 4, skip_if: nil}
  - {name: vector, type: "[]int", index: 5}
`

func TestParseType(t *testing.T) {
	cases := map[string]reflect.Type{
		"int32":              reflect.TypeFor[int32](),
		"[7]uint8":           reflect.TypeFor[[7]uint8](),
		"*uint8":             reflect.TypeFor[*uint8](),
		"[]int":              reflect.TypeFor[[]int](),
		"map[string][]bytes": reflect.TypeFor[map[string][][]byte](),
		"[]any":              reflect.TypeFor[[]any](),
		"time":               reflect.TypeFor[time.Time](),
		"any":                nil,
	}
	for expr, want := range cases {
		got, err := schemafile.ParseType(expr)
		require.NoError(t, err, expr)
		require.Equal(t, want, got, expr)
	}
	for _, bad := range []string{"", "int128", "[x]int", "[3", "map[int]int", "*"} {
		_, err := schemafile.ParseType(bad)
		require.Error(t, err, bad)
	}
}

func TestCodec_Scenario(t *testing.T) {
	f, err := schemafile.Parse([]byte(someKeys))
	require.NoError(t, err)
	c, err := f.Codec()
	require.NoError(t, err)

	data, err := c.Marshal(cbor.Format, map[string]any{
		"number": -7,
		"bytes":  []byte{37, 37, 37, 37, 37, 37, 37},
		"vector": []int{42},
	})
	require.NoError(t, err)
	require.Equal(t, []byte{
		0xa3,
		0x01, 0x26,
		0x02, 0x47, 0x25, 0x25, 0x25, 0x25, 0x25, 0x25, 0x25,
		0x05, 0x81, 0x18, 0x2a,
	}, data)

	dm, err := c.DecodeWithMeta(cbor.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, int32(-7), dm.Value["number"])
	require.Nil(t, dm.Value["option"])
	require.True(t, dm.Presence.Defaulted("option"))
	require.True(t, dm.Presence.Seen("vector"))
}

func TestSchema_Hooks(t *testing.T) {
	f, err := schemafile.Parse([]byte(`
name: event
auto_index: true
offset: 100
fields:
  - {name: at, type: time, with: rfc3339}
  - {name: scratch, skip: true, no_increment: true}
  - {name: tags, type: "[]string", skip_if: empty}
`))
	require.NoError(t, err)
	s, err := f.Schema()
	require.NoError(t, err)
	k, ok := s.Key(0)
	require.True(t, ok)
	require.Equal(t, uint64(100), k)
	_, ok = s.Key(1)
	require.False(t, ok)
	k, _ = s.Key(2)
	require.Equal(t, uint64(101), k)
	require.NotNil(t, s.Field(0).Encoder())
}

func TestParse_Errors(t *testing.T) {
	_, err := schemafile.Parse([]byte(`name: x
fields:
  - {name: a, index: 1, colour: red}
`))
	require.True(t, idxcodec.HasCode(err, idxcodec.CodeParseError))

	_, err = schemafile.Parse([]byte(`fields: []`))
	require.True(t, idxcodec.HasCode(err, idxcodec.CodeInvalidSchema))

	_, err = schemafile.Parse([]byte(``))
	require.True(t, idxcodec.HasCode(err, idxcodec.CodeParseError))

	f, err := schemafile.Parse([]byte(`name: x
fields:
  - {name: a, index: 1}
  - {name: b, index: 1}
`))
	require.NoError(t, err)
	_, err = f.Schema()
	require.True(t, idxcodec.HasCode(err, idxcodec.CodeDuplicateIndex))
	iss, _ := idxcodec.AsIssues(err)
	require.Equal(t, 4, iss[0].Params["line"])

	f, err = schemafile.Parse([]byte(`name: x
fields:
  - {name: a, index: 1, with: nope}
`))
	require.NoError(t, err)
	_, err = f.Schema()
	require.True(t, idxcodec.HasCode(err, idxcodec.CodeInvalidCodec))

	f, err = schemafile.Parse([]byte(`name: x
unknown: maybe
fields:
  - {name: a, index: 1}
`))
	require.NoError(t, err)
	_, err = f.Codec()
	require.True(t, idxcodec.HasCode(err, idxcodec.CodeInvalidSchema))
}

func TestCodec_StrictFromFile(t *testing.T) {
	f, err := schemafile.Parse([]byte(`name: x
unknown: strict
fields:
  - {name: a, type: uint8, index: 1}
`))
	require.NoError(t, err)
	c, err := f.Codec()
	require.NoError(t, err)
	_, err = c.Unmarshal(cbor.Format, []byte{0xa2, 0x01, 0x02, 0x02, 0x03})
	require.True(t, idxcodec.HasCode(err, idxcodec.CodeUnknownKey))
}
