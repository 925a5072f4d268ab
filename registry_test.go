package idxcodec_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	idxcodec "github.com/reoring/idxcodec"
	_ "github.com/reoring/idxcodec/wire/cbor"
)

func TestRegistry_Predicates(t *testing.T) {
	for _, name := range []string{"nil", "zero", "empty"} {
		_, ok := idxcodec.LookupPredicate(name)
		require.True(t, ok, name)
	}
	idxcodec.RegisterPredicate("negative", func(v any) bool { return v.(int) < 0 })
	p, ok := idxcodec.LookupPredicate("negative")
	require.True(t, ok)
	require.True(t, p(-1))

	idxcodec.RegisterPredicate("ignored", nil)
	_, ok = idxcodec.LookupPredicate("ignored")
	require.False(t, ok)
}

func TestRegistry_CodecHalves(t *testing.T) {
	idxcodec.RegisterFieldCodec("decimal_text", stringer{})
	c, ok := idxcodec.LookupFieldCodec("decimal_text")
	require.True(t, ok)
	require.NotNil(t, c)

	_, ok = idxcodec.LookupEncoder("decimal_text")
	require.True(t, ok)
	_, ok = idxcodec.LookupDecoder("decimal_text")
	require.True(t, ok)
	_, ok = idxcodec.LookupEncoder("nope")
	require.False(t, ok)
}

func TestNamedDirectives_Resolve(t *testing.T) {
	idxcodec.RegisterFieldCodec("decimal_text", stringer{})
	d, err := idxcodec.NamedDirectives{Index: idxcodec.Index(2), SkipIf: "zero", With: "decimal_text"}.Resolve("n")
	require.NoError(t, err)
	require.Equal(t, uint64(2), *d.Index)
	require.NotNil(t, d.SkipIf)
	require.NotNil(t, d.With)

	_, err = idxcodec.NamedDirectives{With: "decimal_text", SerializeWith: "decimal_text"}.Resolve("n")
	require.True(t, idxcodec.HasCode(err, idxcodec.CodeConflictingDirective))

	_, err = idxcodec.NamedDirectives{SkipIf: "nope"}.Resolve("n")
	require.True(t, idxcodec.HasCode(err, idxcodec.CodeInvalidCodec))
}

func TestFormats(t *testing.T) {
	f, ok := idxcodec.LookupFormat("cbor")
	require.True(t, ok)
	require.Equal(t, "cbor", f.Name())
	require.Contains(t, idxcodec.Formats(), "cbor")

	idxcodec.RegisterFormat(nil)
	_, ok = idxcodec.LookupFormat("")
	require.False(t, ok)
}
