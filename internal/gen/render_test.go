package gen

import (
	"testing"

	"github.com/stretchr/testify/require"

	_ "github.com/reoring/idxcodec/codec"
	"github.com/reoring/idxcodec/schemafile"
)

func TestRenderFile_Minimal(t *testing.T) {
	out, err := RenderFile(File{Package: "foo", Types: []TypeDef{{Name: "User"}}})
	require.NoError(t, err)
	require.Contains(t, string(out), "type User struct")

	_, err = RenderFile(File{})
	require.Error(t, err)
}

func TestFromSchemaFile(t *testing.T) {
	sf, err := schemafile.Parse([]byte(`
name: some_keys
offset: 2
fields:
  - {name: number, type: int32, index: 1}
  - {name: option, type: "*uint8", index: 4, skip_if: nil}
  - {name: at, type: time, index: 5, with: rfc3339}
  - {name: extra, type: "map[string]any", index: 6}
  - {name: cache, skip: true}
  - {name: id, index: 7}
`))
	require.NoError(t, err)
	td, err := FromSchemaFile(sf)
	require.NoError(t, err)
	require.Equal(t, "SomeKeys", td.Name)
	require.Equal(t, "offset=2", td.Record)
	require.Equal(t, []Field{
		{GoName: "Number", GoType: "int32", Tag: "index=1,name=number"},
		{GoName: "Option", GoType: "*uint8", Tag: "index=4,skip_if=nil,name=option"},
		{GoName: "At", GoType: "time.Time", Tag: "index=5,with=rfc3339,name=at"},
		{GoName: "Extra", GoType: "map[string]any", Tag: "index=6,name=extra"},
		{GoName: "Cache", GoType: "any", Tag: "skip,name=cache"},
		{GoName: "ID", GoType: "any", Tag: "index=7,name=id"},
	}, td.Fields)

	out, err := RenderFile(File{Package: "model", Types: []TypeDef{td}})
	require.NoError(t, err)
	src := string(out)
	require.Contains(t, src, `import (`)
	require.Contains(t, src, `"time"`)
	require.Contains(t, src, "type SomeKeys struct")
	require.Regexp(t, `_\s+struct\{\}\s+`+"`"+`idx:"offset=2"`+"`", src)
	require.Regexp(t, `Number\s+int32\s+`+"`"+`idx:"index=1,name=number"`+"`", src)
}

func TestExportedName(t *testing.T) {
	require.Equal(t, "SomeKeys", ExportedName("some_keys"))
	require.Equal(t, "UserID", ExportedName("user-id"))
	require.Equal(t, "F1st", ExportedName("1st"))
}
