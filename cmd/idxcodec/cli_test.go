package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const someKeysSchema = `name: some_keys
fields:
  - {name: number, type: int32, index: 1}
  - {name: bytes, type: "[7]uint8", index: 2}
  - {name: option, type: "*uint8", index: 4, skip_if: nil}
  - {name: vector, type: "[]int", index: 5}
  - {name: cache, type: string, skip: true}
`

const someKeysHex = "a301260247252525252525250581182a"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// run executes the CLI in-process and returns stdout.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(strings.NewReader(stdin), &out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCheckCommand(t *testing.T) {
	schema := writeFile(t, "some_keys.yaml", someKeysSchema)
	out, err := run(t, "", "check", schema)
	require.NoError(t, err)
	require.Contains(t, out, "record some_keys (offset=0 auto_index=false)")
	require.Regexp(t, `(?m)^4\s+4\s+option\s+\*uint8\s+conditional\s+skip_if=nil$`, out)
	require.Regexp(t, `(?m)^-\s+-\s+cache\s+string\s+always\s+-$`, out)
}

func TestEncodeDecodeCommands(t *testing.T) {
	schema := writeFile(t, "some_keys.yaml", someKeysSchema)

	out, err := run(t, `{"number": -7, "bytes": [37,37,37,37,37,37,37], "vector": [42], "note": "dropped"}`,
		"encode", "--hex", schema)
	require.NoError(t, err)
	require.Equal(t, someKeysHex+"\n", out)

	out, err = run(t, someKeysHex, "decode", "--hex", schema)
	require.NoError(t, err)
	require.Contains(t, out, `"number": -7`)
	require.Contains(t, out, `"option": null`)
	require.Contains(t, out, `"cache": ""`)
	require.Less(t, strings.Index(out, `"number"`), strings.Index(out, `"vector"`))

	out, err = run(t, someKeysHex, "decode", "--hex", "--presence", schema)
	require.NoError(t, err)
	require.Contains(t, out, `"seen": {`)
	require.Contains(t, out, `"option": false`)
}

func TestEncodeCommand_Strict(t *testing.T) {
	schema := writeFile(t, "some_keys.yaml", someKeysSchema)
	_, err := run(t, `{"number": -7, "note": "x"}`, "encode", "--unknown", "strict", schema)
	require.ErrorContains(t, err, "unknown_key")
}

func TestEncodeCommand_MissingRequiredField(t *testing.T) {
	schema := writeFile(t, "some_keys.yaml", someKeysSchema)
	_, err := run(t, `{"bytes": [37,37,37,37,37,37,37], "vector": [42]}`, "encode", "--hex", schema)
	require.ErrorContains(t, err, "required at number")

	// option is conditional and cache is skipped, so neither is needed.
	out, err := run(t, `{"number": -7, "bytes": [37,37,37,37,37,37,37], "vector": [42]}`, "encode", "--hex", schema)
	require.NoError(t, err)
	require.Equal(t, someKeysHex+"\n", out)
}

func TestDecodeCommand_UnknownKeys(t *testing.T) {
	schema := writeFile(t, "some_keys.yaml", someKeysSchema)
	// someKeysHex plus an entry 9: 0, map header bumped to 4 entries.
	input := "a4" + someKeysHex[2:] + "0900"

	_, err := run(t, input, "decode", "--hex", schema)
	require.NoError(t, err)

	_, err = run(t, input, "decode", "--hex", "--unknown", "strict", schema)
	require.ErrorContains(t, err, "unknown_key")
}

func TestFormatFromEnvAndConfig(t *testing.T) {
	schema := writeFile(t, "some_keys.yaml", someKeysSchema)
	in := `{"number": 1, "bytes": [0,0,0,0,0,0,0], "vector": []}`

	t.Setenv("IDXCODEC_FORMAT", "json")
	out, err := run(t, in, "encode", schema)
	require.NoError(t, err)
	require.Equal(t, `{"1":1,"2":[0,0,0,0,0,0,0],"5":[]}`, out)

	cfg := writeFile(t, "idxcodec.yaml", "format: msgpack\n")
	out, err = run(t, in, "--config", cfg, "--format", "msgpack", "encode", "--hex", schema)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "830101"), out)

	_, err = run(t, in, "--format", "xml", "encode", schema)
	require.ErrorContains(t, err, `unknown format "xml"`)
}

func TestOutputFile(t *testing.T) {
	schema := writeFile(t, "some_keys.yaml", someKeysSchema)
	dst := filepath.Join(t.TempDir(), "out.cbor")
	_, err := run(t, `{"number": -7, "bytes": [37,37,37,37,37,37,37], "vector": [42]}`, "encode", "-o", dst, schema)
	require.NoError(t, err)
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Len(t, data, len(someKeysHex)/2)

	out, err := run(t, "", "diag", dst)
	require.NoError(t, err)
	require.Equal(t, "{1: -7, 2: h'25252525252525', 5: [42]}\n", out)
}

func TestGenCommand(t *testing.T) {
	schema := writeFile(t, "some_keys.yaml", someKeysSchema)
	out, err := run(t, "", "gen", "--package", "wiremodel", schema)
	require.NoError(t, err)
	require.Contains(t, out, "package wiremodel")
	require.Contains(t, out, "type SomeKeys struct")
	require.Regexp(t, `Option\s+\*uint8\s+`+"`"+`idx:"index=4,skip_if=nil,name=option"`+"`", out)
}
