package main

import (
	"bytes"
	"fmt"

	j "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	idxcodec "github.com/reoring/idxcodec"
)

func newDecodeCmd(a *app) *cobra.Command {
	var asHex, withPresence bool
	cmd := &cobra.Command{
		Use:   "decode SCHEMA [INPUT]",
		Short: "Decode a wire-format record into a JSON object keyed by field name",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, c, err := a.loadCodec(args[0])
			if err != nil {
				return err
			}
			input := ""
			if len(args) == 2 {
				input = args[1]
			}
			data, err := a.readInput(input, asHex)
			if err != nil {
				return err
			}
			dm, err := c.UnmarshalWithMeta(a.cfg.format(), data)
			if err != nil {
				return err
			}
			a.log.Debug("record decoded", zap.String("record", f.Name), zap.Int("bytes", len(data)))

			out, err := recordToJSON(c.Schema(), dm.Value)
			if err != nil {
				return err
			}
			if withPresence {
				out, err = wrapPresence(c.Schema(), out, dm.Presence)
				if err != nil {
					return err
				}
			}
			var buf bytes.Buffer
			if err := j.Indent(&buf, out, "", "  "); err != nil {
				return err
			}
			buf.WriteByte('\n')
			return a.writeOutput(buf.Bytes())
		},
	}
	cmd.Flags().BoolVar(&asHex, "hex", false, "read the input as hex text")
	cmd.Flags().BoolVar(&withPresence, "presence", false, "also report which fields were present on the wire")
	return cmd
}

// recordToJSON renders m as a JSON object in schema declaration order.
func recordToJSON(s *idxcodec.StructSchema, m map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, fs := range s.Fields() {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, _ := j.Marshal(fs.Label())
		v, err := j.Marshal(jsonValue(m[fs.Label()]))
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", fs.Label(), err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func wrapPresence(s *idxcodec.StructSchema, value []byte, pm idxcodec.PresenceMap) ([]byte, error) {
	seen := make(map[string]bool, s.Len())
	for _, fs := range s.Fields() {
		seen[fs.Label()] = pm.Seen(fs.Label())
	}
	p, err := j.Marshal(seen)
	if err != nil {
		return nil, err
	}
	return []byte(`{"value":` + string(value) + `,"seen":` + string(p) + `}`), nil
}

// jsonValue converts values decoded into untyped targets (which may hold
// map[any]any) into JSON-compatible values recursively.
func jsonValue(v any) any {
	switch t := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[fmt.Sprint(k)] = jsonValue(vv)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = jsonValue(vv)
		}
		return out
	case []any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = jsonValue(t[i])
		}
		return arr
	default:
		return v
	}
}
