package main

import (
	"encoding/hex"
	"fmt"
	"reflect"

	j "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	idxcodec "github.com/reoring/idxcodec"
)

func newEncodeCmd(a *app) *cobra.Command {
	var asHex bool
	cmd := &cobra.Command{
		Use:   "encode SCHEMA [INPUT]",
		Short: "Encode a JSON object keyed by field name into the wire format",
		Long: `Encode reads a JSON object whose keys are field labels (from INPUT or stdin)
and writes the record as an integer-keyed map in the configured format.
Every field without a skip or skip_if directive must be present in the input.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, c, err := a.loadCodec(args[0])
			if err != nil {
				return err
			}
			input := ""
			if len(args) == 2 {
				input = args[1]
			}
			data, err := a.readInput(input, false)
			if err != nil {
				return err
			}
			rec, err := recordFromJSON(c.Schema(), data, a.options(), f.Name)
			if err != nil {
				return err
			}
			out, err := c.Marshal(a.cfg.format(), rec)
			if err != nil {
				return err
			}
			a.log.Debug("record encoded",
				zap.String("record", f.Name),
				zap.String("format", a.cfg.Format),
				zap.Int("bytes", len(out)))
			if asHex {
				out = []byte(hex.EncodeToString(out) + "\n")
			}
			return a.writeOutput(out)
		},
	}
	cmd.Flags().BoolVar(&asHex, "hex", false, "write the encoded bytes as hex text")
	return cmd
}

// recordFromJSON decodes a JSON object by field label, converting each
// value to its declared type. Labels the schema does not declare are an
// error under UnknownStrict and are dropped otherwise. Fields that are always
// on the wire must be present.
func recordFromJSON(s *idxcodec.StructSchema, data []byte, opt idxcodec.Options, record string) (map[string]any, error) {
	var raw map[string]j.RawMessage
	if err := j.Unmarshal(data, &raw); err != nil {
		return nil, idxcodec.Issues{{Code: idxcodec.CodeParseError, Message: "input must be a JSON object", Hint: err.Error(), Cause: err}}
	}
	m := make(map[string]any, len(raw))
	for label, msg := range raw {
		i, ok := s.Lookup(label)
		if !ok {
			if opt.Unknown == idxcodec.UnknownStrict {
				return nil, idxcodec.Issues{{Path: label, Code: idxcodec.CodeUnknownKey, Message: "unknown field"}}
			}
			opt.Logger.Debug("dropping unknown input field", zap.String("record", record), zap.String("field", label))
			continue
		}
		typ := s.Field(i).Type()
		if typ == nil {
			var v any
			if err := j.Unmarshal(msg, &v); err != nil {
				return nil, inputIssue(label, err)
			}
			m[label] = v
			continue
		}
		p := reflect.New(typ)
		if err := j.Unmarshal(msg, p.Interface()); err != nil {
			return nil, inputIssue(label, err)
		}
		m[label] = p.Elem().Interface()
	}
	for i := 0; i < s.Len(); i++ {
		f := s.Field(i)
		if _, ok := m[f.Label()]; !ok && f.Skip() == idxcodec.SkipNever {
			return nil, idxcodec.Issues{{Path: f.Label(), Code: idxcodec.CodeRequired, Message: "required field missing from input"}}
		}
	}
	return m, nil
}

func inputIssue(label string, err error) error {
	return idxcodec.Issues{{Path: label, Code: idxcodec.CodeInvalidType, Message: fmt.Sprintf("cannot read field %q", label), Hint: err.Error(), Cause: err}}
}
