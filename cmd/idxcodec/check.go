package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	idxcodec "github.com/reoring/idxcodec"
)

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check SCHEMA",
		Short: "Validate a schema file and print its key table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, c, err := a.loadCodec(args[0])
			if err != nil {
				return err
			}
			s := c.Schema()
			a.log.Debug("schema checked", zap.String("record", f.Name), zap.Int("fields", s.Len()))

			var sb strings.Builder
			tw := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "record %s (offset=%d auto_index=%t)\n", f.Name, s.Offset(), s.AutoIndex())
			fmt.Fprintln(tw, "KEY\tINDEX\tFIELD\tTYPE\tSKIP\tHOOKS")
			for i, fs := range s.Fields() {
				key, index := "-", "-"
				if k, ok := s.Key(i); ok {
					idx, _ := fs.Index()
					key, index = fmt.Sprint(k), fmt.Sprint(idx)
				}
				typ := "any"
				if fs.Type() != nil {
					typ = fs.Type().String()
				}
				skip := fs.Skip().String()
				if fs.Skip() == idxcodec.SkipAlways && !fs.AdvancesAutoIndex() {
					skip += ",no_increment"
				}
				fe := f.Fields[i]
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", key, index, fs.Label(), typ, skip,
					hooks(fe.SkipIf, fe.With, fe.SerializeWith, fe.DeserializeWith))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			return a.writeOutput([]byte(sb.String()))
		},
	}
}

func hooks(skipIf, with, ser, de string) string {
	var out []string
	if skipIf != "" {
		out = append(out, "skip_if="+skipIf)
	}
	if with != "" {
		out = append(out, "with="+with)
	}
	if ser != "" {
		out = append(out, "serialize_with="+ser)
	}
	if de != "" {
		out = append(out, "deserialize_with="+de)
	}
	if len(out) == 0 {
		return "-"
	}
	return strings.Join(out, ",")
}
