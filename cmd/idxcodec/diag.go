package main

import (
	"github.com/spf13/cobra"

	"github.com/reoring/idxcodec/wire/cbor"
)

func newDiagCmd(a *app) *cobra.Command {
	var asHex bool
	cmd := &cobra.Command{
		Use:   "diag [INPUT]",
		Short: "Print CBOR input in diagnostic notation (RFC 8949 §8)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			data, err := a.readInput(input, asHex)
			if err != nil {
				return err
			}
			s, err := cbor.Diagnose(data)
			if err != nil {
				return err
			}
			return a.writeOutput([]byte(s + "\n"))
		},
	}
	cmd.Flags().BoolVar(&asHex, "hex", false, "read the input as hex text")
	return cmd
}
