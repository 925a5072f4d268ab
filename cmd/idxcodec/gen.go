package main

import (
	"github.com/spf13/cobra"

	"github.com/reoring/idxcodec/internal/gen"
	"github.com/reoring/idxcodec/schemafile"
)

func newGenCmd(a *app) *cobra.Command {
	var pkg string
	cmd := &cobra.Command{
		Use:   "gen SCHEMA...",
		Short: "Generate Go structs with idx tags from schema files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := gen.File{Package: pkg}
			for _, path := range args {
				sf, err := schemafile.Load(path)
				if err != nil {
					return err
				}
				td, err := gen.FromSchemaFile(sf)
				if err != nil {
					return err
				}
				file.Types = append(file.Types, td)
			}
			code, err := gen.RenderFile(file)
			if err != nil {
				return err
			}
			return a.writeOutput(code)
		},
	}
	cmd.Flags().StringVar(&pkg, "package", "model", "package name of the generated file")
	return cmd
}
