package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iota-uz/orgnav/modules/orgnav/infrastructure/persistence"
)

func newExportCmd(g *globalOptions) *cobra.Command {
	var (
		output string
		format string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the current dataset to a YAML or JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			provider, closeProvider, err := openProvider(ctx, g.cfg)
			if err != nil {
				return err
			}
			defer closeProvider()

			d, err := provider.LoadDataset(ctx)
			if err != nil {
				return datasetError(err)
			}

			f := persistence.Format(format)
			switch {
			case format == "":
				f = persistence.FormatOf(output)
			case f != persistence.FormatYAML && f != persistence.FormatJSON:
				return withCode(exitUsage, fmt.Errorf("invalid --format %q (expected yaml|json)", format))
			}

			if output == "" || output == "-" {
				return persistence.EncodeDataset(cmd.OutOrStdout(), d, f)
			}
			file, err := os.Create(output)
			if err != nil {
				return withCode(exitData, err)
			}
			if err := persistence.EncodeDataset(file, d, f); err != nil {
				_ = file.Close()
				return withCode(exitData, err)
			}
			return file.Close()
		},
	}

	cmd.Flags().StringVar(&output, "output", "-", "Output file; - writes to stdout")
	cmd.Flags().StringVar(&format, "format", "", "yaml|json (default from the output extension)")
	return cmd
}
