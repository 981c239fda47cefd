package main

import (
	"github.com/spf13/cobra"

	"github.com/iota-uz/orgnav/modules/orgnav/domain/entities"
	"github.com/iota-uz/orgnav/modules/orgnav/presentation/mappers"
)

func newTreeCmd(g *globalOptions) *cobra.Command {
	var (
		units    []int
		jsonMode bool
	)

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the unit hierarchy as an outline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), g.cfg, sessionOptions{})
			if err != nil {
				return err
			}
			defer s.close()

			outline := mappers.DatasetToOutline(s.engine.Catalog.Dataset(), entities.NewFilterSet(units...), nil)
			out := cmd.OutOrStdout()
			if !jsonMode {
				printOutline(out, outline.Rows)
				return nil
			}
			for _, r := range outline.Rows {
				if err := writeJSONLine(out, r); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().IntSliceVar(&units, "units", nil, "Only show these unit ids")
	cmd.Flags().BoolVar(&jsonMode, "json", false, "Print JSON lines instead of an outline")
	return cmd
}
