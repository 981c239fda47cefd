package main

import (
	"github.com/spf13/cobra"

	"github.com/iota-uz/orgnav/modules/orgnav/presentation/mappers"
)

func newLevelsCmd(g *globalOptions) *cobra.Command {
	var (
		units    []int
		jsonMode bool
	)

	cmd := &cobra.Command{
		Use:   "levels",
		Short: "Count units, positions and people per hierarchy level",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx, g.cfg, sessionOptions{})
			if err != nil {
				return err
			}
			defer s.close()

			if len(units) > 0 {
				s.engine.Filters.FilterUnits(units)
			}
			rows := mappers.LevelStatsToRows(s.engine.Panel.LevelStats(ctx))

			out := cmd.OutOrStdout()
			if !jsonMode {
				printLevelTable(out, rows)
				return nil
			}
			for _, r := range rows {
				if err := writeJSONLine(out, r); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().IntSliceVar(&units, "units", nil, "Only count these unit ids")
	cmd.Flags().BoolVar(&jsonMode, "json", false, "Print JSON lines instead of a table")
	return cmd
}
