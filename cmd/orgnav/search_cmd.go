package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iota-uz/orgnav/modules/orgnav/presentation/mappers"
)

type searchOptions struct {
	units []int
	limit int
}

func newSearchCmd(g *globalOptions) *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search units, positions and people; prints one JSON line per result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			if strings.TrimSpace(query) == "" {
				return withCode(exitUsage, fmt.Errorf("query is required"))
			}
			if opts.limit < 0 {
				return withCode(exitUsage, fmt.Errorf("--limit must be positive"))
			}

			ctx := cmd.Context()
			s, err := openSession(ctx, g.cfg, sessionOptions{searchLimit: opts.limit})
			if err != nil {
				return err
			}
			defer s.close()

			if len(opts.units) > 0 {
				s.engine.Filters.FilterUnits(opts.units)
			}
			panel := s.engine.Panel
			panel.Open()
			results := panel.SetQuery(ctx, query)

			out := cmd.OutOrStdout()
			for _, r := range mappers.SearchResultsToViewModels(results) {
				if err := writeJSONLine(out, r); err != nil {
					return err
				}
			}
			if len(results) == 0 {
				errOut := cmd.ErrOrStderr()
				warn.Fprintf(errOut, "no results for %q\n", query)
				if suggestions := panel.State().Suggestions; len(suggestions) > 0 {
					names := make([]string, 0, len(suggestions))
					for _, sg := range suggestions {
						names = append(names, sg.Name)
					}
					subtle.Fprintf(errOut, "did you mean: %s\n", strings.Join(names, ", "))
				}
			}
			return nil
		},
	}

	cmd.Flags().IntSliceVar(&opts.units, "units", nil, "Restrict results to these unit ids")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "Maximum results (default from ORGNAV_SEARCH_LIMIT)")
	return cmd
}
