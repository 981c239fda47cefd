package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iota-uz/orgnav/modules/orgnav/presentation/mappers"
	"github.com/iota-uz/orgnav/modules/orgnav/presentation/viewmodels"
)

func newNavigateCmd(g *globalOptions) *cobra.Command {
	var level int

	cmd := &cobra.Command{
		Use:   "navigate [ID]",
		Short: "Focus an entity (or a level with --level) on a headless canvas and print the viewport",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			byLevel := cmd.Flags().Changed("level")
			switch {
			case byLevel && len(args) > 0:
				return withCode(exitUsage, fmt.Errorf("pass either an id or --level, not both"))
			case !byLevel && (len(args) == 0 || strings.TrimSpace(args[0]) == ""):
				return withCode(exitUsage, fmt.Errorf("an id or --level is required"))
			case byLevel && level < 0:
				return withCode(exitUsage, fmt.Errorf("--level must not be negative"))
			}

			ctx := cmd.Context()
			s, err := openSession(ctx, g.cfg, sessionOptions{})
			if err != nil {
				return err
			}
			defer s.close()

			var (
				target  string
				focused bool
			)
			if byLevel {
				target = "level-" + strconv.Itoa(level)
				focused = s.engine.Panel.GoToLevel(ctx, level)
			} else {
				target = strings.TrimSpace(args[0])
				focused = s.engine.Locator.Resolve(ctx, target)
			}

			outcome := viewmodels.NavigationOutcome{Target: target, Focused: focused}
			if v, ok := s.engine.Viewport.Viewport(); ok {
				outcome.Viewport = mappers.ViewportToViewModel(v)
			}
			if err := writeJSONLine(cmd.OutOrStdout(), outcome); err != nil {
				return err
			}
			if !focused {
				return withCode(exitNotFound, fmt.Errorf("could not locate %s", target))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&level, "level", 0, "Jump to a hierarchy level instead of an entity")
	return cmd
}
