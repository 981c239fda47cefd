package main

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/iota-uz/orgnav/modules/orgnav/presentation/tui"
	"github.com/iota-uz/orgnav/pkg/logging"
)

func newTUICmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive navigation panel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Console logs would tear the alt screen; only file logging stays on.
			log := g.cfg.Logger()
			if strings.TrimSpace(g.cfg.LogPath) == "" {
				log = logging.Discard()
			}

			ctx := cmd.Context()
			s, err := openSession(ctx, g.cfg, sessionOptions{log: log})
			if err != nil {
				return err
			}
			defer s.close()

			p := tea.NewProgram(tui.New(ctx, s.engine), tea.WithAltScreen(), tea.WithContext(ctx))
			_, err = p.Run()
			return err
		},
	}
}
