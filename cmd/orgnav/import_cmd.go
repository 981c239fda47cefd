package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/iota-uz/orgnav/modules/orgnav/domain/entities"
	"github.com/iota-uz/orgnav/modules/orgnav/infrastructure/persistence"
)

type importSummary struct {
	Input       string `json:"input"`
	Units       int    `json:"units"`
	Positions   int    `json:"positions"`
	People      int    `json:"people"`
	Assignments int    `json:"assignments"`
	Applied     bool   `json:"applied"`
}

func newImportCmd(g *globalOptions) *cobra.Command {
	var (
		input string
		apply bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Validate a dataset file and load it into Postgres",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, err := persistence.NewDatasetFile(input).LoadDataset(ctx)
			if err != nil {
				return datasetError(err)
			}

			summary := importSummary{
				Input:       input,
				Units:       len(d.Units),
				Positions:   len(d.Positions),
				People:      len(d.People),
				Assignments: len(d.Assignments),
			}
			if apply {
				if err := replaceInDB(ctx, g.cfg.Database.Opts, d); err != nil {
					return err
				}
				summary.Applied = true
			}
			return writeJSONLine(cmd.OutOrStdout(), summary)
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Dataset file, YAML or JSON (required)")
	cmd.Flags().BoolVar(&apply, "apply", false, "Write to the database (default is validate only)")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func replaceInDB(ctx context.Context, dsn string, d *entities.Dataset) error {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return withCode(exitData, fmt.Errorf("connect db: %w", err))
	}
	defer pool.Close()

	repo := persistence.NewEntityRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		return withCode(exitData, err)
	}
	if err := repo.ReplaceDataset(ctx, d); err != nil {
		return datasetError(err)
	}
	return nil
}
