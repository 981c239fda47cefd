package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iota-uz/orgnav/pkg/configuration"
)

type globalOptions struct {
	envFiles []string
	source   string
	dataset  string
	anchors  string
	nodes    string

	cfg *configuration.Configuration
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:           "orgnav",
		Short:         "Navigate organizational charts: search, level jumps, filters and focus",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.cfg != nil {
				opts.cfg.Unload()
			}
		},
	}

	cmd.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", []string{".env", ".env.local"}, "Env files to load")
	cmd.PersistentFlags().StringVar(&opts.source, "source", "", "Entity source: file|postgres (default from ORGNAV_DATA_SOURCE)")
	cmd.PersistentFlags().StringVar(&opts.dataset, "dataset", "", "Dataset file for the file source (default from ORGNAV_DATASET)")
	cmd.PersistentFlags().StringVar(&opts.anchors, "anchors", "", "Level anchors TOML file (default from ORGNAV_ANCHORS)")
	cmd.PersistentFlags().StringVar(&opts.nodes, "nodes", "", "Node positions YAML file exported by the renderer (default from ORGNAV_NODES)")

	cmd.AddCommand(newSearchCmd(opts))
	cmd.AddCommand(newLevelsCmd(opts))
	cmd.AddCommand(newTreeCmd(opts))
	cmd.AddCommand(newNavigateCmd(opts))
	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newTUICmd(opts))
	cmd.AddCommand(newImportCmd(opts))
	cmd.AddCommand(newExportCmd(opts))
	return cmd
}

// load reads the configuration and applies flag overrides.
func (o *globalOptions) load() error {
	cfg, err := configuration.Load(o.envFiles)
	if err != nil {
		return withCode(exitUsage, fmt.Errorf("load configuration: %w", err))
	}
	if s := strings.ToLower(strings.TrimSpace(o.source)); s != "" {
		if s != "file" && s != "postgres" {
			cfg.Unload()
			return withCode(exitUsage, fmt.Errorf("invalid --source %q (expected file|postgres)", o.source))
		}
		cfg.DataSource = s
	}
	if o.dataset != "" {
		cfg.DatasetPath = o.dataset
	}
	if o.anchors != "" {
		cfg.AnchorsPath = o.anchors
	}
	if o.nodes != "" {
		cfg.NodesPath = o.nodes
	}
	o.cfg = cfg
	return nil
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		code := exitCode(err)
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(code)
	}
}
