package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"

	"github.com/iota-uz/orgnav/modules/orgnav/presentation/controllers"
	"github.com/iota-uz/orgnav/pkg/metrics"
	"github.com/iota-uz/orgnav/pkg/middleware"
	"github.com/iota-uz/orgnav/pkg/server"
)

func newServeCmd(g *globalOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the navigation JSON API over one shared headless session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg := g.cfg
			s, err := openSession(ctx, cfg, sessionOptions{})
			if err != nil {
				return err
			}
			defer s.close()

			ctrls := []server.Controller{
				controllers.NewNavAPIController(s.engine, s.log, controllers.NavAPIOptions{
					RequestIDHeader: cfg.RequestIDHeader,
				}),
			}
			if cfg.Prometheus.Enabled {
				ctrls = append(ctrls, metrics.NewPrometheusController(cfg.Prometheus.Path))
			}
			srv := server.NewHTTPServer(ctrls, []mux.MiddlewareFunc{
				middleware.WithLogger(s.log, middleware.LoggerOptions{RequestIDHeader: cfg.RequestIDHeader}),
			}, nil, nil)

			if addr == "" {
				addr = cfg.SocketAddress
			}
			s.log.WithField("addr", addr).Info("orgnav api listening")
			if err := srv.Start(ctx, addr); err != nil {
				return withCode(exitData, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from PORT and GO_APP_ENV)")
	return cmd
}
