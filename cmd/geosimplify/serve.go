package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"geometry-simplifier/internal/config"
	"geometry-simplifier/internal/geojsonio"
	"geometry-simplifier/internal/server"
)

func newServeCommand() *cobra.Command {
	cfg := config.NewDefaultConfig()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the simplifier over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger := newLogger(cfg.Verbosity)
			srv := server.New(cfg, logger)

			if cfg.LoadPattern != "" {
				features, err := geojsonio.LoadFiles(cfg.LoadPattern, logger)
				if err != nil {
					return err
				}
				resp, err := srv.Ingest(features)
				if err != nil {
					return err
				}
				logger.Info("indexed startup features", "indexed", resp.Indexed, "skipped", resp.Skipped)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(ctx)
		},
	}

	flags := cmd.Flags()
	bindSimplifierFlags(flags, &cfg)
	flags.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	flags.StringVar(&cfg.LoadPattern, "load", "", "glob of GeoJSON files to simplify and index on startup")

	return cmd
}
