package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iliyamo/table-reservation/internal/app"
	"github.com/iliyamo/table-reservation/internal/config"
)

func newServeCmd() *cobra.Command {
	var (
		migrateUp bool
		noRedis   bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the completion sweeper and the event consumer",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			a, err := app.New(ctx, cfg, logger, app.Options{Migrate: migrateUp, NoRedis: noRedis})
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Run(ctx)
		},
	}
	cmd.Flags().BoolVar(&migrateUp, "migrate", true, "run database migrations on startup")
	cmd.Flags().BoolVar(&noRedis, "no-redis", false, "disable rate limiting and response caching")
	return cmd
}
