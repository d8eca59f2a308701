package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iliyamo/table-reservation/internal/app"
	"github.com/iliyamo/table-reservation/internal/config"
)

func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Complete one batch of confirmed reservations whose slot has ended, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)
			ctx := cmd.Context()

			a, err := app.New(ctx, cfg, logger, app.Options{NoRedis: true})
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.Sweeper.Sweep(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("completed %d reservations\n", n)
			return nil
		},
	}
}
