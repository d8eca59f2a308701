package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iliyamo/table-reservation/internal/config"
	"github.com/iliyamo/table-reservation/internal/database"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.Storage != config.StorageMySQL {
				return fmt.Errorf("migrate needs STORAGE=mysql, got %q", cfg.Storage)
			}
			ctx := cmd.Context()
			db, err := database.Open(ctx, cfg.DB)
			if err != nil {
				return err
			}
			defer db.Close()

			applied, err := database.Migrate(ctx, db)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Println("schema up to date")
			}
			for _, name := range applied {
				fmt.Println("applied", name)
			}
			return nil
		},
	}
}
