package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"budgetledger/internal/repository/postgres"
	"budgetledger/pkg/db"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the PostgreSQL schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			pool, err := db.NewConnection(ctx, cfg.DB, logger)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := db.Migrate(ctx, pool, postgres.Schema, logger); err != nil {
				return err
			}
			logger.Info("Schema migrated", zap.String("db", cfg.DB.Name))
			return nil
		},
	}
}
