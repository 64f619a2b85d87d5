package main

import (
	"context"
	"fmt"

	"github.com/MarkoPoloResearchLab/lodging/internal/store/gormstore"
	"github.com/MarkoPoloResearchLab/lodging/internal/store/pgstore"
	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	cfg := &databaseConfig{}
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			v, err := bindFlags(cmd, flagDatabaseURL, flagStoreDriver)
			if err != nil {
				return err
			}
			*cfg, err = loadDatabaseConfig(v)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runMigrate(cmd.Context(), *cfg); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
	addDatabaseFlags(cmd)
	return cmd
}

func runMigrate(ctx context.Context, cfg databaseConfig) error {
	if cfg.StoreDriver == storeDriverPGX {
		pool, err := openPool(ctx, cfg.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		return pgstore.Migrate(ctx, pool)
	}
	database, err := gormstore.Open(ctx, cfg.URL)
	if err != nil {
		return fmt.Errorf("database open: %w", err)
	}
	defer func() { _ = database.Close() }()
	return gormstore.Migrate(ctx, database.DB)
}
