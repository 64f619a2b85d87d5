package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	envPrefix = "LODGING"

	flagDatabaseURL = "database-url"
	flagStoreDriver = "store-driver"

	defaultDatabaseURL = "sqlite:///tmp/lodging.db"
	storeDriverGORM    = "gorm"
	storeDriverPGX     = "pgx"
)

func main() {
	rootCmd := newRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "lodgingd: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "lodgingd",
		Short:         "Lodging reservations, blackouts and reminders",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newRemindCommand(),
		newCycleCommand(),
		newTokenCommand(),
	)
	return cmd
}

// bindFlags returns a viper instance reading the named flags, overridable by LODGING_* variables.
func bindFlags(cmd *cobra.Command, flagNames ...string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	for _, flagName := range flagNames {
		if err := v.BindPFlag(flagName, cmd.Flags().Lookup(flagName)); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Lookup(flagDatabaseURL) != nil {
		if err := v.BindEnv(flagDatabaseURL, envPrefix+"_DATABASE_URL", "DATABASE_URL"); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func addDatabaseFlags(cmd *cobra.Command) {
	cmd.Flags().String(flagDatabaseURL, defaultDatabaseURL, "database URL: sqlite path or sqlite://, postgres://, mysql://")
	cmd.Flags().String(flagStoreDriver, storeDriverGORM, "store implementation: gorm or pgx (PostgreSQL only)")
}

type databaseConfig struct {
	URL         string
	StoreDriver string
}

func loadDatabaseConfig(v *viper.Viper) (databaseConfig, error) {
	cfg := databaseConfig{
		URL:         strings.TrimSpace(v.GetString(flagDatabaseURL)),
		StoreDriver: strings.TrimSpace(v.GetString(flagStoreDriver)),
	}
	if cfg.URL == "" {
		cfg.URL = defaultDatabaseURL
	}
	if cfg.StoreDriver == "" {
		cfg.StoreDriver = storeDriverGORM
	}
	switch cfg.StoreDriver {
	case storeDriverGORM:
	case storeDriverPGX:
		if !strings.HasPrefix(cfg.URL, "postgres://") && !strings.HasPrefix(cfg.URL, "postgresql://") {
			return databaseConfig{}, fmt.Errorf("%s=%s requires a postgres:// database url", flagStoreDriver, storeDriverPGX)
		}
	default:
		return databaseConfig{}, fmt.Errorf("unsupported %s %q", flagStoreDriver, cfg.StoreDriver)
	}
	return cfg, nil
}
