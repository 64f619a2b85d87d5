package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/MarkoPoloResearchLab/lodging/internal/store/gormstore"
	"github.com/MarkoPoloResearchLab/lodging/pkg/lodging"
	"github.com/spf13/cobra"
)

const (
	flagName     = "name"
	flagStartsAt = "starts-at"
)

func newCycleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cycle",
		Short: "Manage cycles referenced by reminders",
	}
	cmd.AddCommand(newCreateCycleCommand())
	return cmd
}

func newCreateCycleCommand() *cobra.Command {
	var (
		databaseURL string
		cycle       gormstore.Cycle
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a cycle with its display name and start time",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			v, err := bindFlags(cmd, flagDatabaseURL, flagCycle, flagName, flagStartsAt)
			if err != nil {
				return err
			}
			databaseURL = defaultIfBlank(v.GetString(flagDatabaseURL), defaultDatabaseURL)
			cycleID, err := lodging.NewCycleID(v.GetString(flagCycle))
			if err != nil {
				return fmt.Errorf("%s: %w", flagCycle, err)
			}
			name := strings.TrimSpace(v.GetString(flagName))
			if name == "" {
				return fmt.Errorf("%s is required", flagName)
			}
			startsAt, err := time.ParseInLocation(sendAtLayout, strings.TrimSpace(v.GetString(flagStartsAt)), time.UTC)
			if err != nil {
				return fmt.Errorf("%s: %w", flagStartsAt, err)
			}
			cycle = gormstore.Cycle{CycleID: cycleID.String(), Name: name, StartsAt: startsAt}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := gormstore.Open(cmd.Context(), databaseURL)
			if err != nil {
				return fmt.Errorf("database open: %w", err)
			}
			defer func() { _ = database.Close() }()
			if err := gormstore.New(database.DB).CreateCycle(cmd.Context(), cycle); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cycle.CycleID)
			return nil
		},
	}
	cmd.Flags().String(flagDatabaseURL, defaultDatabaseURL, "database URL: sqlite path or sqlite://, postgres://, mysql://")
	cmd.Flags().String(flagCycle, "", "cycle identifier (required)")
	cmd.Flags().String(flagName, "", "cycle display name (required)")
	cmd.Flags().String(flagStartsAt, "", "cycle start in UTC as YYYY-MM-DDTHH:MM (required)")
	return cmd
}
