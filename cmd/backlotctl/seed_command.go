package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/virtualstage/backlot/internal/database"
)

func newSeedCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Migrate and seed the built-in roles, permissions, and departments",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, cleanup, err := openDatabase(*configFlag)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := database.AutoMigrateAndSeed(db); err != nil {
				return fmt.Errorf("seed: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Seed data is in place.")
			return nil
		},
	}
}
