package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/virtualstage/backlot/internal/database"
)

func newMigrateCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, cleanup, err := openDatabase(*configFlag)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := database.AutoMigrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date.")
			return nil
		},
	}
}
