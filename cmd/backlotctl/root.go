package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string

	rootCmd := &cobra.Command{
		Use:           "backlotctl",
		Short:         "Backlot administration utilities",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Path to configuration directory or file")

	rootCmd.AddCommand(newMigrateCommand(&configFlag))
	rootCmd.AddCommand(newSeedCommand(&configFlag))
	rootCmd.AddCommand(newCreateAdminCommand(&configFlag))

	return rootCmd
}
