package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/virtualstage/backlot/internal/database"
	"github.com/virtualstage/backlot/internal/services"
	"github.com/virtualstage/backlot/pkg/crypto"
)

const generatedPasswordBytes = 12

func newCreateAdminCommand(configFlag *string) *cobra.Command {
	var username string
	var email string
	var password string
	var firstName string
	var lastName string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a superuser account",
		Long:  "Create a superuser account, for first-run provisioning or recovering access when no administrator can sign in.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(username) == "" || strings.TrimSpace(email) == "" {
				return errors.New("--username and --email are required")
			}

			db, cleanup, err := openDatabase(*configFlag)
			if err != nil {
				return err
			}
			defer cleanup()

			// Safe on an already-provisioned database; makes the command
			// usable before the server has ever booted.
			if err := database.AutoMigrateAndSeed(db); err != nil {
				return fmt.Errorf("prepare database: %w", err)
			}

			generated := false
			if strings.TrimSpace(password) == "" {
				password, err = crypto.GenerateToken(generatedPasswordBytes)
				if err != nil {
					return fmt.Errorf("generate password: %w", err)
				}
				generated = true
			}

			audit, err := services.NewAuditService(db)
			if err != nil {
				return err
			}
			users, err := services.NewUserService(db, audit)
			if err != nil {
				return err
			}

			user, err := users.Create(cmd.Context(), services.CreateUserInput{
				Username:    username,
				Email:       email,
				Password:    password,
				FirstName:   firstName,
				LastName:    lastName,
				IsSuperuser: true,
			})
			if err != nil {
				return fmt.Errorf("create admin: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created superuser %s (%s)\n", user.Username, user.ID)
			if generated {
				fmt.Fprintf(out, "Generated password: %s\n", password)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username for the new account")
	cmd.Flags().StringVarP(&email, "email", "e", "", "Email address for the new account")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (generated when omitted)")
	cmd.Flags().StringVar(&firstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "Last name")

	return cmd
}
