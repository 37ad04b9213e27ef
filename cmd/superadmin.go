/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/jobpilot/apiserver/config"
	"github.com/jobpilot/apiserver/internal/db"
	"github.com/jobpilot/apiserver/internal/services"
	"github.com/jobpilot/apiserver/internal/store"
	"github.com/spf13/cobra"
)

var (
	superAdminFirstName string
	superAdminLastName  string
	superAdminEmail     string
	superAdminPassword  string
)

// createSuperAdminCmd represents the createsuperadmin command.
var createSuperAdminCmd = &cobra.Command{
	Use:   "createsuperadmin",
	Short: "Create the superadmin account if it does not exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		ctx := cmd.Context()

		database, err := db.Open(ctx, cfg)
		if err != nil {
			return fmt.Errorf("connect failed: %w", err)
		}
		defer func() {
			_ = db.Close(ctx, database)
		}()

		if err := db.EnsureIndexes(ctx, database); err != nil {
			return fmt.Errorf("ensure indexes failed: %w", err)
		}

		service := services.NewSuperAdminService(store.NewSuperAdminRepository(database))
		admin, err := service.Bootstrap(ctx, superAdminFirstName, superAdminLastName, superAdminEmail, superAdminPassword)
		if err != nil {
			return fmt.Errorf("create superadmin failed: %w", err)
		}

		fmt.Printf("superadmin ready: %s (%s)\n", admin.Email, admin.ID.Hex())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createSuperAdminCmd)

	createSuperAdminCmd.Flags().StringVar(&superAdminFirstName, "first-name", "Super", "superadmin first name")
	createSuperAdminCmd.Flags().StringVar(&superAdminLastName, "last-name", "Admin", "superadmin last name")
	createSuperAdminCmd.Flags().StringVar(&superAdminEmail, "email", "", "superadmin email (required)")
	createSuperAdminCmd.Flags().StringVar(&superAdminPassword, "password", "", "superadmin password (required)")
	_ = createSuperAdminCmd.MarkFlagRequired("email")
	_ = createSuperAdminCmd.MarkFlagRequired("password")
}
