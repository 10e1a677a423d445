package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/example/angagu/internal/config"
	"github.com/example/angagu/internal/database"
	applog "github.com/example/angagu/internal/logger"
	"github.com/example/angagu/internal/repository"
	"github.com/example/angagu/internal/utils"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		log := applog.New(cfg.LogLevel, cfg.LogFormat)

		if _, err := database.Connect(cfg.DBDriver, cfg.DatabaseURL, log); err != nil {
			return err
		}
		log.Info("migrations applied")
		return nil
	},
}

var (
	adminEmail    string
	adminPassword string
	adminName     string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an operator account allowed to approve products",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !utils.IsEmail(adminEmail) {
			return errors.New("--email must be a valid email address")
		}
		if !utils.IsPassword(adminPassword) {
			return errors.New("--password must be 8-64 characters with a letter and a digit")
		}

		cfg := config.Load()
		log := applog.New(cfg.LogLevel, cfg.LogFormat)

		db, err := database.Connect(cfg.DBDriver, cfg.DatabaseURL, log)
		if err != nil {
			return err
		}

		hash, err := utils.HashPassword(adminPassword)
		if err != nil {
			return err
		}

		id, err := repository.NewAdminRepository(db).CreateAdmin(cmd.Context(), adminEmail, hash, adminName)
		if err != nil {
			return err
		}
		log.WithField("admin_id", id).Info("admin created")
		return nil
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "admin email")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "admin password")
	createAdminCmd.Flags().StringVar(&adminName, "name", "admin", "display name")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
}
