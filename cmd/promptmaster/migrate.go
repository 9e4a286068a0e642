package main

import (
	"fmt"

	"github.com/promptmaster/api/config"
	"github.com/promptmaster/api/pkg/database"
	"github.com/promptmaster/api/pkg/logger"
	"github.com/promptmaster/api/pkg/password"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update database tables and indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync()

		return withMigratedDB(cfg, func(*gorm.DB) error { return nil })
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Migrate, then create the admin account and the starter catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync()

		hasher, err := password.NewHasher(cfg.Security.HashAlgorithm, cfg.Security.BcryptCost)
		if err != nil {
			return err
		}

		return withMigratedDB(cfg, func(db *gorm.DB) error {
			if err := database.Seed(db, cfg, hasher); err != nil {
				return fmt.Errorf("seed failed: %w", err)
			}
			logger.GetLogger().Info("Database seeded successfully")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}

func withMigratedDB(cfg *config.Config, fn func(*gorm.DB) error) error {
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		return err
	}
	defer database.CloseDB(db)

	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate failed: %w", err)
	}
	logger.GetLogger().Info("Database migrated successfully")

	return fn(db)
}
