package cmd

import (
	"context"

	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/automation/repository"
	coreconfig "github.com/Abhishek-kmr525/admin.freereminders.net-sub000/core/config"
	coreDB "github.com/Abhishek-kmr525/admin.freereminders.net-sub000/core/database"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	Run:   runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(_ *cobra.Command, _ []string) {
	cfg := coreconfig.Global
	logrus.Infof("[MIGRATION] migrating %s database %s", cfg.Database.Driver, cfg.Database.Name)

	db, err := coreDB.NewDatabase(cfg.Database, cfg.App.Debug)
	if err != nil {
		logrus.Fatalf("[MIGRATION] %v", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	if err := repository.Migrate(context.Background(), db); err != nil {
		logrus.Fatalf("[MIGRATION] %v", err)
	}
	logrus.Info("[MIGRATION] schema is up to date")
}
