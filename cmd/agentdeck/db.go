package main

import (
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/agentdeckhq/agentdeck/pkg/db"
	"github.com/agentdeckhq/agentdeck/pkg/presenter"
	"github.com/agentdeckhq/agentdeck/pkg/store"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Inspect and migrate the local database",
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()

		database, err := openDatabase(cmd)
		if err != nil {
			presenter.Error(err, "Failed to open database")
			os.Exit(1)
		}
		defer database.Close()

		runner := db.NewMigrationRunner(database)
		if err := runner.Run(ctx, store.Migrations()); err != nil {
			presenter.Error(err, "Migration failed")
			os.Exit(1)
		}
		presenter.Success("Database is up to date")
	},
}

var dbStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show applied schema migrations",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()

		database, err := openDatabase(cmd)
		if err != nil {
			presenter.Error(err, "Failed to open database")
			os.Exit(1)
		}
		defer database.Close()

		runner := db.NewMigrationRunner(database)
		versions, err := runner.GetAppliedVersions(ctx)
		if err != nil {
			presenter.Error(err, "Failed to read migration state")
			os.Exit(1)
		}

		if len(versions) == 0 {
			presenter.Info("No migrations applied yet")
			return
		}
		for _, v := range versions {
			fmt.Println(v)
		}
	},
}

func openDatabase(cmd *cobra.Command) (*sqlx.DB, error) {
	dbPath := viper.GetString("db_path")
	if dbPath == "" {
		var err error
		dbPath, err = db.DefaultDBPath()
		if err != nil {
			return nil, err
		}
	}
	return db.Open(cmd.Context(), dbPath)
}

func init() {
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbStatusCmd)
	rootCmd.AddCommand(dbCmd)
}
