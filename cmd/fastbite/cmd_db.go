package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhonlemus05/FastBite-Delivery/config"
	_ "github.com/jhonlemus05/FastBite-Delivery/database/migrations"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/database"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/migration"
)

// withDB loads config, connects and hands the runner to fn.
func withDB(cmd *cobra.Command, fn func(*migration.Runner) error) error {
	if err := config.Load(); err != nil {
		return err
	}
	db, err := database.Connect()
	if err != nil {
		return err
	}
	defer database.Close()
	return fn(migration.New(db, cmd.OutOrStdout()))
}

// fastbite migrate: run pending migrations.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd, func(r *migration.Runner) error {
			fmt.Fprintf(cmd.OutOrStdout(), "Running migrations on %s…\n", config.DatabaseDriver())
			_, err := r.Run()
			return err
		})
	},
}

// fastbite migrate:rollback: undo the last batch.
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Roll back the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd, func(r *migration.Runner) error {
			_, err := r.Rollback()
			return err
		})
	},
}

// fastbite migrate:status: show which migrations ran.
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd, func(r *migration.Runner) error {
			return r.Status()
		})
	},
}
