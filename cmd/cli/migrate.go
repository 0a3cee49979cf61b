package main

import (
	"github.com/gamewallet/wallet/infra"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func newMigrateCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or revert the database schema",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(e, func(db *gorm.DB) error {
				return infra.Migrate(db, e.logger())
			})
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Revert the most recent migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(e, func(db *gorm.DB) error {
				return infra.MigrateDown(db, steps, e.logger())
			})
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "Number of migrations to revert")

	cmd.AddCommand(up, down)
	return cmd
}

func withDB(e *env, fn func(db *gorm.DB) error) error {
	cfg, err := e.config()
	if err != nil {
		return err
	}
	db, err := e.openDB(cfg)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close() //nolint:errcheck
	return fn(db)
}
