package main

import (
	"database/sql"

	"hospital-queue/internal/adapters/storage/postgres"
	"hospital-queue/internal/config"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migraciones de la tabla queue_visits",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Aplica las migraciones pendientes",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withDB(cmd, postgres.MigrateUp)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Revierte la última migración",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withDB(cmd, postgres.MigrateDown)
			},
		},
	)
	return cmd
}

func withDB(cmd *cobra.Command, fn func(db *sql.DB) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.DatabaseDSN == "" {
		return errors.New("DB_DSN is required for migrations")
	}

	db, err := postgres.Open(cmd.Context(), cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := fn(db); err != nil {
		return err
	}
	cmd.Println("migrations ok")
	return nil
}
