package main

import (
	"context"
	"database/sql"
	"fmt"

	"catalog_service/config"
	"catalog_service/pkg/db"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type RootOptions struct {
	DatabaseURL string

	db *sql.DB
}

func NewRootCmd(logger *logrus.Logger) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the catalog database schema",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.DatabaseURL == "" {
				cfg, err := config.LoadConfig(logger)
				if err != nil {
					return err
				}
				opts.DatabaseURL = cfg.DatabaseURL
			}

			conn, err := db.Connect(cmd.Context(), opts.DatabaseURL, db.PoolOptions{MaxOpenConns: 1})
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			opts.db = conn
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if opts.db != nil {
				if err := opts.db.Close(); err != nil {
					return fmt.Errorf("close db: %w", err)
				}
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&opts.DatabaseURL, "database-url", "", "PostgreSQL URL; falls back to DATABASE_URL")

	run := func(fn func(ctx context.Context, conn *sql.DB, logger *logrus.Logger) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			return fn(cmd.Context(), opts.db, logger)
		}
	}

	cmd.AddCommand(
		&cobra.Command{Use: "up", Short: "Apply all pending migrations", Args: cobra.NoArgs, RunE: run(db.Migrate)},
		&cobra.Command{Use: "down", Short: "Revert the last applied migration", Args: cobra.NoArgs, RunE: run(db.Rollback)},
		&cobra.Command{Use: "reset", Short: "Revert every applied migration", Args: cobra.NoArgs, RunE: run(db.Reset)},
		&cobra.Command{Use: "status", Short: "Log the state of each migration", Args: cobra.NoArgs, RunE: run(db.Status)},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := db.Version(cmd.Context(), opts.db)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), v)
				return err
			},
		},
	)
	return cmd
}
