package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/hongminglow/forum-be/internal/config"
	"github.com/hongminglow/forum-be/internal/logging"
	"github.com/hongminglow/forum-be/internal/storage/postgres"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Apply all pending goose migrations to the PostgreSQL database and exit.`,
		RunE:  runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	db, err := config.LoadDatabase()
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}
	logger := logging.New("info", "text", cmd.ErrOrStderr())
	ctx := cmd.Context()

	cmd.Println("Connecting to database...")
	store, pool, err := postgres.Open(ctx, db.URL, postgres.Options{
		QueryTimeout:   db.QueryTimeout,
		ConnectRetries: db.ConnectRetries,
	})
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	defer store.Close()

	cmd.Println("Running migrations...")
	if err := postgres.Migrate(ctx, pool, logger); err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "run migrations").Wrap(err)
	}

	cmd.Println("Migrations completed successfully")
	return nil
}
