package main

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/paycal/internal/cli"
	"github.com/Veraticus/paycal/internal/config"
	"github.com/Veraticus/paycal/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

Every other command migrates automatically; use --status to inspect the
schema without changing it.`,
		Args: cobra.NoArgs,
		RunE: runMigrate,
	}

	cmd.Flags().Bool("status", false, "Show current migration status without applying changes")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	status, _ := cmd.Flags().GetBool("status")
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	slog.Info("starting database migration",
		"database", cfg.DatabasePath,
		"status_only", status)

	store, err := storage.NewSQLiteStorage(cfg.DatabasePath, storage.WithLocation(cfg.Location))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	if status {
		current, err := store.SchemaVersion(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, cli.FormatTitle("Database migration status"))
		fmt.Fprintf(out, "Database:        %s\n", cfg.DatabasePath)
		fmt.Fprintf(out, "Current version: %d\n", current)
		fmt.Fprintf(out, "Latest version:  %d\n", storage.ExpectedSchemaVersion)
		if current < storage.ExpectedSchemaVersion {
			fmt.Fprintln(out, cli.FormatWarning("migrations pending; run `paycal migrate`"))
		}
		return nil
	}

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Database is at schema version %d", storage.ExpectedSchemaVersion)))
	return nil
}
