package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

func execAll(tx *sql.Tx, queries []string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE TABLE IF NOT EXISTS accounts (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT NOT NULL UNIQUE,
					balance TEXT NOT NULL DEFAULT '0',
					is_primary INTEGER NOT NULL DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				// At most one row may be primary.
				`CREATE UNIQUE INDEX idx_accounts_primary ON accounts(is_primary) WHERE is_primary = 1`,

				`CREATE TABLE IF NOT EXISTS bills (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT NOT NULL,
					amount TEXT NOT NULL,
					due_date TEXT NOT NULL,
					recurrence TEXT NOT NULL,
					is_paid INTEGER NOT NULL DEFAULT 0,
					account_id INTEGER REFERENCES accounts(id) ON DELETE SET NULL,
					notes TEXT NOT NULL DEFAULT '',
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_bills_due_date ON bills(due_date)`,

				`CREATE TABLE IF NOT EXISTS transactions (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					account_id INTEGER NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
					date TEXT NOT NULL,
					description TEXT NOT NULL,
					amount TEXT NOT NULL,
					bill_id INTEGER REFERENCES bills(id) ON DELETE SET NULL,
					hash TEXT UNIQUE NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_transactions_account_date ON transactions(account_id, date)`,
			})
		},
	},
	{
		Version:     2,
		Description: "Add payday settings",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE TABLE IF NOT EXISTS payday_settings (
					id INTEGER PRIMARY KEY CHECK (id = 1),
					frequency TEXT NOT NULL,
					reference_date TEXT,
					weekday INTEGER,
					semi_monthly_first_day INTEGER,
					semi_monthly_second_day INTEGER,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
			})
		},
	},
	{
		Version:     3,
		Description: "Add OFX transaction ids",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`ALTER TABLE transactions ADD COLUMN fitid TEXT NOT NULL DEFAULT ''`,
			})
		},
	},
}

// Migrate brings the schema up to ExpectedSchemaVersion.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}

// SchemaVersion reports the database's current schema version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}
