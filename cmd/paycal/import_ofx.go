package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Veraticus/paycal/internal/budget"
	"github.com/Veraticus/paycal/internal/cli"
	"github.com/Veraticus/paycal/internal/ofx"
	"github.com/spf13/cobra"
)

var errNoImportFiles = errors.New("no files found to import")

func importOFXCmd() *cobra.Command {
	var (
		accountID int64
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "import-ofx --account ID [files...]",
		Short: "Import balances and transactions from OFX/QFX files",
		Long: `Import a bank's OFX or QFX export into an account. The statement's ledger
balance replaces the account balance; transactions already imported are
skipped.

Examples:
  # Import a single file
  paycal import-ofx --account 1 ~/Downloads/checking_2024_03.qfx

  # Import every QFX file in a directory
  paycal import-ofx --account 1 ~/Downloads/Checking/*.qfx`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			files, err := expandFiles(args)
			if err != nil {
				return err
			}

			a, err := initApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			account, err := a.store.GetAccount(ctx, accountID)
			if err != nil {
				return err
			}

			slog.Info("importing OFX files",
				"file_count", len(files),
				"account", account.ID,
				"dry_run", dryRun)

			parser := ofx.NewParser(a.cal.Location())
			bar := cli.NewProgress(cmd.ErrOrStderr(), len(files), "Importing statements...")

			var total budget.ImportResult
			failed := 0
			for _, path := range files {
				result, err := importFile(ctx, a.svc, parser, account.ID, path, dryRun)
				if err != nil {
					failed++
					slog.Error("failed to import file", "file", path, "error", err)
				} else {
					total.Inserted += result.Inserted
					total.Skipped += result.Skipped
					if result.Balance != nil {
						total.Balance = result.Balance
						total.BalanceReplaced = true
					}
				}
				_ = bar.Add(1)
			}

			out := cmd.OutOrStdout()
			verb := "Imported"
			if dryRun {
				verb = "Would import"
			}
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("%s %d transactions into %q (%d already present)",
				verb, total.Inserted, account.Name, total.Skipped)))
			if total.BalanceReplaced {
				fmt.Fprintf(out, "  Balance: %s\n", cli.FormatMoney(*total.Balance))
			}
			if failed > 0 {
				msg := fmt.Sprintf("%d of %d files failed to import", failed, len(files))
				if failed == len(files) {
					return errors.New(msg)
				}
				fmt.Fprintln(out, cli.FormatWarning(msg))
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&accountID, "account", 0, "Account to import into (required)")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "d", false, "Parse files without saving")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}

// expandFiles resolves glob patterns, keeping plain paths that exist.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err == nil {
				files = append(files, pattern)
			} else {
				slog.Warn("no files found matching pattern", "pattern", pattern)
			}
			continue
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return nil, errNoImportFiles
	}
	return files, nil
}

func importFile(ctx context.Context, svc *budget.Service, parser *ofx.Parser, accountID int64, path string, dryRun bool) (*budget.ImportResult, error) {
	f, err := os.Open(path) //nolint:gosec // Paths come from the user's command line
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	statements, err := parser.ParseFile(ctx, f)
	if err != nil {
		return nil, err
	}
	if len(statements) > 1 {
		slog.Warn("file holds several statements; all are imported into one account",
			"file", filepath.Base(path),
			"statements", len(statements))
	}

	result := &budget.ImportResult{}
	for _, stmt := range statements {
		if dryRun {
			result.Inserted += len(stmt.Transactions)
			if stmt.Balance != nil {
				bal := stmt.Balance.Amount
				result.Balance = &bal
				result.BalanceReplaced = true
			}
			continue
		}

		applied, err := svc.ApplyStatement(ctx, accountID, stmt)
		if err != nil {
			return nil, err
		}
		result.Inserted += applied.Inserted
		result.Skipped += applied.Skipped
		if applied.Balance != nil {
			result.Balance = applied.Balance
			result.BalanceReplaced = true
		}
	}
	return result, nil
}
