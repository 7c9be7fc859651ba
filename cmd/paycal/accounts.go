package main

import (
	"fmt"

	"github.com/Veraticus/paycal/internal/cli"
	"github.com/Veraticus/paycal/internal/model"
	"github.com/spf13/cobra"
)

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "accounts",
		Aliases: []string{"account"},
		Short:   "Manage accounts and balances",
		Long: `Manage the accounts paycal budgets against. The primary account is the
one the daily budget is computed for and the default source of bill payments.`,
	}

	cmd.AddCommand(addAccountCmd())
	cmd.AddCommand(listAccountsCmd())
	cmd.AddCommand(setBalanceCmd())
	cmd.AddCommand(setPrimaryCmd())
	cmd.AddCommand(deleteAccountCmd())

	return cmd
}

func addAccountCmd() *cobra.Command {
	var (
		balance string
		primary bool
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := initApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			amount, err := parseMoney(balance)
			if err != nil {
				return err
			}

			account := &model.Account{Name: args[0], Balance: amount, IsPrimary: primary}
			if err := a.store.CreateAccount(ctx, account); err != nil {
				return fmt.Errorf("failed to create account: %w", err)
			}

			msg := fmt.Sprintf("Created account %d %q with balance %s", account.ID, account.Name, cli.FormatMoney(account.Balance))
			if account.IsPrimary {
				msg += " (primary)"
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(msg))
			return nil
		},
	}

	cmd.Flags().StringVarP(&balance, "balance", "b", "0", "Current balance")
	cmd.Flags().BoolVar(&primary, "primary", false, "Make this the primary account")

	return cmd
}

func listAccountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List accounts",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := initApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			accounts, err := a.store.ListAccounts(ctx)
			if err != nil {
				return fmt.Errorf("failed to list accounts: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(accounts) == 0 {
				fmt.Fprintln(out, cli.InfoStyle.Render("No accounts found. Use 'paycal accounts add' to create one."))
				return nil
			}

			w := newTable(out, "ID", "Name", "Balance", "Primary")
			for _, acct := range accounts {
				primary := ""
				if acct.IsPrimary {
					primary = cli.SuccessIcon
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", acct.ID, acct.Name, cli.FormatMoney(acct.Balance), primary)
			}
			return w.Flush()
		},
	}
}

func setBalanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-balance <id> <amount>",
		Short: "Set an account's current balance",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			amount, err := parseMoney(args[1])
			if err != nil {
				return err
			}

			a, err := initApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.store.UpdateAccountBalance(ctx, id, amount); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Account %d balance set to %s", id, cli.FormatMoney(amount))))
			return nil
		},
	}
}

func setPrimaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-primary <id>",
		Short: "Make an account the primary account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			a, err := initApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.store.SetPrimaryAccount(ctx, id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Account %d is now primary", id)))
			return nil
		},
	}
}

func deleteAccountCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an account and its transactions",
		Long: `Delete an account. Its transactions are deleted with it; bills paid from
it fall back to the primary account.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			a, err := initApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			account, err := a.store.GetAccount(ctx, id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !yes {
				ok, err := cli.NewPrompter(cmd.InOrStdin(), out).
					Confirm(ctx, fmt.Sprintf("Delete account %q and its transactions?", account.Name))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, cli.FormatInfo("Canceled"))
					return nil
				}
			}

			if err := a.store.DeleteAccount(ctx, id); err != nil {
				return err
			}
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Deleted account %q", account.Name)))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")

	return cmd
}
