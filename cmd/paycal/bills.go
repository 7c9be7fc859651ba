package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/paycal/internal/cli"
	"github.com/Veraticus/paycal/internal/common"
	"github.com/Veraticus/paycal/internal/model"
	"github.com/Veraticus/paycal/internal/recurrence"
	"github.com/spf13/cobra"
)

func billsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "bills",
		Aliases: []string{"bill"},
		Short:   "Manage recurring and one-time bills",
	}

	cmd.AddCommand(addBillCmd())
	cmd.AddCommand(listBillsCmd())
	cmd.AddCommand(payBillCmd())
	cmd.AddCommand(deleteBillCmd())

	return cmd
}

func recurrenceNames() string {
	names := make([]string, len(recurrence.Recurrences))
	for i, r := range recurrence.Recurrences {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}

func addBillCmd() *cobra.Command {
	var (
		amount    string
		due       string
		recurs    string
		accountID int64
		notes     string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a bill",
		Long: `Add a bill with its next due date. Recurring bills roll forward to their
next due date when paid.

Examples:
  paycal bills add Rent --amount 1450 --due 2024-04-01 --recurrence monthly
  paycal bills add "Car registration" --amount 212.40 --due 2024-09-30 --recurrence yearly
  paycal bills add Dentist --amount 80 --due 2024-04-12 --recurrence oneTime --account 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := initApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			amt, err := parseMoney(amount)
			if err != nil {
				return err
			}
			dueDate, err := a.parseDate(due)
			if err != nil {
				return err
			}
			r, err := recurrence.ParseRecurrence(recurs)
			if err != nil {
				return common.NewUserError(fmt.Sprintf("unknown recurrence %q; use one of: %s", recurs, recurrenceNames()), err)
			}

			bill := &model.Bill{
				Name:       args[0],
				Amount:     amt,
				DueDate:    dueDate,
				Recurrence: r,
				Notes:      notes,
			}
			if accountID != 0 {
				if _, err := a.store.GetAccount(ctx, accountID); err != nil {
					return err
				}
				bill.AccountID = &accountID
			}

			if err := a.store.CreateBill(ctx, bill); err != nil {
				return fmt.Errorf("failed to create bill: %w", err)
			}

			status := a.cal.BillStatus(bill.DueDate, bill.IsPaid, a.today())
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created bill %d %q: %s %s, due %s (%s)",
				bill.ID, bill.Name, cli.FormatMoney(bill.Amount), bill.Recurrence,
				bill.DueDate.Format(time.DateOnly), cli.StatusLabel(status))))
			return nil
		},
	}

	cmd.Flags().StringVarP(&amount, "amount", "a", "", "Amount due (required)")
	cmd.Flags().StringVarP(&due, "due", "d", "", "Next due date, YYYY-MM-DD (required)")
	cmd.Flags().StringVarP(&recurs, "recurrence", "r", string(recurrence.RecurMonthly), "One of: "+recurrenceNames())
	cmd.Flags().Int64Var(&accountID, "account", 0, "Account to pay from (default: primary)")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-form notes")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("due")

	return cmd
}

func listBillsCmd() *cobra.Command {
	var unpaid bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List bills with their status",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := initApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			statuses, err := a.svc.BillStatuses(ctx, a.today())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(statuses) == 0 {
				fmt.Fprintln(out, cli.InfoStyle.Render("No bills found. Use 'paycal bills add' to create one."))
				return nil
			}

			w := newTable(out, "ID", "Name", "Amount", "Due", "Recurs", "Status", "Days")
			for _, bs := range statuses {
				if unpaid && bs.Bill.IsPaid {
					continue
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%d\n",
					bs.Bill.ID,
					bs.Bill.Name,
					cli.FormatMoney(bs.Bill.Amount),
					bs.Bill.DueDate.Format(time.DateOnly),
					bs.Bill.Recurrence,
					cli.StatusLabel(bs.Status),
					bs.DaysUntilDue)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&unpaid, "unpaid", false, "Hide paid bills")

	return cmd
}

func payBillCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pay <id>",
		Short: "Record a bill payment",
		Long: `Record paying a bill today. The amount is debited from the bill's account
(or the primary account) and recurring bills move to their next due date.`,
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

			payment, err := a.svc.PayBill(ctx, id, a.today())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Paid %s %s (due %s)",
				payment.Bill.Name,
				cli.FormatMoney(payment.Bill.Amount),
				payment.PaidCycle.DueDate.Format(time.DateOnly))))
			fmt.Fprintf(out, "  Account balance: %s\n", cli.FormatMoney(payment.Balance))
			if payment.Bill.Recurrence.IsRecurring() {
				fmt.Fprintf(out, "  Next due:        %s\n", payment.Bill.DueDate.Format(time.DateOnly))
			}
			return nil
		},
	}
}

func deleteBillCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a bill",
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

			bill, err := a.store.GetBill(ctx, id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !yes {
				ok, err := cli.NewPrompter(cmd.InOrStdin(), out).Confirm(ctx, fmt.Sprintf("Delete bill %q?", bill.Name))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, cli.FormatInfo("Canceled"))
					return nil
				}
			}

			if err := a.store.DeleteBill(ctx, id); err != nil {
				return err
			}
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Deleted bill %q", bill.Name)))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")

	return cmd
}
