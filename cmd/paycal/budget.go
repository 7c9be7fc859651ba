package main

import (
	"fmt"
	"strings"

	"github.com/Veraticus/paycal/internal/budget"
	"github.com/Veraticus/paycal/internal/cli"
	"github.com/spf13/cobra"
)

func budgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "budget",
		Short: "Show how much you can spend per day until payday",
		Long: `Divide the primary account's balance by the days left until the next
payday. Unpaid bills due before then are listed but not subtracted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := initApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			summary, err := a.svc.Summary(ctx, a.today())
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBox(cli.MoneyIcon+" "+summary.Account.Name, formatSummary(summary)))
			return nil
		},
	}
}

func formatSummary(s *budget.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Balance:       %s\n", cli.FormatMoney(s.Balance))
	fmt.Fprintf(&b, "Next payday:   %s (%s)\n", s.NextPayday.Format("Mon Jan 2"), pluralDays(s.DaysUntilPayday))
	fmt.Fprintf(&b, "Daily budget:  %s\n", cli.TitleStyle.Render(cli.FormatMoney(s.DailyBudget)))
	if s.DueBeforePayday.IsPositive() {
		fmt.Fprintf(&b, "%s", cli.FormatWarning(fmt.Sprintf("%s in bills due before payday", cli.FormatMoney(s.DueBeforePayday))))
	} else {
		fmt.Fprintf(&b, "%s", cli.SubtleStyle.Render("No unpaid bills before payday"))
	}
	return b.String()
}

func pluralDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}
