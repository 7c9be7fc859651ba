package main

import (
	"fmt"
	"time"

	"github.com/Veraticus/paycal/internal/cli"
	"github.com/Veraticus/paycal/internal/common"
	"github.com/Veraticus/paycal/internal/recurrence"
	"github.com/spf13/cobra"
)

func paydayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payday",
		Short: "Configure and inspect your pay schedule",
	}

	cmd.AddCommand(setPaydayCmd())
	cmd.AddCommand(showPaydayCmd())
	cmd.AddCommand(nextPaydayCmd())

	return cmd
}

func setPaydayCmd() *cobra.Command {
	var (
		frequency string
		weekday   string
		reference string
		firstDay  int
		secondDay int
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set the pay schedule",
		Long: `Set how often you are paid.

  weekly       every week on --weekday
  biweekly     every other week, in phase with --reference (a known payday)
  semimonthly  on --first-day and --second-day of each month (1 to 28)
  monthly      on the day of month of --reference

--weekday defaults to the weekday of --reference, which defaults to today.

Examples:
  paycal payday set --frequency biweekly --reference 2024-03-01
  paycal payday set --frequency weekly --weekday friday
  paycal payday set --frequency semimonthly --first-day 1 --second-day 15
  paycal payday set --frequency monthly --reference 2024-01-31`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := initApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			freq, err := recurrence.ParseFrequency(frequency)
			if err != nil {
				return common.NewUserError(fmt.Sprintf("unknown frequency %q; use weekly, biweekly, semimonthly or monthly", frequency), err)
			}

			ref := a.today()
			if reference != "" {
				if ref, err = a.parseDate(reference); err != nil {
					return err
				}
			}

			cfg := recurrence.PaydayConfig{Frequency: freq, ReferenceDate: ref}
			switch freq {
			case recurrence.FrequencyWeekly, recurrence.FrequencyBiweekly:
				day := a.cal.DayOfWeek(ref)
				if weekday != "" {
					if day, err = parseWeekday(weekday); err != nil {
						return err
					}
				}
				cfg.Weekday = &day
			case recurrence.FrequencySemiMonthly:
				cfg.SemiMonthlyFirstDay = &firstDay
				cfg.SemiMonthlySecondDay = &secondDay
			}

			schedule, err := cfg.Schedule(false)
			if err != nil {
				return common.NewUserError("invalid pay schedule", err)
			}
			if err := a.svc.SavePayday(ctx, schedule, ref); err != nil {
				return common.NewUserError("invalid pay schedule", err)
			}

			today := a.today()
			next, err := a.svc.NextPayday(schedule, today)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatSuccess("Paid "+describeSchedule(schedule)))
			fmt.Fprintf(out, "  Next payday: %s (%d days)\n", next.Format("Mon Jan 2, 2006"), a.cal.DaysBetween(today, next))
			return nil
		},
	}

	cmd.Flags().StringVarP(&frequency, "frequency", "f", "", "weekly, biweekly, semimonthly or monthly (required)")
	cmd.Flags().StringVarP(&weekday, "weekday", "w", "", "Payday weekday for weekly and biweekly (name or 1=Sunday..7)")
	cmd.Flags().StringVarP(&reference, "reference", "r", "", "A known payday, YYYY-MM-DD (default: today)")
	cmd.Flags().IntVar(&firstDay, "first-day", recurrence.DefaultSemiMonthlyFirstDay, "First semi-monthly payday")
	cmd.Flags().IntVar(&secondDay, "second-day", recurrence.DefaultSemiMonthlySecondDay, "Second semi-monthly payday")
	_ = cmd.MarkFlagRequired("frequency")

	return cmd
}

func showPaydayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the saved pay schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := initApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			schedule, err := a.svc.Schedule(ctx)
			if err != nil {
				return err
			}
			settings, err := a.store.GetPaydaySettings(ctx)
			if err != nil {
				return err
			}

			today := a.today()
			next, err := a.svc.NextPayday(schedule, today)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Frequency:   %s\n", schedule.Frequency())
			fmt.Fprintf(out, "Schedule:    paid %s\n", describeSchedule(schedule))
			fmt.Fprintf(out, "Reference:   %s\n", settings.ReferenceDate.Format(time.DateOnly))
			fmt.Fprintf(out, "Next payday: %s\n", next.Format("Mon Jan 2, 2006"))
			if _, ok := schedule.(recurrence.FixedInterval); ok {
				fmt.Fprintln(out, cli.FormatWarning("no payday weekday saved; paydays are estimated. Run `paycal payday set` to fix."))
			}
			return nil
		},
	}
}

func nextPaydayCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "next",
		Short: "List upcoming paydays",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := initApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			today := a.today()
			paydays, err := a.svc.NextPaydays(ctx, today, count)
			if err != nil {
				return err
			}

			w := newTable(cmd.OutOrStdout(), "Date", "Weekday", "In")
			for _, p := range paydays {
				fmt.Fprintf(w, "%s\t%s\t%d days\n", p.Format(time.DateOnly), p.Weekday(), a.cal.DaysBetween(today, p))
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 3, "Number of paydays to list")

	return cmd
}

func describeSchedule(s recurrence.Schedule) string {
	switch v := s.(type) {
	case recurrence.Weekly:
		return "every " + weekdayName(v.Weekday)
	case recurrence.Biweekly:
		return fmt.Sprintf("every other %s, starting %s", weekdayName(v.Weekday), v.Anchor.Format(time.DateOnly))
	case recurrence.SemiMonthly:
		return fmt.Sprintf("on the %s and %s of each month", ordinal(v.FirstDay), ordinal(v.SecondDay))
	case recurrence.Monthly:
		return fmt.Sprintf("monthly on the %s", ordinal(v.Anchor.Day()))
	case recurrence.FixedInterval:
		return fmt.Sprintf("every %d days", v.Days)
	default:
		return string(s.Frequency())
	}
}

func ordinal(n int) string {
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
