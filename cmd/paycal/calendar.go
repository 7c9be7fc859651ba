package main

import (
	"fmt"
	"time"

	"github.com/Veraticus/paycal/internal/cli"
	"github.com/Veraticus/paycal/internal/common"
	"github.com/spf13/cobra"
)

func calendarCmd() *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:     "calendar",
		Aliases: []string{"cal"},
		Short:   "Show paydays and bill due dates for a month",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := initApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			today := a.today()
			year, mon := today.Year(), today.Month()
			if month != "" {
				t, err := time.Parse("2006-01", month)
				if err != nil {
					return common.NewUserError(fmt.Sprintf("invalid month %q, expected YYYY-MM", month), err)
				}
				year, mon = t.Year(), t.Month()
			}

			view, err := a.svc.Month(ctx, year, mon, today)
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), cli.RenderMonth(view, today))
			return nil
		},
	}

	cmd.Flags().StringVarP(&month, "month", "m", "", "Month to show, YYYY-MM (default: this month)")

	return cmd
}
