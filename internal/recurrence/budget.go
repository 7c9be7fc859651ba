package recurrence

import "github.com/shopspring/decimal"

// DailyBudget spreads balance evenly over the days left until payday. It is
// zero when daysUntilPayday is not positive.
func DailyBudget(balance decimal.Decimal, daysUntilPayday int) decimal.Decimal {
	if daysUntilPayday <= 0 {
		return decimal.Zero
	}
	return balance.Div(decimal.NewFromInt(int64(daysUntilPayday)))
}
