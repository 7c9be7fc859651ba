// Package model defines the records paycal persists.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidAccount is returned by Account.Validate.
var ErrInvalidAccount = errors.New("invalid account")

// Account is a balance the user spends from. Exactly one account is primary;
// its balance drives the daily budget.
type Account struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	Name      string
	Balance   decimal.Decimal
	ID        int64
	IsPrimary bool
}

// Validate checks the fields a caller must supply.
func (a *Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidAccount)
	}
	return nil
}
