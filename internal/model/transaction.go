package model

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a posted movement on an account. Amount is signed:
// negative for money leaving the account.
type Transaction struct {
	Date        time.Time
	CreatedAt   time.Time
	BillID      *int64 // set when the transaction records a bill payment
	Amount      decimal.Decimal
	Description string
	Hash        string
	FITID       string // bank-assigned id from OFX imports
	ID          int64
	AccountID   int64
}

// GenerateHash creates a unique hash for duplicate detection. Bill payments
// are keyed by their bill as well, so same-named bills never collide.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%d:%s:%s:%s:%s",
		t.AccountID,
		t.Date.Format("2006-01-02"),
		t.Amount.StringFixed(2),
		t.Description,
		t.FITID)
	if t.BillID != nil {
		data += fmt.Sprintf(":bill:%d", *t.BillID)
	}
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
