package model

import (
	"time"

	"github.com/Veraticus/paycal/internal/recurrence"
)

// PaydaySettings is the single persisted payday configuration.
type PaydaySettings struct {
	UpdatedAt time.Time
	recurrence.PaydayConfig
}
