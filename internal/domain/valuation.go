package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountValuation represents a point-in-time snapshot of an account's total
// value in the base currency. Valuations form a sparse per-account time
// series (not necessarily daily) and are immutable once recorded; they are
// produced by an external valuation pipeline.
type AccountValuation struct {
	AccountID     uuid.UUID
	ValuationDate time.Time
	TotalValue    decimal.Decimal
	BaseCurrency  string
	FxRateToBase  decimal.Decimal
}
