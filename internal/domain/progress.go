package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TrackStatus represents the qualitative on-track verdict for a goal
type TrackStatus string

const (
	// StatusScheduled applies to goals whose start date is still in the
	// future. It pre-empts the raw current-vs-projected comparison, which
	// would otherwise trivially read on-track at 0 >= 0.
	StatusScheduled TrackStatus = "SCHEDULED"
	StatusOnTrack   TrackStatus = "ON_TRACK"
	StatusOffTrack  TrackStatus = "OFF_TRACK"
)

// GoalProgress represents a goal's progress snapshot at a query date.
// Derived on every query, never persisted.
type GoalProgress struct {
	GoalID       uuid.UUID
	QueryDate    time.Time
	CurrentValue decimal.Decimal // Attributed value across allocations, principal included
	TargetAmount decimal.Decimal
	Progress     float64         // Percent of target, capped at 100
	StartValue   decimal.Decimal // Sum of initial contributions
	// ProjectedValue is the idealized value of the recurring contribution
	// stream at the query date. Principal is excluded: a large upfront
	// allocation should not inflate the bar the ongoing contributions must
	// clear, nor be required to regrow.
	ProjectedValue decimal.Decimal
	// ProjectedFutureValue is the projection evaluated at the due date
	ProjectedFutureValue decimal.Decimal
	IsOnTrack            bool
	Status               TrackStatus
	// AllocationDetails breaks CurrentValue down per allocation
	AllocationDetails []AllocationDetail
}

// AllocationDetail describes how one allocation contributes to a goal's
// progress snapshot: the account values the attribution was measured
// against and the resulting growth share.
type AllocationDetail struct {
	AllocationID        uuid.UUID
	AccountID           uuid.UUID
	AllocatedPercent    decimal.Decimal
	InitialContribution decimal.Decimal
	BaselineValue       decimal.Decimal // account value at the baseline date
	CurrentValue        decimal.Decimal // account value at the query date
	AccountGrowth       decimal.Decimal
	AllocatedGrowth     decimal.Decimal
	ContributedValue    decimal.Decimal // principal + allocated growth
}

// ChartDataPoint represents a single point in a goal's chart time series
type ChartDataPoint struct {
	Date      time.Time
	DateLabel string
	Projected *decimal.Decimal // nil before goal start
	Actual    *decimal.Decimal // nil when unknown (future buckets)
}
