package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GoalAllocation represents a goal's claim against one account: a principal
// amount locked in at allocation start plus a percentage share of the
// account's growth over the allocation's active window.
type GoalAllocation struct {
	ID                  uuid.UUID
	GoalID              uuid.UUID
	AccountID           uuid.UUID
	InitialContribution decimal.Decimal
	AllocatedPercent    decimal.Decimal // 0-100, share of the account's growth (not absolute value)
	StartDate           *time.Time
	EndDate             *time.Time
	AllocationDate      *time.Time // Legacy single-date field, fallback baseline when no window is set
}

// Validate ensures the allocation adheres to domain rules
// Returns an error if validation fails
func (a *GoalAllocation) Validate() error {
	if a.GoalID == uuid.Nil {
		return errors.New("allocation must reference a goal")
	}

	if a.AccountID == uuid.Nil {
		return errors.New("allocation must reference an account")
	}

	if a.InitialContribution.IsNegative() {
		return errors.New("allocation initial contribution cannot be negative")
	}

	if a.AllocatedPercent.IsNegative() || a.AllocatedPercent.GreaterThan(decimal.NewFromInt(100)) {
		return errors.New("allocation percent must be between 0 and 100")
	}

	if a.StartDate != nil && a.EndDate != nil && !a.StartDate.Before(*a.EndDate) {
		return errors.New("allocation start date must be before end date")
	}

	return nil
}

// ActiveOn reports whether the allocation is active on the given date.
// When a start/end window is set the date must fall inside it (inclusive);
// otherwise the legacy AllocationDate acts as an "active from" marker.
// An allocation with no dates at all is never active.
func (a *GoalAllocation) ActiveOn(date time.Time) bool {
	if a.StartDate != nil && a.EndDate != nil {
		return !date.Before(*a.StartDate) && !date.After(*a.EndDate)
	}
	if a.AllocationDate != nil {
		return !date.Before(*a.AllocationDate)
	}
	return false
}

// NormalizeAllocationFields maps the legacy wire shape
// (allocationAmount/percentAllocation) onto the canonical
// InitialContribution/AllocatedPercent fields. The canonical fields win when
// both are populated, so downstream code never branches on which legacy field
// was set.
func NormalizeAllocationFields(a *GoalAllocation, legacyAmount, legacyPercent *decimal.Decimal) {
	if a.InitialContribution.IsZero() && legacyAmount != nil {
		a.InitialContribution = *legacyAmount
	}
	if a.AllocatedPercent.IsZero() && legacyPercent != nil {
		a.AllocatedPercent = *legacyPercent
	}
}
