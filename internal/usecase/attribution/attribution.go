// Package attribution computes the value of a goal allocation at a point in
// time: the allocation's principal plus its percentage share of the owning
// account's growth since a baseline date.
package attribution

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/trungvm/goalflow-backend/internal/domain"
	"github.com/trungvm/goalflow-backend/internal/usecase/datemath"
)

var oneHundred = decimal.NewFromInt(100)

// ContributedValue returns the value attributable to the allocation at
// queryDate, given the owning account's value at the baseline date and at the
// query date. Before the baseline date the allocation contributes nothing.
//
// The growth share is a percentage of account *growth*, not of absolute
// account value, so the result is principal + growth x percent/100.
func ContributedValue(alloc *domain.GoalAllocation, baselineValue, currentValue decimal.Decimal, baselineDate, queryDate time.Time) decimal.Decimal {
	if datemath.DateOnly(queryDate).Before(datemath.DateOnly(baselineDate)) {
		return decimal.Zero
	}

	accountGrowth := currentValue.Sub(baselineValue)
	allocatedGrowth := accountGrowth.Mul(alloc.AllocatedPercent).Div(oneHundred)

	return alloc.InitialContribution.Add(allocatedGrowth)
}

// ResolveBaselineDate determines the date from which growth attribution for
// the allocation is measured: the allocation's own start date, then the
// legacy allocation date, then the owning goal's start date. Returns false
// when none of the three is set.
func ResolveBaselineDate(alloc *domain.GoalAllocation, goal *domain.Goal) (time.Time, bool) {
	switch {
	case alloc.StartDate != nil:
		return datemath.DateOnly(*alloc.StartDate), true
	case alloc.AllocationDate != nil:
		return datemath.DateOnly(*alloc.AllocationDate), true
	case goal != nil && goal.StartDate != nil:
		return datemath.DateOnly(*goal.StartDate), true
	}
	return time.Time{}, false
}

// Breakdown decomposes one allocation's attributed value at a query date:
// the account values the attribution was measured against, the growth share,
// and the resulting value. Value is always principal + AllocatedGrowth except
// before the baseline, where everything is zero.
type Breakdown struct {
	Value           decimal.Decimal
	BaselineValue   decimal.Decimal // account value at the baseline date
	CurrentValue    decimal.Decimal // account value at the query date
	AccountGrowth   decimal.Decimal
	AllocatedGrowth decimal.Decimal
	MissingBaseline bool
}

// AllocationBreakdownAt computes one allocation's attributed value at a query
// date against the supplied valuation history, with the full decomposition.
// Missing data resolves to defined values rather than errors:
//
//   - no resolvable baseline date: principal only (growth unmeasurable)
//   - query date before the baseline: zero
//   - no valuation history for the account: principal only
//   - no valuation at or before the baseline: zero baseline (everything
//     after counts as growth); reported via MissingBaseline so callers can
//     log it as informational
func AllocationBreakdownAt(goal *domain.Goal, alloc *domain.GoalAllocation, hist *History, queryDate time.Time) Breakdown {
	baselineDate, ok := ResolveBaselineDate(alloc, goal)
	if !ok {
		return Breakdown{Value: alloc.InitialContribution}
	}

	if datemath.DateOnly(queryDate).Before(baselineDate) {
		return Breakdown{}
	}

	current, ok := hist.LatestOnOrBefore(alloc.AccountID, queryDate)
	if !ok {
		return Breakdown{Value: alloc.InitialContribution}
	}

	baselineValue, found := hist.BaselineValue(alloc.AccountID, baselineDate)
	growth := current.TotalValue.Sub(baselineValue)
	allocatedGrowth := growth.Mul(alloc.AllocatedPercent).Div(oneHundred)

	return Breakdown{
		Value:           alloc.InitialContribution.Add(allocatedGrowth),
		BaselineValue:   baselineValue,
		CurrentValue:    current.TotalValue,
		AccountGrowth:   growth,
		AllocatedGrowth: allocatedGrowth,
		MissingBaseline: !found,
	}
}

// AllocationValueAt is AllocationBreakdownAt reduced to the attributed value
func AllocationValueAt(goal *domain.Goal, alloc *domain.GoalAllocation, hist *History, queryDate time.Time) (value decimal.Decimal, missingBaseline bool) {
	b := AllocationBreakdownAt(goal, alloc, hist, queryDate)
	return b.Value, b.MissingBaseline
}

// UnallocatedBalance returns how much of an account's value is not claimed by
// the supplied contributed values of other goals. Clamped at zero: allocation
// over-commitment is enforced at write time, but a stale or violating state
// must never surface as a negative remaining balance.
func UnallocatedBalance(accountValue decimal.Decimal, otherContributed []decimal.Decimal) decimal.Decimal {
	remaining := accountValue
	for _, contributed := range otherContributed {
		remaining = remaining.Sub(contributed)
	}

	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// WindowsOverlap reports whether two allocation time windows overlap.
// Inequalities are strict: adjacent or touching ranges do not overlap.
// A missing date on either side conservatively reports no overlap.
func WindowsOverlap(startA, endA, startB, endB *time.Time) bool {
	if startA == nil || endA == nil || startB == nil || endB == nil {
		return false
	}
	return startA.Before(*endB) && endA.After(*startB)
}
