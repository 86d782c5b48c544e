// Package progress produces per-goal progress snapshots: attributed current
// value across the goal's allocations versus the idealized projection of its
// contribution stream, and the resulting track status.
package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/trungvm/goalflow-backend/internal/domain"
	"github.com/trungvm/goalflow-backend/internal/usecase/attribution"
	"github.com/trungvm/goalflow-backend/internal/usecase/datemath"
	"github.com/trungvm/goalflow-backend/internal/usecase/projection"
)

// Service calculates goal progress snapshots
type Service struct {
	GoalRepo       domain.GoalRepository
	AllocationRepo domain.AllocationRepository
	ValuationRepo  domain.ValuationRepository

	log zerolog.Logger
}

// NewService creates a new progress Service instance
func NewService(
	goalRepo domain.GoalRepository,
	allocationRepo domain.AllocationRepository,
	valuationRepo domain.ValuationRepository,
	log zerolog.Logger,
) *Service {
	return &Service{
		GoalRepo:       goalRepo,
		AllocationRepo: allocationRepo,
		ValuationRepo:  valuationRepo,
		log:            log.With().Str("service", "progress").Logger(),
	}
}

// GetGoalProgress computes the progress snapshot for one goal as of the given
// date. The snapshot is derived fresh from the latest allocations and
// valuations on every call; nothing is cached or persisted.
func (s *Service) GetGoalProgress(ctx context.Context, goalID uuid.UUID, asOf time.Time) (*domain.GoalProgress, error) {
	goal, err := s.GoalRepo.GetByID(ctx, goalID)
	if err != nil {
		return nil, err
	}

	allocations, err := s.AllocationRepo.ListByGoal(ctx, goalID)
	if err != nil {
		return nil, fmt.Errorf("failed to list allocations for goal %s: %w", goalID, err)
	}

	hist, err := attribution.FetchHistory(ctx, s.ValuationRepo, accountIDs(allocations), asOf)
	if err != nil {
		return nil, err
	}

	return s.snapshot(goal, allocations, hist, asOf), nil
}

// ListGoalProgress computes progress snapshots for every goal
func (s *Service) ListGoalProgress(ctx context.Context, asOf time.Time) ([]*domain.GoalProgress, error) {
	goals, err := s.GoalRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	snapshots := make([]*domain.GoalProgress, 0, len(goals))
	for _, goal := range goals {
		allocations, err := s.AllocationRepo.ListByGoal(ctx, goal.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list allocations for goal %s: %w", goal.ID, err)
		}

		hist, err := attribution.FetchHistory(ctx, s.ValuationRepo, accountIDs(allocations), asOf)
		if err != nil {
			return nil, err
		}

		snapshots = append(snapshots, s.snapshot(goal, allocations, hist, asOf))
	}

	return snapshots, nil
}

// snapshot assembles one GoalProgress from pre-fetched inputs.
// Numeric edge cases (goal not started, zero investment, missing valuations)
// resolve to defined values here; data sparsity never errors.
func (s *Service) snapshot(goal *domain.Goal, allocations []*domain.GoalAllocation, hist *attribution.History, asOf time.Time) *domain.GoalProgress {
	asOfDay := datemath.DateOnly(asOf)

	currentValue := decimal.Zero
	startValue := decimal.Zero
	var details []domain.AllocationDetail

	for _, alloc := range allocations {
		if !alloc.ActiveOn(asOfDay) {
			continue
		}

		breakdown := s.contributedValue(goal, alloc, hist, asOfDay)
		startValue = startValue.Add(alloc.InitialContribution)
		currentValue = currentValue.Add(breakdown.Value)

		details = append(details, domain.AllocationDetail{
			AllocationID:        alloc.ID,
			AccountID:           alloc.AccountID,
			AllocatedPercent:    alloc.AllocatedPercent,
			InitialContribution: alloc.InitialContribution,
			BaselineValue:       breakdown.BaselineValue,
			CurrentValue:        breakdown.CurrentValue,
			AccountGrowth:       breakdown.AccountGrowth,
			AllocatedGrowth:     breakdown.AllocatedGrowth,
			ContributedValue:    breakdown.Value,
		})
	}

	// Projection of the recurring contribution stream, principal excluded.
	// A goal without a start date has no curve to project against and is
	// trivially on track; that boundary is deliberate, not a fallthrough.
	projected := decimal.Zero
	projectedFuture := decimal.Zero
	if goal.StartDate != nil {
		monthly := goal.MonthlyInvestment.InexactFloat64()
		projected = decimal.NewFromFloat(
			projection.MonthlyForwardValue(monthly, goal.TargetReturnRate, *goal.StartDate, asOfDay))

		if goal.DueDate != nil {
			projectedFuture = decimal.NewFromFloat(
				projection.MonthlyForwardValue(monthly, goal.TargetReturnRate, *goal.StartDate, *goal.DueDate))
		}
	}

	pct := 0.0
	if goal.TargetAmount.IsPositive() {
		ratio, _ := currentValue.Div(goal.TargetAmount).Float64()
		if ratio > 1 {
			ratio = 1
		}
		pct = ratio * 100
	}

	isOnTrack := currentValue.GreaterThanOrEqual(projected)

	return &domain.GoalProgress{
		GoalID:               goal.ID,
		QueryDate:            asOfDay,
		CurrentValue:         currentValue,
		TargetAmount:         goal.TargetAmount,
		Progress:             pct,
		StartValue:           startValue,
		ProjectedValue:       projected,
		ProjectedFutureValue: projectedFuture,
		IsOnTrack:            isOnTrack,
		Status:               EvaluateStatus(goal, asOfDay, isOnTrack),
		AllocationDetails:    details,
	}
}

// contributedValue attributes account growth to one allocation, logging the
// zero-baseline fallback as informational
func (s *Service) contributedValue(goal *domain.Goal, alloc *domain.GoalAllocation, hist *attribution.History, asOf time.Time) attribution.Breakdown {
	breakdown := attribution.AllocationBreakdownAt(goal, alloc, hist, asOf)
	if breakdown.MissingBaseline {
		s.log.Debug().
			Str("account", alloc.AccountID.String()).
			Str("allocation", alloc.ID.String()).
			Msg("No valuation at or before baseline, using zero baseline")
	}
	return breakdown
}

// EvaluateStatus applies the single on-track rule: actual >= projected at the
// same instant. Goals whose start date is still in the future are reported as
// scheduled instead, pre-empting the raw comparison (which would read
// on-track at 0 >= 0 and mislead).
func EvaluateStatus(goal *domain.Goal, asOf time.Time, isOnTrack bool) domain.TrackStatus {
	if goal.StartDate != nil && datemath.DateOnly(asOf).Before(datemath.DateOnly(*goal.StartDate)) {
		return domain.StatusScheduled
	}
	if isOnTrack {
		return domain.StatusOnTrack
	}
	return domain.StatusOffTrack
}

// accountIDs collects the distinct account IDs referenced by the allocations
func accountIDs(allocations []*domain.GoalAllocation) []uuid.UUID {
	seen := make(map[uuid.UUID]bool)
	ids := make([]uuid.UUID, 0, len(allocations))
	for _, alloc := range allocations {
		if !seen[alloc.AccountID] {
			seen[alloc.AccountID] = true
			ids = append(ids, alloc.AccountID)
		}
	}
	return ids
}
