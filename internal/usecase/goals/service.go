// Package goals orchestrates goal and allocation editing workflows:
// CRUD pass-through with validation, allocation window backfill from the
// owning goal, and write-time allocation conflict checks.
package goals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/trungvm/goalflow-backend/internal/domain"
	"github.com/trungvm/goalflow-backend/internal/usecase/attribution"
	"github.com/trungvm/goalflow-backend/internal/usecase/datemath"
)

// ErrAllocationConflict is returned when an allocation would push an
// account's total allocated percent above 100 for some overlapping period
var ErrAllocationConflict = errors.New("total allocated percent exceeds 100 on account during this period")

// Service handles goal and allocation editing operations
type Service struct {
	GoalRepo       domain.GoalRepository
	AllocationRepo domain.AllocationRepository
	ValuationRepo  domain.ValuationRepository
}

// NewService creates a new goals Service instance
func NewService(
	goalRepo domain.GoalRepository,
	allocationRepo domain.AllocationRepository,
	valuationRepo domain.ValuationRepository,
) *Service {
	return &Service{
		GoalRepo:       goalRepo,
		AllocationRepo: allocationRepo,
		ValuationRepo:  valuationRepo,
	}
}

// ListGoals retrieves all goals
func (s *Service) ListGoals(ctx context.Context) ([]*domain.Goal, error) {
	return s.GoalRepo.List(ctx)
}

// GetGoal retrieves one goal by ID
func (s *Service) GetGoal(ctx context.Context, id uuid.UUID) (*domain.Goal, error) {
	return s.GoalRepo.GetByID(ctx, id)
}

// CreateGoal validates and persists a new goal
func (s *Service) CreateGoal(ctx context.Context, goal *domain.Goal) (*domain.Goal, error) {
	if goal.ID == uuid.Nil {
		goal.ID = uuid.New()
	}
	if err := goal.Validate(); err != nil {
		return nil, err
	}

	if err := s.GoalRepo.Create(ctx, goal); err != nil {
		return nil, err
	}
	return goal, nil
}

// UpdateGoal validates and persists changes to an existing goal
func (s *Service) UpdateGoal(ctx context.Context, goal *domain.Goal) (*domain.Goal, error) {
	if err := goal.Validate(); err != nil {
		return nil, err
	}

	if err := s.GoalRepo.Update(ctx, goal); err != nil {
		return nil, err
	}
	return goal, nil
}

// DeleteGoal deletes a goal; its allocations cascade
func (s *Service) DeleteGoal(ctx context.Context, id uuid.UUID) error {
	return s.GoalRepo.Delete(ctx, id)
}

// UpsertAllocations validates and persists allocations.
// Logic:
//  1. Backfill missing start/end dates from the owning goal's start/due dates
//  2. Validate each allocation structurally
//  3. Check each allocation's percent against overlapping allocations of
//     non-achieved goals on the same account (sum must not exceed 100)
func (s *Service) UpsertAllocations(ctx context.Context, allocations []*domain.GoalAllocation) error {
	goalsByID, err := s.goalMap(ctx)
	if err != nil {
		return err
	}

	for _, alloc := range allocations {
		if alloc.ID == uuid.Nil {
			alloc.ID = uuid.New()
		}

		if goal, ok := goalsByID[alloc.GoalID]; ok {
			if alloc.StartDate == nil {
				alloc.StartDate = goal.StartDate
			}
			if alloc.EndDate == nil {
				alloc.EndDate = goal.DueDate
			}
		}

		if err := alloc.Validate(); err != nil {
			return err
		}

		if err := s.ValidateAllocationConflicts(ctx, alloc); err != nil {
			return err
		}
	}

	return s.AllocationRepo.Upsert(ctx, allocations)
}

// ValidateAllocationConflicts checks that the allocation's percent, stacked
// with every overlapping active allocation of non-achieved goals on the same
// account, does not exceed 100. The allocation itself is excluded from the
// comparison so updates do not conflict with their own stored row.
func (s *Service) ValidateAllocationConflicts(ctx context.Context, candidate *domain.GoalAllocation) error {
	existing, err := s.AllocationRepo.ListForNonAchievedGoals(ctx)
	if err != nil {
		return fmt.Errorf("failed to load allocations for conflict check: %w", err)
	}

	total := candidate.AllocatedPercent
	for _, alloc := range existing {
		if alloc.AccountID != candidate.AccountID || alloc.ID == candidate.ID {
			continue
		}
		if attribution.WindowsOverlap(candidate.StartDate, candidate.EndDate, alloc.StartDate, alloc.EndDate) {
			total = total.Add(alloc.AllocatedPercent)
		}
	}

	if total.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("%w: %s%% on account %s", ErrAllocationConflict, total, candidate.AccountID)
	}
	return nil
}

// GetGoalAllocationsOnDate retrieves the goal's allocations active on a date
func (s *Service) GetGoalAllocationsOnDate(ctx context.Context, goalID uuid.UUID, date time.Time) ([]*domain.GoalAllocation, error) {
	allocations, err := s.AllocationRepo.ListByGoal(ctx, goalID)
	if err != nil {
		return nil, err
	}

	day := datemath.DateOnly(date)
	active := make([]*domain.GoalAllocation, 0, len(allocations))
	for _, alloc := range allocations {
		if alloc.ActiveOn(day) {
			active = append(active, alloc)
		}
	}
	return active, nil
}

// UnallocatedBalance computes how much of an account's value on a date is not
// claimed by allocations of non-achieved goals. Achieved goals have released
// their allocations and do not count against the balance. Never negative.
func (s *Service) UnallocatedBalance(ctx context.Context, accountID uuid.UUID, date time.Time) (decimal.Decimal, error) {
	day := datemath.DateOnly(date)

	hist, err := attribution.FetchHistory(ctx, s.ValuationRepo, []uuid.UUID{accountID}, day)
	if err != nil {
		return decimal.Zero, err
	}

	valuation, ok := hist.LatestOnOrBefore(accountID, day)
	if !ok {
		// No recorded value means nothing to allocate from
		return decimal.Zero, nil
	}

	goalsByID, err := s.goalMap(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	allocations, err := s.AllocationRepo.ListForNonAchievedGoals(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	var contributed []decimal.Decimal
	for _, alloc := range allocations {
		if alloc.AccountID != accountID || !alloc.ActiveOn(day) {
			continue
		}
		value, _ := attribution.AllocationValueAt(goalsByID[alloc.GoalID], alloc, hist, day)
		contributed = append(contributed, value)
	}

	return attribution.UnallocatedBalance(valuation.TotalValue, contributed), nil
}

// LatestAccountValuations retrieves the most recent recorded valuation per
// account, for account-level summary views
func (s *Service) LatestAccountValuations(ctx context.Context, accountIDs []uuid.UUID) ([]domain.AccountValuation, error) {
	if len(accountIDs) == 0 {
		return nil, nil
	}
	return s.ValuationRepo.GetLatestValuations(ctx, accountIDs)
}

// goalMap loads all goals indexed by ID
func (s *Service) goalMap(ctx context.Context) (map[uuid.UUID]*domain.Goal, error) {
	goals, err := s.GoalRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load goals: %w", err)
	}

	byID := make(map[uuid.UUID]*domain.Goal, len(goals))
	for _, goal := range goals {
		byID[goal.ID] = goal
	}
	return byID, nil
}
