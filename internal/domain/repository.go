package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// GoalRepository defines the interface for goal persistence operations
type GoalRepository interface {
	// GetByID retrieves a goal by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*Goal, error)

	// List retrieves all goals
	List(ctx context.Context) ([]*Goal, error)

	// Create creates a new goal
	Create(ctx context.Context, goal *Goal) error

	// Update updates an existing goal
	Update(ctx context.Context, goal *Goal) error

	// Delete deletes a goal and cascades to its allocations
	Delete(ctx context.Context, id uuid.UUID) error
}

// AllocationRepository defines the interface for goal allocation persistence operations
type AllocationRepository interface {
	// ListByGoal retrieves all allocations owned by a goal
	ListByGoal(ctx context.Context, goalID uuid.UUID) ([]*GoalAllocation, error)

	// ListForNonAchievedGoals retrieves allocations belonging to goals that
	// have not been achieved. Achieved goals release their allocations, so
	// they are excluded from conflict and unallocated-balance computations.
	ListForNonAchievedGoals(ctx context.Context) ([]*GoalAllocation, error)

	// Upsert inserts or updates the given allocations
	Upsert(ctx context.Context, allocations []*GoalAllocation) error

	// Delete deletes a single allocation
	Delete(ctx context.Context, id uuid.UUID) error
}

// ValuationRepository defines the interface for reading account valuations.
// Valuations are written by an external ingestion pipeline; this system only
// reads them. Result ordering is not guaranteed - callers sort themselves.
type ValuationRepository interface {
	// GetLatestValuations retrieves the most recent valuation per account
	GetLatestValuations(ctx context.Context, accountIDs []uuid.UUID) ([]AccountValuation, error)

	// GetHistoricalValuations retrieves valuations for an account within
	// [start, end]. A zero start means "from the beginning of history".
	GetHistoricalValuations(ctx context.Context, accountID uuid.UUID, start, end time.Time) ([]AccountValuation, error)
}
