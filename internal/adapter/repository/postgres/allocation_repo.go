package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/trungvm/goalflow-backend/internal/domain"
)

// allocationRepository implements domain.AllocationRepository
type allocationRepository struct {
	db *DB
}

// NewAllocationRepository creates a new goal allocation repository
func NewAllocationRepository(db *DB) domain.AllocationRepository {
	return &allocationRepository{db: db}
}

// Legacy rows may carry allocation_amount/percent_allocation instead of the
// canonical columns; COALESCE normalizes them at the boundary so the rest of
// the system sees one shape.
const allocationColumns = `
	id, goal_id, account_id,
	COALESCE(initial_contribution, allocation_amount, 0),
	COALESCE(allocated_percent, percent_allocation, 0),
	start_date, end_date, allocation_date`

// ListByGoal retrieves all allocations owned by a goal
func (r *allocationRepository) ListByGoal(ctx context.Context, goalID uuid.UUID) ([]*domain.GoalAllocation, error) {
	query := `SELECT` + allocationColumns + ` FROM goal_allocations WHERE goal_id = $1 ORDER BY start_date NULLS LAST`

	rows, err := r.db.QueryContext(ctx, query, goalID)
	if err != nil {
		return nil, fmt.Errorf("failed to list allocations: %w", err)
	}
	defer rows.Close()

	return collectAllocations(rows)
}

// ListForNonAchievedGoals retrieves allocations whose owning goal has not
// been achieved
func (r *allocationRepository) ListForNonAchievedGoals(ctx context.Context) ([]*domain.GoalAllocation, error) {
	query := `
		SELECT` + allocationColumns + `
		FROM goal_allocations a
		WHERE EXISTS (
			SELECT 1 FROM goals g WHERE g.id = a.goal_id AND NOT g.is_achieved
		)
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list allocations for non-achieved goals: %w", err)
	}
	defer rows.Close()

	return collectAllocations(rows)
}

// Upsert inserts or updates the given allocations
func (r *allocationRepository) Upsert(ctx context.Context, allocations []*domain.GoalAllocation) error {
	query := `
		INSERT INTO goal_allocations (id, goal_id, account_id, initial_contribution, allocated_percent, start_date, end_date, allocation_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			goal_id = EXCLUDED.goal_id,
			account_id = EXCLUDED.account_id,
			initial_contribution = EXCLUDED.initial_contribution,
			allocated_percent = EXCLUDED.allocated_percent,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			allocation_date = EXCLUDED.allocation_date
	`

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, alloc := range allocations {
		_, err := tx.ExecContext(ctx, query,
			alloc.ID,
			alloc.GoalID,
			alloc.AccountID,
			alloc.InitialContribution.String(),
			alloc.AllocatedPercent.String(),
			alloc.StartDate,
			alloc.EndDate,
			alloc.AllocationDate,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert allocation %s: %w", alloc.ID, err)
		}
	}

	return tx.Commit()
}

// Delete deletes a single allocation
func (r *allocationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM goal_allocations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete allocation: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("allocation %s not found", id)
	}
	return nil
}

// collectAllocations maps result rows to domain allocations
func collectAllocations(rows *sql.Rows) ([]*domain.GoalAllocation, error) {
	var allocations []*domain.GoalAllocation
	for rows.Next() {
		var alloc domain.GoalAllocation
		var contributionStr, percentStr string
		var startDate, endDate, allocationDate sql.NullTime

		err := rows.Scan(
			&alloc.ID,
			&alloc.GoalID,
			&alloc.AccountID,
			&contributionStr,
			&percentStr,
			&startDate,
			&endDate,
			&allocationDate,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan allocation: %w", err)
		}

		contribution, err := decimal.NewFromString(contributionStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse initial_contribution: %w", err)
		}
		alloc.InitialContribution = contribution

		percent, err := decimal.NewFromString(percentStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse allocated_percent: %w", err)
		}
		alloc.AllocatedPercent = percent

		if startDate.Valid {
			alloc.StartDate = &startDate.Time
		}
		if endDate.Valid {
			alloc.EndDate = &endDate.Time
		}
		if allocationDate.Valid {
			alloc.AllocationDate = &allocationDate.Time
		}

		allocations = append(allocations, &alloc)
	}
	return allocations, rows.Err()
}
