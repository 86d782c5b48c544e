package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/trungvm/goalflow-backend/internal/domain"
)

// goalRepository implements domain.GoalRepository
type goalRepository struct {
	db *DB
}

// NewGoalRepository creates a new goal repository
func NewGoalRepository(db *DB) domain.GoalRepository {
	return &goalRepository{db: db}
}

const goalColumns = `id, title, description, target_amount, target_return_rate, start_date, due_date, monthly_investment, is_achieved`

// GetByID retrieves a goal by its ID
func (r *goalRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE id = $1`

	goal, err := scanGoal(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("goal %s not found", id)
		}
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}
	return goal, nil
}

// List retrieves all goals
func (r *goalRepository) List(ctx context.Context) ([]*domain.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals ORDER BY start_date NULLS LAST, title`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer rows.Close()

	var goals []*domain.Goal
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, goal)
	}
	return goals, rows.Err()
}

// Create creates a new goal
func (r *goalRepository) Create(ctx context.Context, goal *domain.Goal) error {
	query := `
		INSERT INTO goals (id, title, description, target_amount, target_return_rate, start_date, due_date, monthly_investment, is_achieved)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		goal.ID,
		goal.Title,
		goal.Description,
		goal.TargetAmount.String(),
		goal.TargetReturnRate,
		goal.StartDate,
		goal.DueDate,
		goal.MonthlyInvestment.String(),
		goal.IsAchieved,
	)
	if err != nil {
		return fmt.Errorf("failed to insert goal: %w", err)
	}
	return nil
}

// Update updates an existing goal
func (r *goalRepository) Update(ctx context.Context, goal *domain.Goal) error {
	query := `
		UPDATE goals
		SET title = $2, description = $3, target_amount = $4, target_return_rate = $5,
		    start_date = $6, due_date = $7, monthly_investment = $8, is_achieved = $9
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		goal.ID,
		goal.Title,
		goal.Description,
		goal.TargetAmount.String(),
		goal.TargetReturnRate,
		goal.StartDate,
		goal.DueDate,
		goal.MonthlyInvestment.String(),
		goal.IsAchieved,
	)
	if err != nil {
		return fmt.Errorf("failed to update goal: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("goal %s not found", goal.ID)
	}
	return nil
}

// Delete deletes a goal; the goal_allocations foreign key cascades
func (r *goalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM goals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("goal %s not found", id)
	}
	return nil
}

// rowScanner abstracts sql.Row and sql.Rows for shared scanning
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanGoal maps one goals row to the domain type
func scanGoal(row rowScanner) (*domain.Goal, error) {
	var goal domain.Goal
	var targetAmountStr, monthlyInvestmentStr string
	var startDate, dueDate sql.NullTime

	err := row.Scan(
		&goal.ID,
		&goal.Title,
		&goal.Description,
		&targetAmountStr,
		&goal.TargetReturnRate,
		&startDate,
		&dueDate,
		&monthlyInvestmentStr,
		&goal.IsAchieved,
	)
	if err != nil {
		return nil, err
	}

	targetAmount, err := decimal.NewFromString(targetAmountStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse target_amount: %w", err)
	}
	goal.TargetAmount = targetAmount

	monthlyInvestment, err := decimal.NewFromString(monthlyInvestmentStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse monthly_investment: %w", err)
	}
	goal.MonthlyInvestment = monthlyInvestment

	if startDate.Valid {
		goal.StartDate = &startDate.Time
	}
	if dueDate.Valid {
		goal.DueDate = &dueDate.Time
	}
	return &goal, nil
}
