package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Goal represents a savings goal entity in the domain layer.
// A goal is funded by percentage allocations of one or more accounts and
// carries the parameters of its idealized growth curve (target amount, target
// return rate, monthly investment, start/due dates).
type Goal struct {
	ID                uuid.UUID
	Title             string
	Description       string
	TargetAmount      decimal.Decimal
	TargetReturnRate  float64 // Annualized percentage, 0-100
	StartDate         *time.Time
	DueDate           *time.Time
	MonthlyInvestment decimal.Decimal
	IsAchieved        bool // Achieved goals release their allocations
}

// Validate ensures the goal adheres to domain rules
// Returns an error if validation fails
func (g *Goal) Validate() error {
	if g.Title == "" {
		return errors.New("goal title cannot be empty")
	}

	if g.TargetAmount.LessThanOrEqual(decimal.Zero) {
		return errors.New("goal target amount must be positive")
	}

	// Negative return rates are unsupported; rates are annual percentages
	if g.TargetReturnRate < 0 || g.TargetReturnRate > 100 {
		return errors.New("goal target return rate must be between 0 and 100")
	}

	if g.MonthlyInvestment.IsNegative() {
		return errors.New("goal monthly investment cannot be negative")
	}

	if g.StartDate != nil && g.DueDate != nil && !g.StartDate.Before(*g.DueDate) {
		return errors.New("goal start date must be before due date")
	}

	return nil
}
