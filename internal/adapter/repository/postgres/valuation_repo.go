package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/trungvm/goalflow-backend/internal/domain"
)

// valuationRepository implements domain.ValuationRepository.
// Valuations are written by the external ingestion pipeline; this repository
// only reads them.
type valuationRepository struct {
	db *DB
}

// NewValuationRepository creates a new account valuation repository
func NewValuationRepository(db *DB) domain.ValuationRepository {
	return &valuationRepository{db: db}
}

// GetLatestValuations retrieves the most recent valuation per account
func (r *valuationRepository) GetLatestValuations(ctx context.Context, accountIDs []uuid.UUID) ([]domain.AccountValuation, error) {
	query := `
		SELECT DISTINCT ON (account_id) account_id, valuation_date, total_value, base_currency, fx_rate_to_base
		FROM account_valuations
		WHERE account_id = ANY($1)
		ORDER BY account_id, valuation_date DESC
	`

	ids := make([]string, len(accountIDs))
	for i, id := range accountIDs {
		ids[i] = id.String()
	}

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to get latest valuations: %w", err)
	}
	defer rows.Close()

	return collectValuations(rows)
}

// GetHistoricalValuations retrieves valuations for an account within
// [start, end]; a zero start means no lower bound
func (r *valuationRepository) GetHistoricalValuations(ctx context.Context, accountID uuid.UUID, start, end time.Time) ([]domain.AccountValuation, error) {
	query := `
		SELECT account_id, valuation_date, total_value, base_currency, fx_rate_to_base
		FROM account_valuations
		WHERE account_id = $1 AND valuation_date <= $2 AND ($3 OR valuation_date >= $4)
	`

	rows, err := r.db.QueryContext(ctx, query, accountID, end, start.IsZero(), start)
	if err != nil {
		return nil, fmt.Errorf("failed to get historical valuations: %w", err)
	}
	defer rows.Close()

	return collectValuations(rows)
}

// collectValuations maps result rows to domain valuations
func collectValuations(rows *sql.Rows) ([]domain.AccountValuation, error) {
	var valuations []domain.AccountValuation
	for rows.Next() {
		var v domain.AccountValuation
		var totalValueStr, fxRateStr string

		err := rows.Scan(
			&v.AccountID,
			&v.ValuationDate,
			&totalValueStr,
			&v.BaseCurrency,
			&fxRateStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan valuation: %w", err)
		}

		totalValue, err := decimal.NewFromString(totalValueStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse total_value: %w", err)
		}
		v.TotalValue = totalValue

		fxRate, err := decimal.NewFromString(fxRateStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse fx_rate_to_base: %w", err)
		}
		v.FxRateToBase = fxRate

		valuations = append(valuations, v)
	}
	return valuations, rows.Err()
}
