// Package series builds chart-ready time series for goals: one
// {date, actual, projected} point per bucket at a selected granularity,
// merging historical valuations with the forward projection.
package series

import (
	"context"
	"errors"
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

// Granularity selects the bucket size of a goal chart series
type Granularity string

const (
	GranularityWeeks  Granularity = "weeks"
	GranularityMonths Granularity = "months"
	GranularityYears  Granularity = "years"
	GranularityAll    Granularity = "all"
)

// ErrGoalNotScheduled is returned when a chart is requested for a goal that
// has no start or due date; without both there is no range to bucket.
var ErrGoalNotScheduled = errors.New("goal must have a start date and a due date")

// ParseGranularity validates a granularity string from the query layer
func ParseGranularity(value string) (Granularity, error) {
	switch Granularity(value) {
	case GranularityWeeks, GranularityMonths, GranularityYears, GranularityAll:
		return Granularity(value), nil
	}
	return "", fmt.Errorf("invalid granularity %q", value)
}

// Service builds valuation history series for goal charts
type Service struct {
	GoalRepo       domain.GoalRepository
	AllocationRepo domain.AllocationRepository
	ValuationRepo  domain.ValuationRepository

	log zerolog.Logger
}

// NewService creates a new series Service instance
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
		log:            log.With().Str("service", "series").Logger(),
	}
}

// BuildGoalSeries produces the ordered chart series for a goal.
//
// The date range is the full goal lifetime for GranularityAll, otherwise a
// fixed window around today clamped to [start, due]. Each bucket is
// represented by its calendar-correct period end; the range end is always
// emitted as the final point, which over the full lifetime makes the last
// projected value equal the forward projection at the due date exactly (the
// same figure any summary view reports as projected future value).
func (s *Service) BuildGoalSeries(ctx context.Context, goalID uuid.UUID, granularity Granularity, today time.Time) ([]domain.ChartDataPoint, error) {
	goal, err := s.GoalRepo.GetByID(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if goal.StartDate == nil || goal.DueDate == nil {
		return nil, ErrGoalNotScheduled
	}

	allocations, err := s.AllocationRepo.ListByGoal(ctx, goalID)
	if err != nil {
		return nil, fmt.Errorf("failed to list allocations for goal %s: %w", goalID, err)
	}

	hist, err := attribution.FetchHistory(ctx, s.ValuationRepo, accountIDs(allocations), datemath.DateOnly(today))
	if err != nil {
		return nil, err
	}

	return s.build(goal, allocations, hist, granularity, datemath.DateOnly(today)), nil
}

func (s *Service) build(goal *domain.Goal, allocations []*domain.GoalAllocation, hist *attribution.History, granularity Granularity, today time.Time) []domain.ChartDataPoint {
	start := datemath.DateOnly(*goal.StartDate)
	due := datemath.DateOnly(*goal.DueDate)
	rangeStart, rangeEnd := displayRange(granularity, start, due, today)

	bucketDates := bucketEnds(granularity, rangeStart, rangeEnd)
	points := make([]domain.ChartDataPoint, 0, len(bucketDates))

	previous := rangeStart.AddDate(0, 0, -1)
	for _, date := range bucketDates {
		point := domain.ChartDataPoint{
			Date:      date,
			DateLabel: datemath.Format(date),
		}

		// Projected curve: idealized forward value of the contribution
		// stream, computed for future buckets too.
		if !date.Before(start) {
			projected := decimal.NewFromFloat(projection.MonthlyForwardValue(
				goal.MonthlyInvestment.InexactFloat64(), goal.TargetReturnRate, start, date)).Round(2)
			point.Projected = &projected
		}

		// Actual curve: closed buckets use their own end date; the open
		// bucket containing today falls back to the latest known value so
		// the rightmost in-progress point is never empty; future buckets
		// stay unknown. The bucket window is (previous, date], so the
		// fallback applies only when previous is strictly before today.
		switch {
		case !date.After(today):
			actual := s.actualAt(goal, allocations, hist, date)
			point.Actual = &actual
		case previous.Before(today):
			actual := s.actualAt(goal, allocations, hist, today)
			point.Actual = &actual
		}

		points = append(points, point)
		previous = date
	}

	return points
}

// actualAt aggregates attributed allocation values as of a date using the
// nearest-prior-valuation rule. Principal counts for every allocation whose
// baseline has passed, even when the account has no usable valuation yet;
// growth is added where valuation data permits.
func (s *Service) actualAt(goal *domain.Goal, allocations []*domain.GoalAllocation, hist *attribution.History, date time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, alloc := range allocations {
		value, missingBaseline := attribution.AllocationValueAt(goal, alloc, hist, date)
		if missingBaseline {
			s.log.Debug().
				Str("account", alloc.AccountID.String()).
				Str("date", datemath.Format(date)).
				Msg("No valuation at or before baseline, using zero baseline")
		}
		total = total.Add(value)
	}
	return total.Round(2)
}

// displayRange computes the chart's date range: the whole goal lifetime for
// "all", otherwise a look-back/look-ahead window around today clamped so the
// chart never extends before goal start or past the due date.
func displayRange(granularity Granularity, start, due, today time.Time) (time.Time, time.Time) {
	var lo, hi time.Time
	switch granularity {
	case GranularityWeeks:
		lo = today.AddDate(0, 0, -12*7)
		hi = today.AddDate(0, 0, 12*7)
	case GranularityMonths:
		lo = today.AddDate(0, -12, 0)
		hi = today.AddDate(0, 12, 0)
	case GranularityYears:
		lo = today.AddDate(-3, 0, 0)
		hi = today.AddDate(5, 0, 0)
	default: // GranularityAll
		return start, due
	}

	if lo.Before(start) {
		lo = start
	}
	if hi.After(due) {
		hi = due
	}
	if hi.Before(lo) {
		hi = lo
	}
	return lo, hi
}

// bucketEnds generates the bucket representative dates: one calendar-correct
// period end per bucket, ending with rangeEnd itself when the last full
// period boundary falls short of it.
func bucketEnds(granularity Granularity, rangeStart, rangeEnd time.Time) []time.Time {
	var dates []time.Time

	date := periodEnd(granularity, rangeStart)
	for !date.After(rangeEnd) {
		dates = append(dates, date)
		date = periodEnd(granularity, date.AddDate(0, 0, 1))
	}

	if len(dates) == 0 || dates[len(dates)-1].Before(rangeEnd) {
		dates = append(dates, rangeEnd)
	}
	return dates
}

// periodEnd returns the end of the period containing the given date:
// end of ISO week (Sunday), last day of month, or December 31. Month and
// year ends are computed from the first day of the following period, which
// keeps leap years and variable month lengths correct.
func periodEnd(granularity Granularity, date time.Time) time.Time {
	date = datemath.DateOnly(date)
	switch granularity {
	case GranularityWeeks:
		offset := (7 - int(date.Weekday())) % 7 // days until Sunday
		return date.AddDate(0, 0, offset)
	case GranularityMonths:
		firstOfNext := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
		return firstOfNext.AddDate(0, 0, -1)
	default: // GranularityYears, GranularityAll
		return time.Date(date.Year(), 12, 31, 0, 0, 0, 0, time.UTC)
	}
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
