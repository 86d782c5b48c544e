// Package projection models the growth of a recurring contribution stream
// under daily compound interest, and the inverse (the contribution rate
// required to hit a target by a due date).
//
// The projected curve deliberately excludes initial/principal contributions:
// it models only the idealized growth of the recurring stream. Principal is
// tracked separately as a reference value and added to the actual value,
// never to the projected value, so a large upfront allocation neither
// inflates the bar the ongoing contributions must clear nor has to regrow.
package projection

import (
	"errors"
	"math"
	"time"

	"github.com/trungvm/goalflow-backend/internal/usecase/datemath"
)

// ErrInvalidRange is returned when a back-solve is requested for a due date
// that is not strictly after the start date.
var ErrInvalidRange = errors.New("due date must be after start date")

const (
	daysPerYear = 365.0
	// daysPerMonth converts a monthly contribution to an approximate daily
	// one. The fixed 30 is a known simplification carried over from earlier
	// behavior; switching to calendar-accurate month lengths would change
	// every projected value.
	daysPerMonth = 30.0
)

// DailyRate converts an annualized percentage rate to a daily rate
func DailyRate(annualRatePercent float64) float64 {
	return annualRatePercent / 100.0 / daysPerYear
}

// DailyContribution converts a monthly contribution amount to the
// approximate daily amount used by the forward projection
func DailyContribution(monthlyContribution float64) float64 {
	return monthlyContribution / daysPerMonth
}

// ForwardValue computes the idealized future value at asOf of a stream of
// daily contributions compounding daily since start.
//
// Returns 0 before the start date and on the start date itself. The
// zero-rate branch is an explicit conditional: the annuity formula is 0/0 at
// rate zero and the linear limit is taken by hand, never left to float
// arithmetic. The result is always >= 0 and never NaN or Inf for
// non-negative inputs.
func ForwardValue(dailyContribution, annualRatePercent float64, start, asOf time.Time) float64 {
	startDay := datemath.DateOnly(start)
	asOfDay := datemath.DateOnly(asOf)

	if asOfDay.Before(startDay) {
		return 0
	}

	n := datemath.DaysBetween(startDay, asOfDay)
	if n == 0 || dailyContribution <= 0 {
		return 0
	}

	rate := DailyRate(annualRatePercent)
	if rate == 0 {
		return dailyContribution * float64(n)
	}

	return dailyContribution * (math.Pow(1+rate, float64(n)) - 1) / rate
}

// MonthlyForwardValue is the forward projection for a monthly contribution
// amount, applying the fixed 30-day conversion
func MonthlyForwardValue(monthlyContribution, annualRatePercent float64, start, asOf time.Time) float64 {
	return ForwardValue(DailyContribution(monthlyContribution), annualRatePercent, start, asOf)
}

// RequiredDailyContribution back-solves the daily contribution needed for
// the stream to reach targetAmount exactly at the due date. Forward-projecting
// the result to the due date reproduces the target within floating-point
// tolerance.
func RequiredDailyContribution(targetAmount, annualRatePercent float64, start, due time.Time) (float64, error) {
	totalDays := datemath.DaysBetween(start, due)
	if !datemath.DateOnly(start).Before(datemath.DateOnly(due)) || totalDays <= 0 {
		return 0, ErrInvalidRange
	}

	rate := DailyRate(annualRatePercent)
	if rate == 0 {
		return targetAmount / float64(totalDays), nil
	}

	annuityFactor := (math.Pow(1+rate, float64(totalDays)) - 1) / rate
	return targetAmount / annuityFactor, nil
}

// LegacyMonthlyValue computes the projection under the old monthly
// compounding scheme (fractional months counted with a fixed 30-day
// remainder).
//
// Deprecated: kept only for backward-compatible displays that were built
// against the monthly figures. The daily ForwardValue is the canonical
// projection.
func LegacyMonthlyValue(monthlyContribution, annualRatePercent float64, start, asOf time.Time) float64 {
	startDay := datemath.DateOnly(start)
	asOfDay := datemath.DateOnly(asOf)

	if asOfDay.Before(startDay) || monthlyContribution <= 0 {
		return 0
	}

	months := datemath.MonthsBetween(startDay, asOfDay)
	if months == 0 {
		return 0
	}

	monthlyRate := annualRatePercent / 100.0 / 12.0
	if monthlyRate == 0 {
		return monthlyContribution * months
	}

	return monthlyContribution * (math.Pow(1+monthlyRate, months) - 1) / monthlyRate
}
