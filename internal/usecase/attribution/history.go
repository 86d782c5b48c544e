package attribution

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/trungvm/goalflow-backend/internal/domain"
	"github.com/trungvm/goalflow-backend/internal/usecase/datemath"
)

// History is an explicit read-through lookup over account valuation series.
// It is built once from fetched valuations and passed into the computation
// functions, keeping them pure and testable. Valuation sources do not
// guarantee ordering, so History sorts each account's series itself.
type History struct {
	byAccount map[uuid.UUID][]domain.AccountValuation
}

// NewHistory builds a History from valuations of any number of accounts,
// in any order
func NewHistory(valuations []domain.AccountValuation) *History {
	h := &History{byAccount: make(map[uuid.UUID][]domain.AccountValuation)}
	for _, v := range valuations {
		v.ValuationDate = datemath.DateOnly(v.ValuationDate)
		h.byAccount[v.AccountID] = append(h.byAccount[v.AccountID], v)
	}

	for id := range h.byAccount {
		series := h.byAccount[id]
		sort.Slice(series, func(i, j int) bool {
			return series[i].ValuationDate.Before(series[j].ValuationDate)
		})
	}

	return h
}

// HasAccount reports whether any valuation exists for the account
func (h *History) HasAccount(accountID uuid.UUID) bool {
	return len(h.byAccount[accountID]) > 0
}

// LatestOnOrBefore returns the account's most recent valuation dated on or
// before the given date. Nearest-prior only: valuations are never
// interpolated and never looked up forward.
func (h *History) LatestOnOrBefore(accountID uuid.UUID, date time.Time) (domain.AccountValuation, bool) {
	series := h.byAccount[accountID]
	day := datemath.DateOnly(date)

	// First index strictly after the target day; the answer sits before it.
	idx := sort.Search(len(series), func(i int) bool {
		return series[i].ValuationDate.After(day)
	})
	if idx == 0 {
		return domain.AccountValuation{}, false
	}
	return series[idx-1], true
}

// BaselineValue resolves the account value at a baseline date: the nearest
// valuation at or before it. When the account has no valuation at or before
// the baseline (created later, or no history at all) the baseline value is
// zero, meaning 100% of the account's subsequent value counts as growth.
// That fallback prevents understating contribution for accounts that did not
// exist yet; it is a defined business rule, not an error.
func (h *History) BaselineValue(accountID uuid.UUID, baselineDate time.Time) (decimal.Decimal, bool) {
	v, ok := h.LatestOnOrBefore(accountID, baselineDate)
	if !ok {
		return decimal.Zero, false
	}
	return v.TotalValue, true
}
