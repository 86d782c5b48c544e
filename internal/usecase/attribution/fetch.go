package attribution

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trungvm/goalflow-backend/internal/domain"
)

// FetchHistory reads the full valuation history up to asOf for every account
// and assembles it into one History. Per-account reads are independent and
// run concurrently; all of them complete before the History is built, so a
// fetch still in flight can never be mistaken for "no data". Results are
// deterministic regardless of completion order.
func FetchHistory(ctx context.Context, repo domain.ValuationRepository, accountIDs []uuid.UUID, asOf time.Time) (*History, error) {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		all     []domain.AccountValuation
		callErr error
	)

	for _, accountID := range accountIDs {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()

			valuations, err := repo.GetHistoricalValuations(ctx, id, time.Time{}, asOf)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if callErr == nil {
					callErr = fmt.Errorf("failed to fetch valuations for account %s: %w", id, err)
				}
				return
			}
			all = append(all, valuations...)
		}(accountID)
	}

	wg.Wait()
	if callErr != nil {
		return nil, callErr
	}

	return NewHistory(all), nil
}
