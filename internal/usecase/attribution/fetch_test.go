package attribution

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trungvm/goalflow-backend/internal/domain"
)

// stubValuationRepository serves canned per-account valuations and records
// which accounts were asked for
type stubValuationRepository struct {
	mu         sync.Mutex
	byAccount  map[uuid.UUID][]domain.AccountValuation
	failFor    map[uuid.UUID]error
	fetchedIDs []uuid.UUID
}

func (s *stubValuationRepository) GetLatestValuations(ctx context.Context, accountIDs []uuid.UUID) ([]domain.AccountValuation, error) {
	return nil, errors.New("not used")
}

func (s *stubValuationRepository) GetHistoricalValuations(ctx context.Context, accountID uuid.UUID, start, end time.Time) ([]domain.AccountValuation, error) {
	s.mu.Lock()
	s.fetchedIDs = append(s.fetchedIDs, accountID)
	s.mu.Unlock()

	if err := s.failFor[accountID]; err != nil {
		return nil, err
	}
	return s.byAccount[accountID], nil
}

func TestFetchHistory_MergesAllAccounts(t *testing.T) {
	accountA := uuid.New()
	accountB := uuid.New()

	repo := &stubValuationRepository{
		byAccount: map[uuid.UUID][]domain.AccountValuation{
			accountA: {valuation(accountA, "2025-01-01", 100)},
			accountB: {valuation(accountB, "2025-02-01", 200)},
		},
	}

	hist, err := FetchHistory(context.Background(), repo, []uuid.UUID{accountA, accountB}, mustDate(t, "2025-06-01"))
	require.NoError(t, err)

	assert.True(t, hist.HasAccount(accountA))
	assert.True(t, hist.HasAccount(accountB))
	assert.Len(t, repo.fetchedIDs, 2)

	v, ok := hist.LatestOnOrBefore(accountB, mustDate(t, "2025-06-01"))
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(200).Equal(v.TotalValue))
}

func TestFetchHistory_PropagatesAccountError(t *testing.T) {
	accountA := uuid.New()
	accountB := uuid.New()

	repo := &stubValuationRepository{
		byAccount: map[uuid.UUID][]domain.AccountValuation{
			accountA: {valuation(accountA, "2025-01-01", 100)},
		},
		failFor: map[uuid.UUID]error{accountB: errors.New("connection refused")},
	}

	_, err := FetchHistory(context.Background(), repo, []uuid.UUID{accountA, accountB}, mustDate(t, "2025-06-01"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), accountB.String())
}

func TestFetchHistory_NoAccounts(t *testing.T) {
	repo := &stubValuationRepository{}

	hist, err := FetchHistory(context.Background(), repo, nil, mustDate(t, "2025-06-01"))
	require.NoError(t, err)
	assert.False(t, hist.HasAccount(uuid.New()))
	assert.Empty(t, repo.fetchedIDs)
}
