package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dewinglab/coinmatch/internal/record"
)

// memorySnapshots is an in-memory Snapshotter.
type memorySnapshots struct {
	mu         sync.Mutex
	coins      []record.Coin
	candidates []record.Candidate
	history    []record.MatchRecord
	writes     int
}

func (m *memorySnapshots) ReplaceAll(_ context.Context, coins []record.Coin, candidates []record.Candidate, history []record.MatchRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.coins = coins
	m.candidates = candidates
	m.history = history
	m.writes++
	return nil
}

func (m *memorySnapshots) LoadCoins(context.Context) ([]record.Coin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.coins, nil
}

func (m *memorySnapshots) LoadCandidates(context.Context) ([]record.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.candidates, nil
}

func (m *memorySnapshots) LoadHistory(context.Context) ([]record.MatchRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.history, nil
}

func seededSnapshots() *memorySnapshots {
	return &memorySnapshots{
		coins: []record.Coin{
			{CoinID: "coin-1", CatalogNumber: "BM 1"},
			{CoinID: "coin-2"},
		},
		candidates: []record.Candidate{
			{ID: "cand-1", MuseumCoinID: "coin-1", SimilarityScore: 0.92, ListingReference: "CNG 112, lot 103"},
		},
	}
}

func TestOfflineLoad(t *testing.T) {
	t.Parallel()

	s := NewOffline(seededSnapshots())
	require.NoError(t, s.Load(context.Background()))
	require.Len(t, s.Coins(), 2)
	require.Len(t, s.Candidates(), 1)
	require.Empty(t, s.History())
}

func TestOfflineDecisionValidation(t *testing.T) {
	t.Parallel()

	s := NewOffline(seededSnapshots())
	ctx := context.Background()
	require.NoError(t, s.Load(ctx))

	_, err := s.LogMatchDecision(ctx, "coin-missing", "cand-1", record.StatusConfirmed, "")
	require.ErrorIs(t, err, ErrCoinNotFound)

	_, err = s.LogMatchDecision(ctx, "coin-1", "cand-missing", record.StatusConfirmed, "")
	require.ErrorIs(t, err, ErrCandidateNotFound)
}

func TestOfflineDecisionRecorded(t *testing.T) {
	t.Parallel()

	repo := seededSnapshots()
	s := NewOffline(repo)
	ctx := context.Background()
	require.NoError(t, s.Load(ctx))

	rec, err := s.LogMatchDecision(ctx, "coin-1", "cand-1", record.StatusConfirmed, "die match")
	require.NoError(t, err)
	require.NotEmpty(t, rec.ID)
	require.Equal(t, record.StatusConfirmed, rec.Status)
	require.Equal(t, "BM 1", rec.MuseumCoinTitle)
	require.Equal(t, "CNG 112, lot 103", rec.CandidateTitle)
	require.InDelta(t, 0.92, rec.SimilarityScore, 0.0001)
	require.NotEmpty(t, rec.SavedAt)

	// persisted back into the snapshot
	repo.mu.Lock()
	writes := repo.writes
	stored := len(repo.history)
	repo.mu.Unlock()
	require.Equal(t, 1, writes)
	require.Equal(t, 1, stored)
}

func TestOfflineDecisionReplacesSamePair(t *testing.T) {
	t.Parallel()

	s := NewOffline(seededSnapshots())
	ctx := context.Background()
	require.NoError(t, s.Load(ctx))

	first, err := s.LogMatchDecision(ctx, "coin-1", "cand-1", record.StatusPending, "")
	require.NoError(t, err)
	second, err := s.LogMatchDecision(ctx, "coin-1", "cand-1", record.StatusConfirmed, "")
	require.NoError(t, err)

	history := s.History()
	require.Len(t, history, 1)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, record.StatusConfirmed, history[0].Status)

	// a decision with no candidate is its own entry
	_, err = s.LogMatchDecision(ctx, "coin-2", "", record.StatusRejected, "no plausible listing")
	require.NoError(t, err)
	require.Len(t, s.History(), 2)
	require.Equal(t, "Candidate", s.History()[0].CandidateTitle)
}
