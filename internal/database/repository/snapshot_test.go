package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dewinglab/coinmatch/internal/database"
	"github.com/dewinglab/coinmatch/internal/record"
)

func newTestRepo(t *testing.T) *SnapshotRepo {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.RunMigrations(db))
	t.Log("migrations applied")
	return NewSnapshotRepo(db)
}

func TestSnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	ctx := context.Background()

	w := 17.12
	coins := []record.Coin{
		{CoinID: "coin-1", Mint: "Amphipolis", Weight: &w, AuctionHistory: []record.AuctionEvent{{House: "CNG", Lot: "103"}}},
		{CoinID: "coin-2", Mint: "Pella", AuctionHistory: []record.AuctionEvent{}},
	}
	candidates := []record.Candidate{
		{ID: "cand-1", MuseumCoinID: "coin-1", SimilarityScore: 0.92, Metadata: record.Coin{CoinID: "cand-1", SourceType: record.SourceAuction, AuctionHistory: []record.AuctionEvent{}}},
	}
	history := []record.MatchRecord{
		{ID: "rec-1", CoinID: "coin-1", CandidateID: "cand-1", Status: record.StatusConfirmed, SavedAt: "2026-08-01T10:00:00Z"},
		{ID: "rec-2", CoinID: "coin-2", Status: record.StatusRejected},
	}

	require.NoError(t, repo.ReplaceAll(ctx, coins, candidates, history))

	gotCoins, err := repo.LoadCoins(ctx)
	require.NoError(t, err)
	require.Equal(t, coins, gotCoins)

	gotCands, err := repo.LoadCandidates(ctx)
	require.NoError(t, err)
	require.Equal(t, candidates, gotCands)

	gotHistory, err := repo.LoadHistory(ctx)
	require.NoError(t, err)
	require.Equal(t, history, gotHistory)
}

func TestSnapshotReplaceSwapsContents(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	ctx := context.Background()

	first := []record.Coin{{CoinID: "coin-1", AuctionHistory: []record.AuctionEvent{}}}
	require.NoError(t, repo.ReplaceAll(ctx, first, nil, nil))

	second := []record.Coin{
		{CoinID: "coin-2", AuctionHistory: []record.AuctionEvent{}},
		{CoinID: "coin-3", AuctionHistory: []record.AuctionEvent{}},
	}
	require.NoError(t, repo.ReplaceAll(ctx, second, nil, nil))

	got, err := repo.LoadCoins(ctx)
	require.NoError(t, err)
	require.Equal(t, second, got)

	cands, err := repo.LoadCandidates(ctx)
	require.NoError(t, err)
	require.Empty(t, cands)
}

func TestSnapshotEmpty(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	ctx := context.Background()

	coins, err := repo.LoadCoins(ctx)
	require.NoError(t, err)
	require.Empty(t, coins)

	// duplicate placeholder ids still produce distinct rows
	dupes := []record.Coin{
		{CoinID: record.PlaceholderCoinID, Mint: "A", AuctionHistory: []record.AuctionEvent{}},
		{CoinID: record.PlaceholderCoinID, Mint: "B", AuctionHistory: []record.AuctionEvent{}},
	}
	require.NoError(t, repo.ReplaceAll(ctx, dupes, nil, nil))
	got, err := repo.LoadCoins(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestRowKeyDeterministic(t *testing.T) {
	t.Parallel()

	require.Equal(t, rowKey("coins", 0, "coin-1"), rowKey("coins", 0, "coin-1"))
	require.NotEqual(t, rowKey("coins", 0, "coin-1"), rowKey("coins", 1, "coin-1"))
	require.NotEqual(t, rowKey("coins", 0, "coin-1"), rowKey("candidates", 0, "coin-1"))
}
