package views

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dewinglab/coinmatch/internal/record"
)

func TestCompare(t *testing.T) {
	t.Parallel()

	coins := []record.Coin{{CoinID: "coin-1", Mint: "Amphipolis"}}
	candidates := []record.Candidate{
		{ID: "cand-1", MuseumCoinID: "coin-1", ListingReference: "CNG 112, lot 103"},
		{ID: "cand-2", MuseumCoinID: "coin-9", ListingReference: "Roma XXI, lot 421"},
	}
	history := []record.MatchRecord{
		{ID: "rec-1", CoinID: "coin-1", CandidateID: "cand-1", Status: record.StatusPending},
		{ID: "rec-2", CoinID: "coin-1", Status: record.StatusRejected},
	}

	cmp, ok := Compare(coins, candidates, history, "cand-1")
	require.True(t, ok)
	require.True(t, cmp.CoinFound)
	require.Equal(t, "Amphipolis", cmp.Coin.Mint)
	require.Len(t, cmp.PriorDecisions, 2)
	require.NotNil(t, cmp.Existing)
	require.Equal(t, "rec-1", cmp.Existing.ID)
}

func TestCompareFallsBackToFirstCandidate(t *testing.T) {
	t.Parallel()

	candidates := []record.Candidate{
		{ID: "cand-1", MuseumCoinID: "coin-9"},
		{ID: "cand-2", MuseumCoinID: "coin-9"},
	}

	cmp, ok := Compare(nil, candidates, nil, "")
	require.True(t, ok)
	require.Equal(t, "cand-1", cmp.Candidate.ID)
	require.False(t, cmp.CoinFound)

	cmp, ok = Compare(nil, candidates, nil, "cand-unknown")
	require.True(t, ok)
	require.Equal(t, "cand-1", cmp.Candidate.ID)

	_, ok = Compare(nil, nil, nil, "")
	require.False(t, ok)
}

func TestFindDecisionLooseTitleMatch(t *testing.T) {
	t.Parallel()

	cand := record.Candidate{ID: "cand-1", ListingReference: "CNG 112, lot 103"}

	// exact id beats titles
	history := []record.MatchRecord{
		{ID: "by-title", CandidateTitle: "CNG 112, lot 103"},
		{ID: "by-id", CandidateID: "cand-1", CandidateTitle: "something else"},
	}
	got := FindDecision(history, cand)
	require.NotNil(t, got)
	require.Equal(t, "by-id", got.ID)

	// legacy record with no candidate id: small transcription drift still
	// resolves
	history = []record.MatchRecord{
		{ID: "legacy", CandidateTitle: "CNG 112 lot 103"},
	}
	got = FindDecision(history, cand)
	require.NotNil(t, got)
	require.Equal(t, "legacy", got.ID)

	// a record whose stored id no longer matches still resolves by title
	history = []record.MatchRecord{
		{ID: "re-ingested", CandidateID: "cand-old", CandidateTitle: "CNG 112, lot 103"},
	}
	got = FindDecision(history, cand)
	require.NotNil(t, got)
	require.Equal(t, "re-ingested", got.ID)

	// a different listing does not
	history = []record.MatchRecord{
		{ID: "other", CandidateTitle: "Roma XXI, lot 421"},
	}
	require.Nil(t, FindDecision(history, cand))

	// empty titles never match
	history = []record.MatchRecord{{ID: "blank", CandidateTitle: ""}}
	require.Nil(t, FindDecision(history, record.Candidate{ID: "x", ListingReference: ""}))
}
