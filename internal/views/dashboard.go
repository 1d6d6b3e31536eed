// Package views derives the read models the screens render from the raw
// collections.
package views

import (
	"sort"

	"github.com/dewinglab/coinmatch/internal/record"
)

// Summary is the dashboard read model.
type Summary struct {
	TotalCoins      int
	TotalCandidates int
	Confirmed       int
	Rejected        int
	Pending         int
	TopCandidates   []record.Candidate
	RecentDecisions []record.MatchRecord
}

// Summarize computes the dashboard numbers, the top three candidates by
// similarity and the five most recent decisions. Saved-at timestamps are
// ISO-8601, so newest-first is a plain string comparison.
func Summarize(coins []record.Coin, candidates []record.Candidate, history []record.MatchRecord) Summary {
	s := Summary{
		TotalCoins:      len(coins),
		TotalCandidates: len(candidates),
	}
	for _, rec := range history {
		switch rec.Status {
		case record.StatusConfirmed:
			s.Confirmed++
		case record.StatusRejected:
			s.Rejected++
		default:
			s.Pending++
		}
	}

	top := make([]record.Candidate, len(candidates))
	copy(top, candidates)
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].SimilarityScore > top[j].SimilarityScore
	})
	if len(top) > 3 {
		top = top[:3]
	}
	s.TopCandidates = top

	recent := make([]record.MatchRecord, len(history))
	copy(recent, history)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].SavedAt > recent[j].SavedAt
	})
	if len(recent) > 5 {
		recent = recent[:5]
	}
	s.RecentDecisions = recent
	return s
}
