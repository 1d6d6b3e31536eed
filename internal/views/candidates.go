package views

import (
	"sort"

	"github.com/dewinglab/coinmatch/internal/record"
)

// DefaultMinScore is the similarity floor for candidate lists. The
// boundary is inclusive.
const DefaultMinScore = 0.70

// FilterCandidates keeps candidates at or above minScore, optionally
// narrowed to one catalog coin.
func FilterCandidates(candidates []record.Candidate, museumCoinID string, minScore float64) []record.Candidate {
	out := []record.Candidate{}
	for _, c := range candidates {
		if museumCoinID != "" && c.MuseumCoinID != museumCoinID {
			continue
		}
		if c.SimilarityScore < minScore {
			continue
		}
		out = append(out, c)
	}
	return out
}

// SortCandidatesByScore orders candidates best-first.
func SortCandidatesByScore(candidates []record.Candidate) []record.Candidate {
	out := make([]record.Candidate, len(candidates))
	copy(out, candidates)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SimilarityScore > out[j].SimilarityScore
	})
	return out
}

// SortCandidatesBySaleDate orders candidates newest sale first. Sale dates
// are ISO-8601 strings; candidates without one sort last.
func SortCandidatesBySaleDate(candidates []record.Candidate) []record.Candidate {
	out := make([]record.Candidate, len(candidates))
	copy(out, candidates)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].SaleDate, out[j].SaleDate
		if a == "" {
			return false
		}
		if b == "" {
			return true
		}
		return a > b
	})
	return out
}

// SuggestedCandidates returns the unconfirmed candidates linked to the
// given catalog coin, best first. When none are linked it falls back to
// the top three unconfirmed candidates overall, so the queue is never
// empty while work remains.
func SuggestedCandidates(candidates []record.Candidate, history []record.MatchRecord, coinID string) []record.Candidate {
	confirmed := map[string]bool{}
	for _, rec := range history {
		if rec.Status == record.StatusConfirmed && rec.CandidateID != "" {
			confirmed[rec.CandidateID] = true
		}
	}

	unconfirmed := []record.Candidate{}
	for _, c := range candidates {
		if !confirmed[c.ID] {
			unconfirmed = append(unconfirmed, c)
		}
	}

	linked := FilterCandidates(unconfirmed, coinID, 0)
	if len(linked) > 0 {
		return SortCandidatesByScore(linked)
	}
	top := SortCandidatesByScore(unconfirmed)
	if len(top) > 3 {
		top = top[:3]
	}
	return top
}
