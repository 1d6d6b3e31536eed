package views

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/dewinglab/coinmatch/internal/record"
)

// Comparison is the side-by-side read model for one candidate against its
// catalog coin.
type Comparison struct {
	Coin      record.Coin
	Candidate record.Candidate
	// CoinFound is false when the candidate references a coin that is not
	// in the loaded catalog.
	CoinFound bool
	// Existing is the prior decision for this candidate, if any.
	Existing *record.MatchRecord
	// PriorDecisions are all decisions recorded for the coin, newest first.
	PriorDecisions []record.MatchRecord
}

// Compare builds the comparison for candidateID, falling back to the first
// candidate when the id is empty or unknown. ok is false when there are no
// candidates at all.
func Compare(coins []record.Coin, candidates []record.Candidate, history []record.MatchRecord, candidateID string) (Comparison, bool) {
	if len(candidates) == 0 {
		return Comparison{}, false
	}
	cand := candidates[0]
	for _, c := range candidates {
		if c.ID == candidateID && candidateID != "" {
			cand = c
			break
		}
	}

	cmp := Comparison{Candidate: cand}
	for _, c := range coins {
		if c.CoinID == cand.MuseumCoinID {
			cmp.Coin = c
			cmp.CoinFound = true
			break
		}
	}
	for _, rec := range history {
		if rec.CoinID == cand.MuseumCoinID {
			cmp.PriorDecisions = append(cmp.PriorDecisions, rec)
		}
	}
	cmp.Existing = FindDecision(history, cand)
	return cmp, true
}

// FindDecision locates the prior decision for a candidate: first by
// candidate id, then by listing reference against the record's candidate
// title, whatever id the record carries. The title match is deliberately
// loose so legacy records with minor transcription drift still resolve.
func FindDecision(history []record.MatchRecord, cand record.Candidate) *record.MatchRecord {
	for i, rec := range history {
		if rec.CandidateID != "" && rec.CandidateID == cand.ID {
			return &history[i]
		}
	}
	for i, rec := range history {
		if titlesMatch(rec.CandidateTitle, cand.ListingReference) {
			return &history[i]
		}
	}
	return nil
}

func titlesMatch(a, b string) bool {
	a = strings.ToUpper(strings.TrimSpace(a))
	b = strings.ToUpper(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	dist := levenshtein.ComputeDistance(a, b)
	maxlen := float64(len(a))
	if len(b) > len(a) {
		maxlen = float64(len(b))
	}
	return float64(dist)/maxlen < 0.15
}
