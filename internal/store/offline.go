package store

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dewinglab/coinmatch/internal/record"
)

// OfflineStore serves the snapshot collections without a server. Decisions
// are recorded locally with generated ids and persisted back into the
// snapshot, so a later online session can reconcile them.
type OfflineStore struct {
	mu   sync.Mutex
	repo Snapshotter

	coins      []record.Coin
	candidates []record.Candidate
	history    []record.MatchRecord
}

// NewOffline creates an offline store over the snapshot repository.
func NewOffline(repo Snapshotter) *OfflineStore {
	return &OfflineStore{
		repo:       repo,
		coins:      []record.Coin{},
		candidates: []record.Candidate{},
		history:    []record.MatchRecord{},
	}
}

// Load fills the collections from the snapshot.
func (s *OfflineStore) Load(ctx context.Context) error {
	coins, err := s.repo.LoadCoins(ctx)
	if err != nil {
		return err
	}
	candidates, err := s.repo.LoadCandidates(ctx)
	if err != nil {
		return err
	}
	history, err := s.repo.LoadHistory(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.coins = coins
	s.candidates = candidates
	s.history = history
	s.mu.Unlock()
	return nil
}

// Coins returns the snapshot catalog coins.
func (s *OfflineStore) Coins() []record.Coin {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.coins
}

// Candidates returns the snapshot candidate listings.
func (s *OfflineStore) Candidates() []record.Candidate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.candidates
}

// History returns the snapshot match records, newest first.
func (s *OfflineStore) History() []record.MatchRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history
}

// LogMatchDecision records a decision against the snapshot. The record id
// is generated locally; the coin and candidate references are validated
// against the snapshot collections.
func (s *OfflineStore) LogMatchDecision(ctx context.Context, museumCoinID, candidateID string, status record.MatchStatus, notes string) (record.MatchRecord, error) {
	s.mu.Lock()
	coins := s.coins
	candidates := s.candidates
	s.mu.Unlock()

	if !coinExists(coins, museumCoinID) {
		return record.MatchRecord{}, ErrCoinNotFound
	}
	if candidateID != "" && !candidateExists(candidates, candidateID) {
		return record.MatchRecord{}, ErrCandidateNotFound
	}

	rec := record.MatchRecord{
		ID:              uuid.NewString(),
		CoinID:          museumCoinID,
		CandidateID:     candidateID,
		Status:          record.ParseStatus(capitalized(status)),
		SavedAt:         time.Now().UTC().Format(time.RFC3339),
		MuseumCoinTitle: coinTitleFor(coins, museumCoinID),
		CandidateTitle:  candidateTitleFor(candidates, candidateID),
		Notes:           notes,
	}
	for _, c := range candidates {
		if c.ID == candidateID && candidateID != "" {
			rec.SimilarityScore = c.SimilarityScore
			break
		}
	}
	rec.Source = rec.CandidateTitle

	s.mu.Lock()
	replaced := false
	for i, prior := range s.history {
		if prior.CoinID == museumCoinID && prior.CandidateID == candidateID {
			rec.ID = prior.ID
			s.history[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		s.history = append([]record.MatchRecord{rec}, s.history...)
	}
	history := s.history
	s.mu.Unlock()

	if err := s.repo.ReplaceAll(ctx, coins, candidates, history); err != nil {
		log.Printf("warn: failed to persist offline decision: %v", err)
	}
	return rec, nil
}

func capitalized(status record.MatchStatus) string {
	s := strings.ToLower(string(status))
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func coinTitleFor(coins []record.Coin, id string) string {
	for _, c := range coins {
		if c.CoinID == id {
			if c.CatalogNumber != "" {
				return c.CatalogNumber
			}
			return id
		}
	}
	return id
}

func candidateTitleFor(candidates []record.Candidate, id string) string {
	if id == "" {
		return "Candidate"
	}
	for _, c := range candidates {
		if c.ID == id {
			return c.ListingReference
		}
	}
	return "Candidate"
}
