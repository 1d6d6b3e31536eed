// Package store holds the client-side cache of catalog data and applies
// curator decisions against it.
package store

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/dewinglab/coinmatch/internal/api"
	"github.com/dewinglab/coinmatch/internal/record"
	"github.com/dewinglab/coinmatch/internal/session"
)

var (
	// ErrNoSession means an operation that needs authentication was called
	// while anonymous.
	ErrNoSession = errors.New("no active session")
	// ErrCoinNotFound means the referenced catalog coin is not in the
	// loaded collection.
	ErrCoinNotFound = errors.New("museum coin not found")
	// ErrCandidateNotFound means the referenced candidate is not in the
	// loaded collection.
	ErrCandidateNotFound = errors.New("candidate not found")
)

// Snapshotter persists the loaded collections so the app can start with
// data while offline.
type Snapshotter interface {
	ReplaceAll(ctx context.Context, coins []record.Coin, candidates []record.Candidate, history []record.MatchRecord) error
	LoadCoins(ctx context.Context) ([]record.Coin, error)
	LoadCandidates(ctx context.Context) ([]record.Candidate, error)
	LoadHistory(ctx context.Context) ([]record.MatchRecord, error)
}

// Store caches the three server collections and keeps them consistent with
// the active session. All methods are safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	session *session.Store
	api     *api.Client
	repo    Snapshotter

	loading    bool
	coins      []record.Coin
	candidates []record.Candidate
	history    []record.MatchRecord
	// historyIndex maps record id to its position in history so a saved
	// decision replaces its prior version in place.
	historyIndex map[string]int
}

// New creates an empty store. repo may be nil when snapshot persistence is
// disabled.
func New(sess *session.Store, client *api.Client, repo Snapshotter) *Store {
	return &Store{
		session:      sess,
		api:          client,
		repo:         repo,
		coins:        []record.Coin{},
		candidates:   []record.Candidate{},
		history:      []record.MatchRecord{},
		historyIndex: map[string]int{},
	}
}

// Loading reports whether a refresh is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Coins returns the loaded catalog coins.
func (s *Store) Coins() []record.Coin {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.coins
}

// Candidates returns the loaded candidate listings.
func (s *Store) Candidates() []record.Candidate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.candidates
}

// History returns the loaded match records, newest first.
func (s *Store) History() []record.MatchRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history
}

// Refresh reloads all three collections from the server. With no active
// session it clears them instead. The three fetches run concurrently and
// apply together: if any fails, the collections are cleared and the error
// logged. Results fetched under a token that is no longer the active one
// are discarded without touching state.
func (s *Store) Refresh(ctx context.Context) {
	token := s.session.Token()
	if token == "" {
		s.clear()
		return
	}

	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	var (
		wg          sync.WaitGroup
		rawCoins    []record.Raw
		rawCands    []record.Raw
		histResp    api.MatchHistoryResponse
		coinsErr    error
		candsErr    error
		historyErr  error
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		rawCoins, coinsErr = s.api.MuseumCoins(ctx, token)
	}()
	go func() {
		defer wg.Done()
		rawCands, candsErr = s.api.SearchCandidates(ctx, token, "")
	}()
	go func() {
		defer wg.Done()
		histResp, historyErr = s.api.MatchHistory(ctx, token)
	}()
	wg.Wait()

	if s.session.Token() != token {
		// the session changed while we were fetching
		return
	}

	if err := errors.Join(coinsErr, candsErr, historyErr); err != nil {
		log.Printf("warn: refresh failed: %v", err)
		s.clear()
		return
	}

	coins := record.NormalizeCoins(rawCoins)
	candidates := record.NormalizeCandidates(rawCands)
	history := record.NormalizeMatches(histResp.Items, coins, candidates)

	s.mu.Lock()
	s.coins = coins
	s.candidates = candidates
	s.history = history
	s.historyIndex = indexHistory(history)
	s.mu.Unlock()

	s.persistSnapshot(ctx, coins, candidates, history)
}

// Search runs a text search for candidates and replaces the loaded
// candidate collection with the results, so the comparison and decision
// paths see what the curator is looking at. Results from a session that is
// no longer active are returned but not applied.
func (s *Store) Search(ctx context.Context, query string) ([]record.Candidate, error) {
	token := s.session.Token()
	if token == "" {
		return nil, ErrNoSession
	}
	raws, err := s.api.SearchCandidates(ctx, token, query)
	if err != nil {
		return nil, err
	}
	candidates := record.NormalizeCandidates(raws)
	if s.session.Token() == token {
		s.mu.Lock()
		s.candidates = candidates
		s.mu.Unlock()
	}
	return candidates, nil
}

// LogMatchDecision records a curator decision on the server and merges the
// saved record into the local history. The coin (and candidate, when
// given) must exist in the loaded collections.
func (s *Store) LogMatchDecision(ctx context.Context, museumCoinID, candidateID string, status record.MatchStatus, notes string) (record.MatchRecord, error) {
	token := s.session.Token()
	if token == "" {
		return record.MatchRecord{}, ErrNoSession
	}

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

	raw, err := s.api.SaveDecision(ctx, token, api.DecisionRequest{
		MuseumCoinID: museumCoinID,
		CandidateID:  candidateID,
		Decision:     strings.ToLower(string(status)),
		Notes:        notes,
	})
	if err != nil {
		return record.MatchRecord{}, err
	}

	saved := record.NormalizeMatch(raw, coins, candidates)
	s.mergeHistory(saved)
	return saved, nil
}

// LoadSnapshot fills the collections from the offline snapshot. It is
// meant for startup before the first refresh and does nothing without a
// snapshot repository.
func (s *Store) LoadSnapshot(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
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
	s.historyIndex = indexHistory(history)
	s.mu.Unlock()
	return nil
}

// mergeHistory replaces the record with the same id in place, or prepends
// it as the newest entry.
func (s *Store) mergeHistory(rec record.MatchRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.historyIndex[rec.ID]; ok && rec.ID != "" {
		s.history[i] = rec
		return
	}
	s.history = append([]record.MatchRecord{rec}, s.history...)
	s.historyIndex = indexHistory(s.history)
}

func (s *Store) clear() {
	s.mu.Lock()
	s.coins = []record.Coin{}
	s.candidates = []record.Candidate{}
	s.history = []record.MatchRecord{}
	s.historyIndex = map[string]int{}
	s.mu.Unlock()
}

func (s *Store) persistSnapshot(ctx context.Context, coins []record.Coin, candidates []record.Candidate, history []record.MatchRecord) {
	if s.repo == nil {
		return
	}
	if err := s.repo.ReplaceAll(ctx, coins, candidates, history); err != nil {
		log.Printf("warn: failed to persist snapshot: %v", err)
	}
}

func indexHistory(history []record.MatchRecord) map[string]int {
	idx := make(map[string]int, len(history))
	for i, rec := range history {
		if rec.ID != "" {
			idx[rec.ID] = i
		}
	}
	return idx
}

func coinExists(coins []record.Coin, id string) bool {
	for _, c := range coins {
		if c.CoinID == id {
			return true
		}
	}
	return false
}

func candidateExists(candidates []record.Candidate, id string) bool {
	for _, c := range candidates {
		if c.ID == id {
			return true
		}
	}
	return false
}
