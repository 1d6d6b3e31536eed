// Package repository reads and writes the offline snapshot tables.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/dewinglab/coinmatch/internal/database"
	"github.com/dewinglab/coinmatch/internal/record"
)

// SnapshotRepo persists the loaded collections as JSON payload rows. A row
// key is derived deterministically from the table, position and entity id,
// so writing the same snapshot twice is idempotent.
type SnapshotRepo struct {
	db *sql.DB
}

func NewSnapshotRepo(db *sql.DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

func rowKey(table string, position int, id string) string {
	name := fmt.Sprintf("%s|%d|%s", table, position, id)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}

// ReplaceAll swaps the whole snapshot in one transaction.
func (r *SnapshotRepo) ReplaceAll(ctx context.Context, coins []record.Coin, candidates []record.Candidate, history []record.MatchRecord) error {
	storedAt := database.Now()
	return database.WithTx(r.db, func(tx *sql.Tx) error {
		for _, table := range []string{"coins", "candidates", "match_records"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return err
			}
		}
		for i, c := range coins {
			payload, err := json.Marshal(c)
			if err != nil {
				return err
			}
			_, err = tx.ExecContext(ctx, `
			INSERT INTO coins(row_key, coin_id, position, payload, stored_at)
			VALUES (?, ?, ?, ?, ?);
			`, rowKey("coins", i, c.CoinID), c.CoinID, i, string(payload), storedAt)
			if err != nil {
				return err
			}
		}
		for i, c := range candidates {
			payload, err := json.Marshal(c)
			if err != nil {
				return err
			}
			_, err = tx.ExecContext(ctx, `
			INSERT INTO candidates(row_key, candidate_id, museum_coin_id, similarity_score, position, payload, stored_at)
			VALUES (?, ?, ?, ?, ?, ?, ?);
			`, rowKey("candidates", i, c.ID), c.ID, c.MuseumCoinID, c.SimilarityScore, i, string(payload), storedAt)
			if err != nil {
				return err
			}
		}
		for i, m := range history {
			payload, err := json.Marshal(m)
			if err != nil {
				return err
			}
			_, err = tx.ExecContext(ctx, `
			INSERT INTO match_records(row_key, record_id, coin_id, candidate_id, status, position, payload, stored_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?);
			`, rowKey("match_records", i, m.ID), m.ID, m.CoinID, m.CandidateID, string(m.Status), i, string(payload), storedAt)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadCoins returns the snapshot coins in stored order.
func (r *SnapshotRepo) LoadCoins(ctx context.Context) ([]record.Coin, error) {
	out := []record.Coin{}
	err := r.loadPayloads(ctx, "coins", func(payload []byte) error {
		var c record.Coin
		if err := json.Unmarshal(payload, &c); err != nil {
			return err
		}
		out = append(out, c)
		return nil
	})
	return out, err
}

// LoadCandidates returns the snapshot candidates in stored order.
func (r *SnapshotRepo) LoadCandidates(ctx context.Context) ([]record.Candidate, error) {
	out := []record.Candidate{}
	err := r.loadPayloads(ctx, "candidates", func(payload []byte) error {
		var c record.Candidate
		if err := json.Unmarshal(payload, &c); err != nil {
			return err
		}
		out = append(out, c)
		return nil
	})
	return out, err
}

// LoadHistory returns the snapshot match records in stored order.
func (r *SnapshotRepo) LoadHistory(ctx context.Context) ([]record.MatchRecord, error) {
	out := []record.MatchRecord{}
	err := r.loadPayloads(ctx, "match_records", func(payload []byte) error {
		var m record.MatchRecord
		if err := json.Unmarshal(payload, &m); err != nil {
			return err
		}
		out = append(out, m)
		return nil
	})
	return out, err
}

func (r *SnapshotRepo) loadPayloads(ctx context.Context, table string, scan func(payload []byte) error) error {
	rows, err := r.db.QueryContext(ctx, "SELECT payload FROM "+table+" ORDER BY position")
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return err
		}
		if err := scan([]byte(payload)); err != nil {
			return err
		}
	}
	return rows.Err()
}
