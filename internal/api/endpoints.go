package api

import (
	"context"
	"net/http"

	"github.com/dewinglab/coinmatch/internal/record"
)

// User is the authenticated profile returned by login and profile lookups.
type User struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// LoginResponse is returned by Login.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// DecisionRequest is the save-decision payload. Decision is the
// lower-cased status string.
type DecisionRequest struct {
	MuseumCoinID string `json:"museum_coin_id"`
	CandidateID  string `json:"candidate_id,omitempty"`
	Decision     string `json:"decision"`
	Notes        string `json:"notes,omitempty"`
}

// MatchHistoryResponse is the paginated history envelope.
type MatchHistoryResponse struct {
	Items []record.Raw `json:"items"`
	Total int          `json:"total"`
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	var resp LoginResponse
	body := map[string]string{"email": email, "password": password}
	err := c.request(ctx, http.MethodPost, "/api/login", body, "", &resp)
	return resp, err
}

// Logout notifies the server that the session is done.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.request(ctx, http.MethodPost, "/api/logout", nil, token, nil)
}

// Profile fetches the authoritative user profile.
func (c *Client) Profile(ctx context.Context, token string) (User, error) {
	var u User
	err := c.request(ctx, http.MethodGet, "/api/user/profile", nil, token, &u)
	return u, err
}

// MuseumCoins lists the raw catalog coin payloads.
func (c *Client) MuseumCoins(ctx context.Context, token string) ([]record.Raw, error) {
	var raws []record.Raw
	err := c.request(ctx, http.MethodGet, "/api/museum-coins", nil, token, &raws)
	return raws, err
}

// MatchHistory lists the raw match-record payloads.
func (c *Client) MatchHistory(ctx context.Context, token string) (MatchHistoryResponse, error) {
	var resp MatchHistoryResponse
	err := c.request(ctx, http.MethodGet, "/api/match/history", nil, token, &resp)
	return resp, err
}

// SearchCandidates runs a text search for candidate listings. The empty
// query returns the server's default candidate set.
func (c *Client) SearchCandidates(ctx context.Context, token, query string) ([]record.Raw, error) {
	var raws []record.Raw
	body := map[string]string{"query": query}
	err := c.request(ctx, http.MethodPost, "/api/search/text", body, token, &raws)
	return raws, err
}

// SaveDecision persists a curator decision and returns the raw saved
// record.
func (c *Client) SaveDecision(ctx context.Context, token string, req DecisionRequest) (record.Raw, error) {
	var raw record.Raw
	err := c.request(ctx, http.MethodPost, "/api/match/save", req, token, &raw)
	return raw, err
}
