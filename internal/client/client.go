// Package client talks to a crease server.
//
// All responses pass through one normalisation step (normalizeEnvelope)
// and every failure is returned as a *Error classified by Kind. Credentials
// live in an explicit Session handed to the client.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/roach88/crease/internal/api"
	"github.com/roach88/crease/internal/ir"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 15 * time.Second

// maxResponseBytes bounds response bodies.
const maxResponseBytes = 8 << 20

// Client is an HTTP client for the scoring API.
//
// Thread-safety: Client is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	session *Session
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. The client is copied,
// so a later WithTimeout never changes the caller's value.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// WithTimeout sets the per-request timeout, whatever HTTP client is used.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithSession attaches the operator session. Without one, requests are
// sent unauthenticated.
func WithSession(s *Session) Option {
	return func(c *Client) {
		c.session = s
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		session: NewSession(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		h := *c.http
		h.Timeout = c.timeout
		c.http = &h
	}
	return c
}

// Session returns the client's session.
func (c *Client) Session() *Session {
	return c.session
}

// BaseURL returns the server address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do sends one request and decodes the data half of the envelope into out
// (which may be nil).
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token, ok := c.session.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Kind: KindNetwork, Message: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &Error{Kind: KindNetwork, Status: resp.StatusCode, Message: "read response", Err: err}
	}

	env, err := normalizeEnvelope(resp.StatusCode, raw)
	if err != nil {
		return err
	}
	if env.Error != nil || resp.StatusCode >= http.StatusBadRequest {
		body := api.ErrorBody{}
		if env.Error != nil {
			body = *env.Error
		}
		apiErr := classify(resp.StatusCode, resp.Header, body)
		if apiErr.Kind == KindAuth {
			c.logger.Warn("session rejected by server", "status", resp.StatusCode)
			c.session.Teardown()
		}
		return apiErr
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &Error{Kind: KindServer, Status: resp.StatusCode, Message: "decode response", Err: err}
	}
	return nil
}

// LiveSnapshot fetches the complete current view of a match.
func (c *Client) LiveSnapshot(ctx context.Context, matchID string) (*ir.Snapshot, error) {
	var snap ir.Snapshot
	if err := c.do(ctx, http.MethodGet, api.LivePath(matchID), nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// StartInnings opens an innings.
func (c *Client) StartInnings(ctx context.Context, req api.StartInningsRequest) (*ir.Snapshot, error) {
	return c.mutate(ctx, http.MethodPost, api.PathInnings, req)
}

// RecordDelivery appends a ball to an innings.
func (c *Client) RecordDelivery(ctx context.Context, inningsID string, req api.RecordDeliveryRequest) (*ir.Snapshot, error) {
	return c.mutate(ctx, http.MethodPost, api.DeliveriesPath(inningsID), req)
}

// AssignRole puts a player into a role.
func (c *Client) AssignRole(ctx context.Context, inningsID, playerID string, role ir.Role) (*ir.Snapshot, error) {
	return c.mutate(ctx, http.MethodPut, api.RolesPath(inningsID), api.AssignRoleRequest{PlayerID: playerID, Role: role})
}

// UndoLastDelivery removes the match's most recent delivery.
func (c *Client) UndoLastDelivery(ctx context.Context, matchID string) (*ir.Snapshot, error) {
	return c.mutate(ctx, http.MethodPost, api.UndoPath(matchID), nil)
}

// EndInnings closes an innings by operator decision.
func (c *Client) EndInnings(ctx context.Context, inningsID string, reason ir.CloseReason) (*ir.Snapshot, error) {
	return c.mutate(ctx, http.MethodPost, api.EndInningsPath(inningsID), api.EndInningsRequest{Reason: reason})
}

// AbandonMatch ends a match without a result.
func (c *Client) AbandonMatch(ctx context.Context, matchID string) (*ir.Snapshot, error) {
	return c.mutate(ctx, http.MethodPost, api.AbandonPath(matchID), nil)
}

// CreateMatch schedules a match.
func (c *Client) CreateMatch(ctx context.Context, req api.CreateMatchRequest) (*ir.Snapshot, error) {
	return c.mutate(ctx, http.MethodPost, api.PathMatches, req)
}

// CreateTeam creates a team with its roster.
func (c *Client) CreateTeam(ctx context.Context, name string, players []string) (ir.Team, error) {
	var team ir.Team
	err := c.do(ctx, http.MethodPost, api.PathTeams, api.CreateTeamRequest{Name: name, Players: players}, &team)
	return team, err
}

// ListMatches returns every match.
func (c *Client) ListMatches(ctx context.Context) ([]ir.Match, error) {
	var matches []ir.Match
	err := c.do(ctx, http.MethodGet, api.PathMatches, nil, &matches)
	return matches, err
}

// ListTeams returns every team.
func (c *Client) ListTeams(ctx context.Context) ([]ir.Team, error) {
	var teams []ir.Team
	err := c.do(ctx, http.MethodGet, api.PathTeams, nil, &teams)
	return teams, err
}

// Formats lists the match formats the server knows.
func (c *Client) Formats(ctx context.Context) ([]string, error) {
	var names []string
	err := c.do(ctx, http.MethodGet, api.PathFormats, nil, &names)
	return names, err
}

// DeleteMatch deletes a match. Deleting a missing match succeeds.
func (c *Client) DeleteMatch(ctx context.Context, matchID string) error {
	return c.do(ctx, http.MethodDelete, api.MatchPath(matchID), nil, nil)
}

// DeleteTeam deletes a team. Deleting a missing team succeeds.
func (c *Client) DeleteTeam(ctx context.Context, teamID string) error {
	return c.do(ctx, http.MethodDelete, api.TeamPath(teamID), nil, nil)
}

func (c *Client) mutate(ctx context.Context, method, path string, in any) (*ir.Snapshot, error) {
	var snap ir.Snapshot
	if err := c.do(ctx, method, path, in, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
