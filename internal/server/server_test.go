package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/crease/internal/api"
	"github.com/roach88/crease/internal/engine"
	"github.com/roach88/crease/internal/feed"
	"github.com/roach88/crease/internal/format"
	"github.com/roach88/crease/internal/ir"
	"github.com/roach88/crease/internal/store"
)

type testServer struct {
	t   *testing.T
	srv *httptest.Server
	hub *feed.Hub
	eng *engine.Engine
}

func newTestServer(t *testing.T, opts ...Option) *testServer {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	formats, err := format.Load("")
	require.NoError(t, err)

	hub := feed.NewHub()
	eng := engine.New(s, formats, engine.WithPublisher(hub))
	srv := httptest.NewServer(New(eng, append([]Option{WithHub(hub)}, opts...)...).Handler())
	t.Cleanup(srv.Close)
	return &testServer{t: t, srv: srv, hub: hub, eng: eng}
}

// do sends a JSON request and decodes the envelope.
func (ts *testServer) do(method, path string, body any, headers ...string) (*http.Response, api.Envelope) {
	ts.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(ts.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, ts.srv.URL+path, &buf)
	require.NoError(ts.t, err)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(ts.t, err)
	defer resp.Body.Close()

	var env api.Envelope
	if resp.StatusCode != http.StatusNotModified {
		require.NoError(ts.t, json.NewDecoder(resp.Body).Decode(&env))
	}
	return resp, env
}

func (ts *testServer) snapshot(method, path string, body any) *ir.Snapshot {
	ts.t.Helper()
	resp, env := ts.do(method, path, body)
	require.Nil(ts.t, env.Error, "unexpected error envelope")
	require.Less(ts.t, resp.StatusCode, 300)
	var snap ir.Snapshot
	require.NoError(ts.t, json.Unmarshal(env.Data, &snap))
	return &snap
}

func (ts *testServer) team(name string, players ...string) ir.Team {
	ts.t.Helper()
	resp, env := ts.do(http.MethodPost, api.PathTeams, api.CreateTeamRequest{Name: name, Players: players})
	require.Equal(ts.t, http.StatusCreated, resp.StatusCode)
	var team ir.Team
	require.NoError(ts.t, json.Unmarshal(env.Data, &team))
	return team
}

// liveMatch sets up a T20 match with innings 1 started and all roles filled.
func (ts *testServer) liveMatch() (ir.Team, ir.Team, *ir.Snapshot) {
	home := ts.team("Home", "H1", "H2", "H3")
	away := ts.team("Away", "A1", "A2", "A3")
	snap := ts.snapshot(http.MethodPost, api.PathMatches, api.CreateMatchRequest{
		Team1ID: home.ID, Team2ID: away.ID, Format: "t20",
	})
	snap = ts.snapshot(http.MethodPost, api.PathInnings, api.StartInningsRequest{
		MatchID: snap.Match.ID, BattingTeamID: home.ID, BowlingTeamID: away.ID, InningNumber: 1,
	})
	inn := snap.Current.InningsID
	ts.snapshot(http.MethodPut, api.RolesPath(inn), api.AssignRoleRequest{PlayerID: home.Players[0].ID, Role: ir.RoleStriker})
	ts.snapshot(http.MethodPut, api.RolesPath(inn), api.AssignRoleRequest{PlayerID: home.Players[1].ID, Role: ir.RoleNonStriker})
	snap = ts.snapshot(http.MethodPut, api.RolesPath(inn), api.AssignRoleRequest{PlayerID: away.Players[0].ID, Role: ir.RoleBowler})
	return home, away, snap
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, env := ts.do(http.MethodGet, api.PathHealth, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok","engine":"`+ir.EngineVersion+`","version":"`+ir.WireVersion+`"}`, string(env.Data))
}

func TestScoringFlow(t *testing.T) {
	ts := newTestServer(t)
	_, _, snap := ts.liveMatch()
	inn := snap.Current.InningsID

	snap = ts.snapshot(http.MethodPost, api.DeliveriesPath(inn), api.RecordDeliveryRequest{OverNumber: 0, BallNumber: 1, RunsOffBat: 4})
	assert.Equal(t, 4, snap.Innings[0].Runs)

	snap = ts.snapshot(http.MethodPost, api.DeliveriesPath(inn), api.RecordDeliveryRequest{OverNumber: 0, BallNumber: 2, ExtraType: ir.ExtraWide})
	assert.Equal(t, 5, snap.Innings[0].Runs)
	assert.Equal(t, 1, snap.Innings[0].LegalBalls)

	snap = ts.snapshot(http.MethodPost, api.UndoPath(snap.Match.ID), nil)
	assert.Equal(t, 4, snap.Innings[0].Runs)
	assert.Len(t, snap.Current.RecentBalls, 1)
}

func TestErrorStatusMapping(t *testing.T) {
	ts := newTestServer(t)
	_, away, snap := ts.liveMatch()
	inn := snap.Current.InningsID
	matchID := snap.Match.ID

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
		field  string
	}{
		{"empty ledger", http.MethodPost, api.UndoPath(matchID), nil, http.StatusConflict, "EMPTY_LEDGER", ""},
		{"out of sequence", http.MethodPost, api.DeliveriesPath(inn), api.RecordDeliveryRequest{OverNumber: 3, BallNumber: 1}, http.StatusUnprocessableEntity, "OUT_OF_SEQUENCE", "ball_number"},
		{"runs out of range", http.MethodPost, api.DeliveriesPath(inn), api.RecordDeliveryRequest{BallNumber: 1, RunsOffBat: 9}, http.StatusUnprocessableEntity, "VALIDATION_FAILED", "runs_off_bat"},
		{"roster", http.MethodPut, api.RolesPath(inn), api.AssignRoleRequest{PlayerID: away.Players[1].ID, Role: ir.RoleStriker}, http.StatusUnprocessableEntity, "ROSTER_MISMATCH", "player_id"},
		{"innings exists", http.MethodPost, api.PathInnings, api.StartInningsRequest{MatchID: matchID, BattingTeamID: snap.Match.Team1ID, BowlingTeamID: snap.Match.Team2ID, InningNumber: 1}, http.StatusConflict, "INVALID_TRANSITION", ""},
		{"unknown match", http.MethodGet, api.LivePath("nope"), nil, http.StatusNotFound, "NOT_FOUND", ""},
		{"unknown route", http.MethodGet, "/api/nothing", nil, http.StatusNotFound, "NOT_FOUND", ""},
		{"unknown field", http.MethodPost, api.DeliveriesPath(inn), map[string]any{"runs": 1}, http.StatusBadRequest, api.CodeBadRequest, ""},
		{"team in use", http.MethodDelete, api.TeamPath(snap.Match.Team1ID), nil, http.StatusConflict, "RESOURCE_IN_USE", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, env := ts.do(tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
			if tt.field != "" {
				assert.Contains(t, env.Error.Fields, tt.field)
			}
		})
	}
}

func TestLive_ETag(t *testing.T) {
	ts := newTestServer(t)
	_, _, snap := ts.liveMatch()

	resp, _ := ts.do(http.MethodGet, api.LivePath(snap.Match.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	etag := resp.Header.Get("ETag")
	assert.Equal(t, `"`+snap.Version+`"`, etag)

	resp, _ = ts.do(http.MethodGet, api.LivePath(snap.Match.ID), nil, "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, resp.StatusCode)

	ts.snapshot(http.MethodPost, api.DeliveriesPath(snap.Current.InningsID), api.RecordDeliveryRequest{BallNumber: 1, RunsOffBat: 1})
	resp, _ = ts.do(http.MethodGet, api.LivePath(snap.Match.ID), nil, "If-None-Match", etag)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDelete_Idempotent(t *testing.T) {
	ts := newTestServer(t)
	_, _, snap := ts.liveMatch()

	for i := 0; i < 2; i++ {
		resp, env := ts.do(http.MethodDelete, api.MatchPath(snap.Match.ID), nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"id":"`+snap.Match.ID+`"}`, string(env.Data))
	}
}

func TestToken_RequiredForMutations(t *testing.T) {
	ts := newTestServer(t, WithToken("s3cret"))

	resp, env := ts.do(http.MethodPost, api.PathTeams, api.CreateTeamRequest{Name: "X", Players: []string{"a", "b"}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, api.CodeUnauthorized, env.Error.Code)

	resp, _ = ts.do(http.MethodPost, api.PathTeams, api.CreateTeamRequest{Name: "X", Players: []string{"a", "b"}},
		"Authorization", "Bearer s3cret")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = ts.do(http.MethodGet, api.PathTeams, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "reads stay open")
}

func TestStream_PushesSnapshots(t *testing.T) {
	ts := newTestServer(t)
	_, _, snap := ts.liveMatch()

	url := "ws" + strings.TrimPrefix(ts.srv.URL, "http") + api.StreamPath(snap.Match.ID)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var first feed.Event
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, snap.Version, first.Version)
	require.NotNil(t, first.Snapshot)

	require.Eventually(t, func() bool { return ts.hub.Subscribers(snap.Match.ID) == 1 }, time.Second, 10*time.Millisecond)
	ts.snapshot(http.MethodPost, api.DeliveriesPath(snap.Current.InningsID), api.RecordDeliveryRequest{BallNumber: 1, RunsOffBat: 6})

	var ev feed.Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, feed.EventDeliveryRecorded, ev.Type)
	require.NotNil(t, ev.Snapshot)
	assert.Equal(t, 6, ev.Snapshot.Innings[0].Runs)
}

func TestStream_MutationWhileOpeningIsDelivered(t *testing.T) {
	var (
		ts        *testServer
		inningsID string
		once      sync.Once
	)
	committed := make(chan string, 1)
	ts = newTestServer(t, func(s *Server) {
		s.subscribed = func(string) {
			once.Do(func() {
				snap, err := ts.eng.RecordDelivery(context.Background(), engine.DeliveryInput{
					InningsID: inningsID, OverNumber: 0, BallNumber: 1, RunsOffBat: 4,
				})
				if err != nil {
					committed <- "error: " + err.Error()
					return
				}
				committed <- snap.Version
			})
		}
	})
	_, _, snap := ts.liveMatch()
	inningsID = snap.Current.InningsID

	url := "ws" + strings.TrimPrefix(ts.srv.URL, "http") + api.StreamPath(snap.Match.ID)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	latest := <-committed
	require.NotContains(t, latest, "error")

	var first feed.Event
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, latest, first.Version, "the opening snapshot includes the delivery")
	require.NotNil(t, first.Snapshot)
	assert.Equal(t, 4, first.Snapshot.Innings[0].Runs)

	// The subscription was live during the delivery, so its event follows.
	var ev feed.Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, feed.EventDeliveryRecorded, ev.Type)
	assert.Equal(t, latest, ev.Version)

	ts.snapshot(http.MethodPost, api.DeliveriesPath(inningsID), api.RecordDeliveryRequest{OverNumber: 0, BallNumber: 2, RunsOffBat: 2})
	require.NoError(t, conn.ReadJSON(&ev))
	require.NotNil(t, ev.Snapshot)
	assert.Equal(t, 6, ev.Snapshot.Innings[0].Runs)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusConflict, statusFor(engine.CodeIncompleteRoleAssignment))
	assert.Equal(t, http.StatusConflict, statusFor(engine.CodeConsecutiveOverViolation))
	assert.Equal(t, http.StatusConflict, statusFor(engine.CodeInningsNotActive))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(engine.CodeBatterDismissed))
	assert.Equal(t, http.StatusInternalServerError, statusFor("SOMETHING_ELSE"))
}
