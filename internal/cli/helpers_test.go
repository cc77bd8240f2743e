package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"

	"github.com/roach88/crease/internal/engine"
	"github.com/roach88/crease/internal/feed"
	"github.com/roach88/crease/internal/format"
	"github.com/roach88/crease/internal/ir"
	"github.com/roach88/crease/internal/server"
	"github.com/roach88/crease/internal/store"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

// testEnv keeps command runs independent of the developer's environment.
func testEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CREASE_CONFIG", "")
	t.Setenv("CREASE_BATCH_DELAY", "0s")
	t.Setenv("CREASE_LIVE_POLL_INTERVAL", "20ms")
	t.Setenv("CREASE_CLIENT_TOKEN", "")
}

// newTestServer serves a fresh engine backed by a database file.
func newTestServer(t *testing.T) (url string, eng *engine.Engine) {
	t.Helper()
	eng, _ = newTestEngine(t, filepath.Join(t.TempDir(), "crease.db"))
	hub := feed.NewHub()
	srv := httptest.NewServer(server.New(eng, server.WithHub(hub)).Handler())
	t.Cleanup(srv.Close)
	return srv.URL, eng
}

func newTestEngine(t *testing.T, dbPath string) (*engine.Engine, *store.Store) {
	t.Helper()
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	formats, err := format.Load("")
	require.NoError(t, err)
	return engine.New(st, formats), st
}

// runCLI executes the root command with args and returns stdout, stderr
// and the command error.
func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	testEnv(t)
	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

// decodeData unmarshals the data of a JSON CLI response.
func decodeData(t *testing.T, out string, v any) {
	t.Helper()
	var resp struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	require.Equal(t, "ok", resp.Status, out)
	require.NoError(t, json.Unmarshal(resp.Data, v))
}

// seedLiveMatch creates Rovers (Ana, Bea, Cal) v United (Dee, Eli, Fay) in
// the t20 format with the first innings started and every role filled.
func seedLiveMatch(t *testing.T, eng *engine.Engine) *ir.Snapshot {
	t.Helper()
	ctx := context.Background()
	home, err := eng.CreateTeam(ctx, "Rovers", []string{"Ana", "Bea", "Cal"})
	require.NoError(t, err)
	away, err := eng.CreateTeam(ctx, "United", []string{"Dee", "Eli", "Fay"})
	require.NoError(t, err)

	snap, err := eng.CreateMatch(ctx, engine.NewMatch{Team1ID: home.ID, Team2ID: away.ID, Format: "t20"})
	require.NoError(t, err)
	snap, err = eng.StartInnings(ctx, snap.Match.ID, home.ID, away.ID, 1)
	require.NoError(t, err)

	inn := snap.Current.InningsID
	_, err = eng.AssignRole(ctx, inn, home.Players[0].ID, ir.RoleStriker)
	require.NoError(t, err)
	_, err = eng.AssignRole(ctx, inn, home.Players[1].ID, ir.RoleNonStriker)
	require.NoError(t, err)
	snap, err = eng.AssignRole(ctx, inn, away.Players[0].ID, ir.RoleBowler)
	require.NoError(t, err)
	return snap
}
