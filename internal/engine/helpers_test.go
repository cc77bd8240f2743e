package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/crease/internal/feed"
	"github.com/roach88/crease/internal/format"
	"github.com/roach88/crease/internal/ir"
	"github.com/roach88/crease/internal/store"
)

// miniFormat is two overs a side with a wicket cap of 2.
const miniFormat = `formats: mini: {
	overs_limit: 2
	team_size:   3
}
`

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func setupTestCatalog(t *testing.T) *format.Catalog {
	t.Helper()
	path := filepath.Join(t.TempDir(), "formats.cue")
	require.NoError(t, os.WriteFile(path, []byte(miniFormat), 0o644))
	c, err := format.Load(path)
	require.NoError(t, err)
	return c
}

// fixture is a match between two five-player sides, Home and Away.
type fixture struct {
	t     *testing.T
	ctx   context.Context
	eng   *Engine
	home  ir.Team
	away  ir.Team
	match ir.Match
	snap  *ir.Snapshot
}

func newFixture(t *testing.T, formatName string, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		t:   t,
		ctx: context.Background(),
		eng: New(setupTestStore(t), setupTestCatalog(t), opts...),
	}

	var err error
	f.home, err = f.eng.CreateTeam(f.ctx, "Home", []string{"H1", "H2", "H3", "H4", "H5"})
	require.NoError(t, err)
	f.away, err = f.eng.CreateTeam(f.ctx, "Away", []string{"A1", "A2", "A3", "A4", "A5"})
	require.NoError(t, err)

	f.snap, err = f.eng.CreateMatch(f.ctx, NewMatch{
		Team1ID:       f.home.ID,
		Team2ID:       f.away.ID,
		Format:        formatName,
		Venue:         "Basin Reserve",
		ScheduledDate: "2026-10-15",
	})
	require.NoError(t, err)
	f.match = f.snap.Match
	return f
}

// p returns the i-th (1-based) player of a team.
func p(team ir.Team, i int) string {
	return team.Players[i-1].ID
}

// start opens an innings with the usual openers and opening bowler: Home
// bats first, Away second.
func (f *fixture) start(number int) string {
	f.t.Helper()
	bat, bowl := f.home, f.away
	if number == 2 {
		bat, bowl = f.away, f.home
	}
	snap, err := f.eng.StartInnings(f.ctx, f.match.ID, bat.ID, bowl.ID, number)
	require.NoError(f.t, err)
	f.snap = snap
	id := snap.Current.InningsID

	f.assign(id, p(bat, 1), ir.RoleStriker)
	f.assign(id, p(bat, 2), ir.RoleNonStriker)
	f.assign(id, p(bowl, 1), ir.RoleBowler)
	return id
}

func (f *fixture) assign(inningsID, playerID string, role ir.Role) {
	f.t.Helper()
	snap, err := f.eng.AssignRole(f.ctx, inningsID, playerID, role)
	require.NoError(f.t, err)
	f.snap = snap
}

// ball records a delivery at the next expected position.
func (f *fixture) ball(inningsID string, runs int, extra ir.ExtraType, wicket ir.WicketType) *ir.Snapshot {
	f.t.Helper()
	snap, err := f.tryBall(inningsID, runs, extra, wicket)
	require.NoError(f.t, err)
	return snap
}

func (f *fixture) tryBall(inningsID string, runs int, extra ir.ExtraType, wicket ir.WicketType) (*ir.Snapshot, error) {
	over, ball := f.innings(inningsID).NextPosition()
	snap, err := f.eng.RecordDelivery(f.ctx, DeliveryInput{
		InningsID:  inningsID,
		OverNumber: over,
		BallNumber: ball,
		RunsOffBat: runs,
		Extra:      extra,
		Wicket:     wicket,
	})
	if err == nil {
		f.snap = snap
	}
	return snap, err
}

// dots records n dot balls.
func (f *fixture) dots(inningsID string, n int) {
	f.t.Helper()
	for i := 0; i < n; i++ {
		f.ball(inningsID, 0, ir.ExtraNone, ir.WicketNone)
	}
}

func (f *fixture) undo() (*ir.Snapshot, error) {
	snap, err := f.eng.UndoLastDelivery(f.ctx, f.match.ID)
	if err == nil {
		f.snap = snap
	}
	return snap, err
}

func (f *fixture) live() *ir.Snapshot {
	f.t.Helper()
	snap, err := f.eng.LiveSnapshot(f.ctx, f.match.ID)
	require.NoError(f.t, err)
	return snap
}

func (f *fixture) innings(id string) ir.Innings {
	f.t.Helper()
	for _, inn := range f.live().Innings {
		if inn.ID == id {
			return inn
		}
	}
	f.t.Fatalf("innings %s not found", id)
	return ir.Innings{}
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []feed.Event
}

func (r *recordingPublisher) Publish(_ context.Context, ev feed.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingPublisher) Events() []feed.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]feed.Event(nil), r.events...)
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, feed.Event) error {
	return errors.New("broker unavailable")
}
