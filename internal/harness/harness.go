package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/crease/internal/engine"
	"github.com/roach88/crease/internal/format"
	"github.com/roach88/crease/internal/ir"
	"github.com/roach88/crease/internal/stats"
	"github.com/roach88/crease/internal/store"
	"github.com/roach88/crease/internal/testutil"
)

// Harness drives one scenario against a fresh engine.
type Harness struct {
	store  *store.Store
	engine *engine.Engine
	ctx    context.Context

	// players maps roster names to ids, names maps back.
	players map[string]string
	names   map[string]string
	teams   map[string]string
	snap    *ir.Snapshot
}

// Run executes a scenario and returns its result.
//
// An error is returned only when the scenario cannot be set up (bad format,
// rosters the engine rejects). Steps that behave unexpectedly and failed
// assertions are reported in the result.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	formats, err := format.LoadSource(scenario.Name+".formats", []byte(scenario.Formats))
	if err != nil {
		return nil, fmt.Errorf("failed to load formats: %w", err)
	}
	rule, err := engine.ParseOverRule(scenario.ConsecutiveOver)
	if err != nil {
		return nil, err
	}

	h := &Harness{
		store: st,
		engine: engine.New(st, formats,
			engine.WithIDGenerator(testutil.NewSequenceIDs(scenario.Name)),
			engine.WithOverRule(rule),
			engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))),
		ctx:     context.Background(),
		players: make(map[string]string),
		names:   make(map[string]string),
		teams:   make(map[string]string),
	}
	if err := h.setup(scenario); err != nil {
		return nil, fmt.Errorf("failed to set up match: %w", err)
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		h.execute(i+1, step, result)
	}
	result.Final = h.snap

	for _, msg := range EvaluateAssertions(result, scenario.Assertions, h.names) {
		result.AddError(msg)
	}
	return result, nil
}

func (h *Harness) setup(s *Scenario) error {
	for _, side := range []struct {
		key     string
		name    string
		players []string
	}{
		{Home, "Home", s.Teams.Home},
		{Away, "Away", s.Teams.Away},
	} {
		team, err := h.engine.CreateTeam(h.ctx, side.name, side.players)
		if err != nil {
			return err
		}
		h.teams[side.key] = team.ID
		h.names[team.ID] = side.key
		for _, p := range team.Players {
			h.players[p.Name] = p.ID
			h.names[p.ID] = p.Name
		}
	}

	formatName := s.Format
	if formatName == "" {
		formatName = "t20"
	}
	snap, err := h.engine.CreateMatch(h.ctx, engine.NewMatch{
		Team1ID: h.teams[Home],
		Team2ID: h.teams[Away],
		Format:  formatName,
	})
	if err != nil {
		return err
	}
	h.snap = snap
	return nil
}

// execute runs one step, which may record several trace events (dots).
func (h *Harness) execute(n int, step Step, result *Result) {
	if step.Dots > 0 {
		for i := 0; i < step.Dots; i++ {
			ev, err := h.ball(BallStep{})
			h.record(n, ev, err, step.Expect, result)
			if err != nil {
				return
			}
		}
		return
	}

	var (
		ev  TraceEvent
		err error
	)
	switch {
	case step.Start != nil:
		ev, err = h.start(*step.Start)
	case step.Assign != nil:
		ev, err = h.assign(*step.Assign)
	case step.Ball != nil:
		ev, err = h.ball(*step.Ball)
	case step.Undo:
		ev = TraceEvent{Op: "undo"}
		err = h.mutate(h.engine.UndoLastDelivery(h.ctx, h.snap.Match.ID))
	case step.End != "":
		ev = TraceEvent{Op: "end", Input: step.End}
		err = h.mutate(h.engine.EndInnings(h.ctx, h.currentInnings(), ir.CloseReason(step.End)))
	case step.Abandon:
		ev = TraceEvent{Op: "abandon"}
		err = h.mutate(h.engine.AbandonMatch(h.ctx, h.snap.Match.ID))
	}
	h.record(n, ev, err, step.Expect, result)
}

// record fills in the post-step state and checks the outcome.
func (h *Harness) record(n int, ev TraceEvent, err error, expect string, result *Result) {
	ev.Step = n
	ev.Result = ResultOK
	if err != nil {
		ev.Result = string(engine.CodeOf(err))
		if ev.Result == "" {
			ev.Result = "ERROR"
			result.AddError(fmt.Sprintf("step %d (%s): %v", n, ev.Op, err))
		}
		// A rejected step leaves the match as it was, but refresh anyway so
		// the trace shows what the engine actually holds.
		if snap, serr := h.engine.LiveSnapshot(h.ctx, h.snap.Match.ID); serr == nil {
			h.snap = snap
		}
	}

	want := expect
	if want == "" {
		want = ResultOK
	}
	if ev.Result != want && ev.Result != "ERROR" {
		msg := fmt.Sprintf("step %d (%s): expected %s, got %s", n, ev.Op, want, ev.Result)
		if err != nil {
			msg += ": " + err.Error()
		}
		result.AddError(msg)
	}

	h.fillState(&ev)
	result.Trace = append(result.Trace, ev)
}

func (h *Harness) fillState(ev *TraceEvent) {
	ev.Match = string(h.snap.Match.Status)
	ev.Score = "0/0"
	ev.Overs = stats.OversDisplay(0)
	inn, ok := h.snap.CurrentInnings()
	if !ok {
		return
	}
	ev.Score = fmt.Sprintf("%d/%d", inn.Runs, inn.Wickets)
	ev.Overs = stats.OversDisplay(inn.LegalBalls)
	ev.Striker = h.names[h.snap.Current.StrikerID]
	ev.NonStriker = h.names[h.snap.Current.NonStrikerID]
	ev.Bowler = h.names[h.snap.Current.BowlerID]
}

func (h *Harness) mutate(snap *ir.Snapshot, err error) error {
	if err != nil {
		return err
	}
	h.snap = snap
	return nil
}

func (h *Harness) currentInnings() string {
	if h.snap.Current == nil {
		return ""
	}
	return h.snap.Current.InningsID
}

func (h *Harness) start(s StartStep) (TraceEvent, error) {
	bowling := Away
	if s.Batting == Away {
		bowling = Home
	}
	ev := TraceEvent{Op: "start", Input: fmt.Sprintf("innings %d, %s batting", s.Innings, s.Batting)}
	return ev, h.mutate(h.engine.StartInnings(h.ctx, h.snap.Match.ID, h.teams[s.Batting], h.teams[bowling], s.Innings))
}

func (h *Harness) assign(a AssignStep) (TraceEvent, error) {
	type pick struct {
		role ir.Role
		name string
	}
	var picks []pick
	var parts []string
	for _, p := range []pick{
		{ir.RoleStriker, a.Striker},
		{ir.RoleNonStriker, a.NonStriker},
		{ir.RoleBowler, a.Bowler},
	} {
		if p.name != "" {
			picks = append(picks, p)
			parts = append(parts, string(p.role)+" "+p.name)
		}
	}
	ev := TraceEvent{Op: "assign", Input: strings.Join(parts, ", ")}

	for _, p := range picks {
		if err := h.mutate(h.engine.AssignRole(h.ctx, h.currentInnings(), h.players[p.name], p.role)); err != nil {
			return ev, err
		}
	}
	return ev, nil
}

func (h *Harness) ball(b BallStep) (TraceEvent, error) {
	over, ball := 0, 1
	if inn, ok := h.snap.CurrentInnings(); ok {
		over, ball = inn.NextPosition()
	}
	if b.Over != nil {
		over = *b.Over
	}
	if b.Ball != nil {
		ball = *b.Ball
	}

	input := fmt.Sprintf("%d.%d %d", over, ball, b.Runs)
	if b.Extra != "" && b.Extra != string(ir.ExtraNone) {
		input += " " + b.Extra
	}
	if b.Wicket != "" && b.Wicket != string(ir.WicketNone) {
		input += " " + b.Wicket
	}
	if b.Out != "" {
		input += " out " + b.Out
	}
	ev := TraceEvent{Op: "ball", Input: input}

	return ev, h.mutate(h.engine.RecordDelivery(h.ctx, engine.DeliveryInput{
		InningsID:   h.currentInnings(),
		OverNumber:  over,
		BallNumber:  ball,
		RunsOffBat:  b.Runs,
		Extra:       ir.ExtraType(b.Extra),
		Wicket:      ir.WicketType(b.Wicket),
		OutPlayerID: h.players[b.Out],
	}))
}
