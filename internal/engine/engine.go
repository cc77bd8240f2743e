package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/crease/internal/feed"
	"github.com/roach88/crease/internal/format"
	"github.com/roach88/crease/internal/ir"
	"github.com/roach88/crease/internal/store"
)

// DefaultRecentBalls is how many deliveries the live context carries.
const DefaultRecentBalls = 6

// OverRule selects how the consecutive-over rule is applied at bowler
// assignment.
type OverRule string

const (
	// OverRuleEnforce rejects the previous over's bowler.
	OverRuleEnforce OverRule = "enforce"

	// OverRuleAdvisory logs a warning and accepts the assignment.
	OverRuleAdvisory OverRule = "advisory"
)

// ParseOverRule validates an over rule name.
func ParseOverRule(s string) (OverRule, error) {
	switch r := OverRule(s); r {
	case OverRuleEnforce, OverRuleAdvisory:
		return r, nil
	case "":
		return OverRuleEnforce, nil
	}
	return "", fmt.Errorf("unknown consecutive-over rule %q (want enforce or advisory)", s)
}

// Engine applies scoring operations to the store.
//
// Thread-safety: all mutating methods are serialized by an internal mutex,
// so two operations on the same engine never interleave. Reads go straight
// to the store.
type Engine struct {
	store   *store.Store
	formats *format.Catalog
	ids     IDGenerator
	clock   *Clock
	pub     feed.Publisher
	logger  *slog.Logger

	recentBalls int
	overRule    OverRule

	mu sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithPublisher sets where committed events are sent. Default: feed.Nop.
func WithPublisher(p feed.Publisher) Option {
	return func(e *Engine) {
		e.pub = p
	}
}

// WithRecentBalls sets how many recent deliveries snapshots carry.
func WithRecentBalls(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.recentBalls = n
		}
	}
}

// WithOverRule sets how the consecutive-over rule is applied.
func WithOverRule(r OverRule) Option {
	return func(e *Engine) {
		e.overRule = r
	}
}

// WithIDGenerator replaces the UUIDv7 generator, for tests and golden traces.
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Engine) {
		e.ids = g
	}
}

// New creates an Engine over an open store and a format catalog.
func New(s *store.Store, formats *format.Catalog, opts ...Option) *Engine {
	e := &Engine{
		store:       s,
		formats:     formats,
		ids:         UUIDv7Generator{},
		clock:       NewClock(),
		pub:         feed.Nop{},
		logger:      slog.Default(),
		recentBalls: DefaultRecentBalls,
		overRule:    OverRuleEnforce,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Formats returns the catalog matches are created from.
func (e *Engine) Formats() *format.Catalog {
	return e.formats
}

// mutation is the body of one serialized, transactional operation. It
// returns the match and innings the event concerns.
type mutation func(ctx context.Context, q *store.Queries) (matchID, inningsID string, err error)

// apply runs fn in a transaction, then assembles the committed snapshot and
// publishes it. Publish failures are logged and never fail the operation.
func (e *Engine) apply(ctx context.Context, op feed.EventType, fn mutation) (*ir.Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var matchID, inningsID string
	err := e.store.InTx(ctx, func(q *store.Queries) error {
		var err error
		matchID, inningsID, err = fn(ctx, q)
		return err
	})
	if err != nil {
		return nil, err
	}

	snap, err := e.snapshot(ctx, e.store.Queries, matchID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	e.publish(ctx, feed.Event{
		Type:      op,
		MatchID:   matchID,
		InningsID: inningsID,
		Version:   snap.Version,
		Snapshot:  snap,
	})
	return snap, nil
}

func (e *Engine) publish(ctx context.Context, ev feed.Event) {
	ev.Seq = e.clock.Next()
	if err := e.pub.Publish(ctx, ev); err != nil {
		e.logger.Warn("publish event failed",
			"type", ev.Type,
			"match", ev.MatchID,
			"seq", ev.Seq,
			"error", err)
	}
}

// loadInnings fetches an innings and its match.
func loadInnings(ctx context.Context, q *store.Queries, inningsID string) (ir.Match, ir.Innings, error) {
	inn, err := q.GetInnings(ctx, inningsID)
	if err != nil {
		return ir.Match{}, ir.Innings{}, mapStoreError(err)
	}
	m, err := q.GetMatch(ctx, inn.MatchID)
	if err != nil {
		return ir.Match{}, ir.Innings{}, mapStoreError(err)
	}
	return m, inn, nil
}

// settle stores a recomputed innings and, when it closes the final innings,
// completes the match. It returns the possibly updated match.
func settle(ctx context.Context, q *store.Queries, m ir.Match, inn ir.Innings) (ir.Match, error) {
	if err := q.UpdateInningsState(ctx, inn); err != nil {
		return m, err
	}
	if inn.Active() || inn.Number != ir.InningsPerMatch || m.Status == ir.MatchAbandoned {
		return m, nil
	}
	m = completeMatch(m, inn)
	if err := q.UpdateMatchState(ctx, m); err != nil {
		return m, err
	}
	return m, nil
}

// completeMatch decides the result from the closed chasing innings.
func completeMatch(m ir.Match, chase ir.Innings) ir.Match {
	m.Status = ir.MatchCompleted
	m.WinnerTeamID = ""

	switch {
	case chase.CloseReason == ir.CloseAbandoned:
		m.Outcome = ir.OutcomeNoResult
	case m.TargetScore == nil:
		m.Outcome = ir.OutcomeNoResult
	case chase.Runs >= *m.TargetScore:
		m.Outcome = ir.OutcomeWin
		m.WinnerTeamID = chase.BattingTeamID
	case chase.Runs == *m.TargetScore-1:
		m.Outcome = ir.OutcomeTie
	default:
		m.Outcome = ir.OutcomeWin
		m.WinnerTeamID = chase.BowlingTeamID
	}
	return m
}
