// Package harness runs scoring scenarios against a real engine.
//
// A scenario names two sides, a match format and a list of operator steps.
// Each step runs through the engine exactly as the server would run it; the
// harness records a ball-by-ball trace and evaluates assertions against the
// final snapshot. Traces can be compared with golden files.
//
// # Scenario Format
//
//	name: chase_won_on_last_ball
//	description: "Second innings reaches the target"
//	format: mini
//	formats: |
//	  formats: mini: {overs_limit: 2, team_size: 3}
//	teams:
//	  home: [H1, H2, H3]
//	  away: [A1, A2, A3]
//	steps:
//	  - start: {innings: 1, batting: home}
//	  - assign: {striker: H1, non_striker: H2, bowler: A1}
//	  - ball: {runs: 4}
//	  - ball: {extra: wide}
//	  - ball: {over: 3, ball: 1}
//	    expect: OUT_OF_SEQUENCE
//	  - undo: true
//	assertions:
//	  - type: innings
//	    innings: 1
//	    expect: {runs: 4, legal_balls: 1}
//
// Ball positions default to the next expected position. Players are named
// by their roster names; the two sides are "home" and "away".
//
// # Assertion Types
//
//   - innings: runs, wickets, legal_balls, overs, status, close_reason,
//     extras, partnership_runs, partnership_balls, target, runs_needed
//   - match: status, outcome, winner (home|away), target
//   - roles: striker, non_striker, bowler
//   - batter / bowler: one player's figures in one innings
//   - rejections: how many steps failed with code
//
// # Determinism
//
// Every run uses a fresh in-memory store and sequential identifiers, so the
// same scenario always produces the same trace.
package harness
