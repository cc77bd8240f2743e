package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validScenario = `
name: ok
description: minimal
teams:
  home: [H1, H2]
  away: [A1, A2]
steps:
  - start: {innings: 1, batting: home}
  - assign: {striker: H1, non_striker: H2, bowler: A1}
  - ball: {runs: 4}
assertions:
  - type: innings
    innings: 1
    expect: {runs: 4}
`

func TestParseScenario(t *testing.T) {
	s, err := ParseScenario([]byte(validScenario))
	require.NoError(t, err)

	assert.Equal(t, "ok", s.Name)
	assert.Equal(t, []string{"H1", "H2"}, s.Teams.Home)
	require.Len(t, s.Steps, 3)
	require.NotNil(t, s.Steps[2].Ball)
	assert.Equal(t, 4, s.Steps[2].Ball.Runs)
	assert.Nil(t, s.Steps[2].Ball.Over)
	require.Len(t, s.Assertions, 1)
	assert.Equal(t, 4, s.Assertions[0].Expect["runs"])
}

func TestParseScenario_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "unknown field",
			yaml: validScenario + "bogus: true\n",
			want: "field bogus not found",
		},
		{
			name: "missing name",
			yaml: "description: x\nteams: {home: [H1], away: [A1]}\nsteps: [{undo: true}]\n",
			want: "name is required",
		},
		{
			name: "missing teams",
			yaml: "name: x\ndescription: x\nsteps: [{undo: true}]\n",
			want: "teams.home and teams.away are required",
		},
		{
			name: "duplicate player",
			yaml: "name: x\ndescription: x\nteams: {home: [P1], away: [P1]}\nsteps: [{undo: true}]\n",
			want: `player name "P1" is used twice`,
		},
		{
			name: "no steps",
			yaml: "name: x\ndescription: x\nteams: {home: [H1], away: [A1]}\n",
			want: "steps list is required",
		},
		{
			name: "two actions",
			yaml: "name: x\ndescription: x\nteams: {home: [H1], away: [A1]}\nsteps: [{undo: true, abandon: true}]\n",
			want: "exactly one action is required, found 2",
		},
		{
			name: "bad side",
			yaml: "name: x\ndescription: x\nteams: {home: [H1], away: [A1]}\nsteps: [{start: {innings: 1, batting: visitors}}]\n",
			want: "start.batting",
		},
		{
			name: "unknown player",
			yaml: "name: x\ndescription: x\nteams: {home: [H1], away: [A1]}\nsteps: [{assign: {striker: Z9}}]\n",
			want: `unknown player "Z9"`,
		},
		{
			name: "bad extra",
			yaml: "name: x\ndescription: x\nteams: {home: [H1], away: [A1]}\nsteps: [{ball: {extra: beamer}}]\n",
			want: `unknown extra type "beamer"`,
		},
		{
			name: "automatic end reason",
			yaml: "name: x\ndescription: x\nteams: {home: [H1], away: [A1]}\nsteps: [{end: all_out}]\n",
			want: "end must be declared or abandoned",
		},
		{
			name: "lower case expect",
			yaml: "name: x\ndescription: x\nteams: {home: [H1], away: [A1]}\nsteps: [{undo: true, expect: empty_ledger}]\n",
			want: "expect must be an error code",
		},
		{
			name: "bad over rule",
			yaml: "name: x\ndescription: x\nconsecutive_over: lenient\nteams: {home: [H1], away: [A1]}\nsteps: [{undo: true}]\n",
			want: "consecutive_over",
		},
		{
			name: "assertion without expect",
			yaml: "name: x\ndescription: x\nteams: {home: [H1], away: [A1]}\nsteps: [{undo: true}]\nassertions: [{type: match}]\n",
			want: "expect is required for match",
		},
		{
			name: "batter needs innings",
			yaml: "name: x\ndescription: x\nteams: {home: [H1], away: [A1]}\nsteps: [{undo: true}]\nassertions: [{type: batter, player: H1, expect: {runs: 1}}]\n",
			want: "innings must be 1 or 2",
		},
		{
			name: "unknown assertion",
			yaml: "name: x\ndescription: x\nteams: {home: [H1], away: [A1]}\nsteps: [{undo: true}]\nassertions: [{type: weather, expect: {rain: 1}}]\n",
			want: `unknown assertion type "weather"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
