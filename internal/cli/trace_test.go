package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrace_Text(t *testing.T) {
	path, _, snap := seedDatabase(t)

	out, _, err := runCLI(t, "", "trace", snap.Match.ID, "--db", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Innings 1: Rovers (in_progress)")
	assert.Contains(t, out, "    1  0.1   Dee to Ana, 1  1/0 (0.1)")
	assert.Contains(t, out, "    2  0.2   Dee to Bea, 0 wide  2/0 (0.1)")
	assert.Contains(t, out, "    3  0.2   Dee to Bea, 0, bowled Bea  2/1 (0.2)")
}

func TestTrace_JSON(t *testing.T) {
	path, _, snap := seedDatabase(t)

	out, _, err := runCLI(t, "", "--format", "json", "trace", snap.Match.ID, "--db", path)
	require.NoError(t, err)

	var result TraceResult
	decodeData(t, out, &result)
	require.Len(t, result.Innings, 1)
	timeline := result.Innings[0].Timeline
	require.Len(t, timeline, 3)
	assert.Equal(t, TraceEntry{
		Seq: 3, Position: "0.2", Bowler: "Dee", Striker: "Bea", NonStriker: "Ana",
		Runs: 0, Extra: "none", Wicket: "bowled", Out: "Bea", Score: "2/1 (0.2)",
	}, timeline[2])
}

func TestTrace_InningsFilter(t *testing.T) {
	path, _, snap := seedDatabase(t)

	out, _, err := runCLI(t, "", "trace", snap.Match.ID, "--db", path, "--innings", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "No innings recorded.")
}

func TestTrace_UnknownMatch(t *testing.T) {
	path, _, _ := seedDatabase(t)

	out, _, err := runCLI(t, "", "trace", "no-such-match", "--db", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "NOT_FOUND")
}

func TestTrace_MissingDatabase(t *testing.T) {
	_, _, err := runCLI(t, "", "trace", "m1", "--db", filepath.Join(t.TempDir(), "absent.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
