package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLedger() []Delivery {
	return []Delivery{
		{ID: "d1", InningsID: "i1", Seq: 1, OverNumber: 0, BallNumber: 1, RunsOffBat: 4, Extra: ExtraNone, Wicket: WicketNone, StrikerID: "a", NonStrikerID: "b", BowlerID: "x"},
		{ID: "d2", InningsID: "i1", Seq: 2, OverNumber: 0, BallNumber: 2, RunsOffBat: 0, Extra: ExtraWide, Wicket: WicketNone, StrikerID: "a", NonStrikerID: "b", BowlerID: "x"},
	}
}

func TestLedgerDigestDeterministic(t *testing.T) {
	a, err := LedgerDigest(sampleLedger())
	require.NoError(t, err)
	b, err := LedgerDigest(sampleLedger())
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestLedgerDigestOrderSensitive(t *testing.T) {
	entries := sampleLedger()
	forward, err := LedgerDigest(entries)
	require.NoError(t, err)

	entries[0], entries[1] = entries[1], entries[0]
	reversed, err := LedgerDigest(entries)
	require.NoError(t, err)

	assert.NotEqual(t, forward, reversed)
}

func TestLedgerDigestEmpty(t *testing.T) {
	empty, err := LedgerDigest(nil)
	require.NoError(t, err)
	one, err := LedgerDigest(sampleLedger()[:1])
	require.NoError(t, err)
	assert.NotEqual(t, empty, one)
}

func TestSnapshotVersionChangesWithState(t *testing.T) {
	m := Match{ID: "m1", Status: MatchLive}
	innings := []Innings{{ID: "i1", Number: 1, Status: InningsInProgress}}
	ledgers := map[string][]Delivery{"i1": sampleLedger()}
	roles := map[string]RoleAssignment{"i1": {InningsID: "i1", StrikerID: "a", NonStrikerID: "b", BowlerID: "x"}}

	v1, err := SnapshotVersion(m, innings, ledgers, roles)
	require.NoError(t, err)

	roles["i1"] = roles["i1"].SwapEnds()
	v2, err := SnapshotVersion(m, innings, ledgers, roles)
	require.NoError(t, err)
	assert.NotEqual(t, v1, v2, "role change must change the version")

	target := 150
	m.TargetScore = &target
	v3, err := SnapshotVersion(m, innings, ledgers, roles)
	require.NoError(t, err)
	assert.NotEqual(t, v2, v3)
}

func TestDomainSeparation(t *testing.T) {
	data := []byte("[]")
	assert.NotEqual(t, hashWithDomain(DomainLedger, data), hashWithDomain(DomainSnapshot, data))
}
