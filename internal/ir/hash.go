package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content digests. The version suffix allows the
// algorithm to change without colliding with old digests.
const (
	DomainSnapshot = "crease/snapshot/v1"
	DomainLedger   = "crease/ledger/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// LedgerDigest hashes an innings ledger. Two ledgers with the same entries
// in the same order always produce the same digest.
func LedgerDigest(entries []Delivery) (string, error) {
	list := make([]any, len(entries))
	for i, d := range entries {
		list[i] = deliveryObject(d)
	}
	canonical, err := MarshalCanonical(list)
	if err != nil {
		return "", fmt.Errorf("LedgerDigest: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainLedger, canonical), nil
}

// SnapshotVersion computes the version tag of a live snapshot from the state
// that determines it: the match row, each innings with its ledger digest,
// and the role assignment of each innings. Derived statistics are excluded
// since they are a pure function of these inputs.
func SnapshotVersion(m Match, innings []Innings, ledgers map[string][]Delivery, roles map[string]RoleAssignment) (string, error) {
	inningsList := make([]any, len(innings))
	for i, inn := range innings {
		digest, err := LedgerDigest(ledgers[inn.ID])
		if err != nil {
			return "", fmt.Errorf("SnapshotVersion: %w", err)
		}
		r := roles[inn.ID]
		inningsList[i] = map[string]any{
			"id":           inn.ID,
			"number":       inn.Number,
			"batting":      inn.BattingTeamID,
			"bowling":      inn.BowlingTeamID,
			"status":       string(inn.Status),
			"close_reason": string(inn.CloseReason),
			"ledger":       digest,
			"striker":      r.StrikerID,
			"non_striker":  r.NonStrikerID,
			"bowler":       r.BowlerID,
			"runs":         inn.Runs,
			"wickets":      inn.Wickets,
			"legal_balls":  inn.LegalBalls,
		}
	}

	target := -1
	if m.TargetScore != nil {
		target = *m.TargetScore
	}
	obj := map[string]any{
		"match_id": m.ID,
		"status":   string(m.Status),
		"target":   target,
		"winner":   m.WinnerTeamID,
		"outcome":  string(m.Outcome),
		"innings":  inningsList,
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("SnapshotVersion: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSnapshot, canonical), nil
}

func deliveryObject(d Delivery) map[string]any {
	return map[string]any{
		"id":          d.ID,
		"seq":         d.Seq,
		"over":        d.OverNumber,
		"ball":        d.BallNumber,
		"runs":        d.RunsOffBat,
		"extra":       string(d.Extra),
		"wicket":      string(d.Wicket),
		"out":         d.OutPlayerID,
		"striker":     d.StrikerID,
		"non_striker": d.NonStrikerID,
		"bowler":      d.BowlerID,
	}
}
