package engine

import "github.com/google/uuid"

// IDGenerator produces identifiers for new teams, players, matches, innings
// and deliveries. Tests substitute testutil.SequenceIDs for readable,
// deterministic ids.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 identifiers.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate returns a new hyphenated UUIDv7. Panics if the system random
// source fails.
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
