// Package engine implements the live scoring engine: the delivery ledger, the
// innings state machine built on it, role assignment and undo.
//
// Every mutation runs in one store transaction. Innings counters are never
// adjusted in place; after each append or removal the innings ledger is
// folded again from an empty accumulator (see Fold) and the result is
// stored. A rejected operation leaves nothing written.
//
// Mutations are serialized by the Engine. Each one returns the complete
// post-mutation Snapshot, which is also published to the configured
// feed.Publisher once the transaction commits.
package engine
