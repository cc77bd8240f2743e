// Package store provides SQLite-backed durable storage for crease.
//
// The store holds:
//   - Teams and their rosters
//   - Matches, including the immutable target and the final result
//   - Innings rows whose counters mirror a fold of the ledger
//   - Deliveries: the append-only, per-innings ledger
//   - Role assignments: the mutable striker/non-striker/bowler pointer
//
// # Ordering
//
// Deliveries are read with ORDER BY seq ASC. Seq is assigned inside the
// INSERT as MAX(seq)+1 for the innings, so it is strictly increasing per
// innings and the UNIQUE(innings_id, seq) constraint rejects any race.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// # Transactions
//
// Every engine operation runs inside Store.InTx and touches the database only
// through the *Queries it is handed. The pool holds a single connection, so
// using the Store itself inside the callback would deadlock.
package store
