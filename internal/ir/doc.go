// Package ir provides the shared domain and wire types for crease.
//
// This package contains type definitions and pure helpers only. All other
// internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Deliveries are ordered by Seq alone, never by timestamps
//   - Innings counters (runs, wickets, legal balls) are derived from the
//     ledger and are never written independently
//   - All JSON tags use snake_case
//   - Canonical JSON (used for snapshot versions) carries no floats; run
//     rates are derived display values and stay out of the digest
package ir
