// Package models defines the core domain model for the paluwagan engine.
//
// # Entities
//
//   - Client: identity record for a natural person
//   - Group: a paluwagan cohort with a lifecycle status and a pointer to the
//     currently active cycle
//   - Membership: a client's rotation slot (position) in a group
//   - Cycle: one rotation period, bound to a date window and a status
//   - Contribution: one member's payment obligation for one cycle
//   - Payout: the lump-sum disbursement for one cycle's recipient
//   - GroupTermination: append-only record of a manual group termination
//
// # Design Principles
//
// 1. **Explicit state machines**: status enums carry their own transition
// tables; nothing relies on database triggers or ORM callbacks.
// 2. **Unix timestamps**: all timestamps are unix seconds; nullable ones are
// *int64. Cycle start/end dates are ISO "2006-01-02" strings.
// 3. **Integer surrogate IDs**: every entity is keyed by an int64 assigned by
// the store.
// 4. **Shared error vocabulary**: the sentinel errors in errors.go are the
// whole engine's failure taxonomy; storage and services both speak it.
package models
