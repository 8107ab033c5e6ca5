// Package guard implements the behavioral abuse guards: rolling-window rate
// limiting, brute-force and credential-stuffing detection, password strength
// validation and session fingerprint binding.
//
// All counting state lives behind small store interfaces backed by the
// append-only audit tables, so correctness does not depend on process
// lifetime and the guards can run on any number of replicas.
package guard

import (
	"time"
)

// EventStore is the abuse window store: an append-only log of
// (identity, category, timestamp) tuples queryable by time range.
type EventStore interface {
	// Record appends one event.
	Record(identity, category string, at time.Time) error
	// CountSince returns the number of events for identity+category at or
	// after the cutoff.
	CountSince(identity, category string, since time.Time) (int64, error)
	// PurgeBefore deletes events for identity+category older than the cutoff.
	PurgeBefore(identity, category string, cutoff time.Time) error
}

// AttemptStore exposes the login attempt audit trail to the brute-force
// guard. Attempts are append-only; every query is computed against "now" at
// check time.
type AttemptStore interface {
	// RecordAttempt appends one authentication attempt.
	RecordAttempt(identity, username string, success bool, agent string, at time.Time) error
	// CountFailures returns failed attempts for username at or after cutoff.
	CountFailures(username string, since time.Time) (int64, error)
	// LastFailureTimes returns the timestamps of the most recent n failed
	// attempts for username, newest first.
	LastFailureTimes(username string, n int) ([]time.Time, error)
	// DistinctUsernames returns how many different usernames identity has
	// attempted at or after cutoff.
	DistinctUsernames(identity string, since time.Time) (int64, error)
	// OldestAttemptTime returns the timestamp of the oldest attempt by
	// identity at or after cutoff, or the zero time when there is none.
	OldestAttemptTime(identity string, since time.Time) (time.Time, error)
}

// Flags exposes the runtime feature toggles the guards consult on every
// check. Implementations read the settings store directly so a flip takes
// effect on the next request.
type Flags interface {
	DefenseEnabled() bool
	BruteforceEnabled() bool
	WeakPasswordEnabled() bool
	SessionGuardEnabled() bool
}
