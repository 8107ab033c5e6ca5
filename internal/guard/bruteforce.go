package guard

import (
	"fmt"
	"time"
)

// BruteForceConfig holds the windows and thresholds for the two abuse rules.
type BruteForceConfig struct {
	UsernameFailWindow    time.Duration
	UsernameFailThreshold int

	IPWindow                     time.Duration
	IPDistinctUsernamesThreshold int
}

// DefaultBruteForceConfig returns the stock thresholds: 5 failures per
// username in 120s, 6 distinct usernames per identity in 180s.
func DefaultBruteForceConfig() BruteForceConfig {
	return BruteForceConfig{
		UsernameFailWindow:           120 * time.Second,
		UsernameFailThreshold:        5,
		IPWindow:                     180 * time.Second,
		IPDistinctUsernamesThreshold: 6,
	}
}

// Decision is the outcome of one brute-force check. RetryAfter is the number
// of seconds until the violated window frees up, 0 when unknown.
type Decision struct {
	Allowed    bool
	Reason     string
	RetryAfter int
}

// Denial reasons surfaced to the caller.
const (
	ReasonUsernameLockout    = "too many failed attempts for this account, try again later"
	ReasonCredentialStuffing = "too many different accounts tried from this address, try again later"
)

// BruteForce detects two independent abuse shapes over the login attempt
// trail: per-username lockout and per-identity credential stuffing.
type BruteForce struct {
	store AttemptStore
	flags Flags
	cfg   BruteForceConfig
	now   func() time.Time
}

// NewBruteForce builds the guard over the given attempt store and flags.
func NewBruteForce(store AttemptStore, flags Flags, cfg BruteForceConfig) *BruteForce {
	return &BruteForce{store: store, flags: flags, cfg: cfg, now: time.Now}
}

// CheckAllowed evaluates both rules in order; the first violation wins. It
// must run before credential verification. When the master defense flag or
// the brute-force sub-flag is off the check always allows.
func (b *BruteForce) CheckAllowed(identity, username string) (Decision, error) {
	if b.flags != nil && !(b.flags.DefenseEnabled() && b.flags.BruteforceEnabled()) {
		return Decision{Allowed: true}, nil
	}

	username = Truncate(username, 80)
	now := b.now()

	// Rule 1: per-username lockout.
	userCutoff := now.Add(-b.cfg.UsernameFailWindow)
	failCount, err := b.store.CountFailures(username, userCutoff)
	if err != nil {
		return Decision{Allowed: true}, fmt.Errorf("count failures: %w", err)
	}
	if failCount >= int64(b.cfg.UsernameFailThreshold) {
		retryAfter := b.usernameRetryAfter(username, now)
		return Decision{Allowed: false, Reason: ReasonUsernameLockout, RetryAfter: retryAfter}, nil
	}

	// Rule 2: per-identity credential stuffing.
	ipCutoff := now.Add(-b.cfg.IPWindow)
	distinct, err := b.store.DistinctUsernames(identity, ipCutoff)
	if err != nil {
		return Decision{Allowed: true}, fmt.Errorf("count distinct usernames: %w", err)
	}
	if distinct >= int64(b.cfg.IPDistinctUsernamesThreshold) {
		retryAfter := b.identityRetryAfter(identity, ipCutoff, now)
		return Decision{Allowed: false, Reason: ReasonCredentialStuffing, RetryAfter: retryAfter}, nil
	}

	return Decision{Allowed: true}, nil
}

// Record appends one authentication attempt to the audit trail. Attempts
// blocked by CheckAllowed never reach credential verification and therefore
// are not recorded here.
func (b *BruteForce) Record(identity, username string, success bool, agent string) error {
	return b.store.RecordAttempt(identity, Truncate(username, 80), success, Truncate(agent, 500), b.now())
}

// usernameRetryAfter computes seconds until the oldest of the last N failing
// attempts ages out of the window (N = threshold). Store errors degrade to 0.
func (b *BruteForce) usernameRetryAfter(username string, now time.Time) int {
	times, err := b.store.LastFailureTimes(username, b.cfg.UsernameFailThreshold)
	if err != nil || len(times) == 0 {
		return 0
	}
	oldest := times[len(times)-1]
	readyAt := oldest.Add(b.cfg.UsernameFailWindow)
	return clampSeconds(readyAt.Sub(now))
}

// identityRetryAfter computes seconds until the oldest in-window attempt by
// the identity ages out. Store errors degrade to 0.
func (b *BruteForce) identityRetryAfter(identity string, cutoff, now time.Time) int {
	oldest, err := b.store.OldestAttemptTime(identity, cutoff)
	if err != nil || oldest.IsZero() {
		return 0
	}
	readyAt := oldest.Add(b.cfg.IPWindow)
	return clampSeconds(readyAt.Sub(now))
}

func clampSeconds(d time.Duration) int {
	secs := int(d.Seconds())
	if secs < 0 {
		return 0
	}
	return secs
}

// Truncate bounds a string to max bytes, matching the column widths of the
// audit tables.
func Truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
