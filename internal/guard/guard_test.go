package guard

import (
	"sort"
	"time"
)

// memEvent and memAttempt back the in-memory store fakes used across the
// guard tests.
type memEvent struct {
	identity string
	category string
	at       time.Time
}

type memEventStore struct {
	events []memEvent
}

func (s *memEventStore) Record(identity, category string, at time.Time) error {
	s.events = append(s.events, memEvent{identity, category, at})
	return nil
}

func (s *memEventStore) CountSince(identity, category string, since time.Time) (int64, error) {
	var n int64
	for _, e := range s.events {
		if e.identity == identity && e.category == category && !e.at.Before(since) {
			n++
		}
	}
	return n, nil
}

func (s *memEventStore) PurgeBefore(identity, category string, cutoff time.Time) error {
	kept := s.events[:0]
	for _, e := range s.events {
		if e.identity == identity && e.category == category && e.at.Before(cutoff) {
			continue
		}
		kept = append(kept, e)
	}
	s.events = kept
	return nil
}

type memAttempt struct {
	identity string
	username string
	success  bool
	agent    string
	at       time.Time
}

type memAttemptStore struct {
	attempts []memAttempt
}

func (s *memAttemptStore) RecordAttempt(identity, username string, success bool, agent string, at time.Time) error {
	s.attempts = append(s.attempts, memAttempt{identity, username, success, agent, at})
	return nil
}

func (s *memAttemptStore) CountFailures(username string, since time.Time) (int64, error) {
	var n int64
	for _, a := range s.attempts {
		if a.username == username && !a.success && !a.at.Before(since) {
			n++
		}
	}
	return n, nil
}

func (s *memAttemptStore) LastFailureTimes(username string, n int) ([]time.Time, error) {
	var times []time.Time
	for _, a := range s.attempts {
		if a.username == username && !a.success {
			times = append(times, a.at)
		}
	}
	sort.Slice(times, func(i, j int) bool { return times[i].After(times[j]) })
	if len(times) > n {
		times = times[:n]
	}
	return times, nil
}

func (s *memAttemptStore) DistinctUsernames(identity string, since time.Time) (int64, error) {
	seen := map[string]struct{}{}
	for _, a := range s.attempts {
		if a.identity == identity && !a.at.Before(since) {
			seen[a.username] = struct{}{}
		}
	}
	return int64(len(seen)), nil
}

func (s *memAttemptStore) OldestAttemptTime(identity string, since time.Time) (time.Time, error) {
	var oldest time.Time
	for _, a := range s.attempts {
		if a.identity == identity && !a.at.Before(since) {
			if oldest.IsZero() || a.at.Before(oldest) {
				oldest = a.at
			}
		}
	}
	return oldest, nil
}

// stubFlags lets tests flip individual toggles.
type stubFlags struct {
	defense      bool
	bruteforce   bool
	weakPassword bool
	sessionGuard bool
}

func allOn() *stubFlags {
	return &stubFlags{defense: true, bruteforce: true, weakPassword: true, sessionGuard: true}
}

func (f *stubFlags) DefenseEnabled() bool      { return f.defense }
func (f *stubFlags) BruteforceEnabled() bool   { return f.bruteforce }
func (f *stubFlags) WeakPasswordEnabled() bool { return f.weakPassword }
func (f *stubFlags) SessionGuardEnabled() bool { return f.sessionGuard }
