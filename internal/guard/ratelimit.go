package guard

import (
	"fmt"
	"strings"
	"time"
)

// Bucket names for endpoint classification.
const (
	BucketLogin   = "login"
	BucketAPI     = "api"
	BucketGeneral = "general"
)

// BucketLimit is the (window, max requests) pair of one rate-limit bucket.
type BucketLimit struct {
	Window time.Duration
	Max    int64
}

// RateResult is the outcome of a single rate-limit check. Count includes the
// request that was just recorded.
type RateResult struct {
	OverLimit bool
	Bucket    string
	Count     int64
}

// RateLimiter counts requests per identity in a rolling window, one window
// per endpoint bucket. It only returns the overflow signal; deciding whether
// to block or ban is the caller's concern.
type RateLimiter struct {
	store  EventStore
	limits map[string]BucketLimit
	now    func() time.Time
}

// NewRateLimiter builds a limiter over the given event store. A nil limits
// map selects the default thresholds (login 5/60s, api 30/60s, general
// 100/60s).
func NewRateLimiter(store EventStore, limits map[string]BucketLimit) *RateLimiter {
	if limits == nil {
		limits = map[string]BucketLimit{
			BucketLogin:   {Window: 60 * time.Second, Max: 5},
			BucketAPI:     {Window: 60 * time.Second, Max: 30},
			BucketGeneral: {Window: 60 * time.Second, Max: 100},
		}
	}
	return &RateLimiter{store: store, limits: limits, now: time.Now}
}

// ClassifyEndpoint maps an endpoint path to its rate-limit bucket.
func ClassifyEndpoint(endpoint string) string {
	lower := strings.ToLower(endpoint)
	switch {
	case strings.Contains(lower, "login"):
		return BucketLogin
	case strings.Contains(endpoint, "/api/"):
		return BucketAPI
	default:
		return BucketGeneral
	}
}

// Check purges expired events for the identity's bucket, records the current
// request and compares the resulting count against the bucket threshold.
//
// There is deliberately no cross-request lock around the count-then-insert
// sequence: a concurrent burst exactly at the threshold may admit more than
// one request. The limiter is a best-effort abuse signal, not a hard
// admission boundary.
func (r *RateLimiter) Check(identity, endpoint string) (RateResult, error) {
	bucket := ClassifyEndpoint(endpoint)
	limit := r.limits[bucket]
	now := r.now()
	cutoff := now.Add(-limit.Window)

	if err := r.store.PurgeBefore(identity, bucket, cutoff); err != nil {
		return RateResult{Bucket: bucket}, fmt.Errorf("purge abuse events: %w", err)
	}

	count, err := r.store.CountSince(identity, bucket, cutoff)
	if err != nil {
		return RateResult{Bucket: bucket}, fmt.Errorf("count abuse events: %w", err)
	}

	if err := r.store.Record(identity, bucket, now); err != nil {
		return RateResult{Bucket: bucket}, fmt.Errorf("record abuse event: %w", err)
	}
	count++

	return RateResult{
		OverLimit: count > limit.Max,
		Bucket:    bucket,
		Count:     count,
	}, nil
}
