package services

import (
	"time"

	"github.com/robfig/cron/v3"

	"github.com/kestrelsec/bastion/internal/logger"
)

// DefaultAbuseRetention comfortably exceeds every rolling window a counter
// can be configured with.
const DefaultAbuseRetention = time.Hour

// Sweeper runs the periodic maintenance jobs: dropping abuse events that no
// rolling window can still see and deleting expired temporary bans. Lazy
// purging on the hot path keeps counts correct; the sweep just keeps the
// tables from growing unbounded.
type Sweeper struct {
	cron      *cron.Cron
	abuse     *AbuseEventService
	bans      *BanService
	retention time.Duration
}

// NewSweeper builds a sweeper. retention must cover the widest configured
// window; anything older is unreachable by every counter.
func NewSweeper(abuse *AbuseEventService, bans *BanService, retention time.Duration) *Sweeper {
	if retention <= 0 {
		retention = time.Hour
	}
	return &Sweeper{cron: cron.New(), abuse: abuse, bans: bans, retention: retention}
}

// Start schedules the sweep every five minutes and runs until Stop.
func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc("@every 5m", s.sweep); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the schedule.
func (s *Sweeper) Stop() {
	s.cron.Stop()
}

func (s *Sweeper) sweep() {
	cutoff := time.Now().UTC().Add(-s.retention)
	if err := s.abuse.PurgeAllBefore(cutoff); err != nil {
		logger.Log().WithError(err).Warn("abuse event sweep failed")
	}
	if err := s.bans.PurgeExpired(); err != nil {
		logger.Log().WithError(err).Warn("ban sweep failed")
	}
}
