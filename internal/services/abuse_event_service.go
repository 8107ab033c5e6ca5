package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/kestrelsec/bastion/internal/models"
)

// AbuseEventService is the gorm-backed abuse window store consumed by the
// rate limiter (guard.EventStore).
type AbuseEventService struct {
	db *gorm.DB
}

// NewAbuseEventService returns an AbuseEventService using the provided DB.
func NewAbuseEventService(db *gorm.DB) *AbuseEventService {
	return &AbuseEventService{db: db}
}

// Record appends one event.
func (s *AbuseEventService) Record(identity, category string, at time.Time) error {
	row := models.AbuseEvent{IP: identity, Category: category, Timestamp: at}
	if err := s.db.Create(&row).Error; err != nil {
		return fmt.Errorf("record abuse event: %w", err)
	}
	return nil
}

// CountSince counts events for identity+category at or after the cutoff.
func (s *AbuseEventService) CountSince(identity, category string, since time.Time) (int64, error) {
	var n int64
	if err := s.db.Model(&models.AbuseEvent{}).
		Where("ip = ? AND category = ? AND timestamp >= ?", identity, category, since).
		Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count abuse events: %w", err)
	}
	return n, nil
}

// PurgeBefore lazily deletes expired events for identity+category.
func (s *AbuseEventService) PurgeBefore(identity, category string, cutoff time.Time) error {
	if err := s.db.Where("ip = ? AND category = ? AND timestamp < ?", identity, category, cutoff).
		Delete(&models.AbuseEvent{}).Error; err != nil {
		return fmt.Errorf("purge abuse events: %w", err)
	}
	return nil
}

// PurgeAllBefore deletes every event older than the cutoff regardless of
// identity. Used by the maintenance sweep.
func (s *AbuseEventService) PurgeAllBefore(cutoff time.Time) error {
	if err := s.db.Where("timestamp < ?", cutoff).Delete(&models.AbuseEvent{}).Error; err != nil {
		return fmt.Errorf("purge abuse events: %w", err)
	}
	return nil
}
