package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/kestrelsec/bastion/internal/models"
)

// LoginAttemptService is the gorm-backed login attempt trail consumed by the
// brute-force guard (guard.AttemptStore).
type LoginAttemptService struct {
	db *gorm.DB
}

// NewLoginAttemptService returns a LoginAttemptService using the provided DB.
func NewLoginAttemptService(db *gorm.DB) *LoginAttemptService {
	return &LoginAttemptService{db: db}
}

// RecordAttempt appends one authentication attempt.
func (s *LoginAttemptService) RecordAttempt(identity, username string, success bool, agent string, at time.Time) error {
	row := models.LoginAttempt{
		IP:        identity,
		Username:  username,
		Success:   success,
		UserAgent: agent,
		Timestamp: at,
	}
	if err := s.db.Create(&row).Error; err != nil {
		return fmt.Errorf("record login attempt: %w", err)
	}
	return nil
}

// CountFailures counts failed attempts for username at or after the cutoff.
func (s *LoginAttemptService) CountFailures(username string, since time.Time) (int64, error) {
	var n int64
	if err := s.db.Model(&models.LoginAttempt{}).
		Where("username = ? AND success = ? AND timestamp >= ?", username, false, since).
		Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count login failures: %w", err)
	}
	return n, nil
}

// LastFailureTimes returns the timestamps of the most recent n failed
// attempts for username, newest first.
func (s *LoginAttemptService) LastFailureTimes(username string, n int) ([]time.Time, error) {
	var rows []models.LoginAttempt
	if err := s.db.Where("username = ? AND success = ?", username, false).
		Order("timestamp desc").
		Limit(n).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query login failures: %w", err)
	}
	times := make([]time.Time, 0, len(rows))
	for _, r := range rows {
		times = append(times, r.Timestamp)
	}
	return times, nil
}

// DistinctUsernames counts how many different usernames identity attempted
// at or after the cutoff.
func (s *LoginAttemptService) DistinctUsernames(identity string, since time.Time) (int64, error) {
	var n int64
	if err := s.db.Model(&models.LoginAttempt{}).
		Where("ip = ? AND timestamp >= ?", identity, since).
		Distinct("username").
		Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count distinct usernames: %w", err)
	}
	return n, nil
}

// OldestAttemptTime returns the oldest attempt by identity at or after the
// cutoff, or the zero time when there is none.
func (s *LoginAttemptService) OldestAttemptTime(identity string, since time.Time) (time.Time, error) {
	var row models.LoginAttempt
	err := s.db.Where("ip = ? AND timestamp >= ?", identity, since).
		Order("timestamp asc").
		First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("query oldest attempt: %w", err)
	}
	return row.Timestamp, nil
}

// RecentFailuresTotal counts all failed attempts in the window, across every
// username. Surfaced by the security status endpoint.
func (s *LoginAttemptService) RecentFailuresTotal(since time.Time) (int64, error) {
	var n int64
	if err := s.db.Model(&models.LoginAttempt{}).
		Where("success = ? AND timestamp >= ?", false, since).
		Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count recent failures: %w", err)
	}
	return n, nil
}
