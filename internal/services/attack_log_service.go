package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kestrelsec/bastion/internal/models"
)

// AttackLogEntry is one security event to append. Severity and category
// follow the detector vocabulary.
type AttackLogEntry struct {
	IP             string
	Payload        string
	Blocked        bool
	AttackType     string
	AttackCategory string
	Severity       string
	TargetURL      string
	UserAgent      string
}

// AttackLogService appends and queries the attack log. Append failures are
// returned to the caller, never swallowed.
type AttackLogService struct {
	db            *gorm.DB
	maxPayloadLen int
	maxFieldLen   int
}

// NewAttackLogService returns a service enforcing the given truncation
// limits. Non-positive limits select the defaults (2000 payload, 500 field).
func NewAttackLogService(db *gorm.DB, maxPayloadLen, maxFieldLen int) *AttackLogService {
	if maxPayloadLen <= 0 {
		maxPayloadLen = 2000
	}
	if maxFieldLen <= 0 {
		maxFieldLen = 500
	}
	return &AttackLogService{db: db, maxPayloadLen: maxPayloadLen, maxFieldLen: maxFieldLen}
}

// Append stores one attack log row, truncating oversized fields.
func (s *AttackLogService) Append(e AttackLogEntry) error {
	row := models.AttackLog{
		UUID:           uuid.NewString(),
		IP:             e.IP,
		Payload:        truncate(e.Payload, s.maxPayloadLen),
		Blocked:        e.Blocked,
		AttackType:     e.AttackType,
		AttackCategory: e.AttackCategory,
		Severity:       e.Severity,
		TargetURL:      truncate(e.TargetURL, s.maxFieldLen),
		UserAgent:      truncate(e.UserAgent, s.maxFieldLen),
		Timestamp:      time.Now().UTC(),
	}
	if err := s.db.Create(&row).Error; err != nil {
		return fmt.Errorf("append attack log: %w", err)
	}
	return nil
}

// Recent returns the newest rows, optionally filtered to the given attack
// types, ordered by timestamp descending.
func (s *AttackLogService) Recent(limit int, attackTypes ...string) ([]models.AttackLog, error) {
	q := s.db.Order("timestamp desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if len(attackTypes) > 0 {
		q = q.Where("attack_type IN ?", attackTypes)
	}
	var rows []models.AttackLog
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query attack log: %w", err)
	}
	return rows, nil
}

// Stats aggregates the log: total rows, blocked rows and counts per attack
// type.
func (s *AttackLogService) Stats() (map[string]any, error) {
	var total, blocked int64
	if err := s.db.Model(&models.AttackLog{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count attack log: %w", err)
	}
	if err := s.db.Model(&models.AttackLog{}).Where("blocked = ?", true).Count(&blocked).Error; err != nil {
		return nil, fmt.Errorf("count blocked: %w", err)
	}

	type typeCount struct {
		AttackType string
		N          int64
	}
	var perType []typeCount
	if err := s.db.Model(&models.AttackLog{}).
		Select("attack_type, count(*) as n").
		Group("attack_type").
		Scan(&perType).Error; err != nil {
		return nil, fmt.Errorf("count per type: %w", err)
	}

	byType := make(map[string]int64, len(perType))
	for _, tc := range perType {
		byType[tc.AttackType] = tc.N
	}

	return map[string]any{
		"total":   total,
		"blocked": blocked,
		"by_type": byType,
	}, nil
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
