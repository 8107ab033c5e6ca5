package models

import (
	"time"
)

// AttackLog records a single inspected payload and the verdict taken on it.
// Rows are append-only; the UI and stats endpoints only ever read them.
type AttackLog struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	UUID           string    `json:"uuid" gorm:"uniqueIndex"`
	IP             string    `json:"ip" gorm:"size:45;index"`
	Payload        string    `json:"payload" gorm:"type:text"`
	Blocked        bool      `json:"blocked"`
	AttackType     string    `json:"attack_type" gorm:"size:50;default:'xss';index"`     // xss, sqli, cmdi, path_traversal, brute_force, dos, weak_password, session_hijack
	AttackCategory string    `json:"attack_category" gorm:"size:50;default:'injection'"` // injection, access_control, behavioral
	Severity       string    `json:"severity" gorm:"size:20;default:'medium'"`           // low, medium, high, critical
	TargetURL      string    `json:"target_url" gorm:"size:500"`
	UserAgent      string    `json:"user_agent" gorm:"size:500"`
	Timestamp      time.Time `json:"timestamp" gorm:"index"`
}
