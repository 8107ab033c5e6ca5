package models

import (
	"time"
)

// LoginAttempt records one authentication attempt that reached credential
// verification. The brute-force guard derives its counts from these rows;
// they are never mutated after creation.
type LoginAttempt struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	IP        string    `json:"ip" gorm:"size:45;index"`
	Username  string    `json:"username" gorm:"size:80;index"`
	Success   bool      `json:"success" gorm:"default:false;index"`
	UserAgent string    `json:"user_agent" gorm:"size:500"`
	Timestamp time.Time `json:"timestamp" gorm:"index"`
}
