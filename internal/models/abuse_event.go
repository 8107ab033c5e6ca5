package models

import (
	"time"
)

// AbuseEvent is one timestamped request observation used by the rate limiter.
// Category is the endpoint bucket the request was classified into. Rows are
// append-only; expired rows outside the active window are purged lazily.
type AbuseEvent struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	IP        string    `json:"ip" gorm:"size:45;index:idx_abuse_ip_cat"`
	Category  string    `json:"category" gorm:"size:200;index:idx_abuse_ip_cat"`
	Timestamp time.Time `json:"timestamp" gorm:"index"`
}
