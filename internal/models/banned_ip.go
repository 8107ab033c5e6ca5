package models

import (
	"time"
)

// BannedIP is an administrative ban. Temporary bans carry ExpiresAt and are
// lazily deleted once past it; permanent bans never expire.
type BannedIP struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	IP        string     `json:"ip" gorm:"size:45;uniqueIndex"`
	Permanent bool       `json:"permanent" gorm:"default:false"`
	BannedAt  time.Time  `json:"banned_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Active reports whether the ban still applies at the given instant.
func (b *BannedIP) Active(now time.Time) bool {
	if b.Permanent {
		return true
	}
	return b.ExpiresAt != nil && b.ExpiresAt.After(now)
}
