package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/kestrelsec/bastion/internal/models"
)

// ErrBanNotFound is returned when unbanning an address with no ban row.
var ErrBanNotFound = errors.New("ban not found")

// BanService manages the BannedIP table. Expired temporary bans are deleted
// lazily on lookup.
type BanService struct {
	db *gorm.DB
}

// NewBanService returns a BanService using the provided DB.
func NewBanService(db *gorm.DB) *BanService {
	return &BanService{db: db}
}

// IsBanned reports whether the address is currently banned. A temporary ban
// past its expiry is removed and reported as not banned.
func (s *BanService) IsBanned(ip string) (bool, error) {
	var ban models.BannedIP
	err := s.db.Where("ip = ?", ip).First(&ban).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup ban: %w", err)
	}

	now := time.Now().UTC()
	if ban.Active(now) {
		return true, nil
	}
	if !ban.Permanent && ban.ExpiresAt != nil && !ban.ExpiresAt.After(now) {
		if err := s.db.Delete(&ban).Error; err != nil {
			return false, fmt.Errorf("expire ban: %w", err)
		}
	}
	return false, nil
}

// Ban creates or updates a ban. duration is ignored for permanent bans; a
// zero duration on a temporary ban leaves it expiring immediately.
func (s *BanService) Ban(ip string, permanent bool, duration time.Duration) error {
	now := time.Now().UTC()
	var expiresAt *time.Time
	if !permanent {
		t := now.Add(duration)
		expiresAt = &t
	}

	var existing models.BannedIP
	err := s.db.Where("ip = ?", ip).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.db.Create(&models.BannedIP{
			IP:        ip,
			Permanent: permanent,
			BannedAt:  now,
			ExpiresAt: expiresAt,
		}).Error
	}
	if err != nil {
		return fmt.Errorf("lookup ban: %w", err)
	}

	existing.Permanent = permanent
	existing.BannedAt = now
	existing.ExpiresAt = expiresAt
	return s.db.Save(&existing).Error
}

// Unban removes a ban row.
func (s *BanService) Unban(ip string) error {
	res := s.db.Where("ip = ?", ip).Delete(&models.BannedIP{})
	if res.Error != nil {
		return fmt.Errorf("delete ban: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrBanNotFound
	}
	return nil
}

// List returns all ban rows, newest first.
func (s *BanService) List() ([]models.BannedIP, error) {
	var rows []models.BannedIP
	if err := s.db.Order("banned_at desc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list bans: %w", err)
	}
	return rows, nil
}

// PurgeExpired deletes every temporary ban past its expiry. Used by the
// maintenance sweep.
func (s *BanService) PurgeExpired() error {
	return s.db.Where("permanent = ? AND expires_at IS NOT NULL AND expires_at <= ?", false, time.Now().UTC()).
		Delete(&models.BannedIP{}).Error
}
