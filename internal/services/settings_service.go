package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/kestrelsec/bastion/internal/models"
)

// Feature flag setting keys. Absent rows default to enabled.
const (
	FlagDefenseEnabled      = "defense_enabled"
	FlagBruteforceEnabled   = "bruteforce_enabled"
	FlagWeakPasswordEnabled = "weak_password_enabled"
	FlagSessionGuardEnabled = "session_guard_enabled"
)

// KnownFlags lists every flag the API exposes.
var KnownFlags = []string{
	FlagDefenseEnabled,
	FlagBruteforceEnabled,
	FlagWeakPasswordEnabled,
	FlagSessionGuardEnabled,
}

// ErrUnknownFlag is returned when a flag write names a key outside KnownFlags.
var ErrUnknownFlag = errors.New("unknown feature flag")

// SettingsService reads and writes key/value settings. Flag reads go to the
// database on every call so a flip takes effect on the next request.
type SettingsService struct {
	db *gorm.DB
}

// NewSettingsService returns a SettingsService using the provided DB.
func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{db: db}
}

// GetBool returns the boolean value of a setting, or fallback when the row
// is absent or unreadable.
func (s *SettingsService) GetBool(key string, fallback bool) bool {
	var setting models.Setting
	if err := s.db.Where("key = ?", key).First(&setting).Error; err != nil {
		return fallback
	}
	v := strings.ToLower(strings.TrimSpace(setting.Value))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

// SetBool upserts a boolean setting.
func (s *SettingsService) SetBool(key string, enabled bool) error {
	value := "0"
	if enabled {
		value = "1"
	}
	var setting models.Setting
	err := s.db.Where("key = ?", key).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.db.Create(&models.Setting{Key: key, Value: value}).Error
	}
	if err != nil {
		return fmt.Errorf("read setting %s: %w", key, err)
	}
	setting.Value = value
	return s.db.Save(&setting).Error
}

// SetFlag validates the key against KnownFlags before writing it.
func (s *SettingsService) SetFlag(key string, enabled bool) error {
	for _, known := range KnownFlags {
		if key == known {
			return s.SetBool(key, enabled)
		}
	}
	return ErrUnknownFlag
}

// Flags returns the current value of every known flag.
func (s *SettingsService) Flags() map[string]bool {
	out := make(map[string]bool, len(KnownFlags))
	for _, key := range KnownFlags {
		out[key] = s.GetBool(key, true)
	}
	return out
}

// The guard.Flags contract: each toggle defaults to enabled.

func (s *SettingsService) DefenseEnabled() bool      { return s.GetBool(FlagDefenseEnabled, true) }
func (s *SettingsService) BruteforceEnabled() bool   { return s.GetBool(FlagBruteforceEnabled, true) }
func (s *SettingsService) WeakPasswordEnabled() bool { return s.GetBool(FlagWeakPasswordEnabled, true) }
func (s *SettingsService) SessionGuardEnabled() bool { return s.GetBool(FlagSessionGuardEnabled, true) }
