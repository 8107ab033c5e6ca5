package database

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kestrelsec/bastion/internal/models"
)

// Open bootstraps a SQLite database using the provided filesystem path.
func Open(dbPath string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	return db, nil
}

// Migrate applies the schema for every model the engine persists.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Setting{},
		&models.AttackLog{},
		&models.BannedIP{},
		&models.AbuseEvent{},
		&models.LoginAttempt{},
		&models.Comment{},
		&models.RangeUser{},
		&models.RangeFile{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	return nil
}
