package models

import (
	"time"
)

// Comment is the stored-XSS demonstration board. Content is persisted as
// submitted so the range can replay unfiltered payloads when defense is off.
type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Content   string    `json:"content" gorm:"type:text"`
	Author    string    `json:"author" gorm:"size:100;default:'anonymous'"`
	Timestamp time.Time `json:"timestamp"`
}

// RangeUser is simulated victim data for the SQL injection target.
type RangeUser struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"size:80"`
	Email     string    `json:"email" gorm:"size:120"`
	Password  string    `json:"password" gorm:"size:200"`
	Role      string    `json:"role" gorm:"size:20;default:'user'"`
	CreatedAt time.Time `json:"created_at"`
}

// RangeFile is a simulated file record for the path traversal target.
type RangeFile struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Filename    string    `json:"filename" gorm:"size:200"`
	Filepath    string    `json:"filepath" gorm:"size:500"`
	Content     string    `json:"content" gorm:"type:text"`
	IsSensitive bool      `json:"is_sensitive" gorm:"default:false"`
	CreatedAt   time.Time `json:"created_at"`
}
