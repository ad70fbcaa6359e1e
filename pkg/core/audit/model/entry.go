package model

import (
	"time"

	"gorm.io/gorm"
)

// LogEntry is one append-only line of the change log.
type LogEntry struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	Description string    `gorm:"type:text;not null"`
	CreatedAt   time.Time `gorm:"index;autoCreateTime"`
}

// TableName 定义映射表名
func (LogEntry) TableName() string {
	return "audit_log_entries"
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&LogEntry{})
}
