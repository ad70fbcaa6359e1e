package model

import (
	"strconv"
	"time"

	"github.com/kobbyowen/focus/pkg/core/audit"
	"gorm.io/gorm"
)

type User struct {
	ID           int64      `gorm:"primaryKey;autoIncrement"`
	Username     string     `gorm:"type:varchar(128);uniqueIndex;not null"`
	Email        string     `gorm:"type:varchar(512);uniqueIndex;not null"`
	Name         string     `gorm:"type:varchar(512);not null;default:''"`
	PasswordHash string     `gorm:"type:varchar(255);not null"`
	IsAdmin      bool       `gorm:"default:false;index"`
	Version      int        `gorm:"default:1;not null"` // 乐观锁版本号
	LastLogin    *time.Time `gorm:"default:null"`
	CreatedAt    time.Time  `gorm:"index;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime"`
}

// TableName 定义映射表名
func (User) TableName() string {
	return "users"
}

// Snapshot is the audited view of the user. Only watched fields matter.
func (u User) Snapshot() audit.Snapshot {
	lastLogin := ""
	if u.LastLogin != nil {
		lastLogin = u.LastLogin.UTC().Format(time.RFC3339)
	}
	return audit.Snapshot{
		Kind:    audit.KindUser,
		ID:      u.ID,
		ActorID: u.ID,
		Fields: map[string]string{
			audit.FieldUsername: u.Username,
			audit.FieldEmail:    u.Email,
			audit.FieldName:     u.Name,
			"is_admin":          strconv.FormatBool(u.IsAdmin),
			"last_login":        lastLogin,
		},
	}
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&User{})
}
