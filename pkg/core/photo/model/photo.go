package model

import (
	"strconv"
	"time"

	"github.com/kobbyowen/focus/pkg/core/audit"
	usermodel "github.com/kobbyowen/focus/pkg/core/user/model"
	"gorm.io/gorm"
)

const DefaultMimeType = "application/octet-stream"

type Photo struct {
	ID        int64          `gorm:"primaryKey;autoIncrement"`
	Title     string         `gorm:"type:varchar(512);not null"`
	FilePath  string         `gorm:"type:varchar(1024);not null"` // 存储键
	MimeType  string         `gorm:"column:mimetype;type:varchar(512);not null;default:'application/octet-stream'"`
	Size      int64          `gorm:"not null;default:0"`
	OwnerID   int64          `gorm:"index;not null"`
	Owner     usermodel.User `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time      `gorm:"index;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
}

// TableName 定义映射表名
func (Photo) TableName() string {
	return "photos"
}

func (p Photo) Snapshot() audit.Snapshot {
	return audit.Snapshot{
		Kind:    audit.KindPhoto,
		ID:      p.ID,
		ActorID: p.OwnerID,
		Fields: map[string]string{
			audit.FieldTitle: p.Title,
			"file_path":      p.FilePath,
			"mimetype":       p.MimeType,
			"size":           strconv.FormatInt(p.Size, 10),
		},
	}
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Photo{})
}
