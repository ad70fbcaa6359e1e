package model

import (
	"time"

	"github.com/kobbyowen/focus/pkg/core/audit"
	photomodel "github.com/kobbyowen/focus/pkg/core/photo/model"
	usermodel "github.com/kobbyowen/focus/pkg/core/user/model"
	"gorm.io/gorm"
)

// Album names are unique per owner.
type Album struct {
	ID        int64          `gorm:"primaryKey;autoIncrement"`
	Name      string         `gorm:"type:varchar(512);not null;uniqueIndex:idx_album_owner_name,priority:2"`
	OwnerID   int64          `gorm:"not null;uniqueIndex:idx_album_owner_name,priority:1"`
	Owner     usermodel.User `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time      `gorm:"index;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
}

// TableName 定义映射表名
func (Album) TableName() string {
	return "albums"
}

func (a Album) Snapshot() audit.Snapshot {
	return audit.Snapshot{
		Kind:    audit.KindAlbum,
		ID:      a.ID,
		ActorID: a.OwnerID,
		Fields:  map[string]string{audit.FieldName: a.Name},
	}
}

// AlbumPhoto links a photo into an album. Removing the link keeps the photo.
type AlbumPhoto struct {
	AlbumID   int64            `gorm:"primaryKey;autoIncrement:false"`
	PhotoID   int64            `gorm:"primaryKey;autoIncrement:false;index"`
	Album     Album            `gorm:"foreignKey:AlbumID;constraint:OnDelete:CASCADE"`
	Photo     photomodel.Photo `gorm:"foreignKey:PhotoID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time        `gorm:"autoCreateTime"`
}

// TableName 定义映射表名
func (AlbumPhoto) TableName() string {
	return "album_photos"
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Album{}, &AlbumPhoto{})
}
