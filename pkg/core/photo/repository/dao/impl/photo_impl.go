package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/kobbyowen/focus/pkg/common/errors"
	albummodel "github.com/kobbyowen/focus/pkg/core/album/model"
	"github.com/kobbyowen/focus/pkg/core/audit"
	"github.com/kobbyowen/focus/pkg/core/photo/model"
	"github.com/kobbyowen/focus/pkg/core/photo/repository/dao"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormPhotoRepository struct {
	db       *gorm.DB
	recorder audit.Recorder
}

var _ dao.PhotoRepository = (*GormPhotoRepository)(nil)

func NewGormPhotoRepository(db *gorm.DB, recorder audit.Recorder) *GormPhotoRepository {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &GormPhotoRepository{db: db, recorder: recorder}
}

func wrapError(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrPhotoNotFound
	}
	return fmt.Errorf("%w: %s", apperrors.WrapGormError(err), msg)
}

func (r *GormPhotoRepository) Create(ctx context.Context, photo *model.Photo) error {
	if photo.MimeType == "" {
		photo.MimeType = model.DefaultMimeType
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(photo).Error; err != nil {
		return wrapError(err, "photo creation failed")
	}
	return nil
}

func (r *GormPhotoRepository) QueryByID(ctx context.Context, id int64) (model.Photo, error) {
	var photo model.Photo
	if err := r.db.WithContext(ctx).Preload("Owner").First(&photo, id).Error; err != nil {
		return model.Photo{}, wrapError(err, "photo query failed")
	}
	return photo, nil
}

func (r *GormPhotoRepository) List(ctx context.Context, ownerID int64, offset, limit int) ([]model.Photo, int64, error) {
	var (
		total  int64
		photos []model.Photo
	)
	scope := func(db *gorm.DB) *gorm.DB {
		if ownerID > 0 {
			return db.Where("owner_id = ?", ownerID)
		}
		return db
	}

	if err := r.db.WithContext(ctx).Model(&model.Photo{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, wrapError(err, "photo count failed")
	}
	err := r.db.WithContext(ctx).Scopes(scope).Preload("Owner").
		Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&photos).Error
	if err != nil {
		return nil, 0, wrapError(err, "photo list failed")
	}
	return photos, total, nil
}

func (r *GormPhotoRepository) FilePathsByOwner(ctx context.Context, ownerID int64) ([]string, error) {
	var paths []string
	err := r.db.WithContext(ctx).Model(&model.Photo{}).
		Where("owner_id = ?", ownerID).
		Pluck("file_path", &paths).Error
	if err != nil {
		return nil, wrapError(err, "photo path lookup failed")
	}
	return paths, nil
}

// Update locks the row, applies fn and reports the committed change.
func (r *GormPhotoRepository) Update(ctx context.Context, id int64, fn dao.Mutator) (model.Photo, error) {
	var before, after model.Photo

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&before, id).Error; err != nil {
			return wrapError(err, "photo lock failed")
		}

		after = before
		if err := fn(&after); err != nil {
			return err
		}
		after.ID, after.OwnerID = before.ID, before.OwnerID
		after.UpdatedAt = time.Now()

		result := tx.Model(&model.Photo{}).Where("id = ?", id).
			Updates(map[string]interface{}{
				"title":      after.Title,
				"mimetype":   after.MimeType,
				"updated_at": after.UpdatedAt,
			})
		if result.Error != nil {
			return wrapError(result.Error, "photo update failed")
		}
		if result.RowsAffected == 0 {
			return apperrors.ErrPhotoNotFound
		}
		return nil
	})
	if err != nil {
		return model.Photo{}, err
	}

	r.recorder.Record(ctx, before.Snapshot(), after.Snapshot())
	return after, nil
}

func (r *GormPhotoRepository) Delete(ctx context.Context, id int64, fn dao.Mutator) (model.Photo, error) {
	var photo model.Photo

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&photo, id).Error; err != nil {
			return wrapError(err, "photo lock failed")
		}
		if fn != nil {
			if err := fn(&photo); err != nil {
				return err
			}
		}

		if err := tx.Where("photo_id = ?", id).Delete(&albummodel.AlbumPhoto{}).Error; err != nil {
			return wrapError(err, "membership cleanup failed")
		}
		if err := tx.Delete(&model.Photo{}, id).Error; err != nil {
			return wrapError(err, "photo delete failed")
		}
		return nil
	})
	if err != nil {
		return model.Photo{}, err
	}
	return photo, nil
}
