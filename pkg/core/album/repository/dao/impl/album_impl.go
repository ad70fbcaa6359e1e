package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/kobbyowen/focus/pkg/common/errors"
	"github.com/kobbyowen/focus/pkg/core/album/model"
	"github.com/kobbyowen/focus/pkg/core/album/repository/dao"
	"github.com/kobbyowen/focus/pkg/core/audit"
	photomodel "github.com/kobbyowen/focus/pkg/core/photo/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormAlbumRepository struct {
	db       *gorm.DB
	recorder audit.Recorder
}

var _ dao.AlbumRepository = (*GormAlbumRepository)(nil)

func NewGormAlbumRepository(db *gorm.DB, recorder audit.Recorder) *GormAlbumRepository {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &GormAlbumRepository{db: db, recorder: recorder}
}

func wrapError(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrAlbumNotFound
	}
	return fmt.Errorf("%w: %s", apperrors.WrapGormError(err), msg)
}

func (r *GormAlbumRepository) Create(ctx context.Context, album *model.Album) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(album).Error
	switch {
	case err == nil:
		return nil
	case apperrors.IsDuplicateError(err):
		return apperrors.Duplicatef("album %q", album.Name)
	default:
		return wrapError(err, "album creation failed")
	}
}

func (r *GormAlbumRepository) QueryByID(ctx context.Context, id int64) (model.Album, error) {
	var album model.Album
	if err := r.db.WithContext(ctx).Preload("Owner").First(&album, id).Error; err != nil {
		return model.Album{}, wrapError(err, "album query failed")
	}
	return album, nil
}

func (r *GormAlbumRepository) List(ctx context.Context, ownerID int64, offset, limit int) ([]model.Album, int64, error) {
	var (
		total  int64
		albums []model.Album
	)
	scope := func(db *gorm.DB) *gorm.DB {
		if ownerID > 0 {
			return db.Where("owner_id = ?", ownerID)
		}
		return db
	}

	if err := r.db.WithContext(ctx).Model(&model.Album{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, wrapError(err, "album count failed")
	}
	err := r.db.WithContext(ctx).Scopes(scope).Preload("Owner").
		Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&albums).Error
	if err != nil {
		return nil, 0, wrapError(err, "album list failed")
	}
	return albums, total, nil
}

func (r *GormAlbumRepository) lock(tx *gorm.DB, id int64, album *model.Album) error {
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(album, id).Error; err != nil {
		return wrapError(err, "album lock failed")
	}
	return nil
}

// Update locks the row, applies fn and reports the committed change.
func (r *GormAlbumRepository) Update(ctx context.Context, id int64, fn dao.Mutator) (model.Album, error) {
	var before, after model.Album

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.lock(tx, id, &before); err != nil {
			return err
		}

		after = before
		if err := fn(&after); err != nil {
			return err
		}
		after.ID, after.OwnerID = before.ID, before.OwnerID
		after.UpdatedAt = time.Now()

		result := tx.Model(&model.Album{}).Where("id = ?", id).
			Updates(map[string]interface{}{
				"name":       after.Name,
				"updated_at": after.UpdatedAt,
			})
		if result.Error != nil {
			if apperrors.IsDuplicateError(result.Error) {
				return apperrors.Duplicatef("album %q", after.Name)
			}
			return wrapError(result.Error, "album update failed")
		}
		if result.RowsAffected == 0 {
			return apperrors.ErrAlbumNotFound
		}
		return nil
	})
	if err != nil {
		return model.Album{}, err
	}

	r.recorder.Record(ctx, before.Snapshot(), after.Snapshot())
	return after, nil
}

func (r *GormAlbumRepository) Delete(ctx context.Context, id int64, fn dao.Mutator) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var album model.Album
		if err := r.lock(tx, id, &album); err != nil {
			return err
		}
		if fn != nil {
			if err := fn(&album); err != nil {
				return err
			}
		}

		if err := tx.Where("album_id = ?", id).Delete(&model.AlbumPhoto{}).Error; err != nil {
			return wrapError(err, "membership cleanup failed")
		}
		if err := tx.Delete(&model.Album{}, id).Error; err != nil {
			return wrapError(err, "album delete failed")
		}
		return nil
	})
}

func (r *GormAlbumRepository) ListPhotos(ctx context.Context, albumID int64, offset, limit int) ([]photomodel.Photo, int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Album{}).Where("id = ?", albumID).Count(&count).Error; err != nil {
		return nil, 0, wrapError(err, "album query failed")
	}
	if count == 0 {
		return nil, 0, apperrors.ErrAlbumNotFound
	}

	members := func(db *gorm.DB) *gorm.DB {
		return db.Joins("JOIN album_photos ON album_photos.photo_id = photos.id").
			Where("album_photos.album_id = ?", albumID)
	}

	var (
		total  int64
		photos []photomodel.Photo
	)
	if err := r.db.WithContext(ctx).Model(&photomodel.Photo{}).Scopes(members).Count(&total).Error; err != nil {
		return nil, 0, wrapError(err, "album photo count failed")
	}
	err := r.db.WithContext(ctx).Scopes(members).Preload("Owner").
		Order("photos.created_at DESC").Order("photos.id DESC").
		Offset(offset).Limit(limit).
		Find(&photos).Error
	if err != nil {
		return nil, 0, wrapError(err, "album photo list failed")
	}
	return photos, total, nil
}

func (r *GormAlbumRepository) ApplyMembership(ctx context.Context, albumID int64, op dao.MembershipOp, photoIDs []int64, guard dao.Mutator) error {
	if !op.Valid() {
		return apperrors.WithMessage(apperrors.ErrMissingParameter, fmt.Sprintf("unknown operation %q", op))
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var album model.Album
		if err := r.lock(tx, albumID, &album); err != nil {
			return err
		}
		if guard != nil {
			if err := guard(&album); err != nil {
				return err
			}
		}

		for _, photoID := range photoIDs {
			var n int64
			if err := tx.Model(&photomodel.Photo{}).Where("id = ?", photoID).Count(&n).Error; err != nil {
				return wrapError(err, "photo lookup failed")
			}
			if n == 0 {
				return apperrors.NotFoundf("photo %d", photoID)
			}

			switch op {
			case dao.OpAdd:
				link := model.AlbumPhoto{AlbumID: albumID, PhotoID: photoID}
				err := tx.Omit(clause.Associations).
					Clauses(clause.OnConflict{DoNothing: true}).
					Create(&link).Error
				if err != nil {
					return wrapError(err, "membership insert failed")
				}
			case dao.OpRemove:
				result := tx.Where("album_id = ? AND photo_id = ?", albumID, photoID).
					Delete(&model.AlbumPhoto{})
				if result.Error != nil {
					return wrapError(result.Error, "membership delete failed")
				}
				if result.RowsAffected == 0 {
					return apperrors.NotFoundf("photo %d in album %d", photoID, albumID)
				}
			}
		}
		return nil
	})
}
