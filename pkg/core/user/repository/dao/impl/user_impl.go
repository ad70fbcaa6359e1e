package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/kobbyowen/focus/pkg/common/errors"
	albummodel "github.com/kobbyowen/focus/pkg/core/album/model"
	"github.com/kobbyowen/focus/pkg/core/audit"
	photomodel "github.com/kobbyowen/focus/pkg/core/photo/model"
	"github.com/kobbyowen/focus/pkg/core/user/model"
	"github.com/kobbyowen/focus/pkg/core/user/repository/dao"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormUserRepository struct {
	db       *gorm.DB
	recorder audit.Recorder
}

var _ dao.UserRepository = (*GormUserRepository)(nil)

func NewGormUserRepository(db *gorm.DB, recorder audit.Recorder) *GormUserRepository {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &GormUserRepository{db: db, recorder: recorder}
}

func (r *GormUserRepository) QueryByID(ctx context.Context, id int64) (model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	return user, r.queryError(err, "user query failed")
}

func (r *GormUserRepository) QueryByEmail(ctx context.Context, email string) (model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	return user, r.queryError(err, "user query failed")
}

func (r *GormUserRepository) queryError(err error, msg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.ErrUserNotFound
	default:
		return fmt.Errorf("%w: %s", apperrors.WrapGormError(err), msg)
	}
}

// Check username existence, skipping excludeID
func (r *GormUserRepository) IsUsernameExists(ctx context.Context, username string, excludeID int64) (bool, error) {
	return r.exists(ctx, "username", username, excludeID)
}

// Check email existence, skipping excludeID
func (r *GormUserRepository) IsEmailExists(ctx context.Context, email string, excludeID int64) (bool, error) {
	return r.exists(ctx, "email", email, excludeID)
}

func (r *GormUserRepository) exists(ctx context.Context, column, value string, excludeID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where(column+" = ? AND id <> ?", value, excludeID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("%w: failed to check %s", apperrors.WrapGormError(err), column)
	}
	return count > 0, nil
}

// Create new user with transaction
func (r *GormUserRepository) CreateUser(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			if apperrors.IsDuplicateError(err) {
				return apperrors.Duplicatef("user %q", user.Username)
			}
			return fmt.Errorf("%w: user creation failed", apperrors.WrapGormError(err))
		}
		return nil
	})
}

func (r *GormUserRepository) List(ctx context.Context, offset, limit int) ([]model.User, int64, error) {
	var (
		total int64
		users []model.User
	)
	if err := r.db.WithContext(ctx).Model(&model.User{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: user count failed", apperrors.WrapGormError(err))
	}
	err := r.db.WithContext(ctx).Order("id ASC").Offset(offset).Limit(limit).Find(&users).Error
	if err != nil {
		return nil, 0, fmt.Errorf("%w: user list failed", apperrors.WrapGormError(err))
	}
	return users, total, nil
}

// Update locks the row, applies fn and bumps the version. The audit
// recorder sees the committed before/after pair.
func (r *GormUserRepository) Update(ctx context.Context, id int64, fn dao.Mutator) (model.User, error) {
	var before, after model.User

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&before).Error; err != nil {
			return r.queryError(err, "user lock failed")
		}

		after = before
		if err := fn(&after); err != nil {
			return err
		}
		after.ID = before.ID
		after.Version = before.Version + 1
		after.UpdatedAt = time.Now()

		result := tx.Model(&model.User{}).
			Where("id = ? AND version = ?", id, before.Version).
			Updates(map[string]interface{}{
				"username":      after.Username,
				"email":         after.Email,
				"name":          after.Name,
				"password_hash": after.PasswordHash,
				"is_admin":      after.IsAdmin,
				"last_login":    after.LastLogin,
				"version":       after.Version,
				"updated_at":    after.UpdatedAt,
			})

		if result.Error != nil {
			if apperrors.IsDuplicateError(result.Error) {
				return apperrors.Duplicatef("username or email")
			}
			return fmt.Errorf("%w: user update failed", apperrors.WrapGormError(result.Error))
		}
		if result.RowsAffected == 0 {
			return apperrors.ErrUserNotFound
		}
		return nil
	})
	if err != nil {
		return model.User{}, err
	}

	r.recorder.Record(ctx, before.Snapshot(), after.Snapshot())
	return after, nil
}

// Delete cascades by hand so MySQL and SQLite behave the same without relying on FK actions.
func (r *GormUserRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ownedAlbums := tx.Model(&albummodel.Album{}).Select("id").Where("owner_id = ?", id)
		ownedPhotos := tx.Model(&photomodel.Photo{}).Select("id").Where("owner_id = ?", id)

		if err := tx.Where("album_id IN (?) OR photo_id IN (?)", ownedAlbums, ownedPhotos).
			Delete(&albummodel.AlbumPhoto{}).Error; err != nil {
			return fmt.Errorf("%w: membership cleanup failed", apperrors.WrapGormError(err))
		}
		if err := tx.Where("owner_id = ?", id).Delete(&albummodel.Album{}).Error; err != nil {
			return fmt.Errorf("%w: album cleanup failed", apperrors.WrapGormError(err))
		}
		if err := tx.Where("owner_id = ?", id).Delete(&photomodel.Photo{}).Error; err != nil {
			return fmt.Errorf("%w: photo cleanup failed", apperrors.WrapGormError(err))
		}

		result := tx.Delete(&model.User{}, id)
		if result.Error != nil {
			return fmt.Errorf("%w: user delete failed", apperrors.WrapGormError(result.Error))
		}
		if result.RowsAffected == 0 {
			return apperrors.ErrUserNotFound
		}
		return nil
	})
}
