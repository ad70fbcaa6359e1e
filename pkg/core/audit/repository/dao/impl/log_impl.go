package dao

import (
	"context"
	"fmt"

	apperrors "github.com/kobbyowen/focus/pkg/common/errors"
	"github.com/kobbyowen/focus/pkg/core/audit/model"
	"github.com/kobbyowen/focus/pkg/core/audit/repository/dao"
	"gorm.io/gorm"
)

type GormLogRepository struct {
	db *gorm.DB
}

var _ dao.LogRepository = (*GormLogRepository)(nil)

func NewGormLogRepository(db *gorm.DB) *GormLogRepository {
	return &GormLogRepository{db: db}
}

func (r *GormLogRepository) Append(ctx context.Context, description string) (model.LogEntry, error) {
	entry := model.LogEntry{Description: description}
	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return model.LogEntry{}, fmt.Errorf("%w: audit append failed", apperrors.WrapGormError(err))
	}
	return entry, nil
}

// List returns newest entries first together with the total count.
func (r *GormLogRepository) List(ctx context.Context, offset, limit int) ([]model.LogEntry, int64, error) {
	var (
		total   int64
		entries []model.LogEntry
	)
	if err := r.db.WithContext(ctx).Model(&model.LogEntry{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: audit count failed", apperrors.WrapGormError(err))
	}
	err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, 0, fmt.Errorf("%w: audit list failed", apperrors.WrapGormError(err))
	}
	return entries, total, nil
}
