package dao

import (
	"context"
	"fmt"
	"testing"

	"github.com/kobbyowen/focus/pkg/common/dbtest"
	apperrors "github.com/kobbyowen/focus/pkg/common/errors"
	"github.com/kobbyowen/focus/pkg/core/album/model"
	"github.com/kobbyowen/focus/pkg/core/album/repository/dao"
	"github.com/kobbyowen/focus/pkg/core/audit"
	photomodel "github.com/kobbyowen/focus/pkg/core/photo/model"
	usermodel "github.com/kobbyowen/focus/pkg/core/user/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type captureRecorder struct{ descriptions []string }

func (c *captureRecorder) Record(_ context.Context, before, after audit.Snapshot) {
	if desc, ok := audit.Describe(before, after); ok {
		c.descriptions = append(c.descriptions, desc)
	}
}

type fixture struct {
	repo   *GormAlbumRepository
	rec    *captureRecorder
	db     *gorm.DB
	u1, u2 usermodel.User
}

func setup(t *testing.T) fixture {
	t.Helper()
	db := dbtest.Open(t, &usermodel.User{}, &photomodel.Photo{}, &model.Album{}, &model.AlbumPhoto{})
	f := fixture{db: db, rec: &captureRecorder{}}
	f.u1 = usermodel.User{Username: "u1", Email: "u1@x.com", PasswordHash: "h"}
	f.u2 = usermodel.User{Username: "u2", Email: "u2@x.com", PasswordHash: "h"}
	require.NoError(t, db.Create(&f.u1).Error)
	require.NoError(t, db.Create(&f.u2).Error)
	f.repo = NewGormAlbumRepository(db, f.rec)
	return f
}

func (f fixture) photo(t *testing.T, title string) photomodel.Photo {
	t.Helper()
	p := photomodel.Photo{Title: title, FilePath: title + ".png", MimeType: "image/png", OwnerID: f.u1.ID}
	require.NoError(t, f.db.Omit("Owner").Create(&p).Error)
	return p
}

func TestAlbumNameUniquePerOwner(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	require.NoError(t, f.repo.Create(ctx, &model.Album{Name: "Trip", OwnerID: f.u1.ID}))

	err := f.repo.Create(ctx, &model.Album{Name: "Trip", OwnerID: f.u1.ID})
	assert.ErrorIs(t, err, apperrors.ErrDuplicateEntry)
	assert.Contains(t, err.Error(), `"Trip"`)

	require.NoError(t, f.repo.Create(ctx, &model.Album{Name: "Trip", OwnerID: f.u2.ID}))
}

func TestUpdateAlbumName(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	trip := model.Album{Name: "Trip", OwnerID: f.u1.ID}
	require.NoError(t, f.repo.Create(ctx, &trip))
	require.NoError(t, f.repo.Create(ctx, &model.Album{Name: "Home", OwnerID: f.u1.ID}))

	updated, err := f.repo.Update(ctx, trip.ID, func(a *model.Album) error {
		a.Name = "Trip 2026"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Trip 2026", updated.Name)
	assert.Equal(t, []string{fmt.Sprintf(`ALBUM(%d): User %d changed album name from "Trip" to "Trip 2026"`, trip.ID, f.u1.ID)}, f.rec.descriptions)

	_, err = f.repo.Update(ctx, trip.ID, func(a *model.Album) error {
		a.Name = "Home"
		return nil
	})
	assert.ErrorIs(t, err, apperrors.ErrDuplicateEntry)
	assert.Len(t, f.rec.descriptions, 1)

	_, err = f.repo.Update(ctx, 999, func(a *model.Album) error { return nil })
	assert.ErrorIs(t, err, apperrors.ErrAlbumNotFound)
}

func TestApplyMembershipStopsAtFirstMissingPhoto(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	album := model.Album{Name: "Trip", OwnerID: f.u1.ID}
	require.NoError(t, f.repo.Create(ctx, &album))
	p1 := f.photo(t, "p1")
	p2 := f.photo(t, "p2")

	err := f.repo.ApplyMembership(ctx, album.ID, dao.OpAdd, []int64{p1.ID, 999, p2.ID}, nil)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.EqualError(t, err, "photo 999 not found")

	_, total, err := f.repo.ListPhotos(ctx, album.ID, 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total, "the batch runs in one transaction")

	require.NoError(t, f.repo.ApplyMembership(ctx, album.ID, dao.OpAdd, []int64{p1.ID, p2.ID, p1.ID}, nil))
	photos, total, err := f.repo.ListPhotos(ctx, album.ID, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, "p2", photos[0].Title)
}

func TestApplyMembershipRemove(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	album := model.Album{Name: "Trip", OwnerID: f.u1.ID}
	require.NoError(t, f.repo.Create(ctx, &album))
	p1 := f.photo(t, "p1")
	p2 := f.photo(t, "p2")
	require.NoError(t, f.repo.ApplyMembership(ctx, album.ID, dao.OpAdd, []int64{p1.ID}, nil))

	err := f.repo.ApplyMembership(ctx, album.ID, dao.OpRemove, []int64{p1.ID, p2.ID}, nil)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Contains(t, err.Error(), fmt.Sprintf("photo %d in album %d", p2.ID, album.ID))

	require.NoError(t, f.repo.ApplyMembership(ctx, album.ID, dao.OpRemove, []int64{p1.ID}, nil))
	_, total, err := f.repo.ListPhotos(ctx, album.ID, 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)

	var photos int64
	require.NoError(t, f.db.Model(&photomodel.Photo{}).Count(&photos).Error)
	assert.EqualValues(t, 2, photos, "removing a membership keeps the photo")
}

func TestApplyMembershipGuardAndValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	album := model.Album{Name: "Trip", OwnerID: f.u1.ID}
	require.NoError(t, f.repo.Create(ctx, &album))
	p1 := f.photo(t, "p1")

	err := f.repo.ApplyMembership(ctx, album.ID, dao.OpAdd, []int64{p1.ID}, func(*model.Album) error {
		return apperrors.ErrForbidden
	})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	err = f.repo.ApplyMembership(ctx, album.ID, "move", []int64{p1.ID}, nil)
	assert.ErrorIs(t, err, apperrors.ErrMissingParameter)

	err = f.repo.ApplyMembership(ctx, 999, dao.OpAdd, []int64{p1.ID}, nil)
	assert.ErrorIs(t, err, apperrors.ErrAlbumNotFound)

	_, _, err = f.repo.ListPhotos(ctx, 999, 0, 10)
	assert.ErrorIs(t, err, apperrors.ErrAlbumNotFound)
}

func TestDeleteAlbumKeepsPhotos(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	album := model.Album{Name: "Trip", OwnerID: f.u1.ID}
	require.NoError(t, f.repo.Create(ctx, &album))
	p1 := f.photo(t, "p1")
	require.NoError(t, f.repo.ApplyMembership(ctx, album.ID, dao.OpAdd, []int64{p1.ID}, nil))

	require.NoError(t, f.repo.Delete(ctx, album.ID, nil))

	_, err := f.repo.QueryByID(ctx, album.ID)
	assert.ErrorIs(t, err, apperrors.ErrAlbumNotFound)

	var links, photos int64
	require.NoError(t, f.db.Model(&model.AlbumPhoto{}).Count(&links).Error)
	require.NoError(t, f.db.Model(&photomodel.Photo{}).Count(&photos).Error)
	assert.Zero(t, links)
	assert.EqualValues(t, 1, photos)
}

func TestListAlbums(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	require.NoError(t, f.repo.Create(ctx, &model.Album{Name: "A", OwnerID: f.u1.ID}))
	require.NoError(t, f.repo.Create(ctx, &model.Album{Name: "B", OwnerID: f.u1.ID}))
	require.NoError(t, f.repo.Create(ctx, &model.Album{Name: "C", OwnerID: f.u2.ID}))

	albums, total, err := f.repo.List(ctx, f.u1.ID, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, albums, 2)
	assert.Equal(t, "B", albums[0].Name)
	assert.Equal(t, "u1", albums[0].Owner.Username)

	_, total, err = f.repo.List(ctx, 0, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
}
