package service

import (
	"context"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/kobbyowen/focus/pkg/core/album/model"
	"github.com/kobbyowen/focus/pkg/core/album/repository/dao"
	"github.com/kobbyowen/focus/pkg/core/auth"
	photomodel "github.com/kobbyowen/focus/pkg/core/photo/model"
)

type DefaultAlbumService struct {
	albums dao.AlbumRepository
}

var _ AlbumService = (*DefaultAlbumService)(nil)

func NewAlbumService(albums dao.AlbumRepository) *DefaultAlbumService {
	return &DefaultAlbumService{albums: albums}
}

func ownerGuard(p *auth.Principal) dao.Mutator {
	return func(a *model.Album) error {
		return auth.OwnerOnly(a.OwnerID)(p)
	}
}

func (s *DefaultAlbumService) Create(ctx context.Context, ownerID int64, name string) (model.Album, error) {
	album := model.Album{Name: name, OwnerID: ownerID}
	if err := s.albums.Create(ctx, &album); err != nil {
		return model.Album{}, err
	}
	hlog.CtxInfof(ctx, "[ALBUM] created id=%d owner=%d", album.ID, ownerID)
	return s.albums.QueryByID(ctx, album.ID)
}

func (s *DefaultAlbumService) Get(ctx context.Context, id int64) (model.Album, error) {
	return s.albums.QueryByID(ctx, id)
}

func (s *DefaultAlbumService) List(ctx context.Context, ownerID int64, offset, limit int) ([]model.Album, int64, error) {
	return s.albums.List(ctx, ownerID, offset, limit)
}

func (s *DefaultAlbumService) Rename(ctx context.Context, p *auth.Principal, id int64, name string) (model.Album, error) {
	guard := ownerGuard(p)
	_, err := s.albums.Update(ctx, id, func(a *model.Album) error {
		if err := guard(a); err != nil {
			return err
		}
		a.Name = name
		return nil
	})
	if err != nil {
		return model.Album{}, err
	}
	return s.albums.QueryByID(ctx, id)
}

func (s *DefaultAlbumService) Delete(ctx context.Context, p *auth.Principal, id int64) error {
	return s.albums.Delete(ctx, id, ownerGuard(p))
}

func (s *DefaultAlbumService) ListPhotos(ctx context.Context, id int64, offset, limit int) ([]photomodel.Photo, int64, error) {
	return s.albums.ListPhotos(ctx, id, offset, limit)
}

func (s *DefaultAlbumService) ApplyMembership(ctx context.Context, p *auth.Principal, id int64, op dao.MembershipOp, photoIDs []int64) error {
	return s.albums.ApplyMembership(ctx, id, op, photoIDs, ownerGuard(p))
}

func (s *DefaultAlbumService) RemovePhoto(ctx context.Context, p *auth.Principal, id, photoID int64) error {
	return s.albums.ApplyMembership(ctx, id, dao.OpRemove, []int64{photoID}, ownerGuard(p))
}
