package service

import (
	"context"

	"github.com/kobbyowen/focus/pkg/core/album/model"
	"github.com/kobbyowen/focus/pkg/core/album/repository/dao"
	"github.com/kobbyowen/focus/pkg/core/auth"
	photomodel "github.com/kobbyowen/focus/pkg/core/photo/model"
)

type AlbumService interface {
	Create(ctx context.Context, ownerID int64, name string) (model.Album, error)
	Get(ctx context.Context, id int64) (model.Album, error)
	// List returns newest first. ownerID 0 lists every album.
	List(ctx context.Context, ownerID int64, offset, limit int) ([]model.Album, int64, error)
	Rename(ctx context.Context, p *auth.Principal, id int64, name string) (model.Album, error)
	Delete(ctx context.Context, p *auth.Principal, id int64) error
	ListPhotos(ctx context.Context, id int64, offset, limit int) ([]photomodel.Photo, int64, error)
	ApplyMembership(ctx context.Context, p *auth.Principal, id int64, op dao.MembershipOp, photoIDs []int64) error
	RemovePhoto(ctx context.Context, p *auth.Principal, id, photoID int64) error
}
