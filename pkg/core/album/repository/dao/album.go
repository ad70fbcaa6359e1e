package dao

import (
	"context"

	"github.com/kobbyowen/focus/pkg/core/album/model"
	photomodel "github.com/kobbyowen/focus/pkg/core/photo/model"
)

// Mutator edits a loaded album in place. Returning an error aborts the operation.
type Mutator func(a *model.Album) error

type MembershipOp string

const (
	OpAdd    MembershipOp = "add"
	OpRemove MembershipOp = "remove"
)

func (op MembershipOp) Valid() bool {
	return op == OpAdd || op == OpRemove
}

type AlbumRepository interface {
	Create(ctx context.Context, album *model.Album) error
	QueryByID(ctx context.Context, id int64) (model.Album, error)
	// List returns newest first. ownerID 0 lists every album.
	List(ctx context.Context, ownerID int64, offset, limit int) ([]model.Album, int64, error)
	Update(ctx context.Context, id int64, fn Mutator) (model.Album, error)
	Delete(ctx context.Context, id int64, fn Mutator) error
	ListPhotos(ctx context.Context, albumID int64, offset, limit int) ([]photomodel.Photo, int64, error)
	// ApplyMembership handles photoIDs in order inside one transaction and
	// stops at the first missing photo or membership.
	ApplyMembership(ctx context.Context, albumID int64, op MembershipOp, photoIDs []int64, guard Mutator) error
}
