package dao

import (
	"context"

	"github.com/kobbyowen/focus/pkg/core/photo/model"
)

// Mutator edits a loaded photo in place. Returning an error aborts the update.
type Mutator func(p *model.Photo) error

type PhotoRepository interface {
	Create(ctx context.Context, photo *model.Photo) error
	// QueryByID loads the photo with its owner.
	QueryByID(ctx context.Context, id int64) (model.Photo, error)
	// List returns newest first. ownerID 0 lists every photo.
	List(ctx context.Context, ownerID int64, offset, limit int) ([]model.Photo, int64, error)
	FilePathsByOwner(ctx context.Context, ownerID int64) ([]string, error)
	Update(ctx context.Context, id int64, fn Mutator) (model.Photo, error)
	// Delete removes the photo and its album memberships, fn runs on the locked row first.
	Delete(ctx context.Context, id int64, fn Mutator) (model.Photo, error)
}
