package service

import (
	"context"
	"io"

	"github.com/kobbyowen/focus/pkg/core/auth"
	"github.com/kobbyowen/focus/pkg/core/photo/model"
	"github.com/kobbyowen/focus/pkg/core/storage"
)

type UploadInput struct {
	Title       string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type PhotoService interface {
	Upload(ctx context.Context, ownerID int64, in UploadInput) (model.Photo, error)
	Get(ctx context.Context, id int64) (model.Photo, error)
	// List returns newest first. ownerID 0 lists every photo.
	List(ctx context.Context, ownerID int64, offset, limit int) ([]model.Photo, int64, error)
	Download(ctx context.Context, id int64) (model.Photo, *storage.FileObject, error)
	UpdateTitle(ctx context.Context, p *auth.Principal, id int64, title string) (model.Photo, error)
	Delete(ctx context.Context, p *auth.Principal, id int64) error
}
