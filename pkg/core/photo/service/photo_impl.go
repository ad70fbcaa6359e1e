package service

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	apperrors "github.com/kobbyowen/focus/pkg/common/errors"
	"github.com/kobbyowen/focus/pkg/core/auth"
	"github.com/kobbyowen/focus/pkg/core/photo/model"
	"github.com/kobbyowen/focus/pkg/core/photo/repository/dao"
	"github.com/kobbyowen/focus/pkg/core/storage"
)

var ErrNotAnImage = apperrors.WithMessage(apperrors.ErrMissingParameter, "uploaded file must be an image")

type DefaultPhotoService struct {
	photos  dao.PhotoRepository
	files   storage.FileStore
	maxSize int64
	now     func() time.Time
}

var _ PhotoService = (*DefaultPhotoService)(nil)

func NewPhotoService(photos dao.PhotoRepository, files storage.FileStore, maxSize int64) *DefaultPhotoService {
	return &DefaultPhotoService{photos: photos, files: files, maxSize: maxSize, now: time.Now}
}

// detectContentType trusts an image/* part header and sniffs the first
// 512 bytes otherwise. The returned reader still yields the whole body.
func detectContentType(declared string, body io.Reader) (string, io.Reader) {
	if strings.HasPrefix(strings.ToLower(declared), "image/") {
		return strings.ToLower(declared), body
	}
	br := bufio.NewReaderSize(body, 512)
	head, _ := br.Peek(512)
	return http.DetectContentType(head), br
}

func (s *DefaultPhotoService) Upload(ctx context.Context, ownerID int64, in UploadInput) (model.Photo, error) {
	if in.Body == nil || in.Filename == "" {
		return model.Photo{}, apperrors.WithMessage(apperrors.ErrMissingParameter, "file is required")
	}
	if s.maxSize > 0 && in.Size > s.maxSize {
		return model.Photo{}, apperrors.WithMessage(apperrors.ErrMissingParameter,
			fmt.Sprintf("file exceeds the %d byte limit", s.maxSize))
	}

	contentType, body := detectContentType(in.ContentType, in.Body)
	if !strings.HasPrefix(contentType, "image/") {
		return model.Photo{}, ErrNotAnImage
	}

	key := storage.NewKey(in.Filename, s.now())
	if err := s.files.Put(ctx, key, body, in.Size, contentType); err != nil {
		return model.Photo{}, fmt.Errorf("store upload: %w", err)
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = filepath.Base(in.Filename)
	}
	photo := model.Photo{
		Title:    title,
		FilePath: key,
		MimeType: contentType,
		Size:     in.Size,
		OwnerID:  ownerID,
	}
	if err := s.photos.Create(ctx, &photo); err != nil {
		if derr := s.files.Delete(ctx, key); derr != nil {
			hlog.CtxWarnf(ctx, "[PHOTO] orphaned file %s: %v", key, derr)
		}
		return model.Photo{}, err
	}

	hlog.CtxInfof(ctx, "[PHOTO] uploaded id=%d owner=%d key=%s size=%d", photo.ID, ownerID, key, in.Size)
	return s.photos.QueryByID(ctx, photo.ID)
}

func (s *DefaultPhotoService) Get(ctx context.Context, id int64) (model.Photo, error) {
	return s.photos.QueryByID(ctx, id)
}

func (s *DefaultPhotoService) List(ctx context.Context, ownerID int64, offset, limit int) ([]model.Photo, int64, error) {
	return s.photos.List(ctx, ownerID, offset, limit)
}

func (s *DefaultPhotoService) Download(ctx context.Context, id int64) (model.Photo, *storage.FileObject, error) {
	photo, err := s.photos.QueryByID(ctx, id)
	if err != nil {
		return model.Photo{}, nil, err
	}
	obj, err := s.files.Get(ctx, photo.FilePath)
	if err != nil {
		return model.Photo{}, nil, err
	}
	if photo.MimeType != "" {
		obj.ContentType = photo.MimeType
	}
	return photo, obj, nil
}

func (s *DefaultPhotoService) UpdateTitle(ctx context.Context, p *auth.Principal, id int64, title string) (model.Photo, error) {
	updated, err := s.photos.Update(ctx, id, func(photo *model.Photo) error {
		if err := auth.OwnerOnly(photo.OwnerID)(p); err != nil {
			return err
		}
		photo.Title = title
		return nil
	})
	if err != nil {
		return model.Photo{}, err
	}
	return s.photos.QueryByID(ctx, updated.ID)
}

// Delete drops the record first, a file left behind is only logged.
func (s *DefaultPhotoService) Delete(ctx context.Context, p *auth.Principal, id int64) error {
	photo, err := s.photos.Delete(ctx, id, func(photo *model.Photo) error {
		return auth.OwnerOnly(photo.OwnerID)(p)
	})
	if err != nil {
		return err
	}
	if err := s.files.Delete(ctx, photo.FilePath); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		hlog.CtxWarnf(ctx, "[PHOTO] delete file %s: %v", photo.FilePath, err)
	}
	return nil
}
