package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	apperrors "github.com/kobbyowen/focus/pkg/common/errors"
	photoservice "github.com/kobbyowen/focus/pkg/core/photo/service"
	"github.com/kobbyowen/focus/pkg/web/middleware"
	"github.com/kobbyowen/focus/pkg/web/model"
)

type PhotoHandler struct {
	photos photoservice.PhotoService
	pages  Paginator
}

func NewPhotoHandler(photos photoservice.PhotoService, pages Paginator) *PhotoHandler {
	return &PhotoHandler{photos: photos, pages: pages}
}

// List GET /api/v1/photos
func (h *PhotoHandler) List(ctx context.Context, c *app.RequestContext) {
	page, err := h.pages.Parse(c)
	if err != nil {
		respondError(c, err)
		return
	}
	photos, count, err := h.photos.List(ctx, 0, page.Offset(), page.PageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, page.Wrap(count, model.NewPhotoList(photos)))
}

// Upload POST /api/v1/photos (multipart: file, title)
func (h *PhotoHandler) Upload(ctx context.Context, c *app.RequestContext) {
	fh, err := c.FormFile("file")
	if err != nil {
		respondError(c, apperrors.NewMissingParameter(map[string]string{"file": "this field is required"}))
		return
	}
	f, err := fh.Open()
	if err != nil {
		respondError(c, fmt.Errorf("open upload: %w", err))
		return
	}
	defer f.Close()

	photo, err := h.photos.Upload(ctx, middleware.CurrentPrincipal(c).ID, photoservice.UploadInput{
		Title:       c.PostForm("title"),
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	hlog.CtxInfof(ctx, "[PHOTO] uploaded photo=%d owner=%d size=%d", photo.ID, photo.OwnerID, photo.Size)
	respondCreated(c, model.NewPhotoRes(photo))
}

// Get GET /api/v1/photo/:id
func (h *PhotoHandler) Get(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	photo, err := h.photos.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, model.NewPhotoRes(photo))
}

// Download GET /api/v1/photo/:id/download returns the raw bytes.
func (h *PhotoHandler) Download(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	photo, obj, err := h.photos.Download(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	defer obj.Body.Close()

	data, err := io.ReadAll(obj.Body)
	if err != nil {
		respondError(c, fmt.Errorf("read photo %d: %w", id, err))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%d%s"`, photo.ID, filepath.Ext(photo.FilePath)))
	c.Data(http.StatusOK, photo.MimeType, data)
}

// Update PUT /api/v1/photo/:id
func (h *PhotoHandler) Update(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var req model.UpdatePhotoReq
	if err := bindAndValidate(c, &req); err != nil {
		respondError(c, err)
		return
	}

	photo, err := h.photos.UpdateTitle(ctx, middleware.CurrentPrincipal(c), id, req.Title)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, model.NewPhotoRes(photo))
}

// Delete DELETE /api/v1/photo/:id
func (h *PhotoHandler) Delete(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.photos.Delete(ctx, middleware.CurrentPrincipal(c), id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, nil)
}
