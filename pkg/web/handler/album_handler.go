package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/kobbyowen/focus/pkg/core/album/repository/dao"
	albumservice "github.com/kobbyowen/focus/pkg/core/album/service"
	"github.com/kobbyowen/focus/pkg/web/middleware"
	"github.com/kobbyowen/focus/pkg/web/model"
)

type AlbumHandler struct {
	albums albumservice.AlbumService
	pages  Paginator
}

func NewAlbumHandler(albums albumservice.AlbumService, pages Paginator) *AlbumHandler {
	return &AlbumHandler{albums: albums, pages: pages}
}

// List GET /api/v1/albums
func (h *AlbumHandler) List(ctx context.Context, c *app.RequestContext) {
	page, err := h.pages.Parse(c)
	if err != nil {
		respondError(c, err)
		return
	}
	albums, count, err := h.albums.List(ctx, 0, page.Offset(), page.PageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, page.Wrap(count, model.NewAlbumList(albums)))
}

// Create POST /api/v1/albums
func (h *AlbumHandler) Create(ctx context.Context, c *app.RequestContext) {
	var req model.AlbumReq
	if err := bindAndValidate(c, &req); err != nil {
		respondError(c, err)
		return
	}
	album, err := h.albums.Create(ctx, middleware.CurrentPrincipal(c).ID, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, model.NewAlbumRes(album))
}

// Get GET /api/v1/album/:id
func (h *AlbumHandler) Get(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	album, err := h.albums.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, model.NewAlbumRes(album))
}

// Update PUT /api/v1/album/:id
func (h *AlbumHandler) Update(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var req model.AlbumReq
	if err := bindAndValidate(c, &req); err != nil {
		respondError(c, err)
		return
	}
	album, err := h.albums.Rename(ctx, middleware.CurrentPrincipal(c), id, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, model.NewAlbumRes(album))
}

// Delete DELETE /api/v1/album/:id
func (h *AlbumHandler) Delete(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.albums.Delete(ctx, middleware.CurrentPrincipal(c), id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, nil)
}

// ListPhotos GET /api/v1/album/:id/photos
func (h *AlbumHandler) ListPhotos(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	page, err := h.pages.Parse(c)
	if err != nil {
		respondError(c, err)
		return
	}
	photos, count, err := h.albums.ListPhotos(ctx, id, page.Offset(), page.PageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, page.Wrap(count, model.NewPhotoList(photos)))
}

// ApplyMembership PUT /api/v1/album/:id/photos
func (h *AlbumHandler) ApplyMembership(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var req model.MembershipReq
	if err := bindAndValidate(c, &req); err != nil {
		respondError(c, err)
		return
	}

	err = h.albums.ApplyMembership(ctx, middleware.CurrentPrincipal(c), id, dao.MembershipOp(req.Operation), req.PhotoIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, nil)
}

// RemovePhoto DELETE /api/v1/album/:id/photo/:photo_id
func (h *AlbumHandler) RemovePhoto(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	photoID, err := pathID(c, "photo_id")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.albums.RemovePhoto(ctx, middleware.CurrentPrincipal(c), id, photoID); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, nil)
}
