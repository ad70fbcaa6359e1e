package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	albumservice "github.com/kobbyowen/focus/pkg/core/album/service"
	"github.com/kobbyowen/focus/pkg/core/auth"
	photoservice "github.com/kobbyowen/focus/pkg/core/photo/service"
	userservice "github.com/kobbyowen/focus/pkg/core/user/service"
	"github.com/kobbyowen/focus/pkg/web/middleware"
	"github.com/kobbyowen/focus/pkg/web/model"
)

type UserHandler struct {
	users  userservice.UserService
	photos photoservice.PhotoService
	albums albumservice.AlbumService
	pages  Paginator
}

func NewUserHandler(users userservice.UserService, photos photoservice.PhotoService,
	albums albumservice.AlbumService, pages Paginator) *UserHandler {
	return &UserHandler{users: users, photos: photos, albums: albums, pages: pages}
}

// subject parses :id and checks policy(id) against the caller.
func subject(c *app.RequestContext, policy func(int64) auth.Policy) (int64, error) {
	id, err := pathID(c, "id")
	if err != nil {
		return 0, err
	}
	if err := policy(id)(middleware.CurrentPrincipal(c)); err != nil {
		return 0, err
	}
	return id, nil
}

// List GET /api/v1/users
func (h *UserHandler) List(ctx context.Context, c *app.RequestContext) {
	page, err := h.pages.Parse(c)
	if err != nil {
		respondError(c, err)
		return
	}
	users, count, err := h.users.List(ctx, page.Offset(), page.PageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, page.Wrap(count, model.NewUserList(users)))
}

// Me GET /api/v1/user/me
func (h *UserHandler) Me(ctx context.Context, c *app.RequestContext) {
	user, err := h.users.Get(ctx, middleware.CurrentPrincipal(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, model.NewUserRes(user))
}

// Get GET /api/v1/user/:id
func (h *UserHandler) Get(ctx context.Context, c *app.RequestContext) {
	id, err := subject(c, auth.SelfOrAdmin)
	if err != nil {
		respondError(c, err)
		return
	}
	user, err := h.users.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, model.NewUserRes(user))
}

// Update PUT /api/v1/user/:id, only the user itself may edit its profile.
func (h *UserHandler) Update(ctx context.Context, c *app.RequestContext) {
	id, err := subject(c, auth.OwnerOnly)
	if err != nil {
		respondError(c, err)
		return
	}

	var req model.EditUserReq
	if err := bindAndValidate(c, &req); err != nil {
		respondError(c, err)
		return
	}

	user, err := h.users.Update(ctx, id, userservice.EditInput{
		Username: req.Username,
		Email:    req.Email,
		Name:     req.Name,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, model.NewUserRes(user))
}

// Delete DELETE /api/v1/user/:id
func (h *UserHandler) Delete(ctx context.Context, c *app.RequestContext) {
	id, err := subject(c, auth.SelfOrAdmin)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.users.Delete(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, nil)
}

// Photos GET /api/v1/user/:id/photos
func (h *UserHandler) Photos(ctx context.Context, c *app.RequestContext) {
	id, err := subject(c, auth.SelfOrAdmin)
	if err != nil {
		respondError(c, err)
		return
	}
	page, err := h.pages.Parse(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if _, err := h.users.Get(ctx, id); err != nil {
		respondError(c, err)
		return
	}

	photos, count, err := h.photos.List(ctx, id, page.Offset(), page.PageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, page.Wrap(count, model.NewPhotoList(photos)))
}

// Albums GET /api/v1/user/:id/albums
func (h *UserHandler) Albums(ctx context.Context, c *app.RequestContext) {
	id, err := subject(c, auth.SelfOrAdmin)
	if err != nil {
		respondError(c, err)
		return
	}
	page, err := h.pages.Parse(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if _, err := h.users.Get(ctx, id); err != nil {
		respondError(c, err)
		return
	}

	albums, count, err := h.albums.List(ctx, id, page.Offset(), page.PageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, page.Wrap(count, model.NewAlbumList(albums)))
}
