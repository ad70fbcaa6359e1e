package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	userservice "github.com/kobbyowen/focus/pkg/core/user/service"
	"github.com/kobbyowen/focus/pkg/web/model"
)

type AuthHandler struct {
	users userservice.UserService
}

func NewAuthHandler(users userservice.UserService) *AuthHandler {
	return &AuthHandler{users: users}
}

// Register POST /auth/register
func (h *AuthHandler) Register(ctx context.Context, c *app.RequestContext) {
	var req model.RegisterReq
	if err := bindAndValidate(c, &req); err != nil {
		respondError(c, err)
		return
	}

	user, err := h.users.Register(ctx, userservice.RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	hlog.CtxInfof(ctx, "[AUTH] registered user=%d username=%s", user.ID, user.Username)
	respondCreated(c, model.NewUserRes(user))
}

// Login POST /auth/login
func (h *AuthHandler) Login(ctx context.Context, c *app.RequestContext) {
	var req model.LoginReq
	if err := bindAndValidate(c, &req); err != nil {
		respondError(c, err)
		return
	}

	res, err := h.users.Login(ctx, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, model.NewLoginRes(res.User, res.Token, res.ExpiresAt))
}
