package service

import (
	"context"
	"time"

	"github.com/kobbyowen/focus/pkg/common/config"
	"github.com/kobbyowen/focus/pkg/core/auth"
	"github.com/kobbyowen/focus/pkg/core/user/model"
)

type RegisterInput struct {
	Email    string
	Username string
	Name     string
	Password string
}

// EditInput carries the self-edit fields, nil leaves a field untouched.
type EditInput struct {
	Username *string
	Email    *string
	Name     *string
}

type LoginResult struct {
	User      model.User
	Token     string
	ExpiresAt time.Time
}

type UserService interface {
	auth.PrincipalLookup
	Register(ctx context.Context, in RegisterInput) (model.User, error)
	Login(ctx context.Context, email, password string) (LoginResult, error)
	Get(ctx context.Context, id int64) (model.User, error)
	List(ctx context.Context, offset, limit int) ([]model.User, int64, error)
	Update(ctx context.Context, id int64, in EditInput) (model.User, error)
	Delete(ctx context.Context, id int64) error
	EnsureAdmin(ctx context.Context, admin config.AdminConfig) error
}
