package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/kobbyowen/focus/pkg/common/config"
	apperrors "github.com/kobbyowen/focus/pkg/common/errors"
	"github.com/kobbyowen/focus/pkg/core/auth"
	photodao "github.com/kobbyowen/focus/pkg/core/photo/repository/dao"
	"github.com/kobbyowen/focus/pkg/core/storage"
	"github.com/kobbyowen/focus/pkg/core/user/model"
	"github.com/kobbyowen/focus/pkg/core/user/repository/dao"
)

var ErrInvalidLogin = apperrors.WithMessage(apperrors.ErrInvalidCredentials,
	"a user with this email and password was not found")

type DefaultUserService struct {
	users    dao.UserRepository
	photos   photodao.PhotoRepository
	files    storage.FileStore
	codec    *auth.TokenCodec
	tokenTTL time.Duration
}

var _ UserService = (*DefaultUserService)(nil)

func NewUserService(users dao.UserRepository, photos photodao.PhotoRepository, files storage.FileStore,
	codec *auth.TokenCodec, tokenTTL time.Duration) *DefaultUserService {
	return &DefaultUserService{
		users:    users,
		photos:   photos,
		files:    files,
		codec:    codec,
		tokenTTL: tokenTTL,
	}
}

// NormalizeEmail lower-cases the domain part, the local part is kept as typed.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at+1] + strings.ToLower(email[at+1:])
}

func (s *DefaultUserService) Register(ctx context.Context, in RegisterInput) (model.User, error) {
	if err := auth.ValidatePasswordStrength(in.Password); err != nil {
		return model.User{}, err
	}
	email := NormalizeEmail(in.Email)

	if err := s.checkUnique(ctx, in.Username, email, 0); err != nil {
		return model.User{}, err
	}

	hashed, err := auth.HashPassword(in.Password)
	if err != nil {
		return model.User{}, err
	}

	user := model.User{
		Username:     in.Username,
		Email:        email,
		Name:         in.Name,
		PasswordHash: hashed,
	}
	if err := s.users.CreateUser(ctx, &user); err != nil {
		return model.User{}, err
	}
	hlog.CtxInfof(ctx, "[USER] registered id=%d username=%s", user.ID, user.Username)
	return user, nil
}

func (s *DefaultUserService) checkUnique(ctx context.Context, username, email string, excludeID int64) error {
	if username != "" {
		exists, err := s.users.IsUsernameExists(ctx, username, excludeID)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.Duplicatef("username %q", username)
		}
	}
	if email != "" {
		exists, err := s.users.IsEmailExists(ctx, email, excludeID)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.Duplicatef("email %q", email)
		}
	}
	return nil
}

// Login checks the credentials, issues a token and stamps last_login.
func (s *DefaultUserService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	user, err := s.users.QueryByEmail(ctx, NormalizeEmail(email))
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return LoginResult{}, ErrInvalidLogin
	case err != nil:
		return LoginResult{}, err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return LoginResult{}, ErrInvalidLogin
	}

	token, expiresAt, err := s.codec.Issue(user.ID, s.tokenTTL)
	if err != nil {
		return LoginResult{}, err
	}

	now := time.Now().UTC()
	user, err = s.users.Update(ctx, user.ID, func(u *model.User) error {
		u.LastLogin = &now
		return nil
	})
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

func (s *DefaultUserService) Get(ctx context.Context, id int64) (model.User, error) {
	return s.users.QueryByID(ctx, id)
}

func (s *DefaultUserService) List(ctx context.Context, offset, limit int) ([]model.User, int64, error) {
	return s.users.List(ctx, offset, limit)
}

// Update re-checks uniqueness of the new username and email against other users.
func (s *DefaultUserService) Update(ctx context.Context, id int64, in EditInput) (model.User, error) {
	var username, email string
	if in.Username != nil {
		username = *in.Username
	}
	if in.Email != nil {
		email = NormalizeEmail(*in.Email)
	}
	if err := s.checkUnique(ctx, username, email, id); err != nil {
		return model.User{}, err
	}

	return s.users.Update(ctx, id, func(u *model.User) error {
		if in.Username != nil {
			u.Username = username
		}
		if in.Email != nil {
			u.Email = email
		}
		if in.Name != nil {
			u.Name = *in.Name
		}
		return nil
	})
}

// Delete removes the user with everything it owns, stored files last.
func (s *DefaultUserService) Delete(ctx context.Context, id int64) error {
	paths, err := s.photos.FilePathsByOwner(ctx, id)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	for _, key := range paths {
		if err := s.files.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
			hlog.CtxWarnf(ctx, "[USER] delete file %s of user %d: %v", key, id, err)
		}
	}
	hlog.CtxInfof(ctx, "[USER] deleted id=%d photos=%d", id, len(paths))
	return nil
}

// EnsureAdmin creates the configured superuser, or promotes it when the email is taken.
func (s *DefaultUserService) EnsureAdmin(ctx context.Context, admin config.AdminConfig) error {
	if admin.Email == "" {
		return nil
	}

	existing, err := s.users.QueryByEmail(ctx, NormalizeEmail(admin.Email))
	switch {
	case err == nil:
		if existing.IsAdmin {
			return nil
		}
		_, err = s.users.Update(ctx, existing.ID, func(u *model.User) error {
			u.IsAdmin = true
			return nil
		})
		if err == nil {
			hlog.CtxInfof(ctx, "[USER] promoted %s to admin", existing.Username)
		}
		return err
	case !errors.Is(err, apperrors.ErrNotFound):
		return err
	}

	if admin.Username == "" || admin.Password == "" {
		return fmt.Errorf("%w: admin username and password are required", apperrors.ErrMissingParameter)
	}
	hashed, err := auth.HashPassword(admin.Password)
	if err != nil {
		return err
	}
	user := model.User{
		Username:     admin.Username,
		Email:        NormalizeEmail(admin.Email),
		Name:         admin.Name,
		PasswordHash: hashed,
		IsAdmin:      true,
	}
	if err := s.users.CreateUser(ctx, &user); err != nil {
		return err
	}
	hlog.CtxInfof(ctx, "[USER] created admin id=%d username=%s", user.ID, user.Username)
	return nil
}

func (s *DefaultUserService) LookupPrincipal(ctx context.Context, id int64) (auth.Principal, error) {
	user, err := s.users.QueryByID(ctx, id)
	if err != nil {
		return auth.Principal{}, err
	}
	return auth.Principal{ID: user.ID, Username: user.Username, IsAdmin: user.IsAdmin}, nil
}
