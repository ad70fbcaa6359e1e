package model

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	usermodel "github.com/kobbyowen/focus/pkg/core/user/model"
)

// 请求/响应数据结构
type (
	RegisterReq struct {
		Name     string `json:"name"`
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	LoginReq struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	// EditUserReq only touches the fields that are present.
	EditUserReq struct {
		Username *string `json:"username"`
		Email    *string `json:"email"`
		Name     *string `json:"name"`
	}

	UserRes struct {
		ID         int64      `json:"id"`
		Username   string     `json:"username"`
		Email      string     `json:"email"`
		Name       string     `json:"name"`
		IsAdmin    bool       `json:"is_admin"`
		LastLogin  *time.Time `json:"last_login"`
		CreatedAt  time.Time  `json:"created_at"`
		ModifiedAt time.Time  `json:"modified_at"`
		Links      Links      `json:"_links"`
	}

	LoginRes struct {
		ID        int64     `json:"id"`
		Username  string    `json:"username"`
		Token     string    `json:"token"`
		Expires   int64     `json:"expires"` // 有效期（秒）
		ExpiresAt time.Time `json:"expires_at"`
		Links     Links     `json:"_links"`
	}

	// CreatorRes is the owner block embedded in photos and albums.
	CreatorRes struct {
		ID       int64  `json:"id"`
		Email    string `json:"email"`
		Username string `json:"username"`
		Name     string `json:"name"`
		UserLink string `json:"user_link"`
	}
)

func (r RegisterReq) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Length(0, 512)),
		validation.Field(&r.Username, validation.Required, validation.Length(1, 128)),
		validation.Field(&r.Email, validation.Required, validation.Length(3, 512), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 128)),
	)
}

func (r LoginReq) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(1, 128)),
	)
}

func (r EditUserReq) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.NilOrNotEmpty, validation.Length(1, 128)),
		validation.Field(&r.Email, validation.NilOrNotEmpty, validation.Length(3, 512), is.Email),
		validation.Field(&r.Name, validation.Length(0, 512)),
	)
}

func UserLink(id int64) string {
	return fmt.Sprintf("/api/v1/user/%d", id)
}

func NewUserRes(u usermodel.User) UserRes {
	return UserRes{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		Name:       u.Name,
		IsAdmin:    u.IsAdmin,
		LastLogin:  u.LastLogin,
		CreatedAt:  u.CreatedAt,
		ModifiedAt: u.UpdatedAt,
		Links: Links{
			"self":   UserLink(u.ID),
			"photos": UserLink(u.ID) + "/photos",
			"albums": UserLink(u.ID) + "/albums",
		},
	}
}

func NewUserList(users []usermodel.User) []UserRes {
	res := make([]UserRes, 0, len(users))
	for _, u := range users {
		res = append(res, NewUserRes(u))
	}
	return res
}

func NewCreatorRes(u usermodel.User) CreatorRes {
	return CreatorRes{
		ID:       u.ID,
		Email:    u.Email,
		Username: u.Username,
		Name:     u.Name,
		UserLink: UserLink(u.ID),
	}
}

func NewLoginRes(u usermodel.User, token string, expiresAt time.Time) LoginRes {
	expires := int64(time.Until(expiresAt).Round(time.Second) / time.Second)
	if expires < 0 {
		expires = 0
	}
	return LoginRes{
		ID:        u.ID,
		Username:  u.Username,
		Token:     token,
		Expires:   expires,
		ExpiresAt: expiresAt,
		Links:     Links{"user": UserLink(u.ID)},
	}
}
