package model

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	albummodel "github.com/kobbyowen/focus/pkg/core/album/model"
)

type (
	AlbumReq struct {
		Name string `json:"name"`
	}

	MembershipReq struct {
		PhotoIDs  []int64 `json:"photo_ids"`
		Operation string  `json:"operation"`
	}

	AlbumRes struct {
		ID         int64      `json:"id"`
		Name       string     `json:"name"`
		CreatedAt  time.Time  `json:"created_at"`
		ModifiedAt time.Time  `json:"modified_at"`
		CreatedBy  CreatorRes `json:"created_by"`
		Photos     string     `json:"photos"`
		Links      Links      `json:"_links"`
	}
)

func (r AlbumReq) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 512)),
	)
}

func (r MembershipReq) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PhotoIDs, validation.Required),
		validation.Field(&r.Operation, validation.Required, validation.In("add", "remove")),
	)
}

func AlbumLink(id int64) string {
	return fmt.Sprintf("/api/v1/album/%d", id)
}

func NewAlbumRes(a albummodel.Album) AlbumRes {
	return AlbumRes{
		ID:         a.ID,
		Name:       a.Name,
		CreatedAt:  a.CreatedAt,
		ModifiedAt: a.UpdatedAt,
		CreatedBy:  NewCreatorRes(a.Owner),
		Photos:     AlbumLink(a.ID) + "/photos",
		Links:      Links{"self": AlbumLink(a.ID)},
	}
}

func NewAlbumList(albums []albummodel.Album) []AlbumRes {
	res := make([]AlbumRes, 0, len(albums))
	for _, a := range albums {
		res = append(res, NewAlbumRes(a))
	}
	return res
}
