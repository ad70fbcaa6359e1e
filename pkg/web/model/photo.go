package model

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	photomodel "github.com/kobbyowen/focus/pkg/core/photo/model"
)

type (
	UpdatePhotoReq struct {
		Title string `json:"title"`
	}

	PhotoRes struct {
		ID           int64      `json:"id"`
		Title        string     `json:"title"`
		MimeType     string     `json:"mimetype"`
		Size         int64      `json:"size"`
		CreatedAt    time.Time  `json:"created_at"`
		ModifiedAt   time.Time  `json:"modified_at"`
		CreatedBy    CreatorRes `json:"created_by"`
		DownloadLink string     `json:"download_link"`
		Links        Links      `json:"_links"`
	}
)

func (r UpdatePhotoReq) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 512)),
	)
}

func PhotoLink(id int64) string {
	return fmt.Sprintf("/api/v1/photo/%d", id)
}

func NewPhotoRes(p photomodel.Photo) PhotoRes {
	return PhotoRes{
		ID:           p.ID,
		Title:        p.Title,
		MimeType:     p.MimeType,
		Size:         p.Size,
		CreatedAt:    p.CreatedAt,
		ModifiedAt:   p.UpdatedAt,
		CreatedBy:    NewCreatorRes(p.Owner),
		DownloadLink: PhotoLink(p.ID) + "/download",
		Links:        Links{"self": PhotoLink(p.ID)},
	}
}

func NewPhotoList(photos []photomodel.Photo) []PhotoRes {
	res := make([]PhotoRes, 0, len(photos))
	for _, p := range photos {
		res = append(res, NewPhotoRes(p))
	}
	return res
}
