package model

import (
	"net/http"

	apperrors "github.com/kobbyowen/focus/pkg/common/errors"
)

// Response is the envelope every API endpoint answers with.
type Response struct {
	ErrorCode    int         `json:"error_code"`
	ErrorMessage string      `json:"error_message"`
	Data         interface{} `json:"data"`
}

// Page wraps list results.
type Page struct {
	Count    int64       `json:"count"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
	Results  interface{} `json:"results"`
}

type Links map[string]string

func Success(data interface{}) Response {
	if data == nil {
		data = struct{}{}
	}
	return Response{ErrorCode: apperrors.CodeSuccess, ErrorMessage: apperrors.MessageSuccess, Data: data}
}

// Failure maps err to its HTTP status and envelope. Public error meta becomes data.
func Failure(err error) (int, Response) {
	kind := apperrors.KindOf(err)
	return kind.Status, Response{
		ErrorCode:    kind.Code,
		ErrorMessage: apperrors.PublicMessage(err),
		Data:         apperrors.Meta(err),
	}
}

// FailureWithStatus keeps the envelope of err but answers with status.
func FailureWithStatus(status int, err error) (int, Response) {
	_, body := Failure(err)
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return status, body
}
