// pkg/common/errors/errors.go

/*
  - Usage
    // handlers never build envelopes from raw strings:
    if err := svc.Update(ctx, id, req); err != nil {
    	respondError(c, err) // KindOf(err) picks code + status
    }

    // details for the client travel as hertz error meta:
    return errors.NewMissingParameter(validationErrs)
*/
package errors

import (
	"errors"
	"fmt"
	"net/http"

	hzte "github.com/cloudwego/hertz/pkg/common/errors"
)

// Envelope error codes. 0 means success.
const (
	CodeSuccess            = 0
	CodeGeneral            = 1000
	CodeMissingParameter   = 1001
	CodeInvalidCredentials = 1002
	CodeForbidden          = 1003
	CodeNotFound           = 1004
	CodeDuplicate          = 1005
)

const MessageSuccess = "success"

// Root errors, every domain error wraps exactly one of them.
var (
	ErrForbidden          = errors.New("you do not have permission to perform this action")
	ErrNotFound           = errors.New("not found")
	ErrDuplicateEntry     = errors.New("already exists")
	ErrMissingParameter   = errors.New("missing or invalid parameters")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDatabaseInternal   = errors.New("database internal error")
)

var (
	ErrUserNotFound  = fmt.Errorf("user %w", ErrNotFound)
	ErrPhotoNotFound = fmt.Errorf("photo %w", ErrNotFound)
	ErrAlbumNotFound = fmt.Errorf("album %w", ErrNotFound)
	ErrRouteNotFound = fmt.Errorf("route %w", ErrNotFound)
)

// Kind describes how an error is reported to clients.
type Kind struct {
	Code    int
	Status  int
	Message string
}

var KindGeneral = Kind{
	Code:    CodeGeneral,
	Status:  http.StatusInternalServerError,
	Message: "an unexpected error occurred",
}

var kinds = []struct {
	root error
	kind Kind
}{
	{ErrForbidden, Kind{CodeForbidden, http.StatusForbidden, ErrForbidden.Error()}},
	{ErrNotFound, Kind{CodeNotFound, http.StatusNotFound, "resource not found"}},
	{ErrDuplicateEntry, Kind{CodeDuplicate, http.StatusConflict, "resource already exists"}},
	{ErrMissingParameter, Kind{CodeMissingParameter, http.StatusBadRequest, ErrMissingParameter.Error()}},
	{ErrInvalidCredentials, Kind{CodeInvalidCredentials, http.StatusUnauthorized, ErrInvalidCredentials.Error()}},
}

// KindOf maps err onto the envelope taxonomy. Anything unknown is a general error.
func KindOf(err error) Kind {
	for _, k := range kinds {
		if errors.Is(err, k.root) {
			return k.kind
		}
	}
	return KindGeneral
}

// PublicMessage returns the text that may be shown to a client.
// General errors are replaced by a fixed message so internals never leak.
func PublicMessage(err error) string {
	kind := KindOf(err)
	if kind.Code == CodeGeneral {
		return kind.Message
	}
	return err.Error()
}

// Meta returns the public metadata attached to err, if any.
func Meta(err error) interface{} {
	var he *hzte.Error
	if errors.As(err, &he) && he.IsType(hzte.ErrorTypePublic) {
		return he.Meta
	}
	return nil
}

func NewMissingParameter(meta interface{}) *hzte.Error {
	return hzte.New(ErrMissingParameter, hzte.ErrorTypePublic, meta)
}

func NewInvalidCredentials(meta interface{}) *hzte.Error {
	return hzte.New(ErrInvalidCredentials, hzte.ErrorTypePublic, meta)
}

// NotFoundf builds a not-found error naming the missing object, e.g. "photo 999 not found".
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%s %w", fmt.Sprintf(format, args...), ErrNotFound)
}

// Duplicatef builds a duplicate error, e.g. `album "Trip" already exists`.
func Duplicatef(format string, args ...interface{}) error {
	return fmt.Errorf("%s %w", fmt.Sprintf(format, args...), ErrDuplicateEntry)
}

type messageError struct {
	msg  string
	root error
}

func (e *messageError) Error() string { return e.msg }
func (e *messageError) Unwrap() error { return e.root }

// WithMessage returns an error that reads msg but classifies as root.
func WithMessage(root error, msg string) error {
	return &messageError{msg: msg, root: root}
}
