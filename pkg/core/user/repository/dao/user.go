package dao

import (
	"context"

	"github.com/kobbyowen/focus/pkg/core/user/model"
)

// Mutator edits a loaded user in place before it is written back.
type Mutator func(u *model.User) error

type UserRepository interface {
	QueryByID(ctx context.Context, id int64) (model.User, error)
	QueryByEmail(ctx context.Context, email string) (model.User, error)
	// IsUsernameExists ignores the row with excludeID, 0 checks every row.
	IsUsernameExists(ctx context.Context, username string, excludeID int64) (bool, error)
	IsEmailExists(ctx context.Context, email string, excludeID int64) (bool, error)
	CreateUser(ctx context.Context, user *model.User) error
	List(ctx context.Context, offset, limit int) ([]model.User, int64, error)
	// Update applies fn under a row lock and reports the change to the audit recorder.
	Update(ctx context.Context, id int64, fn Mutator) (model.User, error)
	// Delete removes the user together with owned photos, albums and memberships.
	Delete(ctx context.Context, id int64) error
}
