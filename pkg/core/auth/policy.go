package auth

import apperrors "github.com/kobbyowen/focus/pkg/common/errors"

// Policy decides whether p may go on. A nil p is an anonymous caller.
// Violations return errors.ErrForbidden.
type Policy func(p *Principal) error

func Open(*Principal) error { return nil }

func RequireAuthenticated(p *Principal) error {
	if p == nil {
		return apperrors.ErrForbidden
	}
	return nil
}

func AdminOnly(p *Principal) error {
	if p == nil || !p.IsAdmin {
		return apperrors.ErrForbidden
	}
	return nil
}

// SelfOrAdmin lets the subject itself or any admin through.
func SelfOrAdmin(subjectID int64) Policy {
	return func(p *Principal) error {
		if p == nil || (p.ID != subjectID && !p.IsAdmin) {
			return apperrors.ErrForbidden
		}
		return nil
	}
}

// OwnerOnly has no admin override.
func OwnerOnly(ownerID int64) Policy {
	return func(p *Principal) error {
		if p == nil || p.ID != ownerID {
			return apperrors.ErrForbidden
		}
		return nil
	}
}
