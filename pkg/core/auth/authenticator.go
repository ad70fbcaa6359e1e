package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	apperrors "github.com/kobbyowen/focus/pkg/common/errors"
)

var (
	ErrAuthenticationFailed = apperrors.WithMessage(apperrors.ErrInvalidCredentials, "authentication failed")
	ErrUnknownPrincipal     = apperrors.WithMessage(apperrors.ErrInvalidCredentials, "user not found")
)

// Principal is the identity a request acts as.
type Principal struct {
	ID       int64
	Username string
	IsAdmin  bool
}

type Outcome int

const (
	Anonymous Outcome = iota
	Authenticated
	Rejected
)

func (o Outcome) String() string {
	switch o {
	case Authenticated:
		return "authenticated"
	case Rejected:
		return "rejected"
	default:
		return "anonymous"
	}
}

type Result struct {
	Outcome   Outcome
	Principal *Principal
	Err       error
}

// PrincipalLookup resolves a token subject to a live principal.
// It returns an error wrapping errors.ErrNotFound when the user is gone.
type PrincipalLookup interface {
	LookupPrincipal(ctx context.Context, id int64) (Principal, error)
}

type Authenticator struct {
	codec *TokenCodec
	users PrincipalLookup
}

func NewAuthenticator(codec *TokenCodec, users PrincipalLookup) *Authenticator {
	return &Authenticator{codec: codec, users: users}
}

// Authenticate inspects an Authorization header value. Anything other than
// exactly "Bearer <token>" is anonymous.
func (a *Authenticator) Authenticate(ctx context.Context, header string) Result {
	fields := strings.Fields(header)
	if len(fields) != 2 || !strings.EqualFold(fields[0], "Bearer") {
		return Result{Outcome: Anonymous}
	}

	claims, err := a.codec.Decode(fields[1])
	if err != nil {
		hlog.CtxDebugf(ctx, "[AUTH] token rejected: %v", err)
		return Result{Outcome: Rejected, Err: ErrAuthenticationFailed}
	}

	principal, err := a.users.LookupPrincipal(ctx, claims.UserID)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		hlog.CtxDebugf(ctx, "[AUTH] token for missing user %d", claims.UserID)
		return Result{Outcome: Rejected, Err: ErrUnknownPrincipal}
	case err != nil:
		return Result{Outcome: Rejected, Err: err}
	}
	return Result{Outcome: Authenticated, Principal: &principal}
}
