package middleware

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/kobbyowen/focus/pkg/core/auth"
	"github.com/kobbyowen/focus/pkg/web/model"
)

const principalKey = "principal"

// AuthMiddleware resolves the Authorization header. Anonymous requests pass
// through without a principal, rejected tokens stop the chain with 401.
func AuthMiddleware(authenticator *auth.Authenticator) app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		res := authenticator.Authenticate(c, string(ctx.GetHeader("Authorization")))
		switch res.Outcome {
		case auth.Rejected:
			hlog.CtxInfof(c, "[AUTH] rejected path=%s: %v", ctx.Path(), res.Err)
			ctx.AbortWithStatusJSON(model.Failure(res.Err))
			return
		case auth.Authenticated:
			ctx.Set(principalKey, res.Principal)
		}
		ctx.Next(c)
	}
}

// Require aborts with 403 unless policy admits the current principal.
func Require(policy auth.Policy) app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		if err := policy(CurrentPrincipal(ctx)); err != nil {
			ctx.AbortWithStatusJSON(model.Failure(err))
			return
		}
		ctx.Next(c)
	}
}

// CurrentPrincipal returns nil for anonymous requests.
func CurrentPrincipal(ctx *app.RequestContext) *auth.Principal {
	v, ok := ctx.Get(principalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*auth.Principal)
	return p
}
