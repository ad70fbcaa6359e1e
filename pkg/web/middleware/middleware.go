package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"runtime/debug"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/hertz-contrib/cors"
	"github.com/kobbyowen/focus/pkg/common/config"
	apperrors "github.com/kobbyowen/focus/pkg/common/errors"
	"github.com/kobbyowen/focus/pkg/web/model"
)

// LoggerMiddleware 结构化的请求日志记录
func LoggerMiddleware() app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		start := time.Now()
		ctx.Next(c) // 放行到后续处理器
		latency := time.Since(start)

		// 结构化日志输出
		hlog.CtxInfof(c, "| %3d | %13v | %15s | %-7s | %s | UA=%s",
			ctx.Response.StatusCode(),
			latency,
			ctx.ClientIP(),
			ctx.Method(),
			ctx.Path(),
			ctx.GetHeader("User-Agent"),
		)
	}
}

/*
	启动时指定环境变量
	export APP_ENV=production
	go run main.go
*/

// RecoveryMiddleware 异常捕获，统一返回 GeneralError 信封
func RecoveryMiddleware(cfg *config.Config) app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		defer func() {
			if r := recover(); r != nil {
				// 获取调用堆栈
				hlog.CtxErrorf(c, "[PANIC RECOVERED] %s %s: %v\n%s", ctx.Method(), ctx.Path(), r, debug.Stack())

				status, body := model.Failure(fmt.Errorf("panic: %v", r))
				// 开发环境返回 panic 内容，堆栈只写日志
				if !cfg.IsProd() {
					body.Data = map[string]string{"panic": fmt.Sprint(r)}
				}
				ctx.AbortWithStatusJSON(status, body)
			}
		}()
		ctx.Next(c)
	}
}

// TimeoutMiddleware 为后续处理器设置截止时间，数据库与存储调用随之取消
func TimeoutMiddleware(timeout time.Duration) app.HandlerFunc {
	if timeout <= 0 {
		return func(c context.Context, ctx *app.RequestContext) { ctx.Next(c) }
	}
	return func(c context.Context, ctx *app.RequestContext) {
		timeoutCtx, cancel := context.WithTimeout(c, timeout)
		defer cancel()

		ctx.Next(timeoutCtx)

		if errors.Is(timeoutCtx.Err(), context.DeadlineExceeded) {
			hlog.CtxWarnf(c, "[TIMEOUT] %s %s exceeded %v", ctx.Method(), ctx.Path(), timeout)
		}
	}
}

// CORSMiddleware 安全的跨域配置
func CORSMiddleware(corsConfig config.CORSConfig) app.HandlerFunc {
	return cors.New(
		cors.Config{
			AllowOrigins:     corsConfig.AllowOrigins,
			AllowMethods:     corsConfig.AllowMethods,
			AllowHeaders:     corsConfig.AllowHeaders,
			ExposeHeaders:    corsConfig.ExposeHeaders,
			AllowCredentials: corsConfig.AllowCredentials,
			MaxAge:           corsConfig.MaxAge,
			// 动态校验来源
			AllowOriginFunc: func(origin string) bool {
				for _, domain := range corsConfig.TrustedDomains {
					if strings.Contains(origin, domain) {
						return true
					}
				}
				return false
			},
		},
	)
}

var errTooManyRequests = apperrors.WithMessage(apperrors.ErrMissingParameter, "too many requests")

// RateLimitMiddleware 令牌桶算法限流，rate <= 0 时不限流
func RateLimitMiddleware(rate int, interval time.Duration) app.HandlerFunc {
	if rate <= 0 || interval <= 0 {
		return func(c context.Context, ctx *app.RequestContext) { ctx.Next(c) }
	}
	limiter := NewTokenBucket(rate, interval)

	return func(c context.Context, ctx *app.RequestContext) {
		if !limiter.Allow() {
			hlog.CtxInfof(c, "[RATE LIMIT] path=%s", ctx.Path())
			ctx.AbortWithStatusJSON(model.FailureWithStatus(http.StatusTooManyRequests, errTooManyRequests))
			return
		}
		ctx.Next(c)
	}
}

// 令牌桶实现：容量为 rate，每 interval/rate 补充一个令牌
type TokenBucket struct {
	capacity int
	tokens   chan struct{}
	refill   time.Duration
}

func NewTokenBucket(rate int, interval time.Duration) *TokenBucket {
	tb := &TokenBucket{
		capacity: rate,
		tokens:   make(chan struct{}, rate),
		refill:   interval / time.Duration(rate),
	}
	if tb.refill <= 0 {
		tb.refill = time.Nanosecond
	}

	// 启动时装满令牌桶
	for i := 0; i < rate; i++ {
		tb.tokens <- struct{}{}
	}

	// 定时器生产令牌
	go func() {
		ticker := time.NewTicker(tb.refill)
		for range ticker.C {
			select {
			case tb.tokens <- struct{}{}:
			default:
			}
		}
	}()
	return tb
}

func (tb *TokenBucket) Allow() bool {
	select {
	case <-tb.tokens:
		return true
	default:
		return false
	}
}

// SecurityCheckMiddleware 全局安全校验中间件
func SecurityCheckMiddleware(sec config.SecurityConfig) app.HandlerFunc {
	// 预编译恶意字符正则
	xssRegex := regexp.MustCompile(`<script.*?>|<\/script>|alert\(|onerror=`)
	sqlInjectRegex := regexp.MustCompile(`\b(union|select|drop|delete|insert)\b`)

	allowed := make(map[string]bool, len(sec.AllowedMethods))
	for _, m := range sec.AllowedMethods {
		allowed[strings.ToUpper(m)] = true
	}

	return func(c context.Context, ctx *app.RequestContext) {
		// 防护机制1：检查User-Agent
		if isInvalidUserAgent(ctx) {
			securityResponse(ctx, http.StatusBadRequest, "missing required header: User-Agent")
			return
		}

		// 防护机制2：请求体大小限制
		if sec.MaxBodySize > 0 && int64(ctx.Request.Header.ContentLength()) > sec.MaxBodySize {
			securityResponse(ctx, http.StatusRequestEntityTooLarge, "request body exceeds max size")
			return
		}

		// 防护机制3：参数恶意字符检查
		if hasMaliciousContent(ctx, xssRegex, sqlInjectRegex) {
			securityResponse(ctx, http.StatusUnprocessableEntity, "request contains invalid characters")
			return
		}

		// 防护机制4：检查HTTP方法
		if len(allowed) > 0 && !allowed[string(ctx.Method())] {
			hlog.Warnf("SecurityAlert[status=%d]: method %s not allowed", http.StatusMethodNotAllowed, ctx.Method())
			ctx.AbortWithStatusJSON(model.FailureWithStatus(http.StatusMethodNotAllowed,
				apperrors.WithMessage(apperrors.ErrMissingParameter, "method not allowed")))
			return
		}

		ctx.Next(c)
	}
}

// 辅助方法：判断User-Agent合法性
func isInvalidUserAgent(ctx *app.RequestContext) bool {
	ua := string(ctx.GetHeader("User-Agent"))
	// 不允许空UA
	return strings.TrimSpace(ua) == ""
}

// 带性能优化的版本
func hasMaliciousContent(ctx *app.RequestContext, xss *regexp.Regexp, sql *regexp.Regexp) bool {
	var found int32

	check := func(data []byte) bool {
		return xss.Match(data) || sql.Match(data)
	}

	visitor := func(key, value []byte) {
		if atomic.LoadInt32(&found) == 1 {
			return // 已经找到匹配，跳过后续检查
		}
		if check(key) || check(value) {
			atomic.StoreInt32(&found, 1)
		}
	}

	// 检查Query参数
	ctx.QueryArgs().VisitAll(visitor)
	if atomic.LoadInt32(&found) == 1 {
		return true
	}

	// 检查Post表单参数
	ctx.PostArgs().VisitAll(visitor)
	return atomic.LoadInt32(&found) == 1
}

// 安全响应统一处理，使用参数错误信封
func securityResponse(ctx *app.RequestContext, status int, msg string) {
	hlog.Warnf("SecurityAlert[status=%d]: %s", status, msg)
	ctx.AbortWithStatusJSON(model.FailureWithStatus(status, apperrors.WithMessage(apperrors.ErrMissingParameter, msg)))
}
