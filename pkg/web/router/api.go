package router

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/kobbyowen/focus/pkg/common/config"
	apperrors "github.com/kobbyowen/focus/pkg/common/errors"
	albumdao "github.com/kobbyowen/focus/pkg/core/album/repository/dao/impl"
	albumservice "github.com/kobbyowen/focus/pkg/core/album/service"
	"github.com/kobbyowen/focus/pkg/core/audit"
	auditdao "github.com/kobbyowen/focus/pkg/core/audit/repository/dao/impl"
	"github.com/kobbyowen/focus/pkg/core/auth"
	photodao "github.com/kobbyowen/focus/pkg/core/photo/repository/dao/impl"
	photoservice "github.com/kobbyowen/focus/pkg/core/photo/service"
	"github.com/kobbyowen/focus/pkg/core/storage"
	userdao "github.com/kobbyowen/focus/pkg/core/user/repository/dao/impl"
	userservice "github.com/kobbyowen/focus/pkg/core/user/service"
	"github.com/kobbyowen/focus/pkg/web/handler"
	"github.com/kobbyowen/focus/pkg/web/middleware"
	"github.com/kobbyowen/focus/pkg/web/model"
	"gorm.io/gorm"
)

// Dependencies are the long lived resources the API is built on.
type Dependencies struct {
	Config   *config.Config
	DB       *gorm.DB
	Files    storage.FileStore
	Recorder audit.Recorder
}

// Services is what RegisterAPIs assembled, exposed for start-up tasks.
type Services struct {
	Users  userservice.UserService
	Photos photoservice.PhotoService
	Albums albumservice.AlbumService
}

// RegisterAPIs 注册所有API路由
func RegisterAPIs(h *server.Hertz, deps Dependencies) (*Services, error) {
	cfg := deps.Config
	if deps.Recorder == nil {
		deps.Recorder = audit.Nop{}
	}

	codec, err := auth.NewTokenCodec(cfg.Middleware.JWT.Secret, cfg.Middleware.JWT.SigningMethod, cfg.Middleware.JWT.Issuer)
	if err != nil {
		return nil, fmt.Errorf("token codec: %w", err)
	}

	// 仓储层
	userRepo := userdao.NewGormUserRepository(deps.DB, deps.Recorder)
	photoRepo := photodao.NewGormPhotoRepository(deps.DB, deps.Recorder)
	albumRepo := albumdao.NewGormAlbumRepository(deps.DB, deps.Recorder)
	logRepo := auditdao.NewGormLogRepository(deps.DB)

	// 服务层
	svc := &Services{
		Users:  userservice.NewUserService(userRepo, photoRepo, deps.Files, codec, cfg.Middleware.JWT.ExpireDuration),
		Photos: photoservice.NewPhotoService(photoRepo, deps.Files, cfg.Storage.MaxUploadSize),
		Albums: albumservice.NewAlbumService(albumRepo),
	}
	authenticator := auth.NewAuthenticator(codec, svc.Users)

	// 初始化Handler实例
	pages := handler.NewPaginator(cfg.Pagination)
	healthHandler := handler.NewHealthCheckHandler(deps.DB)
	authHandler := handler.NewAuthHandler(svc.Users)
	userHandler := handler.NewUserHandler(svc.Users, svc.Photos, svc.Albums, pages)
	photoHandler := handler.NewPhotoHandler(svc.Photos, pages)
	albumHandler := handler.NewAlbumHandler(svc.Albums, pages)
	auditHandler := handler.NewAuditHandler(logRepo, pages)

	// 注册全局中间件（按执行顺序）
	h.Use(
		middleware.RecoveryMiddleware(cfg),
		middleware.LoggerMiddleware(),
		middleware.SecurityCheckMiddleware(cfg.Middleware.Security),
		middleware.TimeoutMiddleware(cfg.Middleware.Timeout.RequestTimeout),
		middleware.CORSMiddleware(cfg.Middleware.CORS),
		middleware.RateLimitMiddleware(
			cfg.Middleware.RateLimit.Rate,
			cfg.Middleware.RateLimit.Interval,
		),
	)

	h.NoRoute(func(ctx context.Context, c *app.RequestContext) {
		c.JSON(model.Failure(apperrors.ErrRouteNotFound))
	})
	h.NoMethod(func(ctx context.Context, c *app.RequestContext) {
		c.JSON(model.FailureWithStatus(http.StatusMethodNotAllowed,
			apperrors.WithMessage(apperrors.ErrMissingParameter, "method not allowed")))
	})

	// 基础接口组
	h.GET("/health", healthHandler.AdvancedHealthCheck)

	authGroup := h.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
	}

	// 业务接口组，需要身份认证
	api := h.Group("/api/v1",
		middleware.AuthMiddleware(authenticator),
		middleware.Require(auth.RequireAuthenticated),
	)
	{
		admin := middleware.Require(auth.AdminOnly)

		api.GET("/users", admin, userHandler.List)
		api.GET("/audit-logs", admin, auditHandler.List)

		// 用户相关接口
		api.GET("/user/me", userHandler.Me)
		api.GET("/user/:id", userHandler.Get)
		api.PUT("/user/:id", userHandler.Update)
		api.DELETE("/user/:id", userHandler.Delete)
		api.GET("/user/:id/photos", userHandler.Photos)
		api.GET("/user/:id/albums", userHandler.Albums)

		// 照片
		api.GET("/photos", photoHandler.List)
		api.POST("/photos", photoHandler.Upload)
		api.GET("/photo/:id", photoHandler.Get)
		api.GET("/photo/:id/download", photoHandler.Download)
		api.PUT("/photo/:id", photoHandler.Update)
		api.DELETE("/photo/:id", photoHandler.Delete)

		// 相册
		api.GET("/albums", albumHandler.List)
		api.POST("/albums", albumHandler.Create)
		api.GET("/album/:id", albumHandler.Get)
		api.PUT("/album/:id", albumHandler.Update)
		api.DELETE("/album/:id", albumHandler.Delete)
		api.GET("/album/:id/photos", albumHandler.ListPhotos)
		api.PUT("/album/:id/photos", albumHandler.ApplyMembership)
		api.DELETE("/album/:id/photo/:photo_id", albumHandler.RemovePhoto)
	}

	return svc, nil
}
