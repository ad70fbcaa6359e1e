package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/kobbyowen/focus/pkg/common/config"
	albummodel "github.com/kobbyowen/focus/pkg/core/album/model"
	"github.com/kobbyowen/focus/pkg/core/audit"
	auditmodel "github.com/kobbyowen/focus/pkg/core/audit/model"
	auditdao "github.com/kobbyowen/focus/pkg/core/audit/repository/dao/impl"
	photomodel "github.com/kobbyowen/focus/pkg/core/photo/model"
	"github.com/kobbyowen/focus/pkg/core/storage"
	usermodel "github.com/kobbyowen/focus/pkg/core/user/model"
	"github.com/kobbyowen/focus/pkg/web/router"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

func migrate(db *gorm.DB) error {
	for _, m := range []func(*gorm.DB) error{
		usermodel.AutoMigrate,
		photomodel.AutoMigrate,
		albummodel.AutoMigrate,
		auditmodel.AutoMigrate,
	} {
		if err := m(db); err != nil {
			return err
		}
	}
	return nil
}

// serveMetrics exposes reg on its own listener so /metrics stays off the public API.
func serveMetrics(addr string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		hlog.Infof("metrics listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			hlog.Errorf("metrics server: %v", err)
		}
	}()
	return srv
}

func main() {
	// 初始化配置
	cfg := config.Load()
	hlog.SetLevel(cfg.HlogLevel())

	// 初始化数据库连接
	db, err := cfg.InitDB()
	if err != nil {
		hlog.Fatalf("Failed to initialize database: %v", err)
	}
	if err := migrate(db); err != nil {
		hlog.Fatalf("Failed to migrate database: %v", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// 文件存储
	files, err := storage.New(context.Background(), cfg.Storage)
	if err != nil {
		hlog.Fatalf("Failed to initialize storage: %v", err)
	}
	files = storage.WithMetrics(files, reg)

	// 变更审计
	dispatcher := audit.NewDispatcher(auditdao.NewGormLogRepository(db), audit.Options{
		QueueSize:  cfg.Audit.QueueSize,
		Workers:    cfg.Audit.Workers,
		Policy:     audit.ParseOverflowPolicy(cfg.Audit.OverflowPolicy),
		Registerer: reg,
	})
	dispatcher.Start()

	// 创建Hertz实例
	h := server.Default(
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
		server.WithMaxRequestBodySize(int(cfg.Middleware.Security.MaxBodySize)),
	)

	// 注册路由
	services, err := router.RegisterAPIs(h, router.Dependencies{
		Config:   cfg,
		DB:       db,
		Files:    files,
		Recorder: dispatcher,
	})
	if err != nil {
		hlog.Fatalf("Failed to register routes: %v", err)
	}

	if err := services.Users.EnsureAdmin(context.Background(), cfg.Admin); err != nil {
		hlog.Fatalf("Failed to bootstrap admin: %v", err)
	}

	var metricsSrv *http.Server
	if cfg.Metrics.Address != "" {
		metricsSrv = serveMetrics(cfg.Metrics.Address, reg)
	}

	h.OnShutdown = append(h.OnShutdown, func(ctx context.Context) {
		if metricsSrv != nil {
			_ = metricsSrv.Shutdown(ctx)
		}
		if err := dispatcher.Close(ctx); err != nil {
			hlog.CtxWarnf(ctx, "audit queue not drained: %v", err)
		}
	})

	// 启动服务
	h.Spin()
}
