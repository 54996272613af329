package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/snuggli/internal/config"
	"github.com/snuggli/internal/db"
	"github.com/snuggli/internal/handler"
	"github.com/snuggli/internal/logger"
	"github.com/snuggli/internal/metrics"
	"github.com/snuggli/internal/router"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 本地开发时从 .env 读取配置，文件不存在时忽略
	_ = godotenv.Load()

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Options{ServiceName: "snuggli"}).Error(ctx, "config.load", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		ServiceName: "snuggli",
		Level:       logger.ParseLevel(cfg.LogLevel),
		Format:      cfg.LogFormat,
	})

	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	if err := db.Init(cfg.DB); err != nil {
		log.Error(ctx, "db.init", err)
		os.Exit(1)
	}
	defer db.Close(db.DB)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	genMetrics := metrics.NewGenerationMetrics(registry)

	api := handler.NewAPI(db.DB, cfg.AI, genMetrics, log)

	if cfg.Admin.Email != "" && cfg.Admin.Password != "" {
		_, created, err := api.Users().EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password)
		if err != nil {
			log.Error(ctx, "admin.bootstrap", err)
			os.Exit(1)
		}
		if created {
			log.Info(log.WithField(ctx, "email", cfg.Admin.Email), "admin.bootstrap.created")
		}
	}

	// 设置并运行 Gin 服务器
	r := router.SetupRouter(api, router.Options{
		SessionSecret: cfg.SessionSecret,
		SecureCookie:  cfg.GinMode == gin.ReleaseMode,
		Logger:        log,
		Gatherer:      registry,
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info(log.WithField(ctx, "addr", cfg.ListenAddr), "server.start")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "server.run", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server.shutdown", err)
	}
	log.Info(ctx, "server.stopped")
}
