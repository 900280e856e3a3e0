package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NguyenDuong24/ChappAt-sub000/config"
	"github.com/NguyenDuong24/ChappAt-sub000/internal/database"
	"github.com/NguyenDuong24/ChappAt-sub000/internal/firestore"
	"github.com/NguyenDuong24/ChappAt-sub000/internal/geoindex"
	"github.com/NguyenDuong24/ChappAt-sub000/internal/logger"
	"github.com/NguyenDuong24/ChappAt-sub000/internal/router"
	"github.com/NguyenDuong24/ChappAt-sub000/pkg/cloudinary"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	if err := logger.Init("chappat-radar", !cfg.IsProduction()); err != nil {
		logger.InitDefault("chappat-radar")
	}
	defer logger.Sync()

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	var backends router.Backends
	if cfg.Cloudinary.CloudName != "" {
		cloud, err := cloudinary.NewClientFromParams(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
		if err != nil {
			logger.Fatal("cloudinary", zap.Error(err))
		}
		backends.Cloud = cloud
	} else {
		logger.Warn("photo uploads disabled: set CLOUDINARY_CLOUD_NAME to enable")
	}

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rdb.Ping(ctx).Err()
		cancel()
		if err != nil {
			logger.Fatal("redis", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		defer rdb.Close()
		backends.GeoIndex = geoindex.New(rdb, cfg.Redis.LocationTTL)
		logger.Info("redis geo index enabled", zap.String("addr", cfg.Redis.Addr))
	}

	if cfg.Firebase.ServiceAccountPath != "" {
		pool, err := firestore.NewPool(context.Background(), cfg.Firebase)
		if err != nil {
			logger.Fatal("firestore", zap.Error(err))
		}
		defer pool.Close()
		backends.Firestore = pool
		logger.Info("firestore mirror enabled", zap.String("collection", cfg.Firebase.UsersCollection))
	}

	engine, err := router.Setup(cfg, db, backends)
	if err != nil {
		logger.Fatal("router", zap.Error(err))
	}
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}
