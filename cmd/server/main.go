// Command photoshare-server starts the photoshare REST API.
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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/fourtogenic/photoshare/internal/cache"
	"github.com/fourtogenic/photoshare/internal/config"
	"github.com/fourtogenic/photoshare/internal/crypto"
	"github.com/fourtogenic/photoshare/internal/limiter"
	"github.com/fourtogenic/photoshare/internal/migrate"
	"github.com/fourtogenic/photoshare/internal/repository/postgres"
	httpserver "github.com/fourtogenic/photoshare/internal/server/http"
	"github.com/fourtogenic/photoshare/internal/service"
	"github.com/fourtogenic/photoshare/internal/storage"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main loads configuration, runs migrations, wires storage and services, and serves HTTP
// until SIGINT/SIGTERM.
func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		_, _ = os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(2)
	}

	var logger *zap.Logger
	if cfg.Development() {
		logger, _ = zap.NewDevelopment()
	} else {
		logger, _ = zap.NewProduction()
		gin.SetMode(gin.ReleaseMode)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Addr),
	)

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migrate.Up(ctx, cfg.DSN, logger); err != nil {
		logger.Fatal("migrate up", zap.Error(err))
	}

	db, err := postgres.New(ctx, cfg.DSN, postgres.PoolOptions{})
	if err != nil {
		logger.Fatal("postgres", zap.Error(err))
	}
	defer db.Close()

	blobs, err := storage.NewMinIO(ctx, storage.MinIOConfig{
		Endpoint:   cfg.MinIOEndpoint,
		AccessKey:  cfg.MinIOAccessKey,
		SecretKey:  cfg.MinIOSecretKey,
		Bucket:     cfg.MinIOBucket,
		UseSSL:     cfg.MinIOUseSSL,
		PublicBase: cfg.MinIOPublicBase,
	})
	if err != nil {
		logger.Fatal("object store", zap.Error(err))
	}

	var statsCache service.StatsCache
	if cfg.RedisAddr != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Fatal("redis", zap.Error(err))
		}
		defer func() { _ = rdb.Close() }()
		statsCache = cache.NewStatsCache(rdb, cfg.StatsTTL)
		logger.Info("stats cache enabled", zap.String("redis", cfg.RedisAddr), zap.Duration("ttl", cfg.StatsTTL))
	}

	// Repositories
	users := postgres.NewUserRepo(db)
	photos := postgres.NewPhotoRepo(db)
	albums := postgres.NewAlbumRepo(db)
	members := postgres.NewMembershipRepo(db)
	likes := postgres.NewLikeRepo(db)
	stats := postgres.NewStatsRepo(db)

	lim := limiter.NewPG(db.Pool, cfg.LoginWindow, cfg.LoginMaxFails, cfg.LoginBlock)

	// Services
	authSvc := service.NewAuthService(users, crypto.NewHasher(crypto.DefaultParams), []byte(cfg.JWTKey), cfg.AccessTTL, lim)
	memberSvc := service.NewMembershipService(photos, albums, members)
	svc := httpserver.Services{
		Auth:     authSvc,
		Profiles: service.NewProfileService(users, stats, blobs, statsCache, logger),
		Photos:   service.NewPhotoService(photos, memberSvc, blobs, logger),
		Albums:   service.NewAlbumService(albums, memberSvc),
		Likes:    service.NewLikeService(photos, albums, likes),
		Feed:     service.NewFeedService(photos),
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	api := httpserver.New(svc, httpserver.Options{
		MaxUpload: cfg.MaxUpload,
		Metrics:   httpserver.NewMetrics(reg),
		Gatherer:  reg,
		Ready: func(ctx context.Context) error {
			return errors.Join(db.Ping(ctx), blobs.Ping(ctx))
		},
	}, logger)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for stop
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown timed out", zap.Error(err))
			_ = srv.Close()
		}
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}
