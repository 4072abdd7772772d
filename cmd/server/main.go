package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"missionhub/internal/cache"
	"missionhub/internal/core"
	"missionhub/internal/metrics"
	grpcProtocol "missionhub/internal/protocols/grpc"
	httpProtocol "missionhub/internal/protocols/http"
	wsProtocol "missionhub/internal/protocols/websocket"
	"missionhub/internal/repository"
	"missionhub/internal/storage"
	"missionhub/pkg/config"
	"missionhub/pkg/database"
	"missionhub/pkg/logger"
)

const defaultConfigPath = "./configs/development.yaml"

func main() {
	configPath := os.Getenv("MISSIONHUB_CONFIG")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging)
	logger.Info("Starting MissionHub server...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Fatalf("Server failed: %v", err)
	}
	logger.Info("Shutdown complete")
}

func run(ctx context.Context, cfg *config.Config) error {
	dbCfg := database.FromConfig(cfg.Database)

	// database/sql handle for migrations and health checks
	db, err := database.NewDB(dbCfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		applied, err := db.Migrate(ctx)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Infof("Applied %d migrations", applied)
	}

	pool, err := database.NewPGXPool(ctx, dbCfg)
	if err != nil {
		return fmt.Errorf("connect pgx pool: %w", err)
	}
	defer pool.Close()
	logger.Info("Connected to PostgreSQL database")

	redisCache := cache.New(ctx, cfg.Redis.URL)
	defer redisCache.Close()

	m := metrics.New(prometheus.NewRegistry(), pool)

	// a nil *MediaStore must not become a non-nil interface
	var uploader core.MediaUploader
	store, err := storage.New(ctx, cfg.Storage, cfg.Server.MaxUploadBytes)
	switch {
	case err != nil:
		logger.Warnf("Media storage unavailable, uploads disabled: %v", err)
	case store == nil:
		logger.Info("No media storage configured, uploads disabled")
	default:
		uploader = store
	}

	profileRepo := repository.NewProfileRepository(pool)
	missionRepo := repository.NewMissionRepository(pool)
	submissionRepo := repository.NewSubmissionRepository(pool)
	likeRepo := repository.NewLikeRepository(pool)
	activityRepo := repository.NewActivityRepository(pool)

	activitySvc := core.NewActivityService(activityRepo, likeRepo, redisCache, m, core.FeedOptions{
		Limit:                   cfg.Feed.Limit,
		SubmissionWindow:        cfg.Feed.SubmissionWindow,
		ProfileWindow:           cfg.Feed.ProfileWindow,
		SourceTimeout:           cfg.Feed.SourceTimeout,
		CacheTTL:                cfg.Feed.CacheTTL,
		DropEmptyProfileChanges: cfg.Feed.DropEmptyProfileChanges,
	})
	leaderboardSvc := core.NewLeaderboardService(profileRepo, redisCache, cfg.Feed.CacheTTL)

	hub := wsProtocol.NewHub(m)
	defer hub.Stop()

	// caches are invalidated before clients are told to refetch
	notifier := core.Notifiers{activitySvc, leaderboardSvc, hub}

	authSvc := core.NewAuthService(profileRepo, cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiration)
	services := httpProtocol.Services{
		Auth:        authSvc,
		Profiles:    core.NewProfileService(profileRepo, activityRepo, uploader, notifier),
		Missions:    core.NewMissionService(missionRepo, notifier),
		Submissions: core.NewSubmissionService(submissionRepo, missionRepo, uploader, notifier),
		Likes:       core.NewLikeService(likeRepo, submissionRepo),
		Activity:    activitySvc,
		Leaderboard: leaderboardSvc,
	}

	wsHandler := wsProtocol.NewHandler(hub, authSvc, cfg.Server.AllowedOrigins)
	httpServer := httpProtocol.NewServer(cfg, services, httpProtocol.Options{
		Metrics:   m,
		WebSocket: wsHandler.HandleWebSocket,
		HealthCheck: func(ctx context.Context) error {
			if err := db.HealthCheck(ctx); err != nil {
				return err
			}
			return redisCache.Ping(ctx)
		},
	})

	errCh := make(chan error, 2)

	go func() {
		if err := httpServer.Start(cfg.Server.Addr()); err != nil {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	var grpcServer *grpcProtocol.Server
	if cfg.GRPC.Enabled {
		grpcServer = grpcProtocol.NewServer(cfg.GRPC.Addr(), pool)
		if err := grpcServer.Start(); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}

	logger.Info("Press Ctrl+C to shutdown")

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case runErr = <-errCh:
		logger.Errorf("Server error: %v", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if grpcServer != nil {
		grpcServer.Stop()
		logger.Info("gRPC server stopped")
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("HTTP shutdown: %v", err)
	}
	logger.Info("HTTP server stopped")

	return runErr
}
